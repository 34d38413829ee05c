package server

import (
	"encoding/json"
	"net/http"

	"github.com/askdb/askdb/internal/model"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string     `json:"question"`
	SQL      string     `json:"sql,omitempty"`
	Columns  []string   `json:"columns,omitempty"`
	Rows     [][]any    `json:"rows"`
	Error    *stageInfo `json:"error,omitempty"`
}

type stageInfo struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type checkRequest struct {
	SQL string `json:"sql"`
}

type checkResponse struct {
	SQL    string `json:"sql,omitempty"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// handleAsk runs one question through the pipeline. A pipeline failure is
// still a 200: the response carries the stage-tagged error and whatever SQL
// was generated before the failure.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	res := s.pipeline.Run(r.Context(), req.Question)

	resp := askResponse{
		Question: req.Question,
		SQL:      res.SQL,
		Columns:  res.Columns,
		Rows:     res.Rows,
	}
	if resp.Rows == nil {
		resp.Rows = [][]any{}
	}
	if res.Err != nil {
		resp.Error = &stageInfo{
			Stage:   string(res.Err.Stage),
			Message: res.Err.Err.Error(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCheck normalizes and validates a statement without executing it.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "sql is required")
		return
	}

	sql, verdict := s.pipeline.Check(r.Context(), req.SQL)
	writeJSON(w, http.StatusOK, checkResponse{
		SQL:    sql,
		OK:     verdict.OK,
		Reason: verdict.Reason,
	})
}

// handleSchema returns the schema snapshot the pipeline validates against.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := s.pipeline.Schema(r.Context())
	tables := schema.Tables
	if tables == nil {
		tables = []model.Table{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the database is
// reachable, 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error envelope.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

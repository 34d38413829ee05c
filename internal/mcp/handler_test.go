package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/askdb/askdb/internal/model"
	"github.com/askdb/askdb/internal/pipeline"
)

type fakeSource struct {
	schema *model.Schema
}

func (f *fakeSource) Introspect(ctx context.Context) (*model.Schema, error) {
	return f.schema, nil
}

type fakeTranslator struct {
	completion string
	err        error
}

func (f *fakeTranslator) Translate(ctx context.Context, question, schemaDescription string) (string, error) {
	return f.completion, f.err
}

type fakeExecutor struct {
	columns []string
	rows    [][]any
	err     error
}

func (f *fakeExecutor) Query(ctx context.Context, sql string) ([]string, [][]any, error) {
	return f.columns, f.rows, f.err
}

func newTestMCP(t *testing.T, tr pipeline.Translator, ex pipeline.Executor) *MCPServer {
	t.Helper()
	schema := &model.Schema{Tables: []model.Table{
		{Name: "employees", Columns: []string{"id", "name", "department"}},
	}}
	logger := slog.New(slog.DiscardHandler)
	pl := pipeline.New(&fakeSource{schema: schema}, tr, ex, logger)
	return New(pl, "test", logger)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleAsk(t *testing.T) {
	s := newTestMCP(t,
		&fakeTranslator{completion: "SELECT name FROM employees"},
		&fakeExecutor{columns: []string{"name"}, rows: [][]any{{"Ada"}}},
	)

	result, err := s.handleAsk(context.Background(), callRequest(map[string]any{
		"question": "who works here?",
	}))
	if err != nil {
		t.Fatalf("handleAsk: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var payload struct {
		SQL     string   `json:"sql"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.SQL != "SELECT name FROM employees;" {
		t.Errorf("sql = %q", payload.SQL)
	}
	if len(payload.Rows) != 1 {
		t.Errorf("rows = %v", payload.Rows)
	}
}

func TestHandleAskFailureCarriesStage(t *testing.T) {
	s := newTestMCP(t,
		&fakeTranslator{err: errors.New("model unreachable")},
		&fakeExecutor{},
	)

	result, err := s.handleAsk(context.Background(), callRequest(map[string]any{
		"question": "anything",
	}))
	if err != nil {
		t.Fatalf("handleAsk: %v", err)
	}

	var payload struct {
		Stage string `json:"stage"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Stage != "translation" {
		t.Errorf("stage = %q", payload.Stage)
	}
}

func TestHandleAskMissingQuestion(t *testing.T) {
	s := newTestMCP(t, &fakeTranslator{}, &fakeExecutor{})

	result, err := s.handleAsk(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleAsk: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing question")
	}
}

func TestHandleCheckSQL(t *testing.T) {
	s := newTestMCP(t, &fakeTranslator{}, &fakeExecutor{})

	tests := []struct {
		name   string
		sql    string
		wantOK bool
	}{
		{"valid select", "SELECT id FROM employees", true},
		{"unknown table", "SELECT * FROM ghost_table", false},
		{"mutation", "DELETE FROM employees", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCheckSQL(context.Background(), callRequest(map[string]any{
				"sql": tt.sql,
			}))
			if err != nil {
				t.Fatalf("handleCheckSQL: %v", err)
			}

			var payload struct {
				OK     bool   `json:"ok"`
				Reason string `json:"reason"`
			}
			if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if payload.OK != tt.wantOK {
				t.Errorf("ok = %v (%q), want %v", payload.OK, payload.Reason, tt.wantOK)
			}
			if payload.Reason == "" {
				t.Error("reason must always be populated")
			}
		})
	}
}

func TestHandleListTables(t *testing.T) {
	s := newTestMCP(t, &fakeTranslator{}, &fakeExecutor{})

	result, err := s.handleListTables(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleListTables: %v", err)
	}

	var payload struct {
		Tables []string `json:"tables"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Tables) != 1 || payload.Tables[0] != "employees" {
		t.Errorf("tables = %v", payload.Tables)
	}
}

func TestHandleDescribeTable(t *testing.T) {
	s := newTestMCP(t, &fakeTranslator{}, &fakeExecutor{})

	result, err := s.handleDescribeTable(context.Background(), callRequest(map[string]any{
		"table": "EMPLOYEES",
	}))
	if err != nil {
		t.Fatalf("handleDescribeTable: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var payload struct {
		Table   string   `json:"table"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Table != "employees" || len(payload.Columns) != 3 {
		t.Errorf("payload = %+v", payload)
	}

	result, err = s.handleDescribeTable(context.Background(), callRequest(map[string]any{
		"table": "ghost_table",
	}))
	if err != nil {
		t.Fatalf("handleDescribeTable: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown table")
	}
}

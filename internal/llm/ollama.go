// Package llm is the HTTP client for the local Ollama service that turns
// natural-language questions into SQL completions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Defaults mirror what the agent needs from a local model: near-greedy
// sampling and a hard cap on completion length, since a SELECT statement
// never needs more.
const (
	defaultTimeout     = 90 * time.Second
	defaultTemperature = 0.1
	defaultNumPredict  = 300
)

// promptTemplate grounds the model in the introspected schema and instructs
// it to answer with nothing but a single read-only statement. Models ignore
// the "ONLY the SQL" instruction often enough that the normalizer exists.
const promptTemplate = `Given the following SQL database schema:
--- SCHEMA START ---
%s
--- SCHEMA END ---

Convert the following natural language query into a valid SQL query.
Your response MUST be ONLY the SQL query itself, with no explanations, comments, or surrounding text.
Ensure the query is safe and only retrieves data (e.g., use SELECT statements).
Do not use any DML (INSERT, UPDATE, DELETE) or DDL (CREATE, ALTER, DROP) statements.

Natural Language Query: "%s"

SQL Query:
`

// Config holds the Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the Ollama generate API. Safe for concurrent use.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Client for the given endpoint and model.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Translate sends the schema-grounded prompt for one question and returns
// the raw completion text. A connection failure, non-2xx status, malformed
// body, or empty completion is an error; the caller treats all of them as
// translation-stage failures.
func (c *Client) Translate(ctx context.Context, question, schemaDescription string) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(promptTemplate, schemaDescription, question),
		Stream: false,
		Options: generateOptions{
			Temperature: defaultTemperature,
			NumPredict:  defaultNumPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending question to model", "model", c.model, "question", question)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("malformed ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("ollama returned an empty completion")
	}

	return out.Response, nil
}

// Ping probes the Ollama tags endpoint to confirm the service is up. If the
// configured model is not among the locally available ones it logs a warning
// but does not fail — the model may still resolve by prefix or be pulled on
// first use.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama tags endpoint returned HTTP %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("malformed tags response: %w", err)
	}

	found := false
	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		available = append(available, m.Name)
		if strings.HasPrefix(m.Name, c.model) {
			found = true
		}
	}
	if !found {
		c.logger.Warn("configured model not found locally; ensure it is pulled",
			"model", c.model, "available", available)
	}

	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

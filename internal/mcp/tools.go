package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers all askdb MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	srv.AddTool(
		mcp.NewTool("askdb_ask",
			mcp.WithDescription(
				"Ask a natural-language question about the connected database. The "+
					"question is translated to SQL, validated against the live schema, "+
					"and executed read-only. Returns the generated SQL and the result "+
					"rows, or the stage at which the question failed.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("question",
				mcp.Required(),
				mcp.Description("The question to answer, e.g. \"how many orders shipped last week?\""),
			),
		),
		s.handleAsk,
	)

	srv.AddTool(
		mcp.NewTool("askdb_check_sql",
			mcp.WithDescription(
				"Normalize and validate a SQL statement without executing it. Reports "+
					"whether the statement would be accepted (single read-only SELECT "+
					"referencing only real tables) and why not otherwise.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description("The SQL statement (or raw model completion) to check"),
			),
		),
		s.handleCheckSQL,
	)

	srv.AddTool(
		mcp.NewTool("askdb_list_tables",
			mcp.WithDescription(
				"List the tables in the connected database. Use this to discover what "+
					"data is available before asking questions.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListTables,
	)

	srv.AddTool(
		mcp.NewTool("askdb_describe_table",
			mcp.WithDescription(
				"List the columns of one table in the connected database.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("table",
				mcp.Required(),
				mcp.Description("Name of the table to describe"),
			),
		),
		s.handleDescribeTable,
	)
}

func (s *MCPServer) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := requireString(request, "question")
	if err != nil {
		return toolError("%v", err)
	}

	res := s.pipeline.Run(ctx, question)
	if res.Err != nil {
		payload := map[string]any{
			"stage": string(res.Err.Stage),
			"error": res.Err.Err.Error(),
		}
		if res.SQL != "" {
			payload["sql"] = res.SQL
		}
		return successJSON(payload)
	}

	rows := res.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return successJSON(map[string]any{
		"sql":     res.SQL,
		"columns": res.Columns,
		"rows":    rows,
	})
}

func (s *MCPServer) handleCheckSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := requireString(request, "sql")
	if err != nil {
		return toolError("%v", err)
	}

	sql, verdict := s.pipeline.Check(ctx, raw)
	payload := map[string]any{
		"ok":     verdict.OK,
		"reason": verdict.Reason,
	}
	if sql != "" {
		payload["sql"] = sql
	}
	return successJSON(payload)
}

func (s *MCPServer) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schema := s.pipeline.Schema(ctx)
	names := schema.TableNames()
	if names == nil {
		names = []string{}
	}
	return successJSON(map[string]any{"tables": names})
}

func (s *MCPServer) handleDescribeTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := requireString(request, "table")
	if err != nil {
		return toolError("%v", err)
	}

	schema := s.pipeline.Schema(ctx)
	for _, t := range schema.Tables {
		if !strings.EqualFold(t.Name, table) {
			continue
		}
		return successJSON(map[string]any{
			"table":   t.Name,
			"columns": t.Columns,
		})
	}
	return toolError("table %q does not exist in the database schema", table)
}

// Package mcp exposes the question-answering pipeline over the Model Context
// Protocol so MCP clients can ask questions, vet SQL, and explore the schema.
// Every tool is read-only: the pipeline refuses anything but SELECT.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/askdb/askdb/internal/pipeline"
)

// MCPServer wraps the mcp-go server with the askdb tool registrations.
type MCPServer struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
	server   *server.MCPServer
}

// New creates an MCPServer pre-loaded with all askdb tools. The returned
// server is ready to serve over stdio.
func New(pl *pipeline.Pipeline, version string, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		pipeline: pl,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		"askdb",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go server instance, useful for testing.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio starts the MCP server in stdio mode. This is the integration
// path for clients that launch the server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// readOnlyAnnotation marks a tool as non-mutating. Every askdb tool carries
// it; there are no mutating tools.
func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server over stdio that exposes the
question pipeline as tools: ask a question, check a statement, and explore
the schema. All tools are read-only.

The server communicates over stdin/stdout using JSON-RPC, suitable for
clients that launch it as a subprocess. Logs go to stderr.`,
		Example: `  askdb mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.Logging.Level)

			conn, err := openConnector(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			pl, client := buildPipeline(cfg, conn, logger)
			if err := client.Ping(cmd.Context()); err != nil {
				logger.Warn("ollama not reachable; ask tool will fail at translation", "error", err)
			}
			return mcp.New(pl, appVersion, logger).ServeStdio()
		},
	}
	return cmd
}

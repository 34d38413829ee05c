package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/model"
	"github.com/askdb/askdb/internal/pipeline"
)

// unavailableSource is used when the database cannot be reached: the
// pipeline then degrades to structural validation only.
type unavailableSource struct {
	err error
}

func (u unavailableSource) Introspect(ctx context.Context) (*model.Schema, error) {
	return nil, u.err
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [sql]",
		Short: "Validate a SQL statement without executing it",
		Long: `Normalize a statement (or a raw model completion) and report whether it
would be accepted: a single read-only SELECT referencing only tables that
exist. Reads from stdin when no argument is given.

When the database is unreachable, the table reference check is skipped and
only the structural checks apply.`,
		Example: `  askdb check "SELECT id FROM users"
  cat completion.txt | askdb check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 0 {
				raw = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging.Level)

			var pl *pipeline.Pipeline
			conn, err := openConnector(cfg)
			if err != nil {
				logger.Warn("database unreachable; table reference check skipped", "error", err)
				pl = pipeline.New(unavailableSource{err: err}, nil, nil, logger)
			} else {
				defer conn.Close()
				pl = pipeline.New(conn, nil, nil, logger)
			}

			out := cmd.OutOrStdout()
			sql, verdict := pl.Check(cmd.Context(), raw)
			if sql != "" {
				fmt.Fprintf(out, "%s %s\n", color.New(color.FgCyan, color.Bold).Sprint("sql:"), sql)
			}
			if !verdict.OK {
				fmt.Fprintln(out, color.RedString("rejected: %s", verdict.Reason))
				return fmt.Errorf("statement rejected")
			}
			fmt.Fprintln(out, color.GreenString("accepted: %s", verdict.Reason))
			return nil
		},
	}
	return cmd
}

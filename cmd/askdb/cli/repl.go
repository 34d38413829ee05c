package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive question prompt",
		Long: `Start an interactive session. Each line is treated as a question and
answered the same way as "askdb ask". Type "exit" or press Ctrl-D to leave.`,
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
				logger.Warn("ollama not reachable; questions will fail at translation", "error", err)
			}

			historyFile := ""
			if home, err := os.UserHomeDir(); err == nil {
				historyFile = filepath.Join(home, ".askdb_history")
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          color.New(color.FgMagenta, color.Bold).Sprint("askdb> "),
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("init readline: %w", err)
			}
			defer rl.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "connected to %s; ask away (exit to quit)\n", conn.DriverName())

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if len(line) > 0 {
						continue
					}
					return nil
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				question := strings.TrimSpace(line)
				switch question {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				if err := printResult(out, pl.Run(cmd.Context(), question)); err != nil {
					fmt.Fprintln(out, color.RedString("%v", err))
				}
			}
		},
	}
	return cmd
}

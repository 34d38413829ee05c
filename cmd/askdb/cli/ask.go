package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the result",
		Long: `Translate a natural-language question to SQL, validate it against the
live schema, execute it read-only, and print the result table.`,
		Example: `  askdb ask "how many orders shipped last week?"
  askdb ask which customers spent the most this year`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

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

			pl, _ := buildPipeline(cfg, conn, logger)
			return printResult(cmd.OutOrStdout(), pl.Run(cmd.Context(), question))
		},
	}
	return cmd
}

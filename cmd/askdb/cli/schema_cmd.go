package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the tables and columns of the connected database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := openConnector(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			schema, err := conn.Introspect(cmd.Context())
			if err != nil {
				return fmt.Errorf("introspect schema: %w", err)
			}

			out := cmd.OutOrStdout()
			if schema.Empty() {
				fmt.Fprintln(out, "no tables found")
				return nil
			}
			bold := color.New(color.FgCyan, color.Bold)
			for _, table := range schema.Tables {
				fmt.Fprintf(out, "%s\n", bold.Sprint(table.Name))
				fmt.Fprintf(out, "  %s\n", strings.Join(table.Columns, ", "))
			}
			fmt.Fprintf(out, "%d table(s)\n", len(schema.Tables))
			return nil
		},
	}
	return cmd
}

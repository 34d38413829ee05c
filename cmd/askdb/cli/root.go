// Package cli implements the askdb command tree.
package cli

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	debugMode  bool
	appVersion string // set in Execute, used by mcp for the server version
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "askdb",
		Short: "Ask your database questions in plain language",
		Long: `askdb translates natural-language questions into SQL with a local Ollama
model, validates the generated statement against the live schema, and runs
it read-only against PostgreSQL, MySQL, or SQLite.

Nothing but single SELECT statements ever reaches the database: the
validator rejects mutations, multiple statements, and references to tables
that do not exist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./askdb.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newReplCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	// A local .env is convenient for DSNs and model names during development.
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("askdb")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.askdb")
	}

	viper.SetEnvPrefix("ASKDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.ReadInConfig() // config file is optional
}

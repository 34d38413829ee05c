package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/connector/mysql"
	"github.com/askdb/askdb/internal/connector/postgres"
	"github.com/askdb/askdb/internal/connector/sqlite"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/pipeline"
)

// loadConfig builds the effective configuration: file (if any) over
// defaults, then viper overlays (ASKDB_* environment variables and bound
// flags) on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()

	path := cfgFile
	if path == "" {
		path = viper.ConfigFileUsed()
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := viper.GetString("database.driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("database.dsn"); v != "" {
		cfg.Database.DSN = v
	}
	if v := viper.GetString("database.schema"); v != "" {
		cfg.Database.Schema = v
	}
	if v := viper.GetString("ollama.base_url"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := viper.GetString("ollama.model"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := viper.GetInt("server.port"); v != 0 {
		cfg.Server.Port = v
	}
	if v := viper.GetString("server.host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}

// newLogger creates the process logger on stderr, keeping stdout clean for
// query results (and for MCP stdio framing).
func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	} else {
		switch strings.ToLower(level) {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// newRegistry creates a connector registry with all supported drivers.
func newRegistry() *connector.Registry {
	registry := connector.NewRegistry()
	registry.Register("postgres", func() connector.Connector { return postgres.New() })
	registry.Register("mysql", func() connector.Connector { return mysql.New() })
	registry.Register("sqlite", func() connector.Connector { return sqlite.New() })
	return registry
}

// openConnector connects to the configured database.
func openConnector(cfg *config.Config) (connector.Connector, error) {
	conn, err := newRegistry().Open(connector.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		SchemaName:      cfg.Database.Schema,
		MaxOpenConns:    cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Pool.MaxLifetime(),
		ConnMaxIdleTime: cfg.Database.Pool.MaxIdleTime(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Database.Driver, err)
	}
	return conn, nil
}

// buildPipeline assembles the full question-to-result pipeline: the
// connector serves as both schema source and executor, Ollama as the
// translator. The client is returned as well so long-running commands can
// probe the model endpoint at startup.
func buildPipeline(cfg *config.Config, conn connector.Connector, logger *slog.Logger) (*pipeline.Pipeline, *llm.Client) {
	client := llm.New(llm.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.OllamaTimeout(),
	}, logger)
	return pipeline.New(conn, client, conn, logger), client
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/askdb/askdb/internal/server"
)

const banner = `
           _       _ _
  __ _ ___| | ____| | |__
 / _' / __| |/ / _' | '_ \
| (_| \__ \   < (_| | |_) |
 \__,_|___/_|\_\__,_|_.__/
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start the HTTP server that answers questions over POST /api/v1/ask.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe() error {
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
	logger.Info("database connected", "driver", conn.DriverName())

	pl, client := buildPipeline(cfg, conn, logger)
	if err := client.Ping(context.Background()); err != nil {
		logger.Warn("ollama not reachable; ask requests will fail at translation", "error", err)
	}

	// Load the schema snapshot up front so the first request does not pay
	// for introspection.
	schema := pl.Schema(context.Background())
	logger.Info("schema snapshot ready", "tables", len(schema.Tables))

	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.Server.RateLimit,
	}
	srv := server.New(srvCfg, pl, conn, logger)

	fmt.Print(banner)
	fmt.Println()
	fmt.Printf("→ askdb %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ Ask:    POST http://%s:%d/api/v1/ask\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ Check:  POST http://%s:%d/api/v1/check\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ Schema: GET  http://%s:%d/api/v1/schema\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ Health: GET  http://%s:%d/healthz\n", srvCfg.Host, srvCfg.Port)
	fmt.Println()

	return srv.ListenAndServe()
}

package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/xrechnung-generator/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating invoices.

The API provides endpoints for:
  - POST /api/v1/generate  - Render a JSON invoice record as XML
  - POST /api/v1/validate  - Validate a JSON invoice record
  - POST /api/v1/inspect   - Summarize an XML invoice document
  - GET  /health           - Health check
  - GET  /debug/vars       - Counters

Flags override the server section of the config file.

Examples:
  # Start server on the configured address
  xrechnung serve

  # Start on a custom port in debug mode
  xrechnung serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default: server.address)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default: server.read_timeout)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default: server.write_timeout)")
}

func serverConfig() *server.Config {
	sc := &server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Debug:        cfg.Server.Debug || serverDebug,
		Logger:       logger,
	}
	if serverAddr != "" {
		sc.Address = serverAddr
	}
	if readTimeout > 0 {
		sc.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		sc.WriteTimeout = writeTimeout
	}
	return sc
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := serverConfig()
	srv := server.NewServer(sc)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "address", sc.Address, "debug", sc.Debug)
	return srv.Run(ctx)
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jvoss/taskpilot/internal/logging"
	"github.com/jvoss/taskpilot/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		cfg            appConfig
		addr           string
		allowedOrigin  string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  POST /tasks          Route a natural-language task; returns a result envelope
  GET  /authorize      Begin the Google OAuth consent flow in the browser
  GET  /oauth2callback OAuth redirect target; stores the credential
  GET  /auth/status    Report whether a credential is stored
  GET  /healthz        Liveness probe
  GET  /readyz         Readiness probe

Until a credential is stored through /authorize, POST /tasks answers 401
with an auth_required envelope and no LLM call is made.

Configuration:
  GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET identify the OAuth client,
  GEMINI_API_KEY authenticates intent extraction. All three can also be
  set via flags or a .env file in the working directory.

Prometheus metrics are served on a dedicated port (default :9090), keeping
them off the public API address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg, addr, allowedOrigin, metricsEnabled, metricsAddr)
		},
	}

	cfg.addFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "API server address. Can also use TASKPILOT_ADDR env var.")
	cmd.Flags().StringVar(&allowedOrigin, "allowed-origin", "", "CORS origin allowed to call the API (default: any)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg appConfig, addr, allowedOrigin string, metricsEnabled bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if addr == server.DefaultAddr {
		if envAddr := os.Getenv("TASKPILOT_ADDR"); envAddr != "" {
			addr = envAddr
		}
	}
	if metricsAddr == server.DefaultMetricsAddr {
		if envAddr := os.Getenv("METRICS_ADDR"); envAddr != "" {
			metricsAddr = envAddr
		}
	}

	app, err := buildApp(shutdownCtx, cfg)
	if err != nil {
		return err
	}
	defer app.shutdown(context.Background())

	srv, err := server.New(server.Config{
		Addr:          addr,
		AllowedOrigin: allowedOrigin,
		ServerContext: app.sc,
		Router:        app.router,
		Logger:        app.logger,
		Metrics:       app.provider.Metrics(),
	})
	if err != nil {
		return err
	}

	var metricsServer *server.MetricsServer
	if metricsEnabled && app.provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(metricsAddr, app.provider)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				app.logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	if !app.sc.Authorized() {
		app.logger.Info("no google credential stored; visit /authorize to grant access",
			"token_path", app.store.Path())
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	case <-shutdownCtx.Done():
		app.logger.Info("shutdown signal received")
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer drainCancel()

	if err := srv.Shutdown(drainCtx); err != nil {
		app.logger.Error("api server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(drainCtx); err != nil {
			app.logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}
	return nil
}

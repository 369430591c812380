package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/logscope/internal/app"
	"github.com/fyrsmithlabs/logscope/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the logscope HTTP API",
		Long: `Start the HTTP server. Every request runs in its own logging scope tagged
with its request id, method and route. When server.allow_level_override is
set, a request can force levels for its own scope:

  curl -H 'X-Log-Levels: store=debug' -d '{"logger":"store","level":"debug","message":"hi"}' \
       -H 'Content-Type: application/json' localhost:9090/api/v1/log

Endpoints:
  GET  /health
  GET  /metrics
  GET  /api/v1/scope
  POST /api/v1/log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "listen host")
	cmd.Flags().IntVar(&port, "port", 9090, "listen port")
	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	logger := a.Logger()

	srv, err := a.NewServer()
	if err != nil {
		_ = a.Close(context.WithoutCancel(ctx))
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var (
		serveErr error
		stopped  bool
	)
	select {
	case <-ctx.Done():
		logger.Info(ctx, "shutdown requested")
	case serveErr = <-errCh:
		stopped = true
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown failed", zap.Error(err))
	}
	if !stopped {
		serveErr = <-errCh
	}
	if err := a.Close(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "cleanup failed", zap.Error(err))
	}
	return serveErr
}

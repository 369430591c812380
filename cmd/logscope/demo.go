package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/logscope/internal/app"
	"github.com/fyrsmithlabs/logscope/internal/levelmap"
	"github.com/fyrsmithlabs/logscope/internal/logctx"
	"github.com/fyrsmithlabs/logscope/internal/tags"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	var debugLogger string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Log through nested scopes to show tags and forced levels",
		Long: `Run a short job inside nested logging scopes. The outer scope tags every
statement with a run id; the inner scope adds a step tag and forces debug
logging for one logger, leaving the global level unchanged.

Examples:
  # Force debug output for demo.store only
  logscope demo

  # Force it for another logger
  logscope demo --debug demo.http`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, app.WithoutInstall())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.WithoutCancel(cmd.Context())) }()

			return runDemo(cmd.Context(), a, debugLogger)
		},
	}

	cmd.Flags().StringVar(&debugLogger, "debug", "demo.store", "logger to force debug logging for in the inner scope")
	return cmd
}

// runDemo logs through two nested scopes.
func runDemo(ctx context.Context, a *app.App, debugLogger string) error {
	logger := a.Logger().Named("demo")

	ctx, span := a.Telemetry().Tracer("github.com/fyrsmithlabs/logscope/demo").Start(ctx, "demo")
	defer span.End()

	levels := levelmap.NewBuilder().Add(zapcore.DebugLevel, debugLogger).Build()

	return logctx.NewContext(a.API()).
		WithTags(tags.Of("run_id", uuid.NewString())).
		Run(ctx, func(ctx context.Context) error {
			logger.Info(ctx, "demo started")
			logger.Debug(ctx, "outer debug statement")

			err := logctx.NewContext(a.API()).
				WithTags(tags.NewBuilder().AddTag("step", "store").AddTag("attempt", 1).Build()).
				WithLogLevelMap(levels).
				Run(ctx, func(ctx context.Context) error {
					store := logger.Named("store")
					store.Debug(ctx, "cache lookup", zap.String("key", "user:42"))
					store.Trace(ctx, "below the forced level")
					logger.Named("http").Debug(ctx, "not forced")
					return nil
				})
			if err != nil {
				return fmt.Errorf("inner scope: %w", err)
			}

			logger.Info(ctx, "demo finished")
			return nil
		})
}

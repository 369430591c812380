// Package main implements the logscope CLI: it validates configuration,
// runs the scoped logging demo and serves the HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fyrsmithlabs/logscope/internal/config"
	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "logscope",
		Short: "Scoped logging context for Go services",
		Long: `logscope carries logging tags and per-logger level overrides through
nested scopes, so a request or job can turn on debug logging for a single
subsystem without touching the global level.

Configuration is read from ~/.config/logscope/config.yaml (or --config) and
LOGSCOPE_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/logscope/config.yaml)")

	cmd.AddCommand(
		newVersionCmd(),
		newCheckConfigCmd(opts),
		newDemoCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logscope version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("logscope %s\n", version)
		},
	}
}

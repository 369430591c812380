package main

import (
	"fmt"

	"github.com/fyrsmithlabs/logscope/internal/app"
	"github.com/fyrsmithlabs/logscope/internal/config"
	"github.com/spf13/cobra"
)

func newCheckConfigCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and print the effective settings",
		Long: `Load the configuration file and environment overrides, validate them,
and print the effective configuration.

Examples:
  # Check the default config file
  logscope check-config

  # Print as TOML
  logscope check-config --format toml

  # Check another file
  logscope check-config --config /etc/logscope/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			// Level names are only checked when the provider is built
			if _, err := app.NewProvider(cfg.Scope, nil); err != nil {
				return fmt.Errorf("invalid scope configuration: %w", err)
			}

			out, err := config.Marshal(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml or toml)")
	return cmd
}

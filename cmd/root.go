// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for csvflow.
// It implements subcommands for processing CSV files through the processing
// service, serving the browser UI and checking connectivity, using the Cobra
// CLI framework with pterm output and inline spinners.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"csvflow/cli/internal/backend"
	"csvflow/cli/internal/config"
	"csvflow/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	apiURL      string
	timeout     time.Duration

	// cfg and logger are set up by the root command before any subcommand runs.
	cfg    = config.Default()
	logger = zerolog.Nop()
)

// errReported is returned once a command has already shown its failure to
// the user; Execute exits non-zero without printing it again.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "csvflow",
	Short:         "Process CSV files with a remote processing service",
	Long:          `csvflow uploads CSV files to a processing service, which filters, transforms, aggregates or sorts them, and shows the result in the terminal or in a small web UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, loadErr := config.Load()
		if loadErr != nil && !errors.Is(loadErr, config.ErrNoConfigDir) {
			return fmt.Errorf("load config: %w", loadErr)
		}
		cfg = loaded
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if timeout > 0 {
			cfg.Timeout = timeout
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = logging.New(os.Stderr, level)
		cmd.SetContext(logger.WithContext(cmd.Context()))

		if loadErr != nil {
			logger.Debug().Err(loadErr).Msg("no config directory, using defaults and environment")
		}
		logger.Debug().Str("api_url", logging.MaskURL(cfg.APIURL)).Dur("timeout", cfg.Timeout).Msg("configuration loaded")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.Context(), cmd.OutOrStdout(), newAPI())
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// newAPI builds the processing service client from the loaded configuration.
func newAPI(opts ...backend.Option) *backend.HTTP {
	base := []backend.Option{backend.WithUserAgent("csvflow-cli/" + Version)}
	return backend.FromConfig(cfg, append(base, opts...)...)
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and processing service status")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Processing service base URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout for the processing service (default from config, 30s)")
}

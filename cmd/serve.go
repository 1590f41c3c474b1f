// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"csvflow/cli/internal/backend"
	"csvflow/cli/internal/logging"
	"csvflow/cli/internal/web"
)

var (
	listenAddr string
	maxUpload  int64
)

// serveCmd runs the browser UI until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the CSV processing web UI",
	Long: `The serve command starts a small web UI: upload a CSV file, pick an operation,
see the result and download it as CSV. Each browser session keeps its own last
result in memory. Prometheus metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := cfg.Web.Listen
		if listenAddr != "" {
			listen = listenAddr
		}
		limit := cfg.Web.MaxUpload
		if maxUpload > 0 {
			limit = maxUpload
		}

		metrics := web.NewMetrics()
		api := newAPI(backend.WithObserver(metrics.ObserveBackend))
		srv := web.New(api, logger, web.Options{
			Listen:           listen,
			MaxUpload:        limit,
			TransformDefault: cfg.TransformOp,
			RequestTimeout:   cfg.Timeout * 2,
			Metrics:          metrics,
		})

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Web UI:  ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("http://"+listen))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Service: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.MaskURL(cfg.APIURL)))
		pterm.Println()

		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().Int64Var(&maxUpload, "max-upload", 0, "Largest accepted upload in bytes (default from config, 32 MiB)")
}

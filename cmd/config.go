// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"csvflow/cli/internal/config"
	"csvflow/cli/internal/logging"
	"csvflow/cli/internal/xdg"
)

// configCmd shows the effective configuration after file, environment and flags.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		var b strings.Builder
		fmt.Fprintf(&b, "API URL:        %s\n", logging.MaskURL(cfg.APIURL))
		fmt.Fprintf(&b, "Timeout:        %s\n", cfg.Timeout)
		fmt.Fprintf(&b, "Log level:      %s\n", cfg.LogLevel)
		fmt.Fprintf(&b, "Transform:      %s\n", cfg.TransformOp)
		fmt.Fprintf(&b, "Web listen:     %s\n", cfg.Web.Listen)
		fmt.Fprintf(&b, "Web max upload: %d bytes", cfg.Web.MaxUpload)

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("csvflow configuration")).
			WithPadding(1).
			Println(b.String())
		pterm.Println()

		if dir, err := xdg.ConfigDir(); err == nil {
			pterm.Println("Config file: " + filepath.Join(dir, "config.yaml"))
		}
		pterm.Println("Environment overrides: " + config.EnvAPIURL + ", " + config.EnvLogLevel)
		pterm.Println("To change the service, run: csvflow connect URL")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

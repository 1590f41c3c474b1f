// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"csvflow/cli/internal/backend"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and processing service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		printVersion(cmd.Context(), cmd.OutOrStdout(), newAPI())
		return nil
	},
}

// printVersion prints the CLI version and whether the service answers.
func printVersion(ctx context.Context, w io.Writer, api backend.API) {
	fmt.Fprintf(w, "csvflow %s\n", Version)
	h, err := api.Health(ctx)
	if err != nil {
		fmt.Fprintln(w, "backend unreachable")
		return
	}
	if h.Service != "" {
		fmt.Fprintf(w, "backend %s (%s)\n", h.Status, h.Service)
		return
	}
	fmt.Fprintf(w, "backend %s\n", h.Status)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

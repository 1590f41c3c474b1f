// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"csvflow/cli/internal/backend"
	"csvflow/cli/internal/config"
	"csvflow/cli/internal/httperrors"
	"csvflow/cli/internal/logging"
)

// connectCmd verifies a processing service URL and saves it as the default.
var connectCmd = &cobra.Command{
	Use:   "connect URL",
	Short: "Verify and save the processing service URL",
	Long: `The connect command checks that URL answers the processing service's health
probe and saves it to the config file, so later commands use it without
--api-url.

Example: csvflow connect http://localhost:8000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.TrimRight(strings.TrimSpace(args[0]), "/")
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "❌ Invalid URL. Please use http://host:port or https://host.")
			return errReported
		}

		candidate := cfg
		candidate.APIURL = raw
		api := backend.FromConfig(candidate, backend.WithTimeout(5*time.Second), backend.WithUserAgent("csvflow-cli/"+Version))

		stop := startInlineSpinner(cmd.ErrOrStderr(), "verifying connection")
		h, err := api.Health(cmd.Context())
		stop()
		if err != nil {
			_ = httperrors.FormatNetworkError(cmd.ErrOrStderr(), err, "verifying "+u.Host, u.Host)
			return errReported
		}

		// Persist only the URL; flags given on this invocation stay out of the file.
		stored, err := config.Load()
		if err != nil {
			return err
		}
		stored.APIURL = raw
		if err := config.Save(stored); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "❌ Failed to save the configuration.")
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Connected to %s (%s)\n", logging.MaskURL(raw), h.Status)
		fmt.Fprintln(cmd.OutOrStdout(), "   You're ready to run 'csvflow process FILE'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"csvflow/cli/internal/httperrors"
	"csvflow/cli/internal/logging"
)

// healthCmd checks that the processing service answers.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the processing service",
	RunE: func(cmd *cobra.Command, args []string) error {
		host := httperrors.ExtractHostFromURL(cfg.APIURL)

		stop := startInlineSpinner(cmd.ErrOrStderr(), "checking "+host)
		h, err := newAPI().Health(cmd.Context())
		stop()
		if err != nil {
			if httperrors.IsNetworkError(err) {
				_ = httperrors.FormatNetworkError(cmd.ErrOrStderr(), err, "checking service health", host)
				return errReported
			}
			pterm.Fprintln(cmd.ErrOrStderr(), pterm.Error.Sprint(logging.PresentError("health check failed", err)))
			return errReported
		}

		msg := h.Status
		if h.Service != "" {
			msg += " (" + h.Service + ")"
		}
		pterm.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("%s is %s", logging.MaskURL(cfg.APIURL), msg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

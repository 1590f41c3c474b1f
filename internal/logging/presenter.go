// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	cferrors "csvflow/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(cferrors.Message(err)))
}

// FormatFailure renders a failed csvflow action as a short styled block: a
// title carrying the user-facing message, a hint for what to do next and,
// when details is set, the masked technical error.
func FormatFailure(err error, details bool) string {
	if err == nil {
		return ""
	}
	msg := Mask(cferrors.Message(err))

	title, hint := "Error: "+msg, ""
	switch cferrors.KindOf(err) {
	case cferrors.Validation:
		title, hint = msg, "Check the command flags and try again"
	case cferrors.DownloadFailed:
		title, hint = "Error downloading file: "+msg, "The processed result is still available; try the download again"
	case cferrors.NoResult:
		title, hint = msg, "Process a CSV file first"
	case cferrors.MalformedResponse:
		hint = "The processing service returned something csvflow could not read"
	case cferrors.Superseded:
		title = msg
	default:
		hint = "Run 'csvflow health' to check the processing service"
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("✗ " + title))
	b.WriteString("\n")
	if hint != "" {
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + hint))
		b.WriteString("\n")
	}
	if details {
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
		b.WriteString("\n")
	}
	return b.String()
}

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	cferrors "csvflow/cli/internal/errors"
	"csvflow/cli/internal/export"
	"csvflow/cli/internal/httperrors"
	"csvflow/cli/internal/logging"
	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/render"
	"csvflow/cli/internal/session"
	"csvflow/cli/internal/upload"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

var processFlags struct {
	operation   string
	column      string
	value       string
	transformOp string
	download    string
	format      string
	html        string
}

// processCmd uploads one CSV file, renders the result and optionally saves it.
var processCmd = &cobra.Command{
	Use:   "process FILE",
	Short: "Process a CSV file with the processing service",
	Long: `The process command uploads FILE to the processing service and renders the
result: stat cards for an aggregation, a table for row results.

Operations:
  view       return every row unchanged
  filter     keep rows where --column equals --value
  transform  apply --transform-op (uppercase, lowercase, trim) to --column
  aggregate  count rows per value of --column
  sort       sort rows by --column

Use --download to save the processed rows as CSV (or --format xlsx for a
spreadsheet) and --html to save the rendered result fragment.`,
	Example: `  csvflow process people.csv -o filter --column age --value 30
  csvflow process sales.csv -o aggregate --column region
  csvflow process people.csv -o sort --column name --download out/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func runProcess(ctx context.Context, stdout, stderr io.Writer, path string) error {
	format := strings.ToLower(processFlags.format)
	if format != formatCSV && format != formatXLSX {
		return fmt.Errorf("unsupported --format %q (want csv or xlsx)", processFlags.format)
	}

	op, _ := operation.Parse(processFlags.operation)
	file, closer, err := upload.Open(path)
	if err != nil {
		return report(stderr, err, "")
	}
	defer closer.Close()

	pterm.Fprintln(stdout, pterm.NewStyle(pterm.FgLightCyan).Sprint("→ File:      ")+pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(file.Name))
	pterm.Fprintln(stdout, pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Operation: ")+pterm.NewStyle(pterm.FgLightBlue).Sprint(string(op)))
	pterm.Fprintln(stdout)

	req := &operation.Request{
		File:        file,
		Operation:   op,
		Column:      processFlags.column,
		Value:       processFlags.value,
		TransformOp: processFlags.transformOp,
	}

	sess := session.New(newAPI())
	stopSpinner := startInlineSpinner(stderr, "Processing CSV file")
	out, err := sess.Submit(ctx, req)
	stopSpinner()
	if err != nil {
		return report(stderr, err, "processing "+file.Name)
	}

	if err := render.Terminal(stdout, out.Payload, out.Operation); err != nil {
		return err
	}

	if processFlags.html != "" {
		if err := os.WriteFile(processFlags.html, []byte(render.HTML(out.Payload, out.Operation)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", processFlags.html, err)
		}
		pterm.Fprintln(stdout, pterm.Success.Sprintf("Saved HTML result to %s", processFlags.html))
	}

	if processFlags.download == "" {
		return nil
	}
	saved, err := saveResult(ctx, stderr, sess, processFlags.download, format)
	if err != nil {
		return err
	}
	pterm.Fprintln(stdout, pterm.Success.Sprintf("Saved %s", saved))
	return nil
}

// saveResult writes the stored result to dest. A directory destination
// receives the timestamped file name the service download uses.
func saveResult(ctx context.Context, stderr io.Writer, sess *session.Session, dest, format string) (string, error) {
	if format == formatXLSX {
		p := sess.Latest()
		if !p.HasRowsField() {
			return "", report(stderr, cferrors.New(cferrors.NoResult, session.MsgNoData), "")
		}
		name := strings.TrimSuffix(session.FileName(time.Now()), ".csv") + ".xlsx"
		target := destination(dest, name)
		f, err := os.Create(target)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", target, err)
		}
		if err := export.WriteXLSX(f, p); err != nil {
			_ = f.Close()
			return "", err
		}
		return target, f.Close()
	}

	stop := startInlineSpinner(stderr, "Downloading CSV")
	file, err := sess.Download(ctx)
	stop()
	if err != nil {
		return "", report(stderr, err, "downloading the result")
	}
	target := destination(dest, file.Name)
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// destination resolves dest against name: an existing directory or a path
// ending in a separator gets name appended.
func destination(dest, name string) string {
	if strings.HasSuffix(dest, string(os.PathSeparator)) || strings.HasSuffix(dest, "/") {
		return filepath.Join(dest, name)
	}
	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		return filepath.Join(dest, name)
	}
	return dest
}

// report shows err to the user and returns errReported. Network failures get
// troubleshooting help; everything else gets a short failure block.
func report(w io.Writer, err error, action string) error {
	var e *cferrors.E
	if action != "" && errors.As(err, &e) && httperrors.IsNetworkError(e.Err) {
		_ = httperrors.FormatNetworkError(w, e.Err, action, httperrors.ExtractHostFromURL(cfg.APIURL))
	}
	pterm.Fprint(w, logging.FormatFailure(err, verbose))
	return errReported
}

func init() {
	rootCmd.AddCommand(processCmd)
	f := processCmd.Flags()
	f.StringVarP(&processFlags.operation, "operation", "o", string(operation.View), "Operation: view, filter, transform, aggregate or sort")
	f.StringVar(&processFlags.column, "column", "", "Column the operation applies to")
	f.StringVar(&processFlags.value, "value", "", "Value to match (filter)")
	f.StringVar(&processFlags.transformOp, "transform-op", "", "Transform to apply: uppercase, lowercase or trim (default from config)")
	f.StringVar(&processFlags.download, "download", "", "Save the processed rows to this file or directory")
	f.StringVar(&processFlags.format, "format", formatCSV, "Download format: csv (from the service) or xlsx (written locally)")
	f.StringVar(&processFlags.html, "html", "", "Save the rendered HTML result to this file")
}

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
	"csvflow/cli/internal/terminal"
)

// minCellWidth keeps narrow terminals from truncating every cell to an ellipsis.
const minCellWidth = 8

// cardsPerRow is how many stat cards share one panel row.
const cardsPerRow = 4

// Terminal writes the result to w using pterm: stat cards as boxed panels for
// an aggregation, a table for rows, an error line otherwise.
func Terminal(w io.Writer, p *result.Payload, op operation.Operation) error {
	return TerminalWidth(w, p, op, terminal.Width())
}

// TerminalWidth is Terminal with an explicit line width.
func TerminalWidth(w io.Writer, p *result.Payload, op operation.Operation, width int) error {
	v := Build(p, op)
	switch v.Kind {
	case KindAggregate:
		return writeAggregate(w, v)
	case KindRows:
		return writeRows(w, v, width)
	default:
		_, err := fmt.Fprintln(w, pterm.NewStyle(pterm.FgRed).Sprint("✗ No results found"))
		return err
	}
}

func writeAggregate(w io.Writer, v View) error {
	fmt.Fprintln(w, pterm.NewStyle(pterm.FgGreen).Sprint("✓ Aggregation completed successfully"))
	fmt.Fprintln(w)

	var panels pterm.Panels
	var line []pterm.Panel
	for _, c := range v.Cards {
		box := pterm.DefaultBox.
			WithTitle(c.Label).
			Sprint(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(c.Value))
		line = append(line, pterm.Panel{Data: box})
		if len(line) == cardsPerRow {
			panels = append(panels, line)
			line = nil
		}
	}
	if len(line) > 0 {
		panels = append(panels, line)
	}
	if len(panels) > 0 {
		out, err := pterm.DefaultPanel.WithPanels(panels).WithPadding(1).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	}

	_, err := fmt.Fprintln(w, "Total rows processed: "+strconv.Itoa(v.TotalRows))
	return err
}

func writeRows(w io.Writer, v View, width int) error {
	fmt.Fprintln(w, pterm.NewStyle(pterm.FgGreen).Sprint("✓ Processing completed successfully"))
	fmt.Fprintf(w, "Showing %d %s\n\n", v.Count, RowsLabel(v.Count))

	limit := minCellWidth
	if len(v.Header) > 0 {
		limit = max(minCellWidth, width/len(v.Header)-3)
	}

	data := make(pterm.TableData, 0, len(v.Rows)+1)
	header := make([]string, len(v.Header))
	for i, h := range v.Header {
		header[i] = terminal.Truncate(h, limit)
	}
	data = append(data, header)
	for _, row := range v.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = terminal.Truncate(c, limit)
		}
		data = append(data, cells)
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

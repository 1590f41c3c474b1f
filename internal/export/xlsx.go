// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export writes stored result rows to local spreadsheet files.
package export

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"

	"csvflow/cli/internal/result"
)

// SheetName is the worksheet that receives the rows.
const SheetName = "Results"

// ErrNoRows is returned when the payload carries no rows field.
var ErrNoRows = errors.New("result has no rows to export")

// WriteXLSX writes the payload's rows as a workbook with one sheet. The
// header row is the payload's columns, or the first row's keys.
func WriteXLSX(w io.Writer, p *result.Payload) error {
	if !p.HasRowsField() {
		return ErrNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Errorf("create header style: %w", err)
	}

	header := p.Header()
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return errors.Errorf("write header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return errors.Errorf("style header %s: %w", cell, err)
		}
	}

	for r, row := range p.Rows {
		for col, name := range header {
			raw, ok := row.Get(name)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return errors.WithStack(err)
			}
			if err := f.SetCellValue(SheetName, cell, cellValue(raw)); err != nil {
				return errors.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	if n := len(header); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(SheetName, "A", last, 15); err != nil {
			return errors.Errorf("set column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue keeps numbers and booleans typed so spreadsheets can compute on them.
func cellValue(raw json.RawMessage) any {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case 'n':
		return ""
	case 't':
		return true
	case 'f':
		return false
	case '"', '[', '{':
		return result.Literal(v)
	default:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f
		}
		return string(v)
	}
}

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package result decodes the processing API's JSON response into a Payload.
//
// A response has one of two shapes:
//
//	{"aggregation": {"<key>": <number>, ...}, "total_rows": <number>, "column": "<name>"}
//	{"rows": [{...}, ...], "columns": ["<name>", ...], "count": <number>}
//
// The body is kept verbatim so the download action can send it back unchanged.
package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Payload is one successful processing response.
type Payload struct {
	// Aggregation is nil unless the response carried an aggregation object.
	Aggregation *Object
	TotalRows   int
	// Column is the column the backend actually aggregated on, when echoed.
	Column string

	// Rows is nil when the response had no rows field.
	Rows    []Object
	hasRows bool
	// Columns is nil when the response had no columns field.
	Columns []string
	Count   int

	raw json.RawMessage
}

// Decode parses a processing response body.
func Decode(body []byte) (*Payload, error) {
	var top Object
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	p := &Payload{raw: append(json.RawMessage(nil), bytes.TrimSpace(body)...)}

	if v, ok := top.Get("aggregation"); ok && !isNull(v) {
		var agg Object
		if err := json.Unmarshal(v, &agg); err != nil {
			return nil, fmt.Errorf("decode aggregation: %w", err)
		}
		p.Aggregation = &agg
	}
	if v, ok := top.Get("total_rows"); ok && !isNull(v) {
		n, err := decodeInt(v)
		if err != nil {
			return nil, fmt.Errorf("decode total_rows: %w", err)
		}
		p.TotalRows = n
	}
	if v, ok := top.Get("column"); ok && !isNull(v) {
		p.Column = Literal(v)
	}

	if v, ok := top.Get("rows"); ok && !isNull(v) {
		var rows []Object
		if err := json.Unmarshal(v, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		if rows == nil {
			rows = []Object{}
		}
		p.Rows = rows
		p.hasRows = true
	}
	if v, ok := top.Get("columns"); ok && !isNull(v) {
		var cols []string
		if err := json.Unmarshal(v, &cols); err != nil {
			return nil, fmt.Errorf("decode columns: %w", err)
		}
		if cols == nil {
			cols = []string{}
		}
		p.Columns = cols
	}
	p.Count = len(p.Rows)
	if v, ok := top.Get("count"); ok && !isNull(v) {
		n, err := decodeInt(v)
		if err != nil {
			return nil, fmt.Errorf("decode count: %w", err)
		}
		p.Count = n
	}
	return p, nil
}

// HasRowsField reports whether the response carried a rows field at all.
// An empty rows array still counts; the backend rejects it on download.
func (p *Payload) HasRowsField() bool { return p != nil && p.hasRows }

// Header returns the table header: Columns when present, else the first row's keys.
func (p *Payload) Header() []string {
	if p.Columns != nil {
		return p.Columns
	}
	if len(p.Rows) == 0 {
		return nil
	}
	return p.Rows[0].Keys()
}

// Raw returns the response body exactly as received.
func (p *Payload) Raw() json.RawMessage { return p.raw }

// MarshalJSON returns the verbatim body so re-encoding never reorders or drops fields.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeInt(v json.RawMessage) (int, error) {
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(v)), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f >= float64(math.MaxInt) {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int(f), nil
}

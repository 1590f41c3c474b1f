// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package operation describes the processing operations csvflow can request,
// the parameters each one requires, and the multipart fields they map to.
package operation

import (
	"io"
	"strings"

	cferrors "csvflow/cli/internal/errors"
)

// Operation selects a backend transformation.
type Operation string

const (
	Filter    Operation = "filter"
	Transform Operation = "transform"
	Aggregate Operation = "aggregate"
	Sort      Operation = "sort"
	// View asks the backend for every row unchanged.
	View Operation = "view"
)

// All lists the operations offered by the selector, in display order.
var All = []Operation{Filter, Transform, Aggregate, Sort, View}

// TransformOps are the transform operations the backend understands.
var TransformOps = []string{"uppercase", "lowercase", "trim"}

// Parse maps a user-supplied name onto an Operation.
func Parse(name string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range All {
		if op == known {
			return op, true
		}
	}
	return op, false
}

// Validation messages shown to the user.
const (
	MsgNoFile        = "Please select a CSV file"
	MsgFilterMissing = "Please enter both column name and filter value"
	MsgColumnMissing = "Please enter column name"
	MsgUnknownOp     = "Please select an operation"
)

// File is the selected upload.
type File struct {
	Name   string
	Reader io.Reader
}

// Request is built fresh for every submit.
type Request struct {
	File        *File
	Operation   Operation
	Column      string
	Value       string
	TransformOp string
}

// Field is one multipart form field.
type Field struct {
	Name  string
	Value string
}

// Normalize trims the string parameters in place.
func (r *Request) Normalize() {
	r.Column = strings.TrimSpace(r.Column)
	r.Value = strings.TrimSpace(r.Value)
	r.TransformOp = strings.TrimSpace(r.TransformOp)
}

// Validate checks that the file and the operation's required fields are present.
// The returned error has kind errors.Validation and carries the user-facing message.
func (r *Request) Validate() error {
	if r.File == nil || r.File.Reader == nil {
		return cferrors.New(cferrors.Validation, MsgNoFile)
	}
	column := strings.TrimSpace(r.Column)
	switch r.Operation {
	case Filter:
		if column == "" || strings.TrimSpace(r.Value) == "" {
			return cferrors.New(cferrors.Validation, MsgFilterMissing)
		}
	case Transform, Aggregate, Sort:
		if column == "" {
			return cferrors.New(cferrors.Validation, MsgColumnMissing)
		}
	case View:
	default:
		return cferrors.New(cferrors.Validation, MsgUnknownOp)
	}
	return nil
}

// Fields returns the form fields sent alongside the file, in wire order.
// defaultTransform is used when a transform request left its operation empty.
func (r *Request) Fields(defaultTransform string) []Field {
	fields := []Field{{Name: "operation", Value: string(r.Operation)}}
	switch r.Operation {
	case Filter:
		fields = append(fields,
			Field{Name: "filter_column", Value: r.Column},
			Field{Name: "filter_value", Value: r.Value},
		)
	case Transform:
		op := r.TransformOp
		if op == "" {
			op = defaultTransform
		}
		fields = append(fields,
			Field{Name: "transform_column", Value: r.Column},
			Field{Name: "transform_operation", Value: op},
		)
	case Aggregate, Sort:
		fields = append(fields, Field{Name: "filter_column", Value: r.Column})
	}
	return fields
}

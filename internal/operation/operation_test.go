// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package operation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "csvflow/cli/internal/errors"
)

func csvFile() *File {
	return &File{Name: "people.csv", Reader: strings.NewReader("name,age\nA,30\n")}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{name: "no file", req: Request{Operation: Filter, Column: "age", Value: "30"}, wantMsg: MsgNoFile},
		{name: "filter ok", req: Request{File: csvFile(), Operation: Filter, Column: "age", Value: "30"}},
		{name: "filter missing value", req: Request{File: csvFile(), Operation: Filter, Column: "age"}, wantMsg: MsgFilterMissing},
		{name: "filter missing column", req: Request{File: csvFile(), Operation: Filter, Value: "30"}, wantMsg: MsgFilterMissing},
		{name: "filter whitespace only", req: Request{File: csvFile(), Operation: Filter, Column: "  ", Value: " "}, wantMsg: MsgFilterMissing},
		{name: "transform ok without op", req: Request{File: csvFile(), Operation: Transform, Column: "name"}},
		{name: "transform missing column", req: Request{File: csvFile(), Operation: Transform, TransformOp: "trim"}, wantMsg: MsgColumnMissing},
		{name: "aggregate ok", req: Request{File: csvFile(), Operation: Aggregate, Column: "price"}},
		{name: "aggregate missing column", req: Request{File: csvFile(), Operation: Aggregate}, wantMsg: MsgColumnMissing},
		{name: "sort missing column", req: Request{File: csvFile(), Operation: Sort}, wantMsg: MsgColumnMissing},
		{name: "view needs nothing", req: Request{File: csvFile(), Operation: View}},
		{name: "unknown operation", req: Request{File: csvFile(), Operation: "explode", Column: "x"}, wantMsg: MsgUnknownOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, cferrors.Is(err, cferrors.Validation))
			assert.Equal(t, tt.wantMsg, cferrors.Message(err))
		})
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []Field
	}{
		{
			name: "filter",
			req:  Request{Operation: Filter, Column: "age", Value: "30"},
			want: []Field{{"operation", "filter"}, {"filter_column", "age"}, {"filter_value", "30"}},
		},
		{
			name: "transform explicit",
			req:  Request{Operation: Transform, Column: "name", TransformOp: "lowercase"},
			want: []Field{{"operation", "transform"}, {"transform_column", "name"}, {"transform_operation", "lowercase"}},
		},
		{
			name: "transform default",
			req:  Request{Operation: Transform, Column: "name"},
			want: []Field{{"operation", "transform"}, {"transform_column", "name"}, {"transform_operation", "uppercase"}},
		},
		{
			name: "aggregate reuses filter_column",
			req:  Request{Operation: Aggregate, Column: "price"},
			want: []Field{{"operation", "aggregate"}, {"filter_column", "price"}},
		},
		{
			name: "sort reuses filter_column",
			req:  Request{Operation: Sort, Column: "name"},
			want: []Field{{"operation", "sort"}, {"filter_column", "name"}},
		},
		{
			name: "view sends only operation",
			req:  Request{Operation: View},
			want: []Field{{"operation", "view"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Fields("uppercase"))
		})
	}
}

func TestNormalize(t *testing.T) {
	r := Request{Column: "  age ", Value: "\t30\n", TransformOp: " trim "}
	r.Normalize()
	assert.Equal(t, "age", r.Column)
	assert.Equal(t, "30", r.Value)
	assert.Equal(t, "trim", r.TransformOp)
}

func TestParse(t *testing.T) {
	op, ok := Parse(" Filter ")
	assert.True(t, ok)
	assert.Equal(t, Filter, op)

	_, ok = Parse("merge")
	assert.False(t, ok)
}

func TestVisibleGroup(t *testing.T) {
	tests := []struct {
		selected string
		want     Group
	}{
		{"filter", GroupFilter},
		{"transform", GroupTransform},
		{"aggregate", GroupAggregate},
		{"sort", GroupSort},
		{"view", GroupNone},
		{"", GroupNone},
		{"FILTER", GroupNone},
	}
	for _, tt := range tests {
		t.Run(tt.selected, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibleGroup(tt.selected))
		})
	}
}

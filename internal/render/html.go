// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render turns a processing result into HTML or terminal output.
//
// Both renderers follow the same three branches: an aggregate operation
// renders stat cards, a result with rows renders a table followed by the
// download action, and anything else renders "No results found".
package render

import (
	"bytes"
	"html/template"
	"strings"

	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
)

// EmptyLabel stands in for an empty aggregation key.
const EmptyLabel = "(empty)"

// DefaultDownloadAction is where the download button posts in the web UI.
const DefaultDownloadAction = "/download"

// Options tunes HTML output.
type Options struct {
	// DownloadAction is the form action of the download button.
	DownloadAction string
}

// StatCard is one aggregation entry.
type StatCard struct {
	Value string
	Label string
}

// View is the renderer-neutral form of a result.
type View struct {
	Kind      Kind
	Cards     []StatCard
	TotalRows int
	Count     int
	Header    []string
	Rows      [][]string
}

// Kind names which branch a result renders as.
type Kind string

const (
	KindAggregate Kind = "aggregate"
	KindRows      Kind = "rows"
	KindEmpty     Kind = "empty"
)

// Build maps a payload onto the branch it renders as.
// An aggregate operation whose response lacks an aggregation renders empty.
func Build(p *result.Payload, op operation.Operation) View {
	if p == nil {
		return View{Kind: KindEmpty}
	}
	if op == operation.Aggregate {
		if p.Aggregation == nil {
			return View{Kind: KindEmpty}
		}
		v := View{Kind: KindAggregate, TotalRows: p.TotalRows}
		for _, key := range p.Aggregation.Keys() {
			raw, _ := p.Aggregation.Get(key)
			label := key
			if label == "" {
				label = EmptyLabel
			}
			v.Cards = append(v.Cards, StatCard{Value: result.Literal(raw), Label: label})
		}
		return v
	}
	if len(p.Rows) == 0 {
		return View{Kind: KindEmpty}
	}

	header := p.Header()
	v := View{Kind: KindRows, Count: p.Count, Header: header, Rows: make([][]string, 0, len(p.Rows))}
	for _, row := range p.Rows {
		cells := make([]string, len(header))
		for i, h := range header {
			raw, _ := row.Get(h)
			cells[i] = result.Cell(raw)
		}
		v.Rows = append(v.Rows, cells)
	}
	return v
}

// RowsLabel is "row" or "rows" for n.
func RowsLabel(n int) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}

// HTML renders the result fragment for the web UI's result section.
func HTML(p *result.Payload, op operation.Operation) template.HTML {
	return HTMLWith(p, op, Options{DownloadAction: DefaultDownloadAction})
}

// HTMLWith renders the result fragment with explicit options.
// Labels and headers go through html/template's contextual escaping; cell
// text only has < and > escaped, so entities already in the data display
// as characters.
func HTMLWith(p *result.Payload, op operation.Operation, opts Options) template.HTML {
	data := struct {
		View
		Cells          [][]template.HTML
		RowsLabel      string
		DownloadAction string
	}{
		View:           Build(p, op),
		DownloadAction: opts.DownloadAction,
	}
	data.RowsLabel = RowsLabel(data.Count)
	data.Cells = make([][]template.HTML, len(data.Rows))
	for i, row := range data.Rows {
		data.Cells[i] = make([]template.HTML, len(row))
		for j, cell := range row {
			data.Cells[i][j] = cellHTML(cell)
		}
	}

	var buf bytes.Buffer
	if err := resultTmpl.Execute(&buf, data); err != nil {
		return ErrorHTML(err.Error())
	}
	return template.HTML(buf.String())
}

var cellEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// cellHTML escapes the markup characters of a cell. Inside the title
// attribute html/template still escapes quotes.
func cellHTML(s string) template.HTML {
	return template.HTML(cellEscaper.Replace(s))
}

// ErrorHTML renders an inline error block.
func ErrorHTML(msg string) template.HTML {
	var buf bytes.Buffer
	if err := errorTmpl.Execute(&buf, msg); err != nil {
		return template.HTML(`<div class="error">Error</div>`)
	}
	return template.HTML(buf.String())
}

var resultTmpl = template.Must(template.New("result").Parse(resultHTML))

var errorTmpl = template.Must(template.New("error").Parse(`<div class="error">Error: {{.}}</div>`))

const resultHTML = `{{- if eq .Kind "aggregate" -}}
<div class="success">✓ Aggregation completed successfully</div>
<h3>Aggregation Results</h3>
<div class="result-stats">
{{- range .Cards}}
  <div class="stat-card">
    <div class="stat-value">{{.Value}}</div>
    <div class="stat-label">{{.Label}}</div>
  </div>
{{- end}}
</div>
<p class="result-info">Total rows processed: <strong>{{.TotalRows}}</strong></p>
{{- else if eq .Kind "rows" -}}
<div class="success">✓ Processing completed successfully</div>
<h3>Results</h3>
<p class="result-info">Showing <strong>{{.Count}}</strong> {{.RowsLabel}}</p>
<div class="result-table-container">
<table class="result-table"><thead><tr>
{{- range .Header}}<th>{{.}}</th>{{end -}}
</tr></thead><tbody>
{{- range .Cells}}
<tr>{{range .}}<td title="{{.}}">{{.}}</td>{{end}}</tr>
{{- end}}
</tbody></table></div>
<p class="result-info hint">💡 Scroll vertically and horizontally to view all data</p>
{{- if .DownloadAction}}
<form method="post" action="{{.DownloadAction}}" class="download-form">
  <button type="submit" class="download-button">
    <svg fill="none" stroke="currentColor" viewBox="0 0 24 24"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M4 16v1a3 3 0 003 3h10a3 3 0 003-3v-1m-4-4l-4 4m0 0l-4-4m4 4V4"></path></svg>
    Download CSV
  </button>
</form>
{{- end}}
{{- else -}}
<div class="error">No results found</div>
{{- end}}
`

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"html/template"
	"strings"

	"csvflow/cli/internal/operation"
)

// Form field names posted by the page.
const (
	fieldOperation       = "operation"
	fieldFilterColumn    = "filter_column"
	fieldFilterValue     = "filter_value"
	fieldTransformColumn = "transform_column"
	fieldTransformOp     = "transform_operation"
	fieldAggregateColumn = "aggregate_column"
	fieldSortColumn      = "sort_column"
)

type opOption struct {
	Value    string
	Label    string
	Selected bool
}

type transformOption struct {
	Value    string
	Selected bool
}

// formValues echoes what the user submitted back into the page.
type formValues struct {
	Operation       string
	FileName        string
	FilterColumn    string
	FilterValue     string
	TransformColumn string
	TransformOp     string
	AggregateColumn string
	SortColumn      string
}

type pageData struct {
	Form         formValues
	Operations   []opOption
	TransformOps []transformOption
	Visible      operation.Group
	Result       template.HTML
	Flash        string
}

func newPageData(form formValues, transformDefault string) pageData {
	if form.Operation == "" {
		form.Operation = string(operation.View)
	}
	if form.TransformOp == "" {
		form.TransformOp = transformDefault
	}

	d := pageData{Form: form, Visible: operation.VisibleGroup(form.Operation)}
	for _, op := range operation.All {
		d.Operations = append(d.Operations, opOption{
			Value:    string(op),
			Label:    strings.ToUpper(string(op[:1])) + string(op[1:]),
			Selected: string(op) == form.Operation,
		})
	}
	for _, t := range operation.TransformOps {
		d.TransformOps = append(d.TransformOps, transformOption{Value: t, Selected: t == form.TransformOp})
	}
	return d
}

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>CSV Processor</title>
<style>
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#1d1d1f}
.upload-area{border:2px dashed #c7c7cc;border-radius:12px;padding:2rem;text-align:center;cursor:pointer}
.upload-area.dragover{border-color:#007AFF;background:#f0f7ff}
.option-group{margin:1rem 0}
.option-group[hidden]{display:none}
label{display:block;margin:.5rem 0 .25rem}
input[type=text],select{padding:.5rem;border:1px solid #c7c7cc;border-radius:8px;min-width:240px}
button{background:#007AFF;color:#fff;border:0;border-radius:8px;padding:.6rem 1.2rem;cursor:pointer}
button:disabled{opacity:.5;cursor:default}
.success{color:#1e7e34;background:#e6f4ea;padding:.75rem;border-radius:8px}
.error{color:#b00020;background:#fdecea;padding:.75rem;border-radius:8px}
.loading{color:#555;padding:.75rem}
.result-stats{display:flex;flex-wrap:wrap;gap:1rem}
.stat-card{background:#f5f5f7;border-radius:10px;padding:1rem;min-width:120px;text-align:center}
.stat-value{font-size:1.5rem;font-weight:600}
.stat-label{color:#6e6e73}
.result-table-container{max-height:480px;overflow:auto;border:1px solid #e5e5ea;border-radius:8px}
.result-table{border-collapse:collapse;width:100%}
.result-table th,.result-table td{padding:.4rem .6rem;border-bottom:1px solid #e5e5ea;white-space:nowrap;max-width:240px;overflow:hidden;text-overflow:ellipsis}
.result-table th{position:sticky;top:0;background:#f5f5f7;text-align:left}
.download-button svg{width:16px;height:16px;vertical-align:middle}
</style>
</head>
<body>
<h1>CSV Processor</h1>
<form id="process-form" method="post" action="/process" enctype="multipart/form-data">
  <div id="upload-area" class="upload-area">
    <input type="file" id="csv-file" name="file" accept=".csv">
    <p id="file-name">{{if .Form.FileName}}{{.Form.FileName}}{{else}}Drop a CSV file here or click to browse{{end}}</p>
  </div>

  <label for="csv-operation">Operation</label>
  <select id="csv-operation" name="operation">
  {{- range .Operations}}
    <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
  {{- end}}
  </select>

  <div id="filter-options" class="option-group"{{if ne .Visible "filter-options"}} hidden{{end}}>
    <label for="filter-column">Column</label>
    <input type="text" id="filter-column" name="filter_column" value="{{.Form.FilterColumn}}">
    <label for="filter-value">Value</label>
    <input type="text" id="filter-value" name="filter_value" value="{{.Form.FilterValue}}">
  </div>
  <div id="transform-options" class="option-group"{{if ne .Visible "transform-options"}} hidden{{end}}>
    <label for="transform-column">Column</label>
    <input type="text" id="transform-column" name="transform_column" value="{{.Form.TransformColumn}}">
    <label for="transform-op">Transform</label>
    <select id="transform-op" name="transform_operation">
    {{- range .TransformOps}}
      <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>
    {{- end}}
    </select>
  </div>
  <div id="aggregate-options" class="option-group"{{if ne .Visible "aggregate-options"}} hidden{{end}}>
    <label for="aggregate-column">Group by column</label>
    <input type="text" id="aggregate-column" name="aggregate_column" value="{{.Form.AggregateColumn}}">
  </div>
  <div id="sort-options" class="option-group"{{if ne .Visible "sort-options"}} hidden{{end}}>
    <label for="sort-column">Sort by column</label>
    <input type="text" id="sort-column" name="sort_column" value="{{.Form.SortColumn}}">
  </div>

  <button type="submit" id="process-btn">Process CSV</button>
</form>

<div id="result-section">
{{- if .Flash}}<div class="error">{{.Flash}}</div>{{end}}
{{- .Result -}}
</div>

<script>
(function () {
  const form = document.getElementById('process-form');
  const uploadArea = document.getElementById('upload-area');
  const fileInput = document.getElementById('csv-file');
  const fileName = document.getElementById('file-name');
  const resultDiv = document.getElementById('result-section');
  const processBtn = document.getElementById('process-btn');
  const groups = {filter: 'filter-options', transform: 'transform-options', aggregate: 'aggregate-options', sort: 'sort-options'};

  function updateFileName(name) {
    fileName.textContent = name;
    fileName.style.color = '#007AFF';
  }

  uploadArea.addEventListener('click', (e) => { if (e.target !== fileInput) fileInput.click(); });
  uploadArea.addEventListener('dragover', (e) => { e.preventDefault(); uploadArea.classList.add('dragover'); });
  uploadArea.addEventListener('dragleave', () => uploadArea.classList.remove('dragover'));
  uploadArea.addEventListener('drop', (e) => {
    e.preventDefault();
    uploadArea.classList.remove('dragover');
    const files = e.dataTransfer.files;
    if (files.length > 0 && files[0].name.endsWith('.csv')) {
      fileInput.files = files;
      updateFileName(files[0].name);
    }
  });
  fileInput.addEventListener('change', (e) => {
    if (e.target.files.length > 0) updateFileName(e.target.files[0].name);
  });

  document.getElementById('csv-operation').addEventListener('change', (e) => {
    document.querySelectorAll('.option-group').forEach((g) => { g.hidden = true; });
    const id = groups[e.target.value];
    if (id) document.getElementById(id).hidden = false;
  });

  form.addEventListener('submit', async (e) => {
    e.preventDefault();
    const body = new FormData(form);
    processBtn.disabled = true;
    const previous = resultDiv.innerHTML;
    resultDiv.innerHTML = '<div class="loading">Processing CSV file</div>';
    try {
      const resp = await fetch('/process', {method: 'POST', body: body, headers: {'X-Requested-With': 'fetch'}});
      const text = await resp.text();
      if (resp.status === 422) {
        resultDiv.innerHTML = previous;
        alert(text);
      } else if (resp.status === 409) {
        resultDiv.innerHTML = previous;
      } else {
        resultDiv.innerHTML = text;
      }
    } catch (err) {
      resultDiv.innerHTML = '<div class="error"></div>';
      resultDiv.firstChild.textContent = 'Error: ' + err.message;
    } finally {
      processBtn.disabled = false;
    }
  });

  resultDiv.addEventListener('submit', async (e) => {
    if (!e.target.classList.contains('download-form')) return;
    e.preventDefault();
    try {
      const resp = await fetch(e.target.action, {method: 'POST', headers: {'X-Requested-With': 'fetch'}});
      if (!resp.ok) {
        const text = await resp.text();
        alert(resp.status === 404 ? text : 'Error downloading file: ' + text);
        return;
      }
      const blob = await resp.blob();
      const match = /filename="([^"]+)"/.exec(resp.headers.get('Content-Disposition') || '');
      const url = window.URL.createObjectURL(blob);
      const a = document.createElement('a');
      a.href = url;
      a.download = match ? match[1] : 'processed_' + new Date().getTime() + '.csv';
      document.body.appendChild(a);
      a.click();
      window.URL.revokeObjectURL(url);
      document.body.removeChild(a);
    } catch (err) {
      alert('Error downloading file: ' + err.message);
    }
  });
})();
</script>
</body>
</html>
`

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	cferrors "csvflow/cli/internal/errors"
	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/render"
	"csvflow/cli/internal/session"
	"csvflow/cli/internal/upload"
)

// Messages for upload problems caught before the controller sees the request.
const (
	MsgUploadTooLarge   = "The CSV file exceeds the upload limit"
	MsgUploadUnreadable = "Could not read the uploaded file"
)

// fragmentHeader marks requests made by the page script; they get bare
// fragments and status codes instead of a full page.
const fragmentHeader = "X-Requested-With"

func isFragment(r *http.Request) bool {
	return r.Header.Get(fragmentHeader) == "fetch"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := newPageData(formValues{}, s.transformDefault)
	if sess, ok := s.store.Get(r); ok {
		if out, ok := sess.LatestOutcome(); ok {
			data = newPageData(formValues{Operation: string(out.Operation)}, s.transformDefault)
			data.Result = render.HTML(out.Payload, out.Operation)
		}
	}
	s.writePage(w, r, http.StatusOK, data)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	sess := s.store.Ensure(w, r)

	file, err := upload.FromMultipart(r, s.maxUpload)
	form := readForm(r, file)
	if err != nil {
		log.Warn().Err(err).Msg("upload rejected")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = cferrors.Wrap(cferrors.Validation, MsgUploadTooLarge, err)
		} else {
			err = cferrors.Wrap(cferrors.Validation, MsgUploadUnreadable, err)
		}
		s.metrics.process(opLabel(form.Operation), err)
		s.processFailed(w, r, sess, form, err)
		return
	}

	req := buildRequest(form, file)
	out, err := sess.Submit(r.Context(), req)
	s.metrics.process(opLabel(form.Operation), err)
	if err != nil {
		s.processFailed(w, r, sess, form, err)
		return
	}

	fragment := render.HTML(out.Payload, out.Operation)
	if isFragment(r) {
		writeHTML(w, http.StatusOK, fragment)
		return
	}
	data := newPageData(form, s.transformDefault)
	data.Result = fragment
	s.writePage(w, r, http.StatusOK, data)
}

// processFailed answers a failed submit. Validation problems are alerts,
// a superseded submit leaves the page alone, anything else renders inline.
func (s *Server) processFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, form formValues, err error) {
	msg := cferrors.Message(err)
	kind := cferrors.KindOf(err)
	zerolog.Ctx(r.Context()).Debug().Err(err).Str("kind", string(kind)).Msg("process failed")

	if isFragment(r) {
		switch kind {
		case cferrors.Validation:
			writeText(w, http.StatusUnprocessableEntity, msg)
		case cferrors.Superseded:
			w.WriteHeader(http.StatusConflict)
		default:
			writeHTML(w, http.StatusBadGateway, render.ErrorHTML(msg))
		}
		return
	}

	data := newPageData(form, s.transformDefault)
	status := http.StatusBadGateway
	switch kind {
	case cferrors.Validation:
		status = http.StatusUnprocessableEntity
		data.Flash = msg
		data.Result = latestHTML(sess)
	case cferrors.Superseded:
		status = http.StatusOK
		data.Result = latestHTML(sess)
	default:
		data.Result = render.ErrorHTML(msg)
	}
	s.writePage(w, r, status, data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var (
		f   *session.File
		err error
	)
	sess, ok := s.store.Get(r)
	if ok {
		f, err = sess.Download(r.Context())
	} else {
		err = cferrors.New(cferrors.NoResult, session.MsgNoData)
	}
	s.metrics.download(err)

	if err == nil {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(f.Data)
		return
	}

	msg := cferrors.Message(err)
	status := http.StatusBadGateway
	flash := "Error downloading file: " + msg
	if cferrors.Is(err, cferrors.NoResult) {
		status = http.StatusNotFound
		flash = msg
	}
	zerolog.Ctx(r.Context()).Debug().Err(err).Msg("download failed")

	if isFragment(r) {
		writeText(w, status, msg)
		return
	}
	data := newPageData(formValues{}, s.transformDefault)
	if sess != nil {
		if out, ok := sess.LatestOutcome(); ok {
			data = newPageData(formValues{Operation: string(out.Operation)}, s.transformDefault)
			data.Result = render.HTML(out.Payload, out.Operation)
		}
	}
	data.Flash = flash
	s.writePage(w, r, status, data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz checks that the processing service answers its health probe.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	h, err := s.api.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": h.Status, "service": h.Service})
}

func readForm(r *http.Request, file *operation.File) formValues {
	f := formValues{
		Operation:       r.FormValue(fieldOperation),
		FilterColumn:    r.FormValue(fieldFilterColumn),
		FilterValue:     r.FormValue(fieldFilterValue),
		TransformColumn: r.FormValue(fieldTransformColumn),
		TransformOp:     r.FormValue(fieldTransformOp),
		AggregateColumn: r.FormValue(fieldAggregateColumn),
		SortColumn:      r.FormValue(fieldSortColumn),
	}
	if file != nil {
		f.FileName = file.Name
	}
	return f
}

// buildRequest picks the column input that belongs to the selected operation.
func buildRequest(f formValues, file *operation.File) *operation.Request {
	req := &operation.Request{File: file, Operation: operation.Operation(f.Operation)}
	switch req.Operation {
	case operation.Filter:
		req.Column, req.Value = f.FilterColumn, f.FilterValue
	case operation.Transform:
		req.Column, req.TransformOp = f.TransformColumn, f.TransformOp
	case operation.Aggregate:
		req.Column = f.AggregateColumn
	case operation.Sort:
		req.Column = f.SortColumn
	}
	return req
}

// opLabel bounds the operation metric label to known operations.
func opLabel(op string) string {
	if parsed, ok := operation.Parse(op); ok && string(parsed) == op {
		return op
	}
	return "unknown"
}

func latestHTML(sess *session.Session) template.HTML {
	if out, ok := sess.LatestOutcome(); ok {
		return render.HTML(out.Payload, out.Operation)
	}
	return ""
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeHTML(w http.ResponseWriter, status int, body template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

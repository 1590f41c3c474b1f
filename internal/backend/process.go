// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"gitlab.com/tozd/go/errors"

	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
)

// maxResultBytes bounds how much of a processing response is read.
const maxResultBytes = 256 << 20

// Process calls POST /api/process/csv with a multipart body holding the file
// followed by the operation fields. The request must already be validated.
func (h *HTTP) Process(ctx context.Context, req *operation.Request) (payload *result.Payload, err error) {
	defer h.track("process", time.Now(), &err)

	body, contentType, err := h.encodeProcess(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.endpoints.Process, body)
	if err != nil {
		return nil, errors.Errorf("create process request: %w", err)
	}
	h.setStandardHeaders(httpReq)
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := h.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: "process", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes))
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: read process response: %w", ErrUnavailable, err))
	}
	payload, err = result.Decode(raw)
	if err != nil {
		return nil, &MalformedError{Err: err}
	}
	return payload, nil
}

// MalformedError is returned when a 2xx processing body is not a valid result.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string { return "unexpected response: " + e.Err.Error() }
func (e *MalformedError) Unwrap() error { return e.Err }

// encodeProcess writes the multipart body: the file part first, then the
// operation fields in the order the request defines them.
func (h *HTTP) encodeProcess(req *operation.Request) (io.Reader, string, error) {
	if req == nil || req.File == nil || req.File.Reader == nil {
		return nil, "", errors.New("process request has no file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.File.Name))
	hdr.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, "", errors.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File.Reader); err != nil {
		return nil, "", errors.Errorf("read %s: %w", req.File.Name, err)
	}

	for _, f := range req.Fields(h.transformDefault) {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", errors.Errorf("write field %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", errors.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

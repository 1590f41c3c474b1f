package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"gitlab.com/tozd/go/errors"

	"csvflow/cli/internal/result"
)

// Download calls POST /api/download/csv with the payload re-encoded as JSON
// and returns the CSV body. There is no retry; one attempt per call.
func (h *HTTP) Download(ctx context.Context, payload *result.Payload) (csv []byte, err error) {
	defer h.track("download", time.Now(), &err)

	if payload == nil || len(payload.Raw()) == 0 {
		return nil, errors.New("download request has no payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.endpoints.Download, bytes.NewReader(payload.Raw()))
	if err != nil {
		return nil, errors.Errorf("create download request: %w", err)
	}
	h.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/csv, */*")

	resp, err := h.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The download endpoint guarantees no structured error; keep whatever detail there is.
		return nil, &StatusError{Endpoint: "download", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes))
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: read download body: %w", ErrUnavailable, err))
	}
	return b, nil
}

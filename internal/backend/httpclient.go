package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"csvflow/cli/internal/config"
	"csvflow/cli/internal/operation"
)

// ErrUnavailable marks transport failures: the service could not be reached
// or the connection broke before a response arrived.
var ErrUnavailable = errors.New("backend unavailable")

// ErrRejected marks a response the service answered with a non-2xx status.
// Every *StatusError unwraps to it.
var ErrRejected = errors.New("backend rejected request")

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Status   int
	// Detail is the service's `detail` message, empty when the body had none.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed: %d %s", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s failed: %d", e.Endpoint, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrRejected }

// HTTP implements API over the service's REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all requests (e.g., "http://localhost:8000")
	baseURL string
	// endpoints contains the URL paths of the service
	endpoints config.Endpoints
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// transformDefault fills an empty transform operation
	transformDefault string
	userAgent        string
	observe          func(endpoint string, elapsed time.Duration, err error)
}

var _ API = (*HTTP)(nil)

// newHTTP creates a new HTTP client with the given base URL and endpoints.
// It configures a 30-second timeout for all requests.
func newHTTP(baseURL string, endpoints config.Endpoints) *HTTP {
	return &HTTP{
		baseURL:          strings.TrimRight(baseURL, "/"),
		endpoints:        endpoints,
		client:           &http.Client{Timeout: 30 * time.Second},
		transformDefault: operation.TransformOps[0],
		userAgent:        "csvflow-cli/1.0",
	}
}

// BaseURL returns the configured service base URL.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Health calls GET /health. No authentication is involved; this is the
// connectivity check used by `csvflow health` and `--version`.
func (h *HTTP) Health(ctx context.Context) (out Health, err error) {
	defer h.track("health", time.Now(), &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+h.endpoints.Health, nil)
	if err != nil {
		return out, errors.Errorf("create health request: %w", err)
	}
	h.setStandardHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := h.do(ctx, req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, &StatusError{Endpoint: "health", Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, errors.Errorf("decode health response: %w", err)
	}
	if out.Status == "" {
		out.Status = "unknown"
	}
	return out, nil
}

func (h *HTTP) setStandardHeaders(req *http.Request) {
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
}

// do sends the request, classifying transport failures as ErrUnavailable.
func (h *HTTP) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	zerolog.Ctx(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("backend request")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Msg("backend response")
	return resp, nil
}

func (h *HTTP) track(endpoint string, start time.Time, err *error) {
	if h.observe != nil {
		h.observe(endpoint, time.Since(start), *err)
	}
}

// readDetail extracts the `detail` message from a JSON error body.
// It returns "" when the body is not JSON or carries no usable detail.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	switch d := body.Detail.(type) {
	case string:
		return strings.TrimSpace(d)
	case nil:
		return ""
	default:
		// Validation errors arrive as a list of objects; show them compactly.
		out, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(out)
	}
}

// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"time"

	"csvflow/cli/internal/config"
)

// Option customises the HTTP client.
type Option func(*HTTP)

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// WithTransformDefault sets the transform operation sent when a request leaves it empty.
func WithTransformDefault(op string) Option {
	return func(h *HTTP) {
		if op != "" {
			h.transformDefault = op
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.userAgent = ua }
}

// WithObserver registers a callback invoked after every backend call with the
// endpoint name ("process", "download", "health"), its latency and its error.
func WithObserver(fn func(endpoint string, elapsed time.Duration, err error)) Option {
	return func(h *HTTP) { h.observe = fn }
}

// New creates a backend API implementation for the given base URL and endpoints.
func New(baseURL string, endpoints config.Endpoints, opts ...Option) *HTTP {
	h := newHTTP(baseURL, endpoints)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FromConfig builds the client from loaded configuration.
func FromConfig(c config.Config, opts ...Option) *HTTP {
	base := []Option{WithTimeout(c.Timeout), WithTransformDefault(c.TransformOp)}
	return New(c.APIURL, c.Endpoints, append(base, opts...)...)
}

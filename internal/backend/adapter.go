// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for the remote CSV processing service.
// It defines the API contract csvflow depends on (process, download, health)
// and an HTTP implementation of it.
package backend

import (
	"context"

	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
)

// API defines backend operations csvflow depends on.
// Implementations may call the real service or provide fakes for tests.
type API interface {
	// Process uploads the request's file with its operation fields and
	// decodes the JSON result.
	Process(ctx context.Context, req *operation.Request) (*result.Payload, error)
	// Download posts a previously returned payload and returns the CSV body.
	Download(ctx context.Context, payload *result.Payload) ([]byte, error)
	// Health reports the service status.
	Health(ctx context.Context) (Health, error)
}

// Health is the body of the service health endpoint.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

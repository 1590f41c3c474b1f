// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"

	"csvflow/cli/internal/backend"
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{
			name: "deadline",
			err:  unavailable(context.DeadlineExceeded),
			want: ClassTimeout,
		},
		{
			name: "dns",
			err:  unavailable(&net.DNSError{Err: "no such host", Name: "csv.invalid"}),
			want: ClassDNS,
		},
		{
			name: "refused",
			err:  unavailable(&net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}),
			want: ClassConnectionRefused,
		},
		{
			name: "certificate",
			err:  unavailable(x509.UnknownAuthorityError{}),
			want: ClassTLS,
		},
		{
			name: "server",
			err:  &backend.StatusError{Endpoint: "process", Status: 503},
			want: ClassServer,
		},
		{
			name: "client rejection",
			err:  &backend.StatusError{Endpoint: "process", Status: 400, Detail: "CSV file is empty"},
			want: ClassGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNetworkError(t *testing.T) {
	if !IsNetworkError(unavailable(errors.New("eof"))) {
		t.Error("transport failure should be a network error")
	}
	if !IsNetworkError(&backend.StatusError{Status: 500}) {
		t.Error("5xx should be a network error")
	}
	if IsNetworkError(&backend.StatusError{Status: 422, Detail: "bad column"}) {
		t.Error("4xx carries its own message")
	}
	if IsNetworkError(nil) {
		t.Error("nil is not an error")
	}
}

func TestFormatNetworkErrorNamesHost(t *testing.T) {
	var buf bytes.Buffer
	refused := unavailable(&net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}})

	err := FormatNetworkError(&buf, refused, "processing people.csv", "localhost:8000")
	if err == nil || !errors.Is(err, backend.ErrUnavailable) {
		t.Fatalf("FormatNetworkError() = %v, want wrapped ErrUnavailable", err)
	}

	out := buf.String()
	for _, want := range []string{"Connection refused while processing people.csv", "localhost:8000", "--api-url"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestFormatNetworkErrorNil(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatNetworkError(&buf, nil, "x", "y"); err != nil {
		t.Errorf("FormatNetworkError(nil) = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestExtractHostFromURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:8000", "localhost:8000"},
		{"https://csv.example.com/api", "csv.example.com"},
		{"::not a url", "server"},
		{"", "server"},
	}
	for _, tt := range tests {
		if got := ExtractHostFromURL(tt.in); got != tt.want {
			t.Errorf("ExtractHostFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

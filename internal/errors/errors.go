// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure a csvflow action can end in carries a Kind, so the CLI and the
// web UI can decide between a blocking alert and an inline message without
// inspecting message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation means a required field was empty; no request was sent.
	Validation Kind = "validation"
	// ProcessFailed means the processing call failed in transport or with a non-2xx status.
	ProcessFailed Kind = "process_failed"
	// DownloadFailed means the download call failed.
	DownloadFailed Kind = "download_failed"
	// NoResult means download was attempted without a stored result.
	NoResult Kind = "no_result"
	// MalformedResponse means a 2xx body did not decode into a result.
	MalformedResponse Kind = "malformed_response"
	// Superseded means a newer submit was issued before this one completed.
	Superseded Kind = "superseded"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the human-friendly message of the first *E in err's chain,
// falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

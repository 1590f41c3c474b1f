// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session is the upload/process/download controller.
//
// A Session owns the single "last result" slot. Every Submit takes a new,
// monotonically increasing request id; a completion is stored only when its
// id is still the latest one issued, so a slow response can never overwrite
// the result of a newer submit.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"csvflow/cli/internal/backend"
	cferrors "csvflow/cli/internal/errors"
	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
)

// Messages shown to the user.
const (
	MsgNoData          = "No data to download"
	MsgProcessFailed   = "Processing failed"
	MsgDownloadFailed  = "Download failed"
	MsgMalformedResult = "Unexpected response from the processing service"
	MsgSuperseded      = "A newer request replaced this one"
)

// Outcome is a successful submit, handed to the renderer.
type Outcome struct {
	ID        uint64
	Operation operation.Operation
	Payload   *result.Payload
}

// File is a downloaded CSV ready for a client-side save.
type File struct {
	Name string
	Data []byte
}

// Session holds one user's controller state.
type Session struct {
	api backend.API
	now func() time.Time

	mu       sync.Mutex
	issued   uint64
	inflight int
	latest   *result.Payload
	latestOp operation.Operation
	latestID uint64
	changed  time.Time
}

// New creates a session talking to api.
func New(api backend.API) *Session {
	return &Session{api: api, now: time.Now}
}

// Submit validates req, sends it, and stores the result when it is still the
// latest submit. Validation failures return before any network call.
func (s *Session) Submit(ctx context.Context, req *operation.Request) (*Outcome, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := s.begin()
	defer s.end()

	log := zerolog.Ctx(ctx).With().Uint64("request_id", id).Str("operation", string(req.Operation)).Logger()
	log.Debug().Msg("submitting")

	payload, err := s.call(ctx, req)
	if err != nil {
		log.Debug().Err(err).Msg("submit failed")
		return nil, classifyProcess(err)
	}

	if !s.store(id, req.Operation, payload) {
		log.Info().Msg("discarding stale result")
		return nil, cferrors.New(cferrors.Superseded, MsgSuperseded)
	}
	return &Outcome{ID: id, Operation: req.Operation, Payload: payload}, nil
}

// call isolates the backend call so a panic while decoding still reaches the
// deferred end() in Submit and surfaces as an error.
func (s *Session) call(ctx context.Context, req *operation.Request) (p *result.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = cferrors.New(cferrors.MalformedResponse, MsgMalformedResult)
		}
	}()
	return s.api.Process(ctx, req)
}

// Download sends the stored result back to the service and returns the CSV
// with a timestamped file name. Without a stored result that has rows it
// returns a NoResult error and sends nothing.
func (s *Session) Download(ctx context.Context) (*File, error) {
	p := s.Latest()
	if p == nil || !p.HasRowsField() {
		return nil, cferrors.New(cferrors.NoResult, MsgNoData)
	}

	data, err := s.api.Download(ctx, p)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("download failed")
		return nil, classifyDownload(err)
	}
	return &File{Name: FileName(s.now()), Data: data}, nil
}

// Busy reports whether a submit is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Latest returns the stored result, or nil.
func (s *Session) Latest() *result.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// LatestOutcome returns the stored result with the operation that produced it.
func (s *Session) LatestOutcome() (*Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, false
	}
	return &Outcome{ID: s.latestID, Operation: s.latestOp, Payload: s.latest}, true
}

// LastActivity returns when the session last issued or stored anything.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.inflight++
	s.changed = s.now()
	return s.issued
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func (s *Session) store(id uint64, op operation.Operation, p *result.Payload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.issued {
		return false
	}
	s.latest = p
	s.latestOp = op
	s.latestID = id
	s.changed = s.now()
	return true
}

// FileName is the client-side save name for a download made at t.
func FileName(t time.Time) string {
	return "processed_" + strconv.FormatInt(t.UnixMilli(), 10) + ".csv"
}

func classifyProcess(err error) error {
	var se *backend.StatusError
	var me *backend.MalformedError
	switch {
	case cferrors.KindOf(err) != "":
		return err
	case errors.As(err, &se):
		msg := se.Detail
		if msg == "" {
			msg = MsgProcessFailed
		}
		return cferrors.Wrap(cferrors.ProcessFailed, msg, err)
	case errors.As(err, &me):
		return cferrors.Wrap(cferrors.MalformedResponse, MsgMalformedResult, err)
	default:
		return cferrors.Wrap(cferrors.ProcessFailed, transportMessage(err), err)
	}
}

func classifyDownload(err error) error {
	var se *backend.StatusError
	if errors.As(err, &se) {
		return cferrors.Wrap(cferrors.DownloadFailed, MsgDownloadFailed, err)
	}
	return cferrors.Wrap(cferrors.DownloadFailed, transportMessage(err), err)
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	if errors.Is(err, backend.ErrUnavailable) {
		return "Failed to reach the processing service"
	}
	return err.Error()
}

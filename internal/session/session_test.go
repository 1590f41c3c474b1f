// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvflow/cli/internal/backend"
	cferrors "csvflow/cli/internal/errors"
	"csvflow/cli/internal/operation"
	"csvflow/cli/internal/result"
)

// fakeAPI answers Process with the function configured per test.
type fakeAPI struct {
	process   func(ctx context.Context, req *operation.Request) (*result.Payload, error)
	download  func(ctx context.Context, p *result.Payload) ([]byte, error)
	processN  atomic.Int32
	downloadN atomic.Int32
}

func (f *fakeAPI) Process(ctx context.Context, req *operation.Request) (*result.Payload, error) {
	f.processN.Add(1)
	return f.process(ctx, req)
}

func (f *fakeAPI) Download(ctx context.Context, p *result.Payload) ([]byte, error) {
	f.downloadN.Add(1)
	return f.download(ctx, p)
}

func (f *fakeAPI) Health(context.Context) (backend.Health, error) {
	return backend.Health{Status: "healthy"}, nil
}

func mustPayload(t *testing.T, body string) *result.Payload {
	t.Helper()
	p, err := result.Decode([]byte(body))
	require.NoError(t, err)
	return p
}

func request(op operation.Operation, column, value string) *operation.Request {
	return &operation.Request{
		File:      &operation.File{Name: "data.csv", Reader: strings.NewReader("a,b\n1,2\n")},
		Operation: op,
		Column:    column,
		Value:     value,
	}
}

func TestSubmitValidationNeverCallsBackend(t *testing.T) {
	tests := []struct {
		name string
		req  *operation.Request
	}{
		{name: "filter without value", req: request(operation.Filter, "age", "")},
		{name: "filter without column", req: request(operation.Filter, "", "30")},
		{name: "transform without column", req: request(operation.Transform, " ", "")},
		{name: "aggregate without column", req: request(operation.Aggregate, "", "")},
		{name: "sort without column", req: request(operation.Sort, "", "")},
		{name: "no file", req: &operation.Request{Operation: operation.View}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			s := New(api)

			_, err := s.Submit(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, cferrors.Is(err, cferrors.Validation))
			assert.Equal(t, int32(0), api.processN.Load())
			assert.False(t, s.Busy())
			assert.Nil(t, s.Latest())
		})
	}
}

func TestSubmitStoresResult(t *testing.T) {
	api := &fakeAPI{process: func(_ context.Context, req *operation.Request) (*result.Payload, error) {
		assert.Equal(t, "age", req.Column)
		assert.Equal(t, "30", req.Value)
		return mustPayload(t, `{"rows":[{"name":"A","age":"30"}],"columns":["name","age"],"count":1}`), nil
	}}
	s := New(api)

	out, err := s.Submit(context.Background(), request(operation.Filter, " age ", " 30 "))
	require.NoError(t, err)
	assert.Equal(t, operation.Filter, out.Operation)
	assert.Equal(t, uint64(1), out.ID)
	assert.Same(t, out.Payload, s.Latest())
	assert.False(t, s.Busy())

	stored, ok := s.LatestOutcome()
	require.True(t, ok)
	assert.Equal(t, operation.Filter, stored.Operation)
}

func TestSubmitFailureKeepsPreviousResult(t *testing.T) {
	first := `{"rows":[{"a":"1"}],"count":1}`
	calls := 0
	api := &fakeAPI{process: func(context.Context, *operation.Request) (*result.Payload, error) {
		calls++
		if calls == 1 {
			return mustPayload(t, first), nil
		}
		return nil, &backend.StatusError{Endpoint: "process", Status: 400, Detail: "CSV file is empty"}
	}}
	s := New(api)

	_, err := s.Submit(context.Background(), request(operation.View, "", ""))
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), request(operation.View, "", ""))
	require.Error(t, err)
	assert.True(t, cferrors.Is(err, cferrors.ProcessFailed))
	assert.Equal(t, "CSV file is empty", cferrors.Message(err))
	assert.False(t, s.Busy())
	assert.Equal(t, first, string(s.Latest().Raw()))
}

func TestSubmitErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind cferrors.Kind
		wantMsg  string
	}{
		{
			name:     "status without detail",
			err:      &backend.StatusError{Endpoint: "process", Status: 500},
			wantKind: cferrors.ProcessFailed,
			wantMsg:  MsgProcessFailed,
		},
		{
			name:     "transport",
			err:      fmt.Errorf("%w: dial tcp: connection refused", backend.ErrUnavailable),
			wantKind: cferrors.ProcessFailed,
			wantMsg:  "Failed to reach the processing service",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("post: %w", context.DeadlineExceeded),
			wantKind: cferrors.ProcessFailed,
			wantMsg:  "Request timed out",
		},
		{
			name:     "malformed",
			err:      &backend.MalformedError{Err: fmt.Errorf("bad json")},
			wantKind: cferrors.MalformedResponse,
			wantMsg:  MsgMalformedResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeAPI{process: func(context.Context, *operation.Request) (*result.Payload, error) {
				return nil, tt.err
			}})
			_, err := s.Submit(context.Background(), request(operation.Sort, "name", ""))
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, cferrors.KindOf(err))
			assert.Equal(t, tt.wantMsg, cferrors.Message(err))
			assert.False(t, s.Busy())
		})
	}
}

func TestSubmitPanicClearsBusy(t *testing.T) {
	s := New(&fakeAPI{process: func(context.Context, *operation.Request) (*result.Payload, error) {
		panic("decoder blew up")
	}})

	_, err := s.Submit(context.Background(), request(operation.Sort, "name", ""))
	require.Error(t, err)
	assert.True(t, cferrors.Is(err, cferrors.MalformedResponse))
	assert.False(t, s.Busy())
}

func TestBusyWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := New(&fakeAPI{process: func(context.Context, *operation.Request) (*result.Payload, error) {
		close(started)
		<-release
		return mustPayload(t, `{"rows":[],"count":0}`), nil
	}})

	done := make(chan error)
	go func() {
		_, err := s.Submit(context.Background(), request(operation.View, "", ""))
		done <- err
	}()

	<-started
	assert.True(t, s.Busy())
	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})

	api := &fakeAPI{process: func(_ context.Context, req *operation.Request) (*result.Payload, error) {
		if req.Column == "slow" {
			close(slowStarted)
			<-slowRelease
			return mustPayload(t, `{"rows":[{"v":"old"}],"count":1}`), nil
		}
		return mustPayload(t, `{"rows":[{"v":"new"}],"count":1}`), nil
	}}
	s := New(api)

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = s.Submit(context.Background(), request(operation.Sort, "slow", ""))
	}()

	<-slowStarted
	fast, err := s.Submit(context.Background(), request(operation.Sort, "fast", ""))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fast.ID)

	close(slowRelease)
	wg.Wait()

	require.Error(t, slowErr)
	assert.True(t, cferrors.Is(slowErr, cferrors.Superseded))
	assert.Contains(t, string(s.Latest().Raw()), "new")
	assert.False(t, s.Busy())
}

func TestDownloadWithoutResult(t *testing.T) {
	api := &fakeAPI{}
	s := New(api)

	_, err := s.Download(context.Background())
	require.Error(t, err)
	assert.True(t, cferrors.Is(err, cferrors.NoResult))
	assert.Equal(t, MsgNoData, cferrors.Message(err))
	assert.Equal(t, int32(0), api.downloadN.Load())
}

func TestDownloadAfterAggregateHasNoRows(t *testing.T) {
	api := &fakeAPI{process: func(context.Context, *operation.Request) (*result.Payload, error) {
		return mustPayload(t, `{"aggregation":{"a":1},"total_rows":1}`), nil
	}}
	s := New(api)
	_, err := s.Submit(context.Background(), request(operation.Aggregate, "a", ""))
	require.NoError(t, err)

	_, err = s.Download(context.Background())
	assert.True(t, cferrors.Is(err, cferrors.NoResult))
	assert.Equal(t, int32(0), api.downloadN.Load())
}

func TestDownload(t *testing.T) {
	body := `{"rows":[{"a":"1"}],"columns":["a"],"count":1}`
	api := &fakeAPI{
		process: func(context.Context, *operation.Request) (*result.Payload, error) {
			return mustPayload(t, body), nil
		},
		download: func(_ context.Context, p *result.Payload) ([]byte, error) {
			assert.Equal(t, body, string(p.Raw()))
			return []byte("a\r\n1\r\n"), nil
		},
	}
	s := New(api)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	_, err := s.Submit(context.Background(), request(operation.View, "", ""))
	require.NoError(t, err)

	f, err := s.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "processed_1700000000123.csv", f.Name)
	assert.Equal(t, "a\r\n1\r\n", string(f.Data))
}

func TestDownloadFailure(t *testing.T) {
	api := &fakeAPI{
		process: func(context.Context, *operation.Request) (*result.Payload, error) {
			return mustPayload(t, `{"rows":[],"count":0}`), nil
		},
		download: func(context.Context, *result.Payload) ([]byte, error) {
			return nil, &backend.StatusError{Endpoint: "download", Status: 400}
		},
	}
	s := New(api)
	_, err := s.Submit(context.Background(), request(operation.View, "", ""))
	require.NoError(t, err)

	_, err = s.Download(context.Background())
	require.Error(t, err)
	assert.True(t, cferrors.Is(err, cferrors.DownloadFailed))
	assert.Equal(t, MsgDownloadFailed, cferrors.Message(err))
	assert.Equal(t, int32(1), api.downloadN.Load())
}

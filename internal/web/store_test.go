// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvflow/cli/internal/session"
)

func newSession() *session.Session { return session.New(rowsAPI(filterBody)) }

func TestStoreEnsureSetsCookie(t *testing.T) {
	st := NewStore(newSession, time.Hour)

	rec := httptest.NewRecorder()
	s := st.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, s)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	_, err := uuid.Parse(c.Value)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	again, ok := st.Get(req)
	assert.True(t, ok)
	assert.Same(t, s, again)

	rec = httptest.NewRecorder()
	assert.Same(t, s, st.Ensure(rec, req))
	assert.Empty(t, rec.Result().Cookies())
}

func TestStoreUnknownCookie(t *testing.T) {
	st := NewStore(newSession, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: uuid.NewString()})

	_, ok := st.Get(req)
	assert.False(t, ok)
}

func TestStoreSweep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	st := NewStore(newSession, time.Hour)
	st.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	st.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 1, st.Len())

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, st.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 0, st.Len())
}

func TestStoreSweepDisabled(t *testing.T) {
	st := NewStore(newSession, -1)
	st.Ensure(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 0, st.Sweep())
	assert.Equal(t, 1, st.Len())
}

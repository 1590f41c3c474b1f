// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"csvflow/cli/internal/session"
)

// CookieName holds the browser's session id.
const CookieName = "csvflow_session"

// Store maps browser session ids to controller sessions. Sessions live in
// memory only and are dropped after IdleTTL without activity.
type Store struct {
	newSession func() *session.Session
	now        func() time.Time
	idleTTL    time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	s    *session.Session
	seen time.Time
}

// NewStore creates a store. idleTTL <= 0 keeps sessions until the process exits.
func NewStore(newSession func() *session.Session, idleTTL time.Duration) *Store {
	return &Store{
		newSession: newSession,
		now:        time.Now,
		idleTTL:    idleTTL,
		sessions:   make(map[string]*entry),
	}
}

// Get returns the session named by the request cookie, if it still exists.
func (st *Store) Get(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[c.Value]
	if !ok {
		return nil, false
	}
	e.seen = st.now()
	return e.s, true
}

// Ensure returns the request's session, creating one and setting the cookie
// when the request has none.
func (st *Store) Ensure(w http.ResponseWriter, r *http.Request) *session.Session {
	if s, ok := st.Get(r); ok {
		return s
	}

	id := uuid.NewString()
	s := st.newSession()

	st.mu.Lock()
	st.sessions[id] = &entry{s: s, seen: st.now()}
	st.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the TTL, skipping any with a
// submit in flight. It returns how many were dropped.
func (st *Store) Sweep() int {
	if st.idleTTL <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idleTTL)

	st.mu.Lock()
	defer st.mu.Unlock()
	dropped := 0
	for id, e := range st.sessions {
		last := e.seen
		if a := e.s.LastActivity(); a.After(last) {
			last = a
		}
		if last.Before(cutoff) && !e.s.Busy() {
			delete(st.sessions, id)
			dropped++
		}
	}
	return dropped
}

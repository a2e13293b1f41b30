package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mahi3005/data-alchemist/pkg/engine"
)

// SessionStore holds engine sessions by ID and expires idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	engine   *engine.Engine
	now      func() time.Time
	onChange func(active int)
}

type sessionEntry struct {
	session  *engine.Session
	lastUsed time.Time
}

// NewSessionStore creates a store. ttl <= 0 disables expiry. onChange, if
// set, is called with the session count after every change.
func NewSessionStore(e *engine.Engine, ttl time.Duration, onChange func(active int)) *SessionStore {
	if onChange == nil {
		onChange = func(int) {}
	}
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		engine:   e,
		now:      time.Now,
		onChange: onChange,
	}
}

// Create registers a new empty session.
func (s *SessionStore) Create() (string, *engine.Session) {
	id := uuid.NewString()
	sess := engine.NewSession(s.engine)

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{session: sess, lastUsed: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	s.onChange(n)
	return id, sess
}

// Get returns a session and marks it used.
func (s *SessionStore) Get(id string) (*engine.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = s.now()
	return e.session, true
}

// Delete removes a session. It reports whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if ok {
		s.onChange(n)
	}
	return ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.onChange(n)
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

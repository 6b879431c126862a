package council

import (
	"sync"

	"council/internal/backend"
)

// SessionLister is the slice of the gateway the store needs.
type SessionLister interface {
	ListSessions() ([]backend.SessionSummary, error)
}

// SessionStore caches the backend's session list and tracks which session
// is current. It never fetches history itself; selection and loading are
// separate concerns. Safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	lister   SessionLister
	current  string
	sessions []backend.SessionSummary
}

// NewSessionStore builds an empty store with no current session.
func NewSessionStore(lister SessionLister) *SessionStore {
	return &SessionStore{lister: lister}
}

// RefreshList replaces the cached list from the backend and returns a copy.
// An empty result is valid; the caller decides whether that means a session
// must be created.
func (s *SessionStore) RefreshList() ([]backend.SessionSummary, error) {
	sessions, err := s.lister.ListSessions()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return append([]backend.SessionSummary(nil), sessions...), nil
}

// Select makes the given id current. It does not validate against the
// cached list; the backend is the authority and a stale id surfaces as
// NotFound on the next fetch.
func (s *SessionStore) Select(id string) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

// Current returns the current session id, or "" when none is selected.
func (s *SessionStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Sessions returns a copy of the cached list.
func (s *SessionStore) Sessions() []backend.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.SessionSummary(nil), s.sessions...)
}

// Title returns the cached title for an id, or "" when unknown.
func (s *SessionStore) Title(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ID == id {
			return session.Title
		}
	}
	return ""
}

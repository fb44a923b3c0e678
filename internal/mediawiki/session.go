package mediawiki

import "sync"

// Session tracks authentication state for a site. The workflow suspends
// while the session is invalid; a badtoken rollback response invalidates
// it and something external (re-login) restores it.
type Session struct {
	mu            sync.Mutex
	authenticated bool
}

// NewSession creates a session in the given state
func NewSession(authenticated bool) *Session {
	return &Session{authenticated: authenticated}
}

// IsAuthenticated reports whether the session is currently valid
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Invalidate marks the session invalid (forced logout)
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// Reauthenticate marks the session valid again
func (s *Session) Reauthenticate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
}

package cart

import (
	"sync"
	"time"

	"boba-kart/internal/model"

	"github.com/google/uuid"
)

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string
	Profile   *model.Profile
	Cart      Cart
	expiresAt time.Time
}

// SessionStore keeps sessions in memory with a sliding expiry. Expired
// sessions are dropped when next touched or swept.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions live for ttl after their
// last use.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the sliding session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts an empty session.
func (s *SessionStore) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &Session{ID: id, expiresAt: s.now().Add(s.ttl)}
	return id
}

// Exists reports whether id names a live session, extending it if so.
func (s *SessionStore) Exists(id string) bool {
	return s.Update(id, func(*Session) {})
}

// Update runs fn on the live session id while holding the store lock and
// extends its expiry. It reports whether the session was found.
func (s *SessionStore) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return false
	}
	fn(sess)
	sess.expiresAt = s.now().Add(s.ttl)
	return true
}

// Rotate replaces oldID with a fresh session id, carrying over the cart of
// the old session when it is still live, and runs fn on the new session.
// The old id stops working.
func (s *SessionStore) Rotate(oldID string, fn func(*Session)) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	sess := &Session{ID: id, expiresAt: s.now().Add(s.ttl)}
	if old, ok := s.live(oldID); ok {
		sess.Cart = old.Cart
		delete(s.sessions, oldID)
	}
	fn(sess)
	s.sessions[id] = sess
	return id
}

// Delete ends a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep drops every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// live must be called with s.mu held.
func (s *SessionStore) live(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

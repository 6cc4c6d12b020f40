package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie set after a successful OAuth callback.
const CookieName = "buildboard_session"

// Identity holds the profile claims consumed from the identity provider.
type Identity struct {
	Subject   string
	Name      string
	Email     string
	AvatarURL string
}

// Session binds an authenticated user to the upstream access credential
// obtained for them. The credential is attached to outbound upstream calls
// only; it is never written into a gateway response body.
type Session struct {
	ID          string
	User        Identity
	AccessToken string
	IssuedAt    time.Time
}

// Store holds active sessions, keyed by session ID. It is safe for
// concurrent use by every inbound gateway request. Sessions hard-expire
// after the configured TTL; an expired session reads as absent.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewStore creates a Store whose sessions expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Create stores a new session for the given user and credential and returns it.
func (s *Store) Create(user Identity, accessToken string) Session {
	sess := Session{
		ID:          uuid.NewString(),
		User:        user,
		AccessToken: accessToken,
		IssuedAt:    s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with the given ID, if present and unexpired.
// Expired sessions are reaped on read.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if s.now().Sub(sess.IssuedAt) > s.ttl {
		s.Delete(id)
		return Session{}, false
	}
	return sess, true
}

// Delete removes the session with the given ID. Deleting an absent session
// is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// FromRequest resolves the session cookie on r against the store.
func (s *Store) FromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	return s.Get(cookie.Value)
}

package auth

import (
	"time"

	"github.com/toolsite/server/pkg/sessionid"
	"github.com/toolsite/server/pkg/timedcache"
)

// SessionStore owns every live session in the process. Each session's TTL
// is its own Expiration field, applied as a sliding window: a successful
// Get resets the countdown. Sessions are never persisted; a restart logs
// everyone out by design.
type SessionStore struct {
	cache *timedcache.Cache[sessionid.ID, *Session]
	now   func() time.Time
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStore)

// WithStoreClock replaces the wall clock for tests. The same clock drives
// both the TTL cache and the sessions' last-used touches.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates an empty store.
func NewSessionStore(opts ...StoreOption) *SessionStore {
	s := &SessionStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = timedcache.New(
		func(_ sessionid.ID, sess *Session) time.Duration { return sess.Expiration },
		timedcache.WithClock[sessionid.ID, *Session](s.now),
	)
	return s
}

// Add inserts a new session. A session whose id is already present is an
// invalid-operation error: ids carry 256 bits of entropy, so a collision
// means something upstream is broken and must not be papered over.
func (s *SessionStore) Add(sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	if sess.ID.IsZero() {
		return ErrZeroSessionID
	}
	if !s.cache.TryAdd(sess.ID, sess) {
		return ErrDuplicateSession
	}
	return nil
}

// Get returns the live session for id, sliding its expiration window and
// touching its last-used instant. The zero id is rejected as a contract
// violation rather than treated as a miss.
func (s *SessionStore) Get(id sessionid.ID) (*Session, error) {
	if id.IsZero() {
		return nil, ErrZeroSessionID
	}

	sess, ok := s.cache.TryGet(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.touch(s.now())
	return sess, nil
}

// Destroy removes the session for id. Destroying an absent or already
// expired session is a no-op; only the zero id is an error.
func (s *SessionStore) Destroy(id sessionid.ID) error {
	if id.IsZero() {
		return ErrZeroSessionID
	}
	s.cache.TryRemove(id)
	return nil
}

// Sweep evicts expired sessions and returns the eviction count. Driven
// periodically by the background task store.
func (s *SessionStore) Sweep() int {
	return s.cache.Sweep()
}

// Len returns the number of stored sessions, including expired ones not
// yet swept.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}

package auth

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/toolsite/server/pkg/sessionid"
)

// Session binds a bearer token to a user identity for a bounded, slideable
// time window. Immutable after creation except for the last-used instant,
// which the store touches on every authenticated access.
type Session struct {
	ID        sessionid.ID
	UserID    uuid.UUID
	CreatedAt time.Time

	// Expiration is the sliding window length, fixed at creation: anonymous
	// users get the shorter configured TTL.
	Expiration time.Duration

	// IPAddress is informational only; nothing security-relevant keys off
	// it.
	IPAddress string

	// lastUsed holds unix nanoseconds. Atomic so concurrent reads can touch
	// it without coordination; near-simultaneous touches overwrite each
	// other, which is acceptable for a freshness timestamp.
	lastUsed atomic.Int64
}

// NewSession mints a session for user with a TTL chosen by account kind.
func NewSession(user *User, ip string, cfg Config) *Session {
	ttl := cfg.UserSessionTTL
	if user.IsAnonymous() {
		ttl = cfg.AnonSessionTTL
	}

	s := &Session{
		ID:         sessionid.New(),
		UserID:     user.ID,
		CreatedAt:  time.Now(),
		Expiration: ttl,
		IPAddress:  ip,
	}
	s.lastUsed.Store(s.CreatedAt.UnixNano())
	return s
}

// LastUsed returns the most recent touch instant.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// touch records an access at now.
func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

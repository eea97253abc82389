package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolsite/server/pkg/logger"
	"github.com/toolsite/server/pkg/randomname"
	"github.com/toolsite/server/pkg/sessionid"
	"github.com/toolsite/server/pkg/timedcache"
)

// provisionAttempts bounds the retries when a generated guest name happens
// to collide in the durable store.
const provisionAttempts = 5

// Service resolves user identities and issues sessions. It owns the
// process-local permission cache and the session store.
type Service struct {
	cfg      Config
	repo     Repository
	sessions *SessionStore
	perms    *timedcache.Cache[uuid.UUID, Permission]
	log      *slog.Logger

	nameMu sync.Mutex
	names  *randomname.Generator
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger; the default discards everything.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithSessionStore injects a pre-built store (tests use one with a fake
// clock).
func WithSessionStore(store *SessionStore) ServiceOption {
	return func(s *Service) { s.sessions = store }
}

// WithPermissionCache injects a pre-built permission cache.
func WithPermissionCache(cache *timedcache.Cache[uuid.UUID, Permission]) ServiceOption {
	return func(s *Service) { s.perms = cache }
}

// NewService builds the auth core. A nil repository panics: the service
// cannot function without its durable collaborator.
func NewService(cfg Config, repo Repository, opts ...ServiceOption) *Service {
	if repo == nil {
		panic("auth: nil repository")
	}

	s := &Service{
		cfg:   cfg,
		repo:  repo,
		log:   slog.New(slog.DiscardHandler),
		names: randomname.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sessions == nil {
		s.sessions = NewSessionStore()
	}
	if s.perms == nil {
		s.perms = timedcache.New(func(uuid.UUID, Permission) time.Duration {
			return s.cfg.PermissionCacheTTL
		})
	}
	return s
}

// Sessions exposes the session store for the composition root (background
// sweeping) and the HTTP surface (logout).
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// FindUser resolves a user by id from the durable store.
func (s *Service) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// FetchRolePermissions returns the user's aggregated permission mask: the
// bitwise OR across all their roles, zero for no roles. Results are cached
// per user with a fixed TTL; a cache hit does not extend the window, so a
// role change becomes visible within at most PermissionCacheTTL.
func (s *Service) FetchRolePermissions(ctx context.Context, userID uuid.UUID) (Permission, error) {
	return s.perms.PeekOrAddFunc(ctx, userID, func(ctx context.Context, id uuid.UUID) (Permission, error) {
		masks, err := s.repo.RolePermissions(ctx, id)
		if err != nil {
			return 0, err
		}

		var aggregated Permission
		for _, mask := range masks {
			aggregated |= mask
		}
		return aggregated, nil
	})
}

// SweepPermissionCache evicts expired permission entries; wired into the
// periodic background sweep.
func (s *Service) SweepPermissionCache() int {
	return s.perms.Sweep()
}

// ProvisionAnonymous creates a guest account with a generated display name
// plus a fresh anonymous session, persisting both. Name collisions in the
// durable store are retried with a new name.
func (s *Service) ProvisionAnonymous(ctx context.Context, ip string) (*User, *Session, error) {
	var user *User

	for attempt := 0; ; attempt++ {
		s.nameMu.Lock()
		name := s.names.WithSuffix()
		s.nameMu.Unlock()

		user = NewAnonymousUser(name)
		err := s.repo.InsertUser(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrUsernameTaken) || attempt+1 >= provisionAttempts {
			return nil, nil, err
		}
	}

	session, err := s.issueSession(user, ip)
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "provisioned anonymous user",
		logger.UserID(user.ID), logger.SessionID(session.ID), logger.ClientIP(ip))
	return user, session, nil
}

// Register creates a registered account and logs it straight in.
func (s *Service) Register(ctx context.Context, username, email, password, ip string) (*User, *Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.ContainsAny(username, " \t\n") {
		return nil, nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := NewRegisteredUser(username, strings.TrimSpace(email), hash)
	if err := s.repo.InsertUser(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.issueSession(user, ip)
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "registered new user",
		logger.UserID(user.ID), logger.SessionID(session.ID))
	return user, session, nil
}

// Login verifies credentials and mints a session. Failures are uniformly
// ErrInvalidCredentials so callers cannot probe for account existence.
func (s *Service) Login(ctx context.Context, login, password, ip string) (*User, *Session, error) {
	user, err := s.repo.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !verifyPassword(user, password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(user, ip)
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "user logged in",
		logger.UserID(user.ID), logger.SessionID(session.ID))
	return user, session, nil
}

// Logout destroys the session. Unknown ids are a no-op; the zero id is the
// usual contract violation.
func (s *Service) Logout(ctx context.Context, id sessionid.ID) error {
	return s.sessions.Destroy(id)
}

func (s *Service) issueSession(user *User, ip string) (*Session, error) {
	session := NewSession(user, ip, s.cfg)
	if err := s.sessions.Add(session); err != nil {
		return nil, err
	}
	return session, nil
}

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsite/server/pkg/sessionid"
	"github.com/toolsite/server/svc/auth"
)

// identitySpy records the identity the pipeline attached to the request.
type identitySpy struct {
	called bool
	id     auth.Identity
	ok     bool
}

func (s *identitySpy) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.id, s.ok = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, h http.Handler, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, v := range headers {
		req.Header.Add("Authorization", v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	t.Run("multiple authorization headers are rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		spy := &identitySpy{}
		h := svc.Authenticate(spy.handler())

		tokenA := "Bearer " + sessionid.New().String()
		tokenB := "Bearer " + sessionid.New().String()
		rec := doRequest(t, h, tokenA, tokenB)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "more than a single authorization header")
		assert.False(t, spy.called)
	})

	t.Run("no header provisions an anonymous identity", func(t *testing.T) {
		svc, _ := newTestService(t)
		spy := &identitySpy{}
		h := svc.Authenticate(spy.handler())

		rec := doRequest(t, h)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, spy.ok, "identity must be attached to the context")
		assert.True(t, spy.id.User.IsAnonymous())

		minted := rec.Header().Get(auth.SessionTokenHeader)
		require.NotEmpty(t, minted, "fresh token must be returned to the client")

		token, err := sessionid.Parse(minted)
		require.NoError(t, err)
		assert.Equal(t, spy.id.Session.ID, token)
	})

	t.Run("garbage header provisions an anonymous identity", func(t *testing.T) {
		svc, _ := newTestService(t)
		spy := &identitySpy{}
		h := svc.Authenticate(spy.handler())

		rec := doRequest(t, h, "Bearer not-a-token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, spy.id.User.IsAnonymous())
		assert.NotEmpty(t, rec.Header().Get(auth.SessionTokenHeader))
	})

	t.Run("valid token resolves the existing identity", func(t *testing.T) {
		svc, _ := newTestService(t)
		user, session, err := svc.Register(context.Background(),
			"diego", "diego@example.com", "s3cret-enough", "1.2.3.4")
		require.NoError(t, err)

		spy := &identitySpy{}
		h := svc.Authenticate(spy.handler())
		rec := doRequest(t, h, "Bearer "+session.ID.String())

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.ID, spy.id.User.ID)
		assert.Equal(t, session.ID, spy.id.Session.ID)
		assert.Empty(t, rec.Header().Get(auth.SessionTokenHeader),
			"no new token is minted for a resolved session")
	})

	t.Run("expired token falls through to a fresh anonymous identity", func(t *testing.T) {
		clock := newFakeClock()
		store := auth.NewSessionStore(auth.WithStoreClock(clock.Now))
		svc, _ := newTestService(t, auth.WithSessionStore(store))

		_, session, err := svc.ProvisionAnonymous(context.Background(), "1.2.3.4")
		require.NoError(t, err)

		clock.Advance(session.Expiration + time.Hour)

		spy := &identitySpy{}
		rec := doRequest(t, svc.Authenticate(spy.handler()), "Bearer "+session.ID.String())

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEqual(t, session.ID, spy.id.Session.ID)
		assert.NotEmpty(t, rec.Header().Get(auth.SessionTokenHeader))
	})

	t.Run("orphaned session is destroyed and replaced", func(t *testing.T) {
		repo := &orphaningRepo{MemoryRepository: auth.NewMemoryRepository()}
		svc := auth.NewService(auth.DefaultConfig(), repo)

		user, session, err := svc.ProvisionAnonymous(context.Background(), "1.2.3.4")
		require.NoError(t, err)

		// The user vanishes from the durable store while its session lives.
		repo.vanish(user.ID)

		spy := &identitySpy{}
		rec := doRequest(t, svc.Authenticate(spy.handler()), "Bearer "+session.ID.String())

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEqual(t, user.ID, spy.id.User.ID, "a fresh identity must be provisioned")
		assert.NotEmpty(t, rec.Header().Get(auth.SessionTokenHeader))

		_, err = svc.Sessions().Get(session.ID)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound, "the orphan must be destroyed")
	})

	t.Run("repository failure is a 500", func(t *testing.T) {
		repo := &failingRepo{MemoryRepository: auth.NewMemoryRepository()}
		svc := auth.NewService(auth.DefaultConfig(), repo)

		_, session, err := svc.ProvisionAnonymous(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		repo.fail = true

		spy := &identitySpy{}
		rec := doRequest(t, svc.Authenticate(spy.handler()), "Bearer "+session.ID.String())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, spy.called)
	})

	t.Run("idempotent when an identity is already attached", func(t *testing.T) {
		svc, _ := newTestService(t)
		spy := &identitySpy{}
		h := svc.Authenticate(svc.Authenticate(spy.handler()))

		rec := doRequest(t, h)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.Sessions().Len(), "the inner stage must not provision twice")
	})
}

func TestRequirePermissions(t *testing.T) {
	setup := func(t *testing.T, roles ...auth.Role) (*auth.Service, *auth.User) {
		t.Helper()
		svc, repo := newTestService(t)
		user, _, err := svc.Register(context.Background(),
			"diego", "diego@example.com", "s3cret-enough", "1.2.3.4")
		require.NoError(t, err)
		for _, role := range roles {
			repo.AddRole(role)
			repo.AssignRole(user.ID, role.ID)
		}
		return svc, user
	}

	withIdentity := func(user *auth.User) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := auth.Identity{User: user, Session: &auth.Session{UserID: user.ID}}
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
			})
		}
	}

	t.Run("missing identity is a wiring bug", func(t *testing.T) {
		svc, _ := newTestService(t)
		spy := &identitySpy{}
		rec := doRequest(t, svc.RequirePermissions(0)(spy.handler()))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, spy.called)
	})

	t.Run("zero mask admits any identity", func(t *testing.T) {
		svc, user := setup(t)
		spy := &identitySpy{}
		h := withIdentity(user)(svc.RequirePermissions(0)(spy.handler()))

		rec := doRequest(t, h)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, spy.called)
	})

	t.Run("every required bit must be granted", func(t *testing.T) {
		role := auth.Role{ID: uuid.New(), Name: "viewer", Permissions: auth.PermViewDashboard}
		svc, user := setup(t, role)

		t.Run("subset passes", func(t *testing.T) {
			spy := &identitySpy{}
			h := withIdentity(user)(svc.RequirePermissions(auth.PermViewDashboard)(spy.handler()))
			rec := doRequest(t, h)
			assert.Equal(t, http.StatusOK, rec.Code)
		})

		t.Run("one missing bit fails", func(t *testing.T) {
			spy := &identitySpy{}
			required := auth.PermViewDashboard | auth.PermAccessLedger
			h := withIdentity(user)(svc.RequirePermissions(required)(spy.handler()))
			rec := doRequest(t, h)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), "required permissions")
			assert.False(t, spy.called)
		})
	})
}

// orphaningRepo lets a test remove a user out from under its live session.
type orphaningRepo struct {
	*auth.MemoryRepository
	gone map[uuid.UUID]bool
}

func (r *orphaningRepo) vanish(id uuid.UUID) {
	if r.gone == nil {
		r.gone = make(map[uuid.UUID]bool)
	}
	r.gone[id] = true
}

func (r *orphaningRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if r.gone[id] {
		return nil, auth.ErrUserNotFound
	}
	return r.MemoryRepository.FindUserByID(ctx, id)
}

// failingRepo simulates an unreachable durable store.
type failingRepo struct {
	*auth.MemoryRepository
	fail bool
}

func (r *failingRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if r.fail {
		return nil, errors.New("store unreachable")
	}
	return r.MemoryRepository.FindUserByID(ctx, id)
}

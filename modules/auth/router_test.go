package authmodule_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodule "github.com/toolsite/server/modules/auth"
	"github.com/toolsite/server/pkg/sessionid"
	"github.com/toolsite/server/svc/auth"
)

func newServer(t *testing.T) (*httptest.Server, *auth.Service) {
	t.Helper()
	svc := auth.NewService(auth.DefaultConfig(), auth.NewMemoryRepository())
	srv := httptest.NewServer(authmodule.Router(svc))
	t.Cleanup(srv.Close)
	return srv, svc
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, payload)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, raw
}

func TestRouter_Session(t *testing.T) {
	srv, _ := newServer(t)

	t.Run("first contact provisions a guest", func(t *testing.T) {
		resp, raw := call(t, srv, http.MethodGet, "/session", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got authmodule.SessionResponse
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.True(t, got.Anonymous)
		assert.NotEmpty(t, got.Username)

		token := resp.Header.Get(auth.SessionTokenHeader)
		require.NotEmpty(t, token)
		_, err := sessionid.Parse(token)
		assert.NoError(t, err)
	})

	t.Run("token round-trips to the same identity", func(t *testing.T) {
		resp, raw := call(t, srv, http.MethodGet, "/session", "", nil)
		token := resp.Header.Get(auth.SessionTokenHeader)
		require.NotEmpty(t, token)

		var first authmodule.SessionResponse
		require.NoError(t, json.Unmarshal(raw, &first))

		resp2, raw2 := call(t, srv, http.MethodGet, "/session", token, nil)
		require.Equal(t, http.StatusOK, resp2.StatusCode)
		assert.Empty(t, resp2.Header.Get(auth.SessionTokenHeader))

		var second authmodule.SessionResponse
		require.NoError(t, json.Unmarshal(raw2, &second))
		assert.Equal(t, first.UserID, second.UserID)
	})
}

func TestRouter_RegisterLoginLogout(t *testing.T) {
	srv, svc := newServer(t)

	// Establish a guest session first, as a browser would.
	resp, _ := call(t, srv, http.MethodGet, "/session", "", nil)
	guestToken := resp.Header.Get(auth.SessionTokenHeader)
	require.NotEmpty(t, guestToken)

	var userToken string

	t.Run("register upgrades the session", func(t *testing.T) {
		resp, raw := call(t, srv, http.MethodPost, "/register", guestToken, authmodule.RegisterRequest{
			Username: "diego",
			Email:    "diego@example.com",
			Password: "s3cret-enough",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var got authmodule.SessionResponse
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.False(t, got.Anonymous)
		assert.Equal(t, "diego", got.Username)

		userToken = resp.Header.Get(auth.SessionTokenHeader)
		require.NotEmpty(t, userToken)
		assert.NotEqual(t, guestToken, userToken)

		// The guest session it replaced is gone.
		guestID, err := sessionid.Parse(guestToken)
		require.NoError(t, err)
		_, err = svc.Sessions().Get(guestID)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		resp, _ := call(t, srv, http.MethodPost, "/register", userToken, authmodule.RegisterRequest{
			Username: "other",
			Email:    "other@example.com",
			Password: "short",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		resp, _ := call(t, srv, http.MethodPost, "/register", userToken, authmodule.RegisterRequest{
			Username: "diego",
			Email:    "again@example.com",
			Password: "s3cret-enough",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("logout destroys the session", func(t *testing.T) {
		resp, _ := call(t, srv, http.MethodPost, "/logout", userToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		id, err := sessionid.Parse(userToken)
		require.NoError(t, err)
		_, err = svc.Sessions().Get(id)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})

	t.Run("login with the registered credentials", func(t *testing.T) {
		resp, raw := call(t, srv, http.MethodPost, "/login", "", authmodule.CredentialsRequest{
			Login:    "diego@example.com",
			Password: "s3cret-enough",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got authmodule.SessionResponse
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "diego", got.Username)
		assert.NotEmpty(t, resp.Header.Get(auth.SessionTokenHeader))
	})

	t.Run("bad credentials are uniform", func(t *testing.T) {
		resp, _ := call(t, srv, http.MethodPost, "/login", "", authmodule.CredentialsRequest{
			Login:    "diego",
			Password: "wrong-password",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = call(t, srv, http.MethodPost, "/login", "", authmodule.CredentialsRequest{
			Login:    "nobody",
			Password: "wrong-password",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/login", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

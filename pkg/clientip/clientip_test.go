package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolsite/server/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:51234"
		assert.Equal(t, "203.0.113.7", clientip.FromRequest(r))
	})

	t.Run("x-forwarded-for single", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.2")
		assert.Equal(t, "198.51.100.2", clientip.FromRequest(r))
	})

	t.Run("x-forwarded-for chain uses first hop", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1, 10.0.0.2")
		assert.Equal(t, "198.51.100.2", clientip.FromRequest(r))
	})

	t.Run("x-real-ip fallback", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "198.51.100.9")
		assert.Equal(t, "198.51.100.9", clientip.FromRequest(r))
	})

	t.Run("garbage header falls through to remote addr", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "not-an-ip")
		r.RemoteAddr = "203.0.113.7:51234"
		assert.Equal(t, "203.0.113.7", clientip.FromRequest(r))
	})

	t.Run("ipv6", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "[2001:db8::1]:443"
		assert.Equal(t, "2001:db8::1", clientip.FromRequest(r))
	})

	t.Run("nothing parsable", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "garbage"
		assert.Equal(t, "", clientip.FromRequest(r))
	})
}

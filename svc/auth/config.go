package auth

import "time"

// Config holds the auth core's tunables. TTLs are constructor inputs, never
// hardcoded in the components that apply them.
type Config struct {
	// AnonSessionTTL is the sliding expiration window of guest sessions.
	AnonSessionTTL time.Duration `env:"AUTH_ANON_SESSION_TTL" envDefault:"24h"`

	// UserSessionTTL is the sliding expiration window of registered-user
	// sessions.
	UserSessionTTL time.Duration `env:"AUTH_USER_SESSION_TTL" envDefault:"168h"`

	// PermissionCacheTTL bounds how stale an aggregated permission mask may
	// be after a role change. Fixed window, not sliding.
	PermissionCacheTTL time.Duration `env:"AUTH_PERMISSION_CACHE_TTL" envDefault:"5m"`
}

// DefaultConfig returns the defaults documented on Config.
func DefaultConfig() Config {
	return Config{
		AnonSessionTTL:     24 * time.Hour,
		UserSessionTTL:     7 * 24 * time.Hour,
		PermissionCacheTTL: 5 * time.Minute,
	}
}

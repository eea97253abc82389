package auth

import (
	"time"

	"github.com/google/uuid"
)

// UserKind distinguishes auto-provisioned guests from registered accounts.
type UserKind int

const (
	// KindAnonymous is a guest account with no credentials. It exists only
	// to give an unauthenticated visitor a stable session-scoped identity.
	KindAnonymous UserKind = iota
	// KindRegistered is an account with a password hash that can log in
	// again after its sessions expire.
	KindRegistered
)

// User is the identity subset the auth core works with. The anonymous vs
// registered distinction is fixed at construction; there is no nullable
// password field for call sites to probe.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	EmailConfirmed bool
	CreatedAt      time.Time

	kind         UserKind
	passwordHash []byte
}

// NewAnonymousUser creates a guest account with a generated display name.
func NewAnonymousUser(username string) *User {
	return &User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now(),
		kind:      KindAnonymous,
	}
}

// NewRegisteredUser creates an account that owns a password hash. The hash
// must come from HashPassword; an empty hash panics because it would create
// a registered account nobody can log into.
func NewRegisteredUser(username, email string, passwordHash []byte) *User {
	if len(passwordHash) == 0 {
		panic("auth: registered user requires a password hash")
	}
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		CreatedAt:    time.Now(),
		kind:         KindRegistered,
		passwordHash: passwordHash,
	}
}

// RestoreUser rebuilds a User from durable storage. A nil or empty password
// hash restores an anonymous account; anything else a registered one. This
// is the single place where stored hash presence maps onto the kind
// variant.
func RestoreUser(id uuid.UUID, username, email string, emailConfirmed bool, createdAt time.Time, passwordHash []byte) *User {
	u := &User{
		ID:             id,
		Username:       username,
		Email:          email,
		EmailConfirmed: emailConfirmed,
		CreatedAt:      createdAt,
	}
	if len(passwordHash) > 0 {
		u.kind = KindRegistered
		u.passwordHash = passwordHash
	}
	return u
}

// Kind returns the account variant.
func (u *User) Kind() UserKind {
	return u.kind
}

// IsAnonymous reports whether u is a guest account.
func (u *User) IsAnonymous() bool {
	return u.kind == KindAnonymous
}

// PasswordHash returns the stored hash for persistence. Anonymous users
// report false.
func (u *User) PasswordHash() ([]byte, bool) {
	if u.kind != KindRegistered {
		return nil, false
	}
	return u.passwordHash, true
}

package auth

import "errors"

var (
	// ErrNilSession indicates a nil session passed where a value is required.
	ErrNilSession = errors.New("auth.nil_session")

	// ErrZeroSessionID indicates the reserved "no session" sentinel was used
	// as a store key. This is a programming-contract violation, never a
	// user-triggered condition.
	ErrZeroSessionID = errors.New("auth.zero_session_id")

	// ErrDuplicateSession indicates an insert for an already-stored session
	// id. With 256-bit random ids this means an RNG or duplication bug and
	// must propagate loudly.
	ErrDuplicateSession = errors.New("auth.duplicate_session")

	// ErrSessionNotFound indicates no live session for the given id.
	ErrSessionNotFound = errors.New("auth.session_not_found")

	// ErrUserNotFound indicates the durable store has no such user.
	ErrUserNotFound = errors.New("auth.user_not_found")

	// ErrUsernameTaken indicates an insert conflicting on username.
	ErrUsernameTaken = errors.New("auth.username_taken")

	// ErrEmailTaken indicates an insert conflicting on email.
	ErrEmailTaken = errors.New("auth.email_taken")

	// ErrInvalidCredentials indicates a failed login attempt. Deliberately
	// coarse: it does not reveal whether the account exists.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	// ErrInvalidUsername indicates a registration with an unusable username.
	ErrInvalidUsername = errors.New("auth.invalid_username")

	// ErrWeakPassword indicates a registration password below the minimum
	// length.
	ErrWeakPassword = errors.New("auth.weak_password")
)

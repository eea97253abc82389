package sessionid

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

// Size is the length of an ID in bytes (256 bits).
const Size = 32

// encodedLen is the length of the canonical Base64 form: 44 characters
// including the trailing padding byte.
const encodedLen = 44

// ErrInvalidFormat is returned by Parse for input that is not a Base64
// encoding of exactly Size bytes.
var ErrInvalidFormat = errors.New("sessionid.invalid_format")

// bearerPrefix is the authorization scheme accepted by
// FromAuthorizationHeader.
const bearerPrefix = "Bearer "

// ID is an opaque 256-bit session token. The zero value is the reserved
// "no session" sentinel. IDs are comparable and usable as map keys.
type ID [Size]byte

// New returns a fresh ID filled from the process CSPRNG.
//
// crypto/rand.Read is documented to never fail on supported platforms; a
// failure here means the platform random source is broken and there is no
// meaningful way to continue issuing sessions, so New panics instead of
// returning an error.
func New() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic("sessionid: crypto/rand unavailable: " + err.Error())
	}
	return id
}

// IsZero reports whether id is the reserved "no session" sentinel.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Equal reports whether two IDs hold the same bytes without leaking the
// position of the first differing byte through timing.
func (id ID) Equal(other ID) bool {
	return subtle.ConstantTimeCompare(id[:], other[:]) == 1
}

// String returns the canonical Base64 form of the ID.
func (id ID) String() string {
	return base64.StdEncoding.EncodeToString(id[:])
}

// Parse decodes the canonical Base64 form produced by String. Any deviation
// (wrong length, invalid alphabet, empty input) yields ErrInvalidFormat.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != encodedLen {
		return ID{}, ErrInvalidFormat
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) != Size {
		return ID{}, ErrInvalidFormat
	}

	copy(id[:], raw)
	return id, nil
}

// TryParse is the non-throwing variant of Parse for call sites that treat
// malformed input as "no session". It never returns an error; failure is
// reported through the boolean with a zero ID.
func TryParse(s string) (ID, bool) {
	id, err := Parse(s)
	if err != nil {
		return ID{}, false
	}
	return id, true
}

// MustParse parses s and panics on malformed input. Intended for tests and
// static fixtures only.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic("sessionid: " + err.Error() + ": " + s)
	}
	return id
}

// FromAuthorizationHeader extracts a session ID from an HTTP Authorization
// header value of the form "Bearer <base64>". The scheme match is strict:
// a single "Bearer " prefix followed by exactly one canonical token. Any
// other shape reports false so the caller can fall back to the anonymous
// path.
func FromAuthorizationHeader(header string) (ID, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return ID{}, false
	}
	return TryParse(token)
}

// MarshalText implements encoding.TextMarshaler using the canonical Base64
// form, making IDs round-trip cleanly through JSON payloads.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

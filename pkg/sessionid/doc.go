// Package sessionid implements the opaque bearer token that identifies a
// browsing session.
//
// An ID is a fixed 256-bit value generated from a cryptographically secure
// random source. Its canonical text form is standard Base64 (44 characters,
// padded), which is what travels in the Authorization header as
// "Bearer <token>".
//
// The zero value is reserved: it means "no session" and is never a valid
// store key. Components that accept an ID as a lookup key must reject the
// zero value instead of treating it as just another token.
//
// # Usage
//
//	id := sessionid.New()
//	s := id.String()               // wire form
//	back, err := sessionid.Parse(s)
//
//	if tok, ok := sessionid.FromAuthorizationHeader(header); ok {
//	    // tok came from a well-formed "Bearer ..." value
//	}
//
// Parse returns ErrInvalidFormat for anything that is not exactly a
// Base64-encoded 32-byte value. TryParse is the non-throwing variant for
// call sites that want to treat malformed input as "no session".
package sessionid

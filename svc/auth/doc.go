// Package auth is the session/authentication core of the toolsite server.
//
// It binds bearer session tokens to user identities, provisions anonymous
// guest accounts transparently, aggregates role permissions into a bitmask,
// and exposes the two request-pipeline stages that mediate every API call:
// Authenticate and RequirePermissions.
//
// # Model
//
// A Session is a server-side record keyed by an opaque 256-bit token
// (pkg/sessionid). Sessions are held only in process memory with a sliding
// expiration window: every authenticated access resets the countdown. A
// process restart therefore invalidates all sessions; this is a deliberate
// single-instance design, not an oversight.
//
// A User is either anonymous or registered; the distinction is a type-level
// variant chosen at construction, not a nullable password field checked at
// call sites. Anonymous users get shorter-lived sessions and a generated
// display name.
//
// Effective permissions are the bitwise OR of the masks of all roles the
// user belongs to, cached per user with a fixed (non-sliding) TTL so
// staleness after a role change is bounded by configuration.
//
// # Request pipeline
//
//	r.Use(svc.Authenticate)
//	r.With(svc.RequirePermissions(auth.PermAccessLedger)).Get("/ledger", h)
//
// Authenticate resolves the Authorization header to a (user, session) pair
// and stashes it in the request context, minting a fresh anonymous identity
// when the request carries no usable token. RequirePermissions runs strictly
// after it and checks the aggregated mask against a required one.
package auth

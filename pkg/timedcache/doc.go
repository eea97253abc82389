// Package timedcache provides a generic in-memory key-value cache with
// per-entry, policy-defined expiration.
//
// Unlike a fixed-TTL cache, the timeout of every entry is computed by a
// Policy function supplied at construction, so a value can carry its own
// lifetime (a session knows its own expiration) while another cache of the
// same shape uses a flat TTL.
//
// Entries are evicted lazily: an expired entry is removed the moment a read
// observes it. Callers that want bounded memory without read traffic should
// additionally drive Sweep from a periodic background task.
//
// Reads that hit refresh the entry's last-touched timestamp (sliding
// expiration); the Peek variants perform the same expiry check without
// extending the window.
//
// # Concurrency
//
// All methods are safe for concurrent use. Operations on different keys do
// not serialize against each other beyond a short critical section on the
// backing map. Two concurrent GetOrAdd calls for the same missing or expired
// key may both invoke the factory; the last write wins. This is a documented
// relaxation, not single-flight: callers that cannot afford a duplicated
// factory run must add their own per-key exclusion on top.
package timedcache

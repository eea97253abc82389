package timedcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Policy computes the lifetime of a cached entry. It is evaluated on every
// expiry check, so it may derive the timeout from the value itself.
type Policy[K comparable, V any] func(key K, value V) time.Duration

type entry[V any] struct {
	value V
	// touched holds the last-touched instant as unix nanoseconds. Atomic so
	// that concurrent reads can slide the window without holding the write
	// lock; near-simultaneous touches simply overwrite each other.
	touched atomic.Int64
}

// Cache is a thread-safe key-value store with per-entry expiration.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[V]
	policy  Policy[K, V]
	now     func() time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces the wall clock, letting tests control entry aging.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.now = now
	}
}

// New creates a Cache whose entry lifetimes are computed by policy.
// A nil policy panics: a cache without a timeout function has no meaning.
func New[K comparable, V any](policy Policy[K, V], opts ...Option[K, V]) *Cache[K, V] {
	if policy == nil {
		panic("timedcache: nil policy")
	}

	c := &Cache[K, V]{
		entries: make(map[K]*entry[V]),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TryGet returns the live value for key and slides its expiration window.
// An expired entry is evicted and reported as absent.
func (c *Cache[K, V]) TryGet(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if c.expired(key, e) {
		c.evict(key, e)
		var zero V
		return zero, false
	}

	e.touched.Store(c.now().UnixNano())
	return e.value, true
}

// Peek returns the live value for key without refreshing its expiration
// window. The expiry check and lazy eviction are identical to TryGet.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if c.expired(key, e) {
		c.evict(key, e)
		var zero V
		return zero, false
	}

	return e.value, true
}

// TryAdd inserts value under key. It reports false without replacing
// anything if an entry for key still physically exists, even one that is
// logically expired but not yet evicted. Lazy eviction or Sweep frees the
// slot.
func (c *Cache[K, V]) TryAdd(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		return false
	}

	c.entries[key] = c.newEntry(value)
	return true
}

// TryRemove deletes the entry for key and returns its value. Removing an
// absent key reports false.
func (c *Cache[K, V]) TryRemove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	delete(c.entries, key)
	return e.value, true
}

// GetOrAdd returns the live value for key, sliding its window, or computes
// one via factory and stores it. The factory runs without any cache lock
// held; concurrent callers for the same key may each run it, last write
// wins.
func (c *Cache[K, V]) GetOrAdd(key K, factory func(K) V) V {
	if v, ok := c.TryGet(key); ok {
		return v
	}

	value := factory(key)
	c.set(key, value)
	return value
}

// PeekOrAdd behaves like GetOrAdd but a cache hit does not refresh the
// entry's expiration window, keeping the staleness bound fixed rather than
// sliding.
func (c *Cache[K, V]) PeekOrAdd(key K, factory func(K) V) V {
	if v, ok := c.Peek(key); ok {
		return v
	}

	value := factory(key)
	c.set(key, value)
	return value
}

// GetOrAddFunc is the suspending variant of GetOrAdd for factories that hit
// a backing store. A factory error is returned as-is and nothing is cached.
// Cancellation aborts only the caller's factory run; a concurrent run that
// completes may still land its result in the cache.
func (c *Cache[K, V]) GetOrAddFunc(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error) {
	if v, ok := c.TryGet(key); ok {
		return v, nil
	}

	value, err := factory(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.set(key, value)
	return value, nil
}

// PeekOrAddFunc is the suspending variant of PeekOrAdd.
func (c *Cache[K, V]) PeekOrAddFunc(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error) {
	if v, ok := c.Peek(key); ok {
		return v, nil
	}

	value, err := factory(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.set(key, value)
	return value, nil
}

// Sweep removes every logically expired entry in one pass and returns the
// number of evictions. Intended to be driven by a periodic background task.
func (c *Cache[K, V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, e := range c.entries {
		if now.Sub(time.Unix(0, e.touched.Load())) > c.policy(key, e.value) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[V])
}

func (c *Cache[K, V]) newEntry(value V) *entry[V] {
	e := &entry[V]{value: value}
	e.touched.Store(c.now().UnixNano())
	return e
}

// set unconditionally stores value under key, replacing whatever landed
// there in the meantime.
func (c *Cache[K, V]) set(key K, value V) {
	e := c.newEntry(value)
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *Cache[K, V]) expired(key K, e *entry[V]) bool {
	return c.now().Sub(time.Unix(0, e.touched.Load())) > c.policy(key, e.value)
}

// evict removes an entry observed as expired. The pointer comparison guards
// against deleting a fresh entry written for the same key after the expiry
// check.
func (c *Cache[K, V]) evict(key K, observed *entry[V]) {
	c.mu.Lock()
	if current, ok := c.entries[key]; ok && current == observed {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

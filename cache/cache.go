// Package cache provides a small in-memory TTL cache whose population is
// single-flighted: concurrent first requests for the same key run the
// compute callback once and share its result.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	mu sync.Mutex
	// populated under mu
	value   any
	err     error
	expires time.Time
	valid   bool
}

// Cache is safe for concurrent use.
type Cache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// GetOrCompute returns the cached value for key, running compute to
// populate it when absent or expired. Only one caller computes per key;
// the rest block on the same entry and observe the computed result.
// A compute error is not cached.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && time.Now().Before(e.expires) {
		return e.value, e.err
	}
	value, err := compute()
	if err != nil {
		e.valid = false
		return nil, err
	}
	e.value = value
	e.err = nil
	e.expires = time.Now().Add(c.ttl)
	e.valid = true
	return value, nil
}

// Invalidate drops a key so the next access recomputes it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

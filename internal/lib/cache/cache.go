// Package cache is a small keyed in-memory cache with optional per-entry expiry.
//
// Entries never leave the map on their own: an expired entry is skipped by Get
// but stays reachable through Peek until it is overwritten or the cache is
// cleared, so callers can still fall back to stale data.
package cache

import (
	"sort"
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
	expires  time.Time // zero means no expiry
	hits     int
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	now     func() time.Time
}

type Option[V any] func(*Cache[V])

// WithClock replaces time.Now, mostly for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]*entry[V]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a live entry and counts the hit.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	e.hits++
	return e.value, true
}

// Peek returns the stored value even if it has expired.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry. A non-positive ttl
// keeps the entry until it is cleared.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	now := c.now()
	e := &entry[V]{value: value, storedAt: now}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry at once and reports how many were dropped.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*entry[V])
	return n
}

type EntryStat[V any] struct {
	Key      string
	Value    V
	Hits     int
	StoredAt time.Time
}

type Stats[V any] struct {
	Total   int
	Active  int
	Expired int
	Top     []EntryStat[V]
}

// Stats counts live and expired entries and lists the topN most hit ones
// (ties broken by key).
func (c *Cache[V]) Stats(topN int) Stats[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	stats := Stats[V]{Total: len(c.entries)}
	all := make([]EntryStat[V], 0, len(c.entries))
	for key, e := range c.entries {
		if e.expired(now) {
			stats.Expired++
		} else {
			stats.Active++
		}
		all = append(all, EntryStat[V]{Key: key, Value: e.value, Hits: e.hits, StoredAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Hits != all[j].Hits {
			return all[i].Hits > all[j].Hits
		}
		return all[i].Key < all[j].Key
	})
	if topN >= 0 && len(all) > topN {
		all = all[:topN]
	}
	stats.Top = all
	return stats
}

package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default cache bounds. A measurement is usually polled for well under a
// minute, so entries do not need to outlive that by much.
const (
	DefaultSize = 256
	DefaultTTL  = 2 * time.Minute
)

// Entry is the last body seen for a URL and the entity tag it came with.
type Entry struct {
	ETag string
	Body []byte
}

// ETagCache remembers response bodies by key so conditional requests can
// reuse them on 304. It is bounded in size and age and safe for concurrent
// use.
type ETagCache struct {
	lru *expirable.LRU[string, Entry]
}

// NewETagCache creates a cache holding at most size entries for ttl each.
// Non-positive arguments fall back to the defaults.
func NewETagCache(size int, ttl time.Duration) *ETagCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ETagCache{lru: expirable.NewLRU[string, Entry](size, nil, ttl)}
}

// Get returns the cached entry for key.
func (c *ETagCache) Get(key string) (Entry, bool) {
	return c.lru.Get(key)
}

// Put stores an entry. Entries without an entity tag are useless for
// revalidation and are dropped.
func (c *ETagCache) Put(key string, e Entry) {
	if e.ETag == "" {
		c.lru.Remove(key)
		return
	}
	c.lru.Add(key, e)
}

// Remove forgets key, typically once a measurement has finished.
func (c *ETagCache) Remove(key string) {
	c.lru.Remove(key)
}

// Len reports how many entries are live.
func (c *ETagCache) Len() int {
	return c.lru.Len()
}

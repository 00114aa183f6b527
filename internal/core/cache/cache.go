// Package cache keeps decoded pools in memory so that repeated loads of the same
// chunk skip decompression.
package cache

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dcrodman/hodpool/internal/pool"
)

// Cache is an instance of a key-value store with contents specific to
// each instance and are not shared between instances.
type Cache struct {
	cacheInstance *gocache.Cache
}

type entry struct {
	typ      uint32
	name     string
	segments [pool.NumKinds]pool.Segment
}

// New creates a cache whose entries expire after ttl. A ttl of 0 or less keeps
// entries until they are deleted.
func New(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cache{cacheInstance: gocache.New(ttl, cleanupInterval)}
}

// Key derives a cache key from the raw bytes of a pool chunk.
func Key(raw []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}

// Put stores the decoded segments of b under key.
func (c *Cache) Put(key string, b *pool.Bundle) {
	c.cacheInstance.SetDefault(key, entry{typ: b.Type, name: b.Name, segments: b.Segments()})
}

// Get returns a new bundle over the cached segments of key, with its own cursors,
// and whether the key was found.
func (c *Cache) Get(key string) (*pool.Bundle, bool) {
	v, ok := c.cacheInstance.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	b := pool.NewBundle(e.typ, e.segments)
	b.Name = e.name
	return b, true
}

// Delete evicts key.
func (c *Cache) Delete(key string) {
	c.cacheInstance.Delete(key)
}

// Len returns the number of cached pools, including any that have expired but
// not yet been purged.
func (c *Cache) Len() int {
	return c.cacheInstance.ItemCount()
}

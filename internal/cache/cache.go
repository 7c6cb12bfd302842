// Package cache fronts the feed queries with a key-value cache. The backing
// store is swappable (durable Mongo collection or process-local map); callers
// never learn which is in use. Every backing-store failure degrades to a
// cache miss or a dropped write, so the cache can never fail a request.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pulsegram/backend/pkg/logger"
)

// Store is the backing key-value capability. Entries are set-with-ttl or
// deleted, never updated in place.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every entry whose key starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Cache wraps a Store with fail-open semantics and a read-through helper.
type Cache struct {
	store Store
	group singleflight.Group
}

// New creates a Cache over the given store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the cached value, treating any store error as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Log.Warnf("cache get failed for %s, treating as miss: %v", key, err)
		return nil, false
	}
	return value, ok
}

// SetWithTTL stores a value, dropping the write on store errors.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		logger.Log.Warnf("cache set failed for %s, dropping write: %v", key, err)
	}
}

// Delete removes one entry, ignoring store errors.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		logger.Log.Warnf("cache delete failed for %s: %v", key, err)
	}
}

// DeleteByPrefix removes all entries under prefix, ignoring store errors.
// Stale entries left behind expire via their TTL.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) {
	if err := c.store.DeleteByPrefix(ctx, prefix); err != nil {
		logger.Log.Warnf("cache prefix delete failed for %s: %v", prefix, err)
	}
}

// Cached is the read-through helper: on a hit it returns the stored value
// without calling compute; on a miss it calls compute, stores the result
// with the given TTL and returns it. Concurrent misses for the same key are
// collapsed best-effort via singleflight; a duplicate computation on a race
// is tolerated since compute is idempotent. Errors from compute propagate
// to the caller and nothing is cached.
func (c *Cache) Cached(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have populated the
		// entry while we waited.
		if value, ok := c.Get(ctx, key); ok {
			return value, nil
		}
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]byte), nil
}

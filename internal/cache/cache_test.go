package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetWithTTL(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetWithTTL(ctx, "feed:following:1:1:10", []byte("a"), time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "feed:following:1:2:10", []byte("b"), time.Minute))
	require.NoError(t, store.SetWithTTL(ctx, "feed:following:2:1:10", []byte("c"), time.Minute))

	require.NoError(t, store.DeleteByPrefix(ctx, "feed:following:1:"))

	_, ok, _ := store.Get(ctx, "feed:following:1:1:10")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "feed:following:1:2:10")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "feed:following:2:1:10")
	assert.True(t, ok, "other users' entries must survive a prefix delete")
}

func TestCachedCallsComputeOncePerTTLWindow(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	calls := 0
	compute := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("page"), nil
	}

	first, err := c.Cached(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	second, err := c.Cached(ctx, "k", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, []byte("page"), first)
	assert.Equal(t, []byte("page"), second)
	assert.Equal(t, 1, calls, "compute must run exactly once within the TTL window")
}

func TestCachedRecomputesAfterExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	calls := 0
	compute := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("page"), nil
	}

	_, err := c.Cached(ctx, "k", 10*time.Millisecond, compute)
	require.NoError(t, err)
	time.Sleep(25 * time.Millisecond)
	_, err = c.Cached(ctx, "k", 10*time.Millisecond, compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCachedPropagatesComputeError(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	wantErr := errors.New("boom")
	_, err := c.Cached(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// nothing cached after a failed compute
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

// failingStore errors on every operation to exercise fail-open behavior.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("store down")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("store down")
}

func (failingStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	return errors.New("store down")
}

func TestCacheFailsOpenWhenStoreDown(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{})

	calls := 0
	value, err := c.Cached(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("authoritative"), nil
	})
	require.NoError(t, err, "a broken cache must never fail the request")
	assert.Equal(t, []byte("authoritative"), value)
	assert.Equal(t, 1, calls)

	// every call recomputes when the store cannot hold anything
	_, err = c.Cached(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("authoritative"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

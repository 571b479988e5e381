package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	c := HashBytes([]byte("world"))

	assert.Equal(t, a, b, "same input must hash identically")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "BLAKE3-256 hex digest length")
}

func TestSetAndGet(t *testing.T) {
	c := New[string](true)

	digest := HashBytes([]byte("payload"))
	c.Set(digest, "result")

	got, ok := c.Get(digest)
	require.True(t, ok)
	assert.Equal(t, "result", got)
}

func TestGetMiss(t *testing.T) {
	c := New[int](true)

	_, ok := c.Get("absent")
	assert.False(t, ok)

	stats := c.GetStats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestHitCounter(t *testing.T) {
	c := New[int](true)
	c.Set("k", 42)

	for i := 0; i < 3; i++ {
		v, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, 42, v)
	}

	stats := c.GetStats()
	assert.Equal(t, uint64(3), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestSetReplaces(t *testing.T) {
	c := New[string](true)
	c.Set("k", "old")
	c.Set("k", "new")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.GetStats().Entries)
}

func TestClear(t *testing.T) {
	c := New[string](true)
	c.Set("k", "v")
	_, _ = c.Get("k")
	_, _ = c.Get("gone")

	c.Clear()

	_, ok := c.Get("k")
	assert.False(t, ok)

	stats := c.GetStats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, uint64(0), stats.Hits)
	// Only the post-clear lookup counts.
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestDisabled(t *testing.T) {
	c := New[string](false)
	c.Set("k", "v")

	_, ok := c.Get("k")
	assert.False(t, ok)

	stats := c.GetStats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, uint64(0), stats.Misses, "disabled caches do not count lookups")
}

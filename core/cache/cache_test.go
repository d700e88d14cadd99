package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staff-sync/core/record"
)

func newTestCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestCacheSetGetReturnsDeepCopy(t *testing.T) {
	c := newTestCache(t, Config{Enabled: true, MaxSizeMB: 10, DefaultTTLSeconds: 60})

	stored := []record.Record{{"mail": "a@x.com", "role": "user"}}
	require.NoError(t, c.Set(stored, "list_users", "https://api", "client-1"))

	var got []record.Record
	require.True(t, c.Get(&got, "list_users", "https://api", "client-1"))
	assert.Equal(t, stored, got)

	// Mutating the returned value must not corrupt the cached copy.
	got[0]["mail"] = "tampered@x.com"

	var again []record.Record
	require.True(t, c.Get(&again, "list_users", "https://api", "client-1"))
	assert.Equal(t, "a@x.com", again[0]["mail"])
}

func TestCacheKeyIsOrderAndTypeSensitive(t *testing.T) {
	assert.NotEqual(t, Key("op", "a", "b"), Key("op", "b", "a"))
	assert.NotEqual(t, Key("op", 1), Key("op", "1"))
	assert.Equal(t, Key("op", "a", 2, true), Key("op", "a", 2, true))
}

func TestCacheTTLExpiry(t *testing.T) {
	c := newTestCache(t, Config{Enabled: true, MaxSizeMB: 10, DefaultTTLSeconds: 60})

	require.NoError(t, c.SetTTL("value", 10*time.Millisecond, "op", "arg"))

	var got string
	require.True(t, c.Get(&got, "op", "arg"))

	time.Sleep(25 * time.Millisecond)
	assert.False(t, c.Get(&got, "op", "arg"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, stats.Entries)
}

func TestCacheInvalidateRemovesOnlyExactKey(t *testing.T) {
	c := newTestCache(t, Config{Enabled: true, MaxSizeMB: 10, DefaultTTLSeconds: 60})

	require.NoError(t, c.Set("one", "op", "a"))
	require.NoError(t, c.Set("two", "op", "b"))

	assert.True(t, c.Invalidate("op", "a"))
	assert.False(t, c.Invalidate("op", "a"))

	var got string
	assert.False(t, c.Get(&got, "op", "a"))
	require.True(t, c.Get(&got, "op", "b"))
	assert.Equal(t, "two", got)
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, Config{Enabled: true, MaxSizeMB: 10, DefaultTTLSeconds: 60})

	require.NoError(t, c.Set("one", "op", "a"))
	require.NoError(t, c.Set("two", "op", "b"))
	c.Clear()

	var got string
	assert.False(t, c.Get(&got, "op", "a"))
	assert.False(t, c.Get(&got, "op", "b"))
	assert.Equal(t, 0, c.Stats().Entries)
	assert.Equal(t, int64(0), c.Stats().TotalSizeBytes)
}

func TestCacheDisabled(t *testing.T) {
	c := newTestCache(t, Config{Enabled: false})

	require.NoError(t, c.Set("value", "op", "a"))

	var got string
	assert.False(t, c.Get(&got, "op", "a"))
	assert.False(t, c.Invalidate("op", "a"))
}

func TestCachePersistenceSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Enabled: true, Dir: dir, MaxSizeMB: 10, DefaultTTLSeconds: 3600}

	first := newTestCache(t, cfg)
	stored := []record.Record{{"code": "P01", "names": "Project One"}}
	require.NoError(t, first.Set(stored, "list_axe_values", "company-1", "projects"))

	// A fresh cache over the same directory must see the entry.
	second := newTestCache(t, cfg)
	var got []record.Record
	require.True(t, second.Get(&got, "list_axe_values", "company-1", "projects"))
	assert.Equal(t, stored, got)
}

func TestCachePersistenceDropsExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Enabled: true, Dir: dir, MaxSizeMB: 10, DefaultTTLSeconds: 3600}

	first := newTestCache(t, cfg)
	require.NoError(t, first.SetTTL("stale", 10*time.Millisecond, "op", "a"))
	time.Sleep(25 * time.Millisecond)

	second := newTestCache(t, cfg)
	var got string
	assert.False(t, second.Get(&got, "op", "a"))
	assert.Equal(t, 0, second.Stats().Entries)
}

func TestCacheSizeBudgetEviction(t *testing.T) {
	// 1 MB budget; each payload ~600 KB, so the second Set evicts the first.
	c := newTestCache(t, Config{Enabled: true, MaxSizeMB: 1, DefaultTTLSeconds: 3600})

	big := make([]byte, 600*1024)
	require.NoError(t, c.Set(big, "op", "first"))
	require.NoError(t, c.Set(big, "op", "second"))

	var got []byte
	assert.False(t, c.Get(&got, "op", "first"))
	assert.True(t, c.Get(&got, "op", "second"))
}

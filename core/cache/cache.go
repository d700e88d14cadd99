package cache

import (
	"bytes"
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Metrics holds the cache performance counters.
type Metrics struct {
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
	Sets           int64 `json:"sets"`
	Invalidations  int64 `json:"invalidations"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
	Entries        int   `json:"entries"`
}

// entryMeta tracks per-entry accounting the memory store does not keep.
type entryMeta struct {
	sizeBytes   int64
	accessCount int64
	lastAccess  time.Time
	storedAt    time.Time
	ttl         time.Duration
}

// Cache is a read-through cache memoizing idempotent list/read calls for
// the lifetime of a run. Entries are keyed by a stable composite of the
// operation name and its ordered argument tuple.
//
// Get decodes a fresh copy of the stored payload, so callers mutating the
// returned value can never corrupt the cached canonical copy.
//
// The background janitor is disabled on purpose: every removal flows
// through the methods below so the size accounting stays exact.
type Cache struct {
	mu       sync.Mutex
	mem      *gocache.Cache
	meta     map[string]*entryMeta
	dir      string
	maxBytes int64
	ttl      time.Duration
	enabled  bool
	metrics  Metrics
}

// Key builds the composite cache key for an operation and its arguments.
// The tuple is order- and type-sensitive; the hash keeps keys filesystem
// safe for the persistence layer.
func Key(op string, args ...any) string {
	parts := make([]any, 0, len(args)+1)
	parts = append(parts, op)
	for _, a := range args {
		parts = append(parts, fmt.Sprintf("%T=%v", a, a))
	}
	raw, _ := json.Marshal(parts)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// New creates a cache from configuration. When persistence is configured,
// entries surviving from previous runs are loaded eagerly and expired ones
// are discarded.
func New(cfg Config) (*Cache, error) {
	ttl := time.Duration(cfg.DefaultTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	c := &Cache{
		mem:      gocache.New(ttl, 0),
		meta:     make(map[string]*entryMeta),
		dir:      cfg.Dir,
		maxBytes: int64(cfg.MaxSizeMB) * 1024 * 1024,
		ttl:      ttl,
		enabled:  cfg.Enabled,
	}

	if cfg.Enabled && cfg.Dir != "" {
		if err := c.loadPersisted(); err != nil {
			return nil, fmt.Errorf("failed to load persisted cache: %w", err)
		}
	}

	return c, nil
}

// Get looks up the payload stored for (op, args) and decodes it into out,
// which must be a pointer. It reports whether the lookup was a hit.
func (c *Cache) Get(out any, op string, args ...any) bool {
	if c == nil || !c.enabled {
		return false
	}
	key := Key(op, args...)

	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.mem.Get(key)
	if !ok {
		// TTL expiry surfaces as a miss; reclaim the slot.
		c.removeLocked(key)
		c.metrics.Misses++
		return false
	}

	payload, ok := v.([]byte)
	if !ok {
		c.metrics.Misses++
		return false
	}

	// Decoding produces the defensive deep copy.
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(out); err != nil {
		c.metrics.Misses++
		return false
	}

	if m := c.meta[key]; m != nil {
		m.accessCount++
		m.lastAccess = time.Now()
	}
	c.metrics.Hits++
	return true
}

// Set stores data under (op, args) with the default TTL.
func (c *Cache) Set(data any, op string, args ...any) error {
	return c.SetTTL(data, 0, op, args...)
}

// SetTTL stores data under (op, args). A zero ttl means the default; a
// negative ttl means no expiry.
func (c *Cache) SetTTL(data any, ttl time.Duration, op string, args ...any) error {
	if c == nil || !c.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if ttl < 0 {
		ttl = gocache.NoExpiration
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}
	payload := buf.Bytes()
	key := Key(op, args...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(key)
	c.mem.Set(key, payload, ttl)
	now := time.Now()
	c.meta[key] = &entryMeta{
		sizeBytes:  int64(len(payload)),
		lastAccess: now,
		storedAt:   now,
		ttl:        ttl,
	}
	c.metrics.TotalSizeBytes += int64(len(payload))
	c.metrics.Entries++
	c.metrics.Sets++

	if c.dir != "" {
		if err := c.persistEntry(key, payload, now, ttl); err != nil {
			return err
		}
	}

	c.evictIfNeededLocked()
	return nil
}

// Invalidate removes the exact entry for (op, args) and reports whether an
// entry was present. There is no prefix or pattern invalidation.
func (c *Cache) Invalidate(op string, args ...any) bool {
	if c == nil || !c.enabled {
		return false
	}
	key := Key(op, args...)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, existed := c.mem.Get(key)
	c.removeLocked(key)
	if existed {
		c.metrics.Invalidations++
	}
	return existed
}

// Clear removes every entry, including persisted ones.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Flush()
	for key := range c.meta {
		c.removePersisted(key)
	}
	c.meta = make(map[string]*entryMeta)
	c.metrics.TotalSizeBytes = 0
	c.metrics.Entries = 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Metrics {
	if c == nil {
		return Metrics{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// removeLocked deletes a key from the memory store, the accounting map,
// and the persistence directory. Callers hold c.mu.
func (c *Cache) removeLocked(key string) {
	c.mem.Delete(key)
	if m, ok := c.meta[key]; ok {
		c.metrics.TotalSizeBytes -= m.sizeBytes
		c.metrics.Entries--
		delete(c.meta, key)
	}
	c.removePersisted(key)
}

// evictIfNeededLocked evicts least-recently-accessed entries until the
// size budget is respected. Callers hold c.mu.
func (c *Cache) evictIfNeededLocked() {
	if c.maxBytes <= 0 {
		return
	}
	for c.metrics.TotalSizeBytes > c.maxBytes {
		oldestKey := ""
		var oldest time.Time
		for key, m := range c.meta {
			if oldestKey == "" || m.lastAccess.Before(oldest) {
				oldestKey = key
				oldest = m.lastAccess
			}
		}
		if oldestKey == "" {
			return
		}
		c.removeLocked(oldestKey)
	}
}

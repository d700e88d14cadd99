package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// diskEntry is the on-disk envelope for one cached payload.
type diskEntry struct {
	Payload   []byte
	StoredAt  time.Time
	TTL       time.Duration
	NoExpiry  bool
	SizeBytes int64
}

// entryFile returns the persistence path for a cache key.
func (c *Cache) entryFile(key string) string {
	return filepath.Join(c.dir, key+".cache")
}

// persistEntry writes one entry to the persistence directory.
// Callers hold c.mu.
func (c *Cache) persistEntry(key string, payload []byte, storedAt time.Time, ttl time.Duration) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	entry := diskEntry{
		Payload:   payload,
		StoredAt:  storedAt,
		TTL:       ttl,
		NoExpiry:  ttl == gocache.NoExpiration,
		SizeBytes: int64(len(payload)),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryFile(key), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// removePersisted deletes the on-disk copy of a key, if any.
// Callers hold c.mu.
func (c *Cache) removePersisted(key string) {
	if c.dir == "" {
		return
	}
	_ = os.Remove(c.entryFile(key))
}

// loadPersisted restores entries written by previous runs, dropping the
// ones whose TTL has elapsed in the meantime.
func (c *Cache) loadPersisted() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	now := time.Now()
	for _, fi := range entries {
		if fi.IsDir() || filepath.Ext(fi.Name()) != ".cache" {
			continue
		}
		path := filepath.Join(c.dir, fi.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var entry diskEntry
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
			// Corrupt leftovers are discarded, not fatal.
			_ = os.Remove(path)
			continue
		}

		key := fi.Name()[:len(fi.Name())-len(".cache")]
		if !entry.NoExpiry && entry.TTL > 0 && now.Sub(entry.StoredAt) > entry.TTL {
			_ = os.Remove(path)
			continue
		}

		ttl := entry.TTL
		if entry.NoExpiry {
			ttl = gocache.NoExpiration
		} else if ttl > 0 {
			// Preserve the original deadline, not a fresh full TTL.
			ttl -= now.Sub(entry.StoredAt)
		}

		c.mem.Set(key, entry.Payload, ttl)
		c.meta[key] = &entryMeta{
			sizeBytes:  entry.SizeBytes,
			lastAccess: now,
			storedAt:   entry.StoredAt,
			ttl:        entry.TTL,
		}
		c.metrics.TotalSizeBytes += entry.SizeBytes
		c.metrics.Entries++
	}

	return nil
}

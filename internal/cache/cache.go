package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCacheIO indicates a cache file could not be written or deleted.
// Read-side failures never produce this error; they degrade to a miss.
var ErrCacheIO = errors.New("cache i/o failure")

// DefaultTTL is the entry lifetime used when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Cache is a content-addressed result cache rooted at a directory.
//
// The zero value is not usable; construct with New. Cache carries no mutable
// in-process state and is safe for concurrent use.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates (if necessary) the cache directory and returns a cache over it.
//
// A non-positive ttl falls back to DefaultTTL.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating cache dir %s: %v", ErrCacheIO, dir, err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Key computes the cache key for a blob of raw bytes: the hex MD5 digest of
// the exact content. Identical bytes always map to the same key regardless
// of where they came from.
func Key(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// KeyFile computes the cache key for a file's content.
//
// The key depends only on the bytes, not on the path, so two copies of the
// same image under different names share an entry.
func KeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Key(data), nil
}

// Get returns the payload stored under key, if a fresh entry exists.
//
// An entry is fresh when its age (file modification time) is strictly less
// than the cache TTL. Expired entries are reported as a miss but are not
// deleted; Prune handles physical cleanup. Any read or parse failure is also
// treated as a miss.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	path := c.entryPath(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) >= c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil || !json.Valid(data) {
		return nil, false
	}
	return json.RawMessage(data), true
}

// Put stores a payload under key, overwriting any existing entry and
// resetting its age.
//
// The payload is serialized to JSON and written through a temp file plus
// rename, so concurrent readers never observe a torn entry. Failures wrap
// ErrCacheIO.
func (c *Cache) Put(key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding entry %s: %v", ErrCacheIO, key, err)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp entry for %s: %v", ErrCacheIO, key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: writing entry %s: %v", ErrCacheIO, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: closing entry %s: %v", ErrCacheIO, key, err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: publishing entry %s: %v", ErrCacheIO, key, err)
	}
	return nil
}

// Prune deletes cache entries from disk.
//
// With a nil threshold every entry is removed. Otherwise only entries older
// than the threshold are removed, independent of the TTL that Get applies.
// The first filesystem failure aborts the pass and surfaces to the caller;
// explicit maintenance requests must not lose errors silently.
func (c *Cache) Prune(olderThan *time.Duration) error {
	entries, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("%w: listing cache dir %s: %v", ErrCacheIO, c.dir, err)
	}

	now := time.Now()
	for _, entry := range entries {
		if olderThan != nil {
			info, err := os.Stat(entry)
			if err != nil {
				return fmt.Errorf("%w: inspecting %s: %v", ErrCacheIO, entry, err)
			}
			if now.Sub(info.ModTime()) < *olderThan {
				continue
			}
		}
		if err := os.Remove(entry); err != nil {
			return fmt.Errorf("%w: removing %s: %v", ErrCacheIO, entry, err)
		}
	}
	return nil
}

// entryPath maps a key to its file in the cache directory.
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

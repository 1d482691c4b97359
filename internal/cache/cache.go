package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Cache keeps values in memory for a fixed time to live. Expired entries
// are dropped lazily when they are read.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

func New[V any](ttl time.Duration, log *slog.Logger) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// Key hashes the request parameters that determine a summary.
func Key(rawURL string, style string, length int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s_%s_%d", strings.TrimSpace(rawURL), style, length))
	return hex.EncodeToString(sum[:])
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		c.log.DebugContext(context.Background(), "Cache entry is expired",
			"key", key,
			"storedAt", e.storedAt)

		return zero, false
	}

	return e.value, true
}

// Set stores value under key, replacing any previous entry and resetting
// its age.
func (c *Cache[V]) Set(key string, value V) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Clear removes every entry and returns how many there were.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	clear(c.entries)

	c.log.InfoContext(context.Background(), "Cache is cleared",
		"entries", n)

	return n
}

func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

package cache

import (
	"log/slog"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func newTestCache(ttl time.Duration) (*Cache[string], *time.Time) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := New[string](ttl, slog.Default())
	c.now = func() time.Time { return now }

	return c, &now
}

func TestCacheGetSet(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("key", "value")

	value, ok := c.Get("key")
	if !ok {
		t.Fatalf("expected cached value to be present")
	}

	if value != "value" {
		t.Fatalf("unexpected value: %q", value)
	}
}

func TestCacheExpiresEntries(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("key", "value")
	c.Set("other", "value")
	*now = now.Add(2 * time.Minute)

	if _, ok := c.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if got := c.Size(); got != 1 {
		t.Fatalf("expected expired entry to be removed, size is %d", got)
	}
}

func TestCacheKeepsEntryAtExactTTL(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("key", "value")
	*now = now.Add(time.Minute)

	if _, ok := c.Get("key"); !ok {
		t.Fatalf("expected entry aged exactly one TTL to be kept")
	}
}

func TestCacheSetResetsAge(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("key", "old")
	*now = now.Add(50 * time.Second)
	c.Set("key", "new")
	*now = now.Add(50 * time.Second)

	value, ok := c.Get("key")
	if !ok || value != "new" {
		t.Fatalf("expected overwritten entry, got %q (ok = %v)", value, ok)
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")

	if n := c.Clear(); n != 2 {
		t.Fatalf("expected 2 cleared entries, got %d", n)
	}

	if c.Size() != 0 {
		t.Fatalf("expected empty cache")
	}
}

func TestCacheIgnoresEmptyKey(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("", "value")

	if c.Size() != 0 {
		t.Fatalf("expected empty key to be ignored")
	}
}

func TestKey(t *testing.T) {
	a := Key(" https://example.com ", "balanced", 300)
	b := Key("https://example.com", "balanced", 300)

	if a != b {
		t.Fatalf("expected trimmed URLs to share a key, got %q vs %q", a, b)
	}

	if a == Key("https://example.com", "balanced", 301) {
		t.Fatalf("expected length to change the key")
	}

	if a == Key("https://example.com", "technical", 300) {
		t.Fatalf("expected style to change the key")
	}
}

func TestCacheHitWithinTTL(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, now := newTestCache(time.Hour)

		key := rapid.StringN(1, 32, -1).Draw(rt, "key")
		value := rapid.String().Draw(rt, "value")
		age := time.Duration(rapid.Int64Range(0, int64(2*time.Hour)).Draw(rt, "age"))

		c.Set(key, value)
		*now = now.Add(age)

		got, ok := c.Get(key)
		if age <= time.Hour {
			if !ok || got != value {
				rt.Fatalf("expected hit at age %s", age)
			}
			return
		}

		if ok {
			rt.Fatalf("expected miss at age %s", age)
		}

		if c.Size() != 0 {
			rt.Fatalf("expected expired entry to be removed")
		}
	})
}

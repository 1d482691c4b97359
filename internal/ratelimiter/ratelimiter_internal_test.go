package ratelimiter

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestLimiter(maxCalls int, period time.Duration) (*RateLimiter, *fakeClock) {
	clock := newFakeClock()
	rl := New(maxCalls, period, slog.Default())
	rl.now = clock.Now

	return rl, clock
}

func TestRateLimiterAllowsUpToMaxCalls(t *testing.T) {
	rl, clock := newTestLimiter(3, time.Minute)

	for i := range 3 {
		if !rl.IsAllowed("user") {
			t.Fatalf("expected call %d to be allowed", i+1)
		}
		clock.Advance(time.Second)
	}

	if rl.IsAllowed("user") {
		t.Fatalf("expected fourth call to be denied")
	}
}

func TestRateLimiterDenialDoesNotConsumeSlot(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)

	if !rl.IsAllowed("") {
		t.Fatalf("expected first call to be allowed")
	}

	for range 5 {
		clock.Advance(time.Second)
		if rl.IsAllowed("") {
			t.Fatalf("expected call to be denied")
		}
	}

	if got := len(rl.calls[DefaultIdentifier]); got != 1 {
		t.Fatalf("expected one tracked call, got %d", got)
	}
}

func TestRateLimiterAllowsAgainAfterPeriod(t *testing.T) {
	rl, clock := newTestLimiter(2, 10*time.Second)

	rl.IsAllowed("user")
	clock.Advance(time.Second)
	rl.IsAllowed("user")

	if rl.IsAllowed("user") {
		t.Fatalf("expected call to be denied inside the window")
	}

	clock.Advance(9*time.Second + time.Millisecond)

	if !rl.IsAllowed("user") {
		t.Fatalf("expected call to be allowed once the first call left the window")
	}
}

func TestRateLimiterPrunesAtExactPeriod(t *testing.T) {
	rl, clock := newTestLimiter(1, 10*time.Second)

	rl.IsAllowed("user")
	clock.Advance(10 * time.Second)

	if !rl.IsAllowed("user") {
		t.Fatalf("expected call exactly one period later to be allowed")
	}
}

func TestRateLimiterIdentifiersAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)

	if !rl.IsAllowed("a") || !rl.IsAllowed("b") {
		t.Fatalf("expected first call of each identifier to be allowed")
	}

	if rl.IsAllowed("a") {
		t.Fatalf("expected second call of a to be denied")
	}
}

func TestRateLimiterRetryAfter(t *testing.T) {
	rl, clock := newTestLimiter(1, 60*time.Second)

	if got := rl.RetryAfter("user"); got != 0 {
		t.Fatalf("expected 0 without tracked calls, got %d", got)
	}

	rl.IsAllowed("user")
	clock.Advance(500 * time.Millisecond)

	got := rl.RetryAfter("user")
	if got <= 0 || got > 60 {
		t.Fatalf("expected retry after in (0, 60], got %d", got)
	}

	if got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}

	clock.Advance(30 * time.Second)
	if got = rl.RetryAfter("user"); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}

	clock.Advance(30 * time.Second)
	if got = rl.RetryAfter("user"); got != 0 {
		t.Fatalf("expected 0 after the window passed, got %d", got)
	}
}

func TestRateLimiterRetryAfterNeverExceedsPeriod(t *testing.T) {
	rl, _ := newTestLimiter(1, 60*time.Second)

	rl.IsAllowed("user")

	if got := rl.RetryAfter("user"); got != 60 {
		t.Fatalf("expected 60 with no time elapsed, got %d", got)
	}
}

func TestRateLimiterConcurrentCallers(t *testing.T) {
	rl := New(10, time.Minute, slog.Default())

	var allowed atomic.Int64
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.IsAllowed("shared") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 10 {
		t.Fatalf("expected exactly 10 admitted calls, got %d", got)
	}
}

func TestRateLimiterWindowNeverExceedsMaxCalls(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxCalls := rapid.IntRange(1, 5).Draw(rt, "maxCalls")
		rl, clock := newTestLimiter(maxCalls, 10*time.Second)

		steps := rapid.SliceOfN(rapid.Int64Range(0, 4000), 1, 50).Draw(rt, "steps")
		for _, ms := range steps {
			clock.Advance(time.Duration(ms) * time.Millisecond)
			rl.IsAllowed("id")

			if got := len(rl.calls["id"]); got > maxCalls {
				rt.Fatalf("window holds %d calls, max is %d", got, maxCalls)
			}
		}
	})
}

package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// RateLimiter admits at most maxCalls calls per identifier within any
// period. Timestamps older than the period are pruned before every check.
type RateLimiter struct {
	maxCalls int
	period   time.Duration
	calls    map[string][]time.Time
	mu       sync.Mutex
	now      func() time.Time
	log      *slog.Logger
}

func New(maxCalls int, period time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		maxCalls: maxCalls,
		period:   period,
		calls:    make(map[string][]time.Time),
		now:      time.Now,
		log:      log,
	}
}

// IsAllowed records a call for id and reports whether it was admitted.
// A denied call is not recorded.
func (rl *RateLimiter) IsAllowed(id string) bool {
	id = normalizeID(id)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	calls := rl.pruneLocked(id, now)

	if len(calls) < rl.maxCalls {
		rl.calls[id] = append(calls, now)

		return true
	}

	rl.log.DebugContext(context.Background(), "Rate limit is reached",
		"id", id,
		"calls", len(calls),
		"maxCalls", rl.maxCalls,
		"period", rl.period)

	return false
}

// RetryAfter returns the whole seconds to wait before id is admitted
// again, or 0 when nothing is tracked. The value never exceeds the period.
func (rl *RateLimiter) RetryAfter(id string) int {
	id = normalizeID(id)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	calls := rl.pruneLocked(id, now)
	if len(calls) == 0 {
		return 0
	}

	remaining := rl.period - now.Sub(calls[0])
	limit := int(math.Ceil(rl.period.Seconds()))

	return min(max(int(remaining.Seconds())+1, 0), limit)
}

func (rl *RateLimiter) pruneLocked(id string, now time.Time) []time.Time {
	calls := rl.calls[id]

	kept := calls[:0]
	for _, t := range calls {
		if now.Sub(t) < rl.period {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		delete(rl.calls, id)

		return nil
	}

	rl.calls[id] = kept

	return kept
}

func normalizeID(id string) string {
	if id == "" {
		return DefaultIdentifier
	}
	return id
}

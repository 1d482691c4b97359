package pipeline

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"sync/atomic"
)

// Stats is a point-in-time copy of the usage counters.
type Stats struct {
	Requests       int64                 `json:"requests"`
	Successes      int64                 `json:"successes"`
	CacheHits      int64                 `json:"cache_hits"`
	RateLimited    int64                 `json:"rate_limited"`
	Failures       int64                 `json:"failures"`
	FailuresByKind map[apperr.Kind]int64 `json:"failures_by_kind"`
	SourcesByKind  map[domain.Kind]int64 `json:"sources_by_kind"`
}

type counters struct {
	requests    atomic.Int64
	successes   atomic.Int64
	cacheHits   atomic.Int64
	rateLimited atomic.Int64
	failures    atomic.Int64

	// Both maps are filled once at construction and only their values
	// change afterwards.
	failuresByKind map[apperr.Kind]*atomic.Int64
	sourcesByKind  map[domain.Kind]*atomic.Int64
}

func newCounters() *counters {
	c := &counters{
		failuresByKind: make(map[apperr.Kind]*atomic.Int64),
		sourcesByKind:  make(map[domain.Kind]*atomic.Int64),
	}

	for _, kind := range []apperr.Kind{
		apperr.KindValidation,
		apperr.KindRateLimit,
		apperr.KindYouTube,
		apperr.KindWebsite,
		apperr.KindTranscription,
		apperr.KindSummarization,
		apperr.KindUpstreamCredential,
		apperr.KindInternal,
	} {
		c.failuresByKind[kind] = &atomic.Int64{}
	}

	for _, kind := range []domain.Kind{domain.KindYouTube, domain.KindWebsite} {
		c.sourcesByKind[kind] = &atomic.Int64{}
	}

	return c
}

func (c *counters) recordFailure(kind apperr.Kind) {
	c.failures.Add(1)

	if kind == apperr.KindRateLimit {
		c.rateLimited.Add(1)
	}

	if n, ok := c.failuresByKind[kind]; ok {
		n.Add(1)
	}
}

func (c *counters) recordSource(kind domain.Kind) {
	if n, ok := c.sourcesByKind[kind]; ok {
		n.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Requests:       c.requests.Load(),
		Successes:      c.successes.Load(),
		CacheHits:      c.cacheHits.Load(),
		RateLimited:    c.rateLimited.Load(),
		Failures:       c.failures.Load(),
		FailuresByKind: make(map[apperr.Kind]int64, len(c.failuresByKind)),
		SourcesByKind:  make(map[domain.Kind]int64, len(c.sourcesByKind)),
	}

	for kind, n := range c.failuresByKind {
		s.FailuresByKind[kind] = n.Load()
	}
	for kind, n := range c.sourcesByKind {
		s.SourcesByKind[kind] = n.Load()
	}

	return s
}

package scheduler

import (
	"briefly/internal/pipeline"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultReportSpec     = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	reportUsageTimeout    = time.Minute
)

type StatsSource interface {
	Stats() pipeline.Stats
	CacheSize() int
}

// HistoryCounter is optional.
type HistoryCounter interface {
	CountHistory(ctx context.Context) (int, error)
}

// Scheduler periodically logs how the service was used since the previous
// report.
type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	spec    string
	stats   StatsSource
	history HistoryCounter

	mu   sync.Mutex
	last pipeline.Stats

	log *slog.Logger
}

func New(
	ctx context.Context,
	spec string,
	stats StatsSource,
	history HistoryCounter,
	log *slog.Logger,
) *Scheduler {
	if spec == "" {
		spec = DefaultReportSpec
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		spec:    spec,
		stats:   stats,
		history: history,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.reportUsage); err != nil {
		return fmt.Errorf("add usage report (spec = %q): %w", s.spec, err)
	}

	s.cron.Start()

	s.log.InfoContext(s.ctx, "Scheduler is started",
		"spec", s.spec)

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reportUsage() {
	ctx, cancel := context.WithTimeout(s.ctx, reportUsageTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	current := s.stats.Stats()

	s.mu.Lock()
	previous := s.last
	s.last = current
	s.mu.Unlock()

	fields := []any{
		"requests", current.Requests - previous.Requests,
		"successes", current.Successes - previous.Successes,
		"failures", current.Failures - previous.Failures,
		"cacheHits", current.CacheHits - previous.CacheHits,
		"rateLimited", current.RateLimited - previous.RateLimited,
		"totalRequests", current.Requests,
		"cacheSize", s.stats.CacheSize(),
	}

	for kind, n := range current.SourcesByKind {
		fields = append(fields, string(kind)+"Sources", n-previous.SourcesByKind[kind])
	}

	if s.history != nil {
		n, err := s.history.CountHistory(ctx)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to count history",
				"error", err)
		} else {
			fields = append(fields, "historyEntries", n)
		}
	}

	s.log.InfoContext(ctx, "Usage report", fields...)
}

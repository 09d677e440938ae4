package worker

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/mc-fetch/internal/domain"
	"github.com/veranemoloko/mc-fetch/internal/metrics"
)

// NewHTTPClient returns a client whose transport keeps enough idle connections
// per host for every worker of a batch to reuse one.
func NewHTTPClient(workers int, timeout time.Duration) *http.Client {
	if workers < 1 {
		workers = 1
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = workers * 4
	transport.MaxIdleConnsPerHost = workers
	transport.IdleConnTimeout = 90 * time.Second
	transport.ResponseHeaderTimeout = timeout
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{Transport: transport}
}

// Scheduler runs a bounded pool of fetches over a work list.
type Scheduler struct {
	worker    *FetchWorker
	autoScale bool
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler. With autoScale the worker count never exceeds the item count.
func NewScheduler(worker *FetchWorker, autoScale bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		worker:    worker,
		autoScale: autoScale,
		logger:    logger,
	}
}

// Worker returns the fetch worker used by the scheduler.
func (s *Scheduler) Worker() *FetchWorker {
	return s.worker
}

// EffectiveWorkers returns the number of workers started for a batch of n items.
func EffectiveWorkers(requested, n int, autoScale bool) int {
	if autoScale && requested > n {
		requested = n
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}

// Run fetches every item and blocks until all of them finished.
// A failed item does not stop its siblings; callers inspect the results.
func (s *Scheduler) Run(ctx context.Context, items []domain.WorkItem, maxWorkers int) []domain.FetchResult {
	results := make([]domain.FetchResult, len(items))
	if len(items) == 0 {
		return results
	}

	workers := EffectiveWorkers(maxWorkers, len(items), s.autoScale)
	metrics.BatchWorkers.Set(float64(workers))
	s.logger.Info("batch started", "items", len(items), "workers", workers)

	// The group context is not used: no fetch returns an error, so nothing cancels siblings.
	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = s.worker.Fetch(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(results)
	s.logger.Info("batch finished",
		"items", summary.Total,
		"succeeded", summary.Succeeded,
		"cached", summary.Cached,
		"failed", summary.Failed,
		"bytes", summary.Bytes,
	)
	return results
}

// Summarize counts the outcomes of a batch.
func Summarize(results []domain.FetchResult) domain.BatchSummary {
	var s domain.BatchSummary
	s.Total = len(results)
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
			if r.Cached {
				s.Cached++
			}
			s.Bytes += r.Bytes
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, r)
	}
	return s
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_fetches_total",
		Help: "Total number of work items handed to a fetch worker",
	})

	FetchesSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_fetches_success_total",
		Help: "Total number of work items downloaded and verified",
	})

	FetchesCached = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_fetches_cached_total",
		Help: "Total number of work items satisfied by an already verified local file",
	})

	FetchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_fetches_failed_total",
		Help: "Total number of work items that exhausted their retries",
	})

	FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_fetch_retries_total",
		Help: "Total number of retried fetch attempts by failure reason",
	}, []string{"reason"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mcfetch_fetch_duration_seconds",
		Help:    "Fetch duration in seconds, including retries",
		Buckets: prometheus.DefBuckets,
	})

	FetchBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_fetch_bytes_total",
		Help: "Total bytes downloaded",
	})

	BatchWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mcfetch_batch_workers",
		Help: "Worker count of the most recently started batch",
	})

	NativesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_natives_extracted_total",
		Help: "Total number of native library files extracted",
	})

	JobsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_jobs_created_total",
		Help: "Total number of install jobs created",
	}, []string{"kind"})

	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_jobs_completed_total",
		Help: "Total number of install jobs completed",
	}, []string{"kind"})

	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_jobs_failed_total",
		Help: "Total number of install jobs failed",
	}, []string{"kind"})
)

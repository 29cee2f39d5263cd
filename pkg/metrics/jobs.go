package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobQueueMetrics tracks processed job queue entries.
type JobQueueMetrics struct {
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewJobQueueMetrics registers the job queue collectors. A nil registerer yields no-op metrics.
func NewJobQueueMetrics(reg prometheus.Registerer) *JobQueueMetrics {
	if reg == nil {
		return &JobQueueMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_jobs_processed_total",
		Help: "Job queue entries that reached a terminal status.",
	}, []string{"type", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_jobs_duration_seconds",
		Help:    "Handler duration per job type.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	reg.MustRegister(processed, duration)
	return &JobQueueMetrics{processed: processed, duration: duration}
}

// Observe records a terminal outcome for a job of jobType.
func (m *JobQueueMetrics) Observe(jobType, status string, took time.Duration) {
	if m == nil || m.processed == nil {
		return
	}
	jobType = normalizeLabel(jobType)
	m.processed.WithLabelValues(jobType, status).Inc()
	m.duration.WithLabelValues(jobType).Observe(took.Seconds())
}

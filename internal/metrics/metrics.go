// Package metrics provides Prometheus metrics for vault and access operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pinvault"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	filesMoved     *prometheus.CounterVec
	moveFailures   *prometheus.CounterVec
	batchDuration  *prometheus.HistogramVec
	entriesDeleted prometheus.Counter
	foldersCreated prometheus.Counter
	unlockAttempts *prometheus.CounterVec
	autoLocks      prometheus.Counter
	pagesLoaded    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		// Vault metrics
		filesMoved: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_moved_total",
				Help:      "Total number of files moved, by operation",
			},
			[]string{"operation"},
		),
		moveFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "move_failures_total",
				Help:      "Total number of aborted batches, by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		batchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of move, export and import batches",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		entriesDeleted: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_deleted_total",
				Help:      "Total number of vault entries deleted",
			},
		),
		foldersCreated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "folders_created_total",
				Help:      "Total number of vault folders created",
			},
		),

		// Access metrics
		unlockAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unlock_attempts_total",
				Help:      "Total number of unlock attempts, by method and result",
			},
			[]string{"method", "result"},
		),
		autoLocks: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auto_locks_total",
				Help:      "Total number of locks caused by elapsed background time",
			},
		),

		// Asset paging
		pagesLoaded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_pages_total",
				Help:      "Total number of asset page fetches, by result",
			},
			[]string{"result"},
		),
	}
}

// RecordMoved counts n files moved by operation.
func (m *Metrics) RecordMoved(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.filesMoved.WithLabelValues(operation).Add(float64(n))
}

// RecordMoveFailure counts an aborted batch.
func (m *Metrics) RecordMoveFailure(operation, reason string) {
	if m == nil {
		return
	}
	m.moveFailures.WithLabelValues(operation, reason).Inc()
}

// ObserveBatch records how long a batch ran.
func (m *Metrics) ObserveBatch(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordDeleted counts deleted entries.
func (m *Metrics) RecordDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entriesDeleted.Add(float64(n))
}

// RecordFolderCreated counts a created folder.
func (m *Metrics) RecordFolderCreated() {
	if m == nil {
		return
	}
	m.foldersCreated.Inc()
}

// RecordUnlock counts an unlock attempt.
func (m *Metrics) RecordUnlock(method, result string) {
	if m == nil {
		return
	}
	m.unlockAttempts.WithLabelValues(method, result).Inc()
}

// RecordAutoLock counts a lock caused by elapsed time.
func (m *Metrics) RecordAutoLock() {
	if m == nil {
		return
	}
	m.autoLocks.Inc()
}

// RecordPage counts an asset page fetch.
func (m *Metrics) RecordPage(result string) {
	if m == nil {
		return
	}
	m.pagesLoaded.WithLabelValues(result).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "uploads_total",
			Help:      "Total media uploads by kind",
		},
		[]string{"kind", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"kind"},
	)

	// Transcode status polls
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "transcode_polls_total",
			Help:      "Total transcoding job status polls",
		},
		[]string{"result"},
	)

	// Terminal upload outcomes
	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "upload_outcomes_total",
			Help:      "Terminal upload outcomes (ready, errored, timed_out)",
		},
		[]string{"kind", "outcome"},
	)

	// Storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folioworks",
			Subsystem: "media_ingest",
			Name:      "storage_operations_total",
			Help:      "Total blob storage operations",
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a media upload
func RecordUpload(kind, status string, bytes int64) {
	UploadsTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(kind).Add(float64(bytes))
	}
}

// RecordPoll records one transcoding status poll
func RecordPoll(result string) {
	PollsTotal.WithLabelValues(result).Inc()
}

// RecordOutcome records a terminal upload outcome
func RecordOutcome(kind, outcome string) {
	OutcomesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordStorageOperation records a blob storage operation
func RecordStorageOperation(operation, status string) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
}

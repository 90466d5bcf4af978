// internal/service/metrics.go
package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanagement_operations_total",
			Help: "Total number of service operations by outcome",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskmanagement_operation_duration_seconds",
			Help:    "Duration of service operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	uploadSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmanagement_upload_size_bytes",
			Help:    "Size distribution of uploaded task attachments",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)
)

// observe records the outcome and duration of one operation. Use as
// defer observe("create_tag", time.Now(), &err).
func observe(operation string, start time.Time, err *error) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	operationCount.WithLabelValues(operation, status).Inc()
}

package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion and storage Prometheus metrics.
var (
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vacancies",
			Name:      "fetch_requests_total",
			Help:      "Total number of listing API requests",
		},
		[]string{"status"}, // "ok" / "error"
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vacancies",
			Name:      "fetch_duration_seconds",
			Help:      "Listing API request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vacancies",
			Name:      "ingested_total",
			Help:      "Vacancies processed by fetch-and-store, by outcome",
		},
		[]string{"status"}, // "stored" / "invalid" / "failed" / "duplicate"
	)

	StorageOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vacancies",
			Name:      "storage_operations_total",
			Help:      "Storage backend operations",
		},
		[]string{"backend", "op", "status"},
	)

	StorageOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vacancies",
			Name:      "storage_operation_duration_seconds",
			Help:      "Storage backend operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend", "op"},
	)
)

var registered bool

// Register registers all metrics with the default registry. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(IngestedTotal)
	prometheus.MustRegister(StorageOperationsTotal)
	prometheus.MustRegister(StorageOperationDuration)
	registered = true
}

// WriteTextfile dumps the gathered metrics in text exposition format, suitable for
// the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

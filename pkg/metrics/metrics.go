// Package metrics provides performance tracking for galaxymap using
// Prometheus metrics. It covers the two hot paths: extraction throughput
// and viewport query latency.
//
// # Basic Usage
//
//	metrics.RecordsExtracted.WithLabelValues("accepted").Add(1000)
//
//	timer := metrics.NewTimer("viewport_query")
//	indices := index.Query(vp)
//	metrics.QueryLatency.WithLabelValues("query").Observe(float64(timer.Stop().Nanoseconds()))
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsExtracted tracks records seen by the extractor.
	// Labels: status (accepted/rejected)
	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "galaxymap_records_extracted_total",
			Help: "Total number of records processed by the extractor",
		},
		[]string{"status"},
	)

	// ExtractionBytes tracks input bytes consumed by the extractor
	ExtractionBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "galaxymap_extraction_bytes_total",
			Help: "Total input bytes consumed by the extractor",
		},
	)

	// ExtractionDuration tracks end-to-end extraction durations in seconds
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "galaxymap_extraction_duration_seconds",
			Help:    "End-to-end extraction duration in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		},
	)

	// QueryLatency tracks the distribution of viewport query and sampling
	// latencies in nanoseconds. Buckets are tuned for interactive pan/zoom:
	// anything past 100ms is visibly janky.
	// Labels: operation (query/sample)
	QueryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "galaxymap_query_latency_nanoseconds",
			Help: "Viewport query latency in nanoseconds",
			Buckets: []float64{
				1000,  // 1μs
				10000, // 10μs
				1e5,   // 100μs
				1e6,   // 1ms
				1e7,   // 10ms
				1e8,   // 100ms
				1e9,   // 1s
			},
		},
		[]string{"operation"},
	)

	// SampleSize tracks the number of points returned per sample call
	SampleSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "galaxymap_sample_size_points",
			Help:    "Points returned per LOD sample call",
			Buckets: []float64{10, 100, 1000, 2000, 5000, 10000, 100000},
		},
	)

	// DatasetRecords tracks the size of the active dataset
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "galaxymap_dataset_records",
			Help: "Number of records in the active dataset",
		},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
// The timer can be stopped multiple times, each returning the total
// elapsed time since creation.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks throughput (records per second) over time windows.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
}

// NewThroughputTracker creates a new throughput tracker
func NewThroughputTracker() *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
	}
}

// Increment adds n to the record count. Safe for concurrent use.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset calculates the current throughput (records/second), resets the
// counter, and returns the calculated throughput. Safe for concurrent use.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	return throughput
}

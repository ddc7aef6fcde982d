package extract

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/metrics"
)

// Reporter logs extraction progress at a throttled interval. The extractor
// hands it raw counters at item granularity; the reporter decides when a log
// line is worth emitting. Update is the cheap hot-path side, a few atomic
// stores per call.
type Reporter struct {
	logger   *zap.Logger
	interval time.Duration

	bytesRead  atomic.Uint64
	totalBytes atomic.Uint64
	items      atomic.Uint64

	throughput *metrics.ThroughputTracker
	lastItems  uint64

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReporter creates a progress reporter logging every interval.
func NewReporter(interval time.Duration) *Reporter {
	return &Reporter{
		logger:     logger.With(zap.String("component", "progress")),
		interval:   interval,
		throughput: metrics.NewThroughputTracker(),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Update records the latest counters. Safe to call concurrently and
// signature-compatible with ProgressFunc.
func (r *Reporter) Update(bytesRead, totalBytes, items uint64) {
	r.bytesRead.Store(bytesRead)
	r.totalBytes.Store(totalBytes)
	r.items.Store(items)
}

// Start launches the periodic logging loop.
func (r *Reporter) Start() {
	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.emit()
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop halts the loop and emits one final line so the log always ends with
// the completed totals.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		<-r.doneCh
		r.emit()
	})
}

func (r *Reporter) emit() {
	bytesRead := r.bytesRead.Load()
	totalBytes := r.totalBytes.Load()
	items := r.items.Load()

	r.throughput.Increment(int64(items - r.lastItems))
	r.lastItems = items

	percent := 0.0
	if totalBytes > 0 {
		percent = float64(bytesRead) / float64(totalBytes) * 100
	}

	r.logger.Info("extraction progress",
		zap.Uint64("items", items),
		zap.Uint64("bytes_read", bytesRead),
		zap.Uint64("total_bytes", totalBytes),
		zap.Float64("percent", percent),
		zap.Float64("items_per_sec", r.throughput.GetAndReset()))
}

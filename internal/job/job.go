// Package job runs extractions asynchronously. A long extraction over a
// multi-gigabyte dump must not block its caller; the job owns the worker
// goroutine, exposes progress snapshots while it runs, and supports
// cancellation.
package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/extract"
	"github.com/edatlas/galaxymap/pkg/logger"
)

// State is the lifecycle phase of a job.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Snapshot is a point-in-time view of a job's progress. Counters may lag a
// moment behind the worker; they never go backwards.
type Snapshot struct {
	ID         string
	State      State
	BytesRead  uint64
	TotalBytes uint64
	Items      uint64
}

// Job is a single asynchronous extraction. Create with Start; all methods
// are safe for concurrent use.
type Job struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	bytesRead  atomic.Uint64
	totalBytes atomic.Uint64
	items      atomic.Uint64
	state      atomic.Value // State

	reporter *extract.Reporter

	// set before done is closed
	stats *extract.Stats
	err   error
}

// Start launches an extraction of inputPath into outputPath on its own
// goroutine and returns immediately. Progress log lines are emitted at
// logInterval while the job runs.
func Start(ctx context.Context, cfg config.ExtractConfig, logInterval time.Duration, inputPath, outputPath string) *Job {
	ctx, cancel := context.WithCancel(ctx)

	j := &Job{
		id:       fmt.Sprintf("extract-%d", time.Now().UnixNano()),
		cancel:   cancel,
		done:     make(chan struct{}),
		reporter: extract.NewReporter(logInterval),
	}
	j.state.Store(StateRunning)

	extractor := extract.NewExtractor(cfg, j.onProgress)
	log := logger.With(zap.String("job_id", j.id))

	j.reporter.Start()
	go func() {
		defer close(j.done)
		defer cancel()
		defer j.reporter.Stop()

		stats, err := extractor.Extract(ctx, inputPath, outputPath)
		j.stats = stats
		j.err = err

		switch {
		case err == nil:
			j.state.Store(StateCompleted)
			log.Info("job completed")
		case ctx.Err() != nil:
			j.state.Store(StateCancelled)
			log.Warn("job cancelled")
		default:
			j.state.Store(StateFailed)
			log.Error("job failed", zap.Error(err))
		}
	}()

	return j
}

// onProgress is the extractor's ProgressFunc: it feeds both the snapshot
// counters and the periodic log reporter.
func (j *Job) onProgress(bytesRead, totalBytes, items uint64) {
	j.bytesRead.Store(bytesRead)
	j.totalBytes.Store(totalBytes)
	j.items.Store(items)
	j.reporter.Update(bytesRead, totalBytes, items)
}

// ID returns the job's identifier.
func (j *Job) ID() string { return j.id }

// Snapshot returns the job's current state and progress counters.
func (j *Job) Snapshot() Snapshot {
	return Snapshot{
		ID:         j.id,
		State:      j.state.Load().(State),
		BytesRead:  j.bytesRead.Load(),
		TotalBytes: j.totalBytes.Load(),
		Items:      j.items.Load(),
	}
}

// Cancel requests the job stop. The job transitions to StateCancelled once
// the worker observes the cancellation.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job finishes and returns its outcome.
func (j *Job) Wait() (*extract.Stats, error) {
	<-j.done
	return j.stats, j.err
}

// Done returns a channel closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

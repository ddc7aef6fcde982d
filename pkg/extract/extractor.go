// Package extract implements the bounded-memory streaming extractor that
// reduces a multi-gigabyte JSON catalog to the compact canonical dataset.
// The input is decoded one array element at a time; at any instant only a
// single raw record and a fixed write buffer are live, so memory use is
// constant in the number of input records.
package extract

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/config"
	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/json"
	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/metrics"
	"github.com/edatlas/galaxymap/pkg/record"
)

// ProgressFunc receives best-effort extraction telemetry at a bounded
// cadence. A failing or panicking callback never affects extraction.
type ProgressFunc func(bytesRead, totalBytes, itemsProcessed uint64)

// Stats summarizes a completed extraction.
type Stats struct {
	Accepted   uint64
	Rejected   uint64
	BytesRead  uint64
	TotalBytes uint64
	Duration   time.Duration
}

// Extractor streams a JSON array of raw catalog entries into a compact
// canonical dataset file. It is single-use per Extract call and performs no
// internal concurrency; callers wanting asynchrony run it on their own
// worker (see internal/job).
type Extractor struct {
	cfg      config.ExtractConfig
	logger   *zap.Logger
	progress ProgressFunc
}

// NewExtractor creates an extractor with the given settings. progress may be
// nil.
func NewExtractor(cfg config.ExtractConfig, progress ProgressFunc) *Extractor {
	return &Extractor{
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "extractor")),
		progress: progress,
	}
}

// Extract reads the JSON array at inputPath, validates every element, and
// writes the accepted records to outputPath as a single pretty-printed JSON
// array in input order.
//
// It refuses to overwrite an existing output file: re-running a long job over
// prior output must always be an explicit caller decision. On a stream-level
// parse failure the whole operation aborts; whatever partial output is on
// disk is unreliable and must not be treated as committed.
func (e *Extractor) Extract(ctx context.Context, inputPath, outputPath string) (*Stats, error) {
	start := time.Now()

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "input file not found").
			WithDetail("path", inputPath)
	}
	totalBytes := uint64(info.Size())

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		switch {
		case os.IsExist(err):
			return nil, errors.Wrap(err, errors.ErrorTypeAlreadyExists, "output file already exists").
				WithDetail("path", outputPath)
		case os.IsPermission(err):
			return nil, errors.Wrap(err, errors.ErrorTypePermission, "cannot write output file").
				WithDetail("path", outputPath)
		default:
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create output file").
				WithDetail("path", outputPath)
		}
	}
	defer out.Close()

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open input file").
			WithDetail("path", inputPath)
	}
	defer in.Close()

	counting := &countingReader{r: in}
	decoder := json.GetDecoder(bufio.NewReaderSize(counting, e.cfg.BufferSize))
	defer json.PutDecoder(decoder)

	writer := bufio.NewWriterSize(out, e.cfg.BufferSize)
	encoder := json.NewStreamingEncoder(writer)
	if e.cfg.PrettyIndent != "" {
		encoder.SetPretty(true, e.cfg.PrettyIndent)
	}

	e.logger.Info("starting extraction",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Uint64("total_bytes", totalBytes))

	stats := &Stats{TotalBytes: totalBytes}

	if err := e.expectArrayStart(decoder); err != nil {
		return nil, err
	}

	progressEvery := uint64(e.cfg.ProgressEvery)
	for decoder.More() {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrorTypeIO, "extraction cancelled")
		default:
		}

		var raw record.Raw
		if err := decoder.Decode(&raw); err != nil {
			// A broken element breaks the array framing: abort, per the
			// all-or-nothing stream contract.
			return nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "failed to decode array element").
				WithDetail("path", inputPath).
				WithDetail("byte_offset", decoder.InputOffset())
		}

		if rec, ok := record.Validate(raw); ok {
			if err := encoder.Encode(rec); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to write record").
					WithDetail("path", outputPath)
			}
			stats.Accepted++
			metrics.RecordsExtracted.WithLabelValues("accepted").Inc()
		} else {
			stats.Rejected++
			metrics.RecordsExtracted.WithLabelValues("rejected").Inc()
		}

		if processed := stats.Accepted + stats.Rejected; processed%progressEvery == 0 {
			e.reportProgress(uint64(counting.n), totalBytes, processed)
		}
	}

	if err := e.expectArrayEnd(decoder); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to finalize output").
			WithDetail("path", outputPath)
	}
	if err := writer.Flush(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to flush output").
			WithDetail("path", outputPath)
	}

	stats.BytesRead = uint64(counting.n)
	stats.Duration = time.Since(start)
	metrics.ExtractionBytes.Add(float64(stats.BytesRead))
	metrics.ExtractionDuration.Observe(stats.Duration.Seconds())

	// Final progress call so consumers always see 100%.
	e.reportProgress(stats.BytesRead, totalBytes, stats.Accepted+stats.Rejected)

	e.logger.Info("extraction completed",
		zap.Uint64("accepted", stats.Accepted),
		zap.Uint64("rejected", stats.Rejected),
		zap.Uint64("bytes_read", stats.BytesRead),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

// expectArrayStart consumes the opening bracket of the top-level array
func (e *Extractor) expectArrayStart(decoder *gojson.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeMalformedInput, "input is not valid JSON").
			WithDetail("byte_offset", decoder.InputOffset())
	}
	if delim, ok := token.(gojson.Delim); !ok || delim != '[' {
		return errors.Newf(errors.ErrorTypeMalformedInput, "expected top-level JSON array, got %v", token).
			WithDetail("byte_offset", decoder.InputOffset())
	}
	return nil
}

// expectArrayEnd consumes the closing bracket of the top-level array
func (e *Extractor) expectArrayEnd(decoder *gojson.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeMalformedInput, "input array not terminated").
			WithDetail("byte_offset", decoder.InputOffset())
	}
	if delim, ok := token.(gojson.Delim); !ok || delim != ']' {
		return errors.Newf(errors.ErrorTypeMalformedInput, "expected end of JSON array, got %v", token).
			WithDetail("byte_offset", decoder.InputOffset())
	}
	return nil
}

// reportProgress invokes the progress callback, isolating the extractor
// from callback panics. Telemetry is best-effort, never transactional.
func (e *Extractor) reportProgress(bytesRead, totalBytes, items uint64) {
	if e.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("progress callback panicked", zap.Any("panic", r))
		}
	}()
	e.progress(bytesRead, totalBytes, items)
}

// countingReader counts bytes handed to the decoder's buffer. The count
// tracks the underlying file position, not the decoder's logical offset,
// which is close enough for progress percentages.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

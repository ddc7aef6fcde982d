// Package dataset loads the compact canonical dataset into memory and gives
// the viewer core read-only indexed access to it. Unlike the raw source dump,
// the compact file is small enough to hold fully in memory; a Dataset is
// immutable after Load so it can be shared across goroutines without locking.
package dataset

import (
	"bufio"
	"os"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/json"
	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/metrics"
	"github.com/edatlas/galaxymap/pkg/record"
)

// Bounds is the axis-aligned bounding box of a dataset's coordinates.
type Bounds struct {
	Min record.Coords
	Max record.Coords
}

// Dataset is an immutable, position-indexed collection of canonical records.
type Dataset struct {
	path    string
	records []record.Canonical
	bounds  Bounds
}

// Load reads a compact dataset file produced by the extractor. The file is
// decoded element by element so a corrupt record reports its byte offset.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "dataset file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open dataset").
			WithDetail("path", path)
	}
	defer f.Close()

	decoder := json.GetDecoder(bufio.NewReader(f))
	defer json.PutDecoder(decoder)

	token, err := decoder.Token()
	if err != nil {
		return nil, parseError(err, path, decoder)
	}
	if delim, ok := token.(gojson.Delim); !ok || delim != '[' {
		return nil, errors.Newf(errors.ErrorTypeParse, "dataset is not a JSON array, got %v", token).
			WithDetail("path", path)
	}

	var records []record.Canonical
	for decoder.More() {
		var rec record.Canonical
		if err := decoder.Decode(&rec); err != nil {
			return nil, parseError(err, path, decoder)
		}
		records = append(records, rec)
	}
	if _, err := decoder.Token(); err != nil {
		return nil, parseError(err, path, decoder)
	}

	ds := &Dataset{
		path:    path,
		records: records,
		bounds:  computeBounds(records),
	}

	metrics.DatasetRecords.Set(float64(len(records)))
	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("records", len(records)))

	return ds, nil
}

func parseError(err error, path string, decoder *gojson.Decoder) *errors.Error {
	return errors.Wrap(err, errors.ErrorTypeParse, "failed to parse dataset").
		WithDetail("path", path).
		WithDetail("byte_offset", decoder.InputOffset())
}

// New wraps an in-memory record slice as a Dataset. The slice must not be
// mutated afterwards.
func New(records []record.Canonical) *Dataset {
	return &Dataset{
		records: records,
		bounds:  computeBounds(records),
	}
}

// Path returns the file the dataset was loaded from.
func (d *Dataset) Path() string { return d.path }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the record at index i. Indices are stable for the lifetime of
// the Dataset; the spatial index stores them instead of full records.
func (d *Dataset) At(i int32) record.Canonical { return d.records[i] }

// Iterate calls fn for every record in load order until fn returns false.
// Safe to call any number of times, including concurrently.
func (d *Dataset) Iterate(fn func(i int32, rec record.Canonical) bool) {
	for i := range d.records {
		if !fn(int32(i), d.records[i]) {
			return
		}
	}
}

// Bounds returns the dataset's coordinate bounding box. For an empty dataset
// the zero Bounds is returned.
func (d *Dataset) Bounds() Bounds { return d.bounds }

func computeBounds(records []record.Canonical) Bounds {
	if len(records) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: records[0].Coords, Max: records[0].Coords}
	for _, rec := range records[1:] {
		c := rec.Coords
		if c.X < b.Min.X {
			b.Min.X = c.X
		}
		if c.Y < b.Min.Y {
			b.Min.Y = c.Y
		}
		if c.Z < b.Min.Z {
			b.Min.Z = c.Z
		}
		if c.X > b.Max.X {
			b.Max.X = c.X
		}
		if c.Y > b.Max.Y {
			b.Max.Y = c.Y
		}
		if c.Z > b.Max.Z {
			b.Max.Z = c.Z
		}
	}
	return b
}

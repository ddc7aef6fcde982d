package spatial

import (
	"math"

	"go.uber.org/zap"

	"github.com/edatlas/galaxymap/pkg/dataset"
	"github.com/edatlas/galaxymap/pkg/errors"
	"github.com/edatlas/galaxymap/pkg/logger"
	"github.com/edatlas/galaxymap/pkg/metrics"
	"github.com/edatlas/galaxymap/pkg/record"
)

// Index is a uniform grid over the dataset's X/Y bounding box. Each record
// lands in exactly one cell; a query visits only the cells its viewport
// overlaps and then filters each candidate exactly, so interior cells
// contribute their records without per-record tests being the bottleneck.
// Immutable after Build.
type Index struct {
	ds *dataset.Dataset

	minX, minY float64
	cellW      float64
	cellH      float64
	cols, rows int

	// cells[row*cols+col] holds dataset indices, in dataset order.
	cells [][]int32
}

// Build constructs a grid index over ds. Cell size is derived from the
// dataset bounding box so the average occupancy lands near targetPerCell.
func Build(ds *dataset.Dataset, targetPerCell int) (*Index, error) {
	if targetPerCell <= 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "target per cell must be positive, got %d", targetPerCell)
	}

	n := ds.Len()
	bounds := ds.Bounds()
	width := bounds.Max.X - bounds.Min.X
	height := bounds.Max.Y - bounds.Min.Y

	// Square-ish grid with about n/target cells. Degenerate datasets
	// (empty, single point, collinear) collapse to a single cell on the
	// flat axis.
	cols, rows := 1, 1
	if n > targetPerCell {
		side := int(math.Ceil(math.Sqrt(float64(n) / float64(targetPerCell))))
		if width > 0 {
			cols = side
		}
		if height > 0 {
			rows = side
		}
	}

	idx := &Index{
		ds:    ds,
		minX:  bounds.Min.X,
		minY:  bounds.Min.Y,
		cellW: cellSize(width, cols),
		cellH: cellSize(height, rows),
		cols:  cols,
		rows:  rows,
		cells: make([][]int32, cols*rows),
	}

	ds.Iterate(func(i int32, rec record.Canonical) bool {
		cell := idx.cellFor(rec.Coords.X, rec.Coords.Y)
		idx.cells[cell] = append(idx.cells[cell], i)
		return true
	})

	logger.Info("spatial index built",
		zap.Int("records", n),
		zap.Int("cols", cols),
		zap.Int("rows", rows))

	return idx, nil
}

func cellSize(extent float64, cells int) float64 {
	if extent <= 0 {
		return 1
	}
	return extent / float64(cells)
}

// cellFor maps a coordinate to its cell, clamping onto the grid so points on
// the max edge of the bounding box stay in the last cell.
func (idx *Index) cellFor(x, y float64) int {
	col := int((x - idx.minX) / idx.cellW)
	row := int((y - idx.minY) / idx.cellH)
	col = clamp(col, 0, idx.cols-1)
	row = clamp(row, 0, idx.rows-1)
	return row*idx.cols + col
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Query returns the dataset indices of every record inside vp. Result order
// follows grid traversal and is not meaningful. Safe for concurrent use.
func (idx *Index) Query(vp Viewport) []int32 {
	timer := metrics.NewTimer("viewport_query")
	defer func() {
		metrics.QueryLatency.WithLabelValues("query").Observe(float64(timer.Stop().Nanoseconds()))
	}()

	if !vp.Valid() {
		return nil
	}

	minCol := clamp(int((vp.MinX-idx.minX)/idx.cellW), 0, idx.cols-1)
	maxCol := clamp(int((vp.MaxX-idx.minX)/idx.cellW), 0, idx.cols-1)
	minRow := clamp(int((vp.MinY-idx.minY)/idx.cellH), 0, idx.rows-1)
	maxRow := clamp(int((vp.MaxY-idx.minY)/idx.cellH), 0, idx.rows-1)

	var hits []int32
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, i := range idx.cells[row*idx.cols+col] {
				if vp.Contains(idx.ds.At(i).Coords) {
					hits = append(hits, i)
				}
			}
		}
	}
	return hits
}

// CellCount returns the grid dimensions, mainly for diagnostics.
func (idx *Index) CellCount() (cols, rows int) {
	return idx.cols, idx.rows
}

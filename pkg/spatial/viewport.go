// Package spatial provides the uniform grid index that answers viewport
// containment queries over a loaded dataset. The map is rendered on the
// galactic X/Y plane, so the index and viewport are two-dimensional; Z is
// carried through in records but never filtered on.
package spatial

import "github.com/edatlas/galaxymap/pkg/record"

// Viewport is an axis-aligned query window on the X/Y plane. Bounds are
// inclusive on all edges.
type Viewport struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// Width returns the X extent of the viewport.
func (v Viewport) Width() float64 { return v.MaxX - v.MinX }

// Height returns the Y extent of the viewport.
func (v Viewport) Height() float64 { return v.MaxY - v.MinY }

// Span returns the larger of the viewport's two extents. The sampler keys
// its budget tiers off this value.
func (v Viewport) Span() float64 {
	w, h := v.Width(), v.Height()
	if w > h {
		return w
	}
	return h
}

// Contains reports whether the coordinates fall inside the viewport.
func (v Viewport) Contains(c record.Coords) bool {
	return c.X >= v.MinX && c.X <= v.MaxX && c.Y >= v.MinY && c.Y <= v.MaxY
}

// Valid reports whether the viewport has non-negative extents.
func (v Viewport) Valid() bool {
	return v.MaxX >= v.MinX && v.MaxY >= v.MinY
}

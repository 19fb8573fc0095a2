package tilestore

import (
	"image"

	"github.com/gogpu/tileview/surface"
)

// RenderLevel describes how much of a tile needs or has rendering.
type RenderLevel uint8

const (
	// RenderNone means nothing to do / nothing done.
	RenderNone RenderLevel = iota
	// RenderArea limits work to the queued sub-rectangle.
	RenderArea
	// RenderAll covers the whole tile.
	RenderAll
)

// String returns the level name.
func (l RenderLevel) String() string {
	switch l {
	case RenderArea:
		return "area"
	case RenderAll:
		return "all"
	default:
		return "none"
	}
}

// Pass identifies one of the two render queues.
type Pass uint8

const (
	// PassFast is the cheap first pass.
	PassFast Pass = iota
	// PassQuality is the deferred high quality pass.
	PassQuality

	numPasses
)

// Handle is an opaque non-owning reference into a render queue.
// The zero Handle means no pending entry.
type Handle uint64

// Tile is one fixed grid cell of the rendered (display space) image.
//
// A tile's origin is grid aligned. W and H are the valid pixel extent and
// are smaller than the configured tile size at the right and bottom edges.
// Pixels and Surface are allocated lazily by Store.Prepare.
type Tile struct {
	// X, Y is the grid-aligned origin in display coordinates.
	X, Y int

	// W, H is the valid extent.
	W, H int

	// Pixels is the working buffer the painter fills. It always has the
	// full configured tile size.
	Pixels *image.RGBA

	// Surface is the drawable the window is painted from.
	Surface surface.Surface

	// Blank is set when the tile was filled without source data.
	Blank bool

	// Todo is the pending render level.
	Todo RenderLevel

	// Done is the highest level completed since the last invalidation.
	Done RenderLevel

	// Size is the number of bytes charged against the cache budget.
	Size int64

	pending [numPasses]Handle

	// MRU list links, head is most recently used.
	prev, next *Tile
}

// Bounds returns the tile's valid area in display coordinates.
func (t *Tile) Bounds() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.W, t.Y+t.H)
}

// Local returns the tile's valid area in tile-local coordinates.
func (t *Tile) Local() image.Rectangle {
	return image.Rect(0, 0, t.W, t.H)
}

// Pending returns the queue handle held for pass p, or zero.
func (t *Tile) Pending(p Pass) Handle {
	return t.pending[p]
}

// SetPending records the queue handle for pass p. Zero clears it.
func (t *Tile) SetPending(p Pass, h Handle) {
	t.pending[p] = h
}

// Queued reports whether the tile holds any live queue reference.
func (t *Tile) Queued() bool {
	for _, h := range t.pending {
		if h != 0 {
			return true
		}
	}
	return false
}

// Invalidate resets the tile so the next render covers all of it.
func (t *Tile) Invalidate() {
	t.Done = RenderNone
	t.Todo = RenderAll
}

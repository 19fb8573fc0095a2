// Package tilestore owns the grid of display tiles and keeps their memory
// under a byte budget.
//
// Tiles are created lazily on first reference and kept in most recently
// used order. When the budget is exceeded, eviction walks from the least
// recently used end and skips protected tiles: a tile holding a live queue
// handle is never evicted, and neither is a tile overlapping the visible
// rectangle.
//
// Store is not safe for concurrent use; it belongs to a single renderer.
package tilestore

import (
	"image"
	"log/slog"

	"github.com/gogpu/tileview/surface"
)

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// SurfaceFactory creates the drawable surface for a tile.
type SurfaceFactory func(width, height int) (surface.Surface, error)

// Stats reports cache usage.
type Stats struct {
	Tiles     int
	Bytes     int64
	Budget    int64
	Created   uint64
	Evictions uint64
}

// Store is a memory-bounded cache of tiles on a fixed grid.
type Store struct {
	tileW, tileH  int
	width, height int

	budget int64
	used   int64

	tiles   map[image.Point]*Tile
	mru     mruList
	visible image.Rectangle
	pool    bufferPool

	onRelease func(*Tile)

	created   uint64
	evictions uint64

	log *slog.Logger
}

// New creates a store for tiles of tileW x tileH pixels with the given
// byte budget.
func New(tileW, tileH int, budget int64, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{
		tileW:  max(tileW, 1),
		tileH:  max(tileH, 1),
		budget: budget,
		tiles:  make(map[image.Point]*Tile),
		log:    log,
	}
}

// TileSize returns the configured tile dimensions.
func (s *Store) TileSize() (int, int) {
	return s.tileW, s.tileH
}

// TileBytes returns the bytes charged for one tile: its working buffer
// plus its drawable surface.
func (s *Store) TileBytes() int64 {
	return 2 * int64(s.tileW) * int64(s.tileH) * BytesPerPixel
}

// Size returns the display size tiles are clipped to.
func (s *Store) Size() (int, int) {
	return s.width, s.height
}

// SetSize sets the display size without touching existing tiles.
func (s *Store) SetSize(width, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
}

// OnRelease registers fn to be called for every tile that leaves the store.
func (s *Store) OnRelease(fn func(*Tile)) {
	s.onRelease = fn
}

// SetVisible sets the rectangle whose tiles are protected from eviction.
func (s *Store) SetVisible(r image.Rectangle) {
	s.visible = r
}

// Visible returns the protected rectangle.
func (s *Store) Visible() image.Rectangle {
	return s.visible
}

// IsVisible reports whether t overlaps the visible rectangle.
func (s *Store) IsVisible(t *Tile) bool {
	return t.Bounds().Overlaps(s.visible)
}

// Align rounds (x, y) down to the grid cell containing it.
func (s *Store) Align(x, y int) (int, int) {
	return floorTo(x, s.tileW), floorTo(y, s.tileH)
}

// Get returns the tile at the cell containing (x, y), or nil. The tile is
// not promoted.
func (s *Store) Get(x, y int) *Tile {
	x, y = s.Align(x, y)
	return s.tiles[image.Pt(x, y)]
}

// GetOrCreate returns the tile for the cell containing (x, y), promoted to
// most recently used. A missing tile is created. An eviction pass then
// runs that never evicts the requested tile. Coordinates outside the display are
// clamped to the nearest cell; nil is returned only for an empty display.
func (s *Store) GetOrCreate(x, y int) *Tile {
	if s.width <= 0 || s.height <= 0 {
		return nil
	}
	x = min(max(x, 0), s.width-1)
	y = min(max(y, 0), s.height-1)
	x, y = s.Align(x, y)

	key := image.Pt(x, y)
	if t, ok := s.tiles[key]; ok {
		s.mru.MoveToFront(t)
		s.evict(t)
		return t
	}

	t := &Tile{
		X:    x,
		Y:    y,
		W:    min(s.tileW, s.width-x),
		H:    min(s.tileH, s.height-y),
		Todo: RenderAll,
		Size: s.TileBytes(),
	}
	s.tiles[key] = t
	s.mru.PushFront(t)
	s.used += t.Size
	s.created++

	s.evict(t)
	return t
}

// Prepare allocates the tile's working buffer and surface if missing.
// It returns false when the surface cannot be created; the tile then
// stays without a surface and a later call retries.
func (s *Store) Prepare(t *Tile, create SurfaceFactory) bool {
	if t.Pixels == nil {
		t.Pixels = s.pool.Get(s.tileW, s.tileH)
	}
	if t.Surface == nil {
		sf, err := create(s.tileW, s.tileH)
		if err != nil || sf == nil {
			s.log.Warn("tilestore: tile surface allocation failed",
				"x", t.X, "y", t.Y, "err", err)
			return false
		}
		t.Surface = sf
	}
	return true
}

// InvalidateRegion marks every tile intersecting r, rounded out to the
// grid, for a full re-render. Nothing is evicted.
func (s *Store) InvalidateRegion(r image.Rectangle) {
	r = r.Canon()
	grid := image.Rect(
		floorTo(r.Min.X, s.tileW), floorTo(r.Min.Y, s.tileH),
		ceilTo(r.Max.X, s.tileW), ceilTo(r.Max.Y, s.tileH),
	)
	for t := s.mru.head; t != nil; t = t.next {
		if t.Bounds().Overlaps(grid) {
			t.Invalidate()
		}
	}
}

// InvalidateAll marks every tile for re-render after a change of the
// display size to width x height. Edge extents are recomputed and tiles
// lying wholly outside the new size are released.
func (s *Store) InvalidateAll(width, height int) {
	s.SetSize(width, height)
	for t := s.mru.head; t != nil; {
		next := t.next
		if t.X >= s.width || t.Y >= s.height {
			s.release(t)
		} else {
			t.W = min(s.tileW, s.width-t.X)
			t.H = min(s.tileH, s.height-t.Y)
			t.Blank = false
			t.Invalidate()
		}
		t = next
	}
}

// SetBudget changes the byte budget and evicts down to it.
func (s *Store) SetBudget(bytes int64) {
	s.budget = bytes
	s.evict(nil)
}

// Budget returns the byte budget.
func (s *Store) Budget() int64 {
	return s.budget
}

// Tiles returns all tiles, most recently used first.
func (s *Store) Tiles() []*Tile {
	out := make([]*Tile, 0, s.mru.Len())
	for t := s.mru.head; t != nil; t = t.next {
		out = append(out, t)
	}
	return out
}

// Len returns the number of resident tiles.
func (s *Store) Len() int {
	return s.mru.Len()
}

// FreeAll releases every tile.
func (s *Store) FreeAll() {
	for t := s.mru.head; t != nil; {
		next := t.next
		s.release(t)
		t = next
	}
	s.mru.Clear()
	s.used = 0
}

// Stats returns cache usage counters.
func (s *Store) Stats() Stats {
	return Stats{
		Tiles:     s.mru.Len(),
		Bytes:     s.used,
		Budget:    s.budget,
		Created:   s.created,
		Evictions: s.evictions,
	}
}

// evictable reports whether t may be dropped. A live queue handle is an
// unconditional veto; visibility is a second, independent one.
func (s *Store) evictable(t *Tile) bool {
	return !t.Queued() && !s.IsVisible(t)
}

// evict walks from the least recently used end, releasing unprotected
// tiles until usage fits the budget. keep is never released.
func (s *Store) evict(keep *Tile) {
	for t := s.mru.Oldest(); t != nil && s.used > s.budget; {
		prev := t.prev
		if t != keep && s.evictable(t) {
			s.log.Debug("tilestore: evict", "x", t.X, "y", t.Y, "bytes", s.used)
			s.release(t)
			s.evictions++
		}
		t = prev
	}
}

// release removes t from the store and frees its buffers.
func (s *Store) release(t *Tile) {
	delete(s.tiles, image.Pt(t.X, t.Y))
	s.mru.Remove(t)
	s.used -= t.Size

	s.pool.Put(t.Pixels)
	t.Pixels = nil
	if t.Surface != nil {
		_ = t.Surface.Close()
		t.Surface = nil
	}
	if s.onRelease != nil {
		s.onRelease(t)
	}
}

// floorTo rounds v down to a multiple of n.
func floorTo(v, n int) int {
	if v >= 0 {
		return v - v%n
	}
	return -((-v + n - 1) / n * n)
}

// ceilTo rounds v up to a multiple of n.
func ceilTo(v, n int) int {
	return -floorTo(-v, n)
}

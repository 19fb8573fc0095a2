// Package queue coalesces damage rectangles into per-tile render work
// across a fast pass and a quality pass.
//
// Each tile has at most one pending entry per pass. A tile refers to its
// entries only through tilestore.Handle values; the queue owns the entries
// and resolves handles for O(1) merging.
package queue

import (
	"image"
	"log/slog"

	"github.com/gogpu/tileview/internal/tilestore"
)

// Entry is one unit of render work: a damaged rectangle of one tile.
type Entry struct {
	Tile *tilestore.Tile

	// Rect is the damage in tile-local coordinates.
	Rect image.Rectangle

	// NewData reports that source pixels changed under Rect.
	NewData bool

	pass   tilestore.Pass
	handle tilestore.Handle
}

// Pass returns the pass the entry is queued on.
func (e *Entry) Pass() tilestore.Pass {
	return e.pass
}

// merge grows e to cover rect.
func (e *Entry) merge(rect image.Rectangle, newData bool) {
	e.Rect = e.Rect.Union(rect)
	e.NewData = e.NewData || newData
}

// Queue holds the two FIFO passes.
type Queue struct {
	store   *tilestore.Store
	passes  [2][]*Entry
	entries map[tilestore.Handle]*Entry
	next    tilestore.Handle
	log     *slog.Logger
}

// New creates a queue over store. The queue forgets entries of tiles the
// store releases.
func New(store *tilestore.Store, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	q := &Queue{
		store:   store,
		entries: make(map[tilestore.Handle]*Entry),
		log:     log,
	}
	store.OnRelease(q.forget)
	return q
}

// Enqueue splits r (display coordinates) into grid cells and merges each
// into the tile's pending fast entry, or appends a new one.
//
// r is clipped to the display. With clamp, a request that does not
// intersect the visible rectangle is dropped, otherwise it is cut down to
// the intersection; this bounds queued work by the viewport size. With
// onlyExisting, cells outside the visible rectangle are only queued if
// their tile already exists. Enqueue reports whether the request was
// accepted.
func (q *Queue) Enqueue(r image.Rectangle, clamp bool, level tilestore.RenderLevel, newData, onlyExisting bool) bool {
	w, h := q.store.Size()
	r = r.Canon().Intersect(image.Rect(0, 0, w, h))
	if r.Empty() {
		return false
	}

	visible := q.store.Visible()
	if clamp {
		r = r.Intersect(visible)
		if r.Empty() {
			return false
		}
	}

	tw, th := q.store.TileSize()
	x0, y0 := q.store.Align(r.Min.X, r.Min.Y)
	for y := y0; y < r.Max.Y; y += th {
		for x := x0; x < r.Max.X; x += tw {
			cell := image.Rect(x, y, x+tw, y+th)

			var t *tilestore.Tile
			if onlyExisting && !cell.Overlaps(visible) {
				t = q.store.Get(x, y)
			} else {
				t = q.store.GetOrCreate(x, y)
			}
			if t == nil {
				continue
			}

			if (level == tilestore.RenderAll && t.Done != tilestore.RenderAll) ||
				(level == tilestore.RenderArea && t.Todo != tilestore.RenderAll) {
				t.Todo = level
			}

			local := r.Intersect(t.Bounds()).Sub(image.Pt(t.X, t.Y))
			if local.Empty() {
				continue
			}
			q.add(t, tilestore.PassFast, local, newData)
		}
	}
	return true
}

// add merges rect into t's entry on pass p or appends a new entry.
func (q *Queue) add(t *tilestore.Tile, p tilestore.Pass, rect image.Rectangle, newData bool) {
	if e, ok := q.entries[t.Pending(p)]; ok {
		e.merge(rect, newData)
		return
	}

	q.next++
	e := &Entry{Tile: t, Rect: rect, NewData: newData, pass: p, handle: q.next}
	q.entries[e.handle] = e
	q.passes[p] = append(q.passes[p], e)
	t.SetPending(p, e.handle)
}

// Front returns the oldest entry of pass p without removing it.
func (q *Queue) Front(p tilestore.Pass) *Entry {
	if len(q.passes[p]) == 0 {
		return nil
	}
	return q.passes[p][0]
}

// Done removes e, which must be the front of its pass. When requeue is set
// and e came from the fast pass, its work moves to the quality pass,
// merging into the tile's existing quality entry if there is one.
func (q *Queue) Done(e *Entry, requeue bool) {
	if q.Front(e.pass) != e {
		return
	}
	q.passes[e.pass][0] = nil
	q.passes[e.pass] = q.passes[e.pass][1:]
	delete(q.entries, e.handle)
	e.Tile.SetPending(e.pass, 0)

	if requeue && e.pass == tilestore.PassFast {
		q.add(e.Tile, tilestore.PassQuality, e.Rect, e.NewData)
	}
}

// Len returns the number of entries on pass p.
func (q *Queue) Len(p tilestore.Pass) int {
	return len(q.passes[p])
}

// Empty reports whether both passes are empty.
func (q *Queue) Empty() bool {
	return len(q.passes[tilestore.PassFast]) == 0 && len(q.passes[tilestore.PassQuality]) == 0
}

// Area returns the total damaged pixel area queued on pass p.
func (q *Queue) Area(p tilestore.Pass) int {
	area := 0
	for _, e := range q.passes[p] {
		area += e.Rect.Dx() * e.Rect.Dy()
	}
	return area
}

// Clear drops every entry and clears the tiles' handles. No notification
// is sent for dropped work.
func (q *Queue) Clear() {
	for p := range q.passes {
		for i, e := range q.passes[p] {
			e.Tile.SetPending(e.pass, 0)
			q.passes[p][i] = nil
		}
		q.passes[p] = q.passes[p][:0]
	}
	clear(q.entries)
}

// forget removes the entries of a tile that left the store.
func (q *Queue) forget(t *tilestore.Tile) {
	for p := range q.passes {
		h := t.Pending(tilestore.Pass(p))
		e, ok := q.entries[h]
		if !ok {
			continue
		}
		delete(q.entries, h)
		t.SetPending(tilestore.Pass(p), 0)
		list := q.passes[p]
		for i := range list {
			if list[i] == e {
				q.passes[p] = append(list[:i], list[i+1:]...)
				break
			}
		}
		q.log.Debug("queue: dropped entry of released tile", "x", t.X, "y", t.Y)
	}
}

// Package overlay keeps positioned images that are composited over the
// rendered tiles, such as icons and on-screen-display text.
//
// Positions are in window coordinates. A Relative overlay with a negative
// coordinate is anchored to the right or bottom edge of the viewport and
// moves when the viewport is resized.
package overlay

import (
	"image"
	"log/slog"
	"slices"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileview/surface"
)

// Flags modify how an overlay is positioned.
type Flags uint8

const (
	// Relative anchors negative coordinates to the far viewport edges.
	Relative Flags = 1 << iota
)

// Overlay is one placed image.
type Overlay struct {
	ID    int
	Image image.Image
	X, Y  int
	Flags Flags
}

// Placed is an overlay together with its resolved window rectangle.
type Placed struct {
	*Overlay
	Rect image.Rectangle
}

// Drawer is the part of a surface overlays are composited onto.
type Drawer interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point, op xdraw.Op)
}

// Manager owns the overlays of one renderer.
type Manager struct {
	items  []*Overlay
	vw, vh int

	chunkW, chunkH int
	scratch        surface.Surface

	log *slog.Logger
}

// New creates a manager that composites in chunks of at most
// chunkW x chunkH pixels.
func New(chunkW, chunkH int, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		chunkW: max(chunkW, 1),
		chunkH: max(chunkH, 1),
		log:    log,
	}
}

// SetViewport sets the size Relative overlays are anchored against.
func (m *Manager) SetViewport(w, h int) {
	m.vw, m.vh = w, h
}

// Add places img at (x, y) and returns its id, the smallest positive id
// not in use. A nil image is rejected with id 0.
func (m *Manager) Add(img image.Image, x, y int, flags Flags) int {
	if img == nil {
		return 0
	}
	id := 1
	for _, o := range m.sortedIDs() {
		if o != id {
			break
		}
		id++
	}
	m.items = append(m.items, &Overlay{ID: id, Image: img, X: x, Y: y, Flags: flags})
	m.log.Debug("overlay: added", "id", id, "x", x, "y", y)
	return id
}

// Set replaces the image and position of overlay id. A nil image removes
// it. Set reports whether id was live.
func (m *Manager) Set(id int, img image.Image, x, y int) bool {
	if img == nil {
		return m.Remove(id)
	}
	o := m.find(id)
	if o == nil {
		return false
	}
	o.Image, o.X, o.Y = img, x, y
	return true
}

// Get returns the image and requested position of overlay id.
func (m *Manager) Get(id int) (image.Image, int, int, bool) {
	o := m.find(id)
	if o == nil {
		return nil, 0, 0, false
	}
	return o.Image, o.X, o.Y, true
}

// Remove deletes overlay id and reports whether it was live.
func (m *Manager) Remove(id int) bool {
	i := slices.IndexFunc(m.items, func(o *Overlay) bool { return o.ID == id })
	if i < 0 {
		return false
	}
	m.items = slices.Delete(m.items, i, i+1)
	return true
}

// Len returns the number of overlays.
func (m *Manager) Len() int {
	return len(m.items)
}

// Bounds returns the window rectangle overlay id currently covers.
func (m *Manager) Bounds(id int) (image.Rectangle, bool) {
	o := m.find(id)
	if o == nil {
		return image.Rectangle{}, false
	}
	return m.place(o), true
}

// All returns every overlay with its resolved rectangle, in insertion
// order. Later overlays draw on top.
func (m *Manager) All() []Placed {
	out := make([]Placed, 0, len(m.items))
	for _, o := range m.items {
		out = append(out, Placed{Overlay: o, Rect: m.place(o)})
	}
	return out
}

// Intersecting returns the overlays whose rectangle overlaps r.
func (m *Manager) Intersecting(r image.Rectangle) []Placed {
	var out []Placed
	for _, o := range m.items {
		if rect := m.place(o); rect.Overlaps(r) {
			out = append(out, Placed{Overlay: o, Rect: rect})
		}
	}
	return out
}

// Composite draws every overlay intersecting area onto dst with Over.
// The window point area.Min lands on dp in dst.
func (m *Manager) Composite(dst Drawer, area image.Rectangle, dp image.Point) {
	delta := dp.Sub(area.Min)
	for _, p := range m.Intersecting(area) {
		ov := p.Rect.Intersect(area)
		sp := p.Image.Bounds().Min.Add(ov.Min.Sub(p.Rect.Min))
		dst.Draw(ov.Add(delta), p.Image, sp, xdraw.Over)
	}
}

// Draw repaints the parts of area covered by overlays onto win, shifted by
// off. The covered area is split into disjoint chunks; for each, base
// fills a scratch surface with what lies under the overlays (the window
// rectangle r drawn at the scratch origin), overlays are composited on top
// and the chunk is painted to win in one step. Every window pixel is
// painted at most once, however many overlays overlap it.
func (m *Manager) Draw(win surface.Surface, area image.Rectangle, off image.Point, base func(dst surface.Surface, r image.Rectangle)) {
	placed := m.Intersecting(area)
	var cover image.Rectangle
	for _, p := range placed {
		cover = cover.Union(p.Rect.Intersect(area))
	}
	for y := cover.Min.Y; y < cover.Max.Y; y += m.chunkH {
		for x := cover.Min.X; x < cover.Max.X; x += m.chunkW {
			cell := image.Rect(x, y, min(x+m.chunkW, cover.Max.X), min(y+m.chunkH, cover.Max.Y))
			var c image.Rectangle
			for _, p := range placed {
				c = c.Union(p.Rect.Intersect(cell))
			}
			if !c.Empty() {
				m.drawChunk(win, c, off, base)
			}
		}
	}
}

func (m *Manager) drawChunk(win surface.Surface, c image.Rectangle, off image.Point, base func(surface.Surface, image.Rectangle)) {
	if m.scratch == nil {
		s, err := win.CreateSimilar(m.chunkW, m.chunkH)
		if err != nil {
			m.log.Warn("overlay: scratch surface allocation failed", "err", err)
			return
		}
		m.scratch = s
	}

	base(m.scratch, c)
	m.Composite(m.scratch, c, image.Point{})
	win.Paint(c.Add(off), m.scratch, image.Point{})
}

// Close releases the scratch surface.
func (m *Manager) Close() {
	if m.scratch != nil {
		m.scratch.Close()
		m.scratch = nil
	}
}

func (m *Manager) find(id int) *Overlay {
	for _, o := range m.items {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (m *Manager) sortedIDs() []int {
	ids := make([]int, len(m.items))
	for i, o := range m.items {
		ids[i] = o.ID
	}
	slices.Sort(ids)
	return ids
}

// place resolves the window rectangle of o.
func (m *Manager) place(o *Overlay) image.Rectangle {
	b := o.Image.Bounds()
	x, y := o.X, o.Y
	if o.Flags&Relative != 0 {
		if x < 0 {
			x = m.vw - b.Dx() + x
		}
		if y < 0 {
			y = m.vh - b.Dy() + y
		}
	}
	return image.Rect(x, y, x+b.Dx(), y+b.Dy())
}

package tileview

import (
	"image"

	"github.com/gogpu/tileview/internal/overlay"
	"github.com/gogpu/tileview/internal/tilestore"
)

// OverlayFlags control overlay placement.
type OverlayFlags = overlay.Flags

// OverlayRelative anchors negative overlay coordinates to the right and
// bottom viewport edges.
const OverlayRelative = overlay.Relative

// OverlayAdd places img over the view at viewport position (x, y) and
// returns its id, the smallest unused id starting at 1. A nil img is
// rejected with id 0.
func (r *Renderer) OverlayAdd(img image.Image, x, y int, flags OverlayFlags) int {
	id := r.overlays.Add(img, x, y, flags)
	if id == 0 {
		return 0
	}
	if b, ok := r.overlays.Bounds(id); ok {
		r.overlayQueueDraw(r.view(), b, 0, 0, 0, 0)
	}
	return id
}

// OverlaySet replaces the image and position of overlay id. A nil img
// removes it. It reports whether id exists.
func (r *Renderer) OverlaySet(id int, img image.Image, x, y int) bool {
	old, ok := r.overlays.Bounds(id)
	if !ok {
		return false
	}
	r.overlays.Set(id, img, x, y)

	v := r.view()
	r.overlayQueueDraw(v, old, 0, 0, 0, 0)
	if b, ok := r.overlays.Bounds(id); ok && b != old {
		r.overlayQueueDraw(v, b, 0, 0, 0, 0)
	}
	return true
}

// OverlayGet returns the image and position of overlay id.
func (r *Renderer) OverlayGet(id int) (img image.Image, x, y int, ok bool) {
	return r.overlays.Get(id)
}

// OverlayRemove removes overlay id and repaints what it covered.
func (r *Renderer) OverlayRemove(id int) bool {
	old, ok := r.overlays.Bounds(id)
	if !ok || !r.overlays.Remove(id) {
		return false
	}
	r.overlayQueueDraw(r.view(), old, 0, 0, 0, 0)
	return true
}

// overlayQueueDraw repaints the viewport rectangle rect grown by x1, y1 on
// the left and top and by x2, y2 on the right and bottom.
func (r *Renderer) overlayQueueDraw(v *View, rect image.Rectangle, x1, y1, x2, y2 int) {
	r.syncScroll(v)
	rect = image.Rect(rect.Min.X-x1, rect.Min.Y-y1, rect.Max.X+x2, rect.Max.Y+y2)
	d := rect.Add(image.Pt(r.xScroll-v.XOffset, r.yScroll-v.YOffset))
	r.enqueue(v, d, false, tilestore.RenderAll, false, false)
	r.borderDraw(v, rect)
}

func (r *Renderer) overlayQueueAll(v *View, x1, y1, x2, y2 int) {
	for _, p := range r.overlays.All() {
		r.overlayQueueDraw(v, p.Rect, x1, y1, x2, y2)
	}
}

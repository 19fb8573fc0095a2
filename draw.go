package tileview

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileview/internal/paint"
	"github.com/gogpu/tileview/internal/tilestore"
	"github.com/gogpu/tileview/surface"
)

// Scroll reports that the controller moved the scroll position by
// (dx, dy). The still visible part of the window is shifted in place and
// only the exposed strips are queued.
func (r *Renderer) Scroll(dx, dy int) {
	v := r.view()
	r.syncScroll(v)
	if r.stereo&StereoMirror != 0 {
		dx = -dx
	}
	if r.stereo&StereoFlip != 0 {
		dy = -dy
	}

	w := v.VisWidth - abs(dx)
	h := v.VisHeight - abs(dy)
	if w < 1 || h < 1 {
		r.enqueue(v, image.Rect(0, 0, v.Width, v.Height), true, tilestore.RenderAll, false, false)
		return
	}

	x1, x2 := 0, dx
	if dx < 0 {
		x1, x2 = -dx, 0
	}
	y1, y2 := 0, dy
	if dy < 0 {
		y1, y2 = -dy, 0
	}

	// Window content at (x2, y2) moves to (x1, y1).
	org := image.Pt(v.XOffset, v.YOffset).Add(r.stereoOff)
	src := image.Rect(x2, y2, x2+w, y2+h).Add(org)
	r.copyArea(src, image.Pt(x1, y1).Add(org))

	r.overlayQueueAll(v, x2, y2, x1, y1)

	if ew := v.VisWidth - w; ew > 0 {
		x := r.xScroll
		if dx > 0 {
			x = r.xScroll + v.VisWidth - ew
		}
		r.enqueue(v, image.Rect(x, r.yScroll, x+ew, r.yScroll+v.VisHeight), true, tilestore.RenderAll, false, false)
	}
	if eh := v.VisHeight - h; eh > 0 {
		y := r.yScroll
		if dy > 0 {
			y = r.yScroll + v.VisHeight - eh
		}
		r.enqueue(v, image.Rect(r.xScroll, y, r.xScroll+v.VisWidth, y+eh), true, tilestore.RenderAll, false, false)
	}
}

// copyArea moves window pixels from src to dp, through a snapshot when the
// surface cannot move its own content.
func (r *Renderer) copyArea(src image.Rectangle, dp image.Point) {
	if s, ok := r.win.(surface.Scroller); ok {
		s.CopyArea(src, dp)
		return
	}
	snap := r.win.Snapshot()
	if snap == nil {
		return
	}
	r.win.Draw(image.Rectangle{Min: dp, Max: dp.Add(src.Size())}, snap, src.Min, xdraw.Src)
}

// exposeTile renders the tile-local rectangle rect of t and paints the
// visible part of it to the window, with overlays on top.
func (r *Renderer) exposeTile(v *View, t *tilestore.Tile, rect image.Rectangle, newData, fast bool) {
	prm := r.params(v)

	// Tiles touching the visible edge still count as visible.
	if t.X+t.W < r.xScroll || t.X >= r.xScroll+v.VisWidth ||
		t.Y+t.H < r.yScroll || t.Y >= r.yScroll+v.VisHeight {
		// Scrolled away: keep cached pixels current without painting.
		if newData {
			t.Blank = false
			if t.Surface != nil && t.Done == tilestore.RenderAll {
				r.painter.Render(t, rect, newData, fast, prm)
			}
		}
		return
	}

	vis := v.visible(r.xScroll, r.yScroll).Sub(image.Pt(t.X, t.Y))
	local := rect.Intersect(vis)
	if local.Empty() {
		return
	}

	r.painter.Render(t, local, newData, fast, prm)
	if t.Surface == nil {
		return
	}

	org := image.Pt(v.XOffset+t.X-r.xScroll, v.YOffset+t.Y-r.yScroll)
	dst := local.Add(org)
	r.win.Paint(dst.Add(r.stereoOff), t.Surface, local.Min)
	r.overlays.Draw(r.win, dst, r.stereoOff, func(s surface.Surface, c image.Rectangle) {
		s.Paint(image.Rect(0, 0, c.Dx(), c.Dy()), t.Surface, c.Min.Sub(org))
	})
}

// params fills the painter parameters for the current view.
func (r *Renderer) params(v *View) *paint.Params {
	primary, secondary := r.stereo.eyeOffsets(v)
	r.prm = paint.Params{
		Image:           v.Image,
		ImageWidth:      v.ImageWidth,
		ImageHeight:     v.ImageHeight,
		Alpha:           v.Alpha,
		Source:          v.Source,
		Width:           v.Width,
		Height:          v.Height,
		Orientation:     r.orientation(v),
		Quality:         r.quality(v).Interpolator(),
		PrimaryOffset:   primary,
		SecondaryOffset: secondary,
		Anaglyph:        r.stereo.anaglyph(),
		PostProcess:     v.PostProcess,
		PostProcessSlow: v.PostProcessSlow,
	}
	return &r.prm
}

// borderDraw fills the parts of viewport rectangle rect outside the
// display with the background, overlays included.
func (r *Renderer) borderDraw(v *View, rect image.Rectangle) {
	if !v.hasImage() {
		r.fillBorder(v, rect.Intersect(image.Rect(0, 0, v.ViewportWidth, v.ViewportHeight)))
		return
	}

	right := v.XOffset + v.VisWidth
	bottom := v.YOffset + v.VisHeight
	strips := [...]image.Rectangle{
		image.Rect(0, 0, v.XOffset, v.ViewportHeight),
		image.Rect(right, 0, v.ViewportWidth, v.ViewportHeight),
		image.Rect(v.XOffset, 0, right, v.YOffset),
		image.Rect(v.XOffset, bottom, right, v.ViewportHeight),
	}
	for _, s := range strips {
		r.fillBorder(v, s.Intersect(rect))
	}
}

func (r *Renderer) fillBorder(v *View, a image.Rectangle) {
	if a.Empty() {
		return
	}
	bg := r.background(v)
	r.win.FillRect(a.Add(r.stereoOff), bg)
	r.overlays.Draw(r.win, a, r.stereoOff, func(s surface.Surface, c image.Rectangle) {
		s.FillRect(image.Rect(0, 0, c.Dx(), c.Dy()), bg)
	})
}

func (r *Renderer) borderClear(v *View) {
	r.borderDraw(v, image.Rect(0, 0, v.ViewportWidth, v.ViewportHeight))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Package paint produces the pixel content of a tile sub-rectangle.
//
// Pixels are sampled from the decoded source image (or from a set of
// partial-decode source tiles) with golang.org/x/image/draw interpolators,
// mapped through the display orientation, optionally combined with a
// second eye for anaglyph stereo and handed to a post-process callback
// before the tile surface is updated.
package paint

import (
	"image"
	"image/color"
	"log/slog"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileview/internal/tilestore"
	"github.com/gogpu/tileview/orient"
)

// MinScaleSize is the display size below which nearest sampling is always
// used.
const MinScaleSize = 8

// SourceTile is one partially decoded chunk of a large source image.
type SourceTile struct {
	// X, Y is the chunk origin in source image coordinates.
	X, Y int

	// Image holds the chunk pixels. Its bounds need not start at (0, 0).
	Image image.Image

	// Blank marks a chunk that has not been decoded yet.
	Blank bool
}

// SourceTiler supplies source tiles for images too large to hold decoded.
type SourceTiler interface {
	// TileSize returns the source tile dimensions.
	TileSize() (width, height int)

	// Region returns the tiles intersecting r, in source coordinates,
	// decoding them as needed.
	Region(r image.Rectangle) []SourceTile
}

// Params describes the source and the display mapping for one render.
type Params struct {
	// Image is the decoded source. It may hold both stereo eyes side by
	// side; ImageWidth is then the width of one eye.
	Image                   image.Image
	ImageWidth, ImageHeight int
	Alpha                   bool

	// Source replaces Image when set.
	Source SourceTiler

	// Width, Height is the display size (scaled and oriented).
	Width, Height int

	Orientation orient.Orientation

	// Quality is the interpolator of non-fast renders. Nil means
	// ApproxBiLinear.
	Quality xdraw.Interpolator

	// PrimaryOffset and SecondaryOffset are the source x offsets of the
	// displayed eye and of the eye combined for anaglyph output. For
	// anaglyph output the primary eye is the left one.
	PrimaryOffset, SecondaryOffset int
	Anaglyph                       Anaglyph

	// PostProcess runs on the fresh tile-local rectangle of dst.
	PostProcess     func(dst *image.RGBA, r image.Rectangle)
	PostProcessSlow bool
}

// Options configures a Painter.
type Options struct {
	Background   color.RGBA
	CheckColor1  color.RGBA
	CheckColor2  color.RGBA
	CheckSize    int
	SurfaceAlloc tilestore.SurfaceFactory
}

// Painter renders tiles.
//
// A Painter owns two scratch buffers, for orientation and for the second
// anaglyph eye, and reuses them across calls. It is not reentrant.
type Painter struct {
	store *tilestore.Store
	opts  Options

	scratch *image.RGBA
	spare   *image.RGBA

	log *slog.Logger
}

// New creates a painter drawing tiles of store.
func New(store *tilestore.Store, opts Options, log *slog.Logger) *Painter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.CheckSize <= 0 {
		opts.CheckSize = 16
	}
	tw, th := store.TileSize()
	n := max(tw, th, 1)
	return &Painter{
		store:   store,
		opts:    opts,
		scratch: image.NewRGBA(image.Rect(0, 0, n, n)),
		spare:   image.NewRGBA(image.Rect(0, 0, n, n)),
		log:     log,
	}
}

// SetBackground sets the color of blank tiles and uncovered pixels.
func (p *Painter) SetBackground(c color.RGBA) {
	p.opts.Background = c
}

// Render fills the tile-local rectangle r of t and updates its surface.
// It reports whether the surface changed.
//
// Render never fails: missing source data degrades to a flat fill and a
// surface allocation failure leaves the tile untouched for a later retry.
func (p *Painter) Render(t *tilestore.Tile, r image.Rectangle, newData, fast bool, prm *Params) bool {
	if t.Todo == tilestore.RenderNone && t.Surface != nil && !newData {
		return false
	}
	if !p.store.Prepare(t, p.opts.SurfaceAlloc) {
		return false
	}

	if t.Done != tilestore.RenderAll {
		r = t.Local()
		if !fast {
			t.Done = tilestore.RenderAll
		}
	} else if t.Todo != tilestore.RenderArea {
		if !fast {
			t.Todo = tilestore.RenderNone
		}
		return false
	}
	if !fast {
		t.Todo = tilestore.RenderNone
	}
	if newData {
		t.Blank = false
	}

	r = r.Intersect(t.Local())
	if r.Empty() {
		return false
	}

	if prm == nil || prm.missing() {
		t.Blank = true
	}
	if t.Blank {
		p.fillBlank(t)
		return true
	}

	if prm.Width < MinScaleSize || prm.Height < MinScaleSize {
		fast = true
	}
	if !p.sampleTile(t, r, fast, prm) {
		p.log.Debug("paint: no source pixels", "x", t.X, "y", t.Y, "rect", r)
		return false
	}

	if prm.PostProcess != nil && !(prm.PostProcessSlow && fast) {
		prm.PostProcess(t.Pixels, r)
	}
	t.Surface.Draw(r, t.Pixels, r.Min, xdraw.Src)
	return true
}

// missing reports whether there is nothing to sample from.
func (prm *Params) missing() bool {
	if prm.Source == nil && prm.Image == nil {
		return true
	}
	return prm.ImageWidth <= 0 || prm.ImageHeight <= 0 || prm.Width <= 0 || prm.Height <= 0
}

// fillBlank paints the whole tile with the background.
func (p *Painter) fillBlank(t *tilestore.Tile) {
	bg := image.NewUniform(p.opts.Background)
	xdraw.Draw(t.Pixels, t.Local(), bg, image.Point{}, xdraw.Src)
	t.Surface.FillRect(t.Local(), p.opts.Background)
}

// sampleTile samples the display rectangle r of t into its pixels.
func (p *Painter) sampleTile(t *tilestore.Tile, r image.Rectangle, fast bool, prm *Params) bool {
	o := prm.Orientation.Normalize()

	var interp xdraw.Interpolator = xdraw.NearestNeighbor
	if !fast {
		interp = prm.Quality
		if interp == nil {
			interp = xdraw.ApproxBiLinear
		}
	}

	// Unrotated scaled dimensions and scale factors.
	sw, sh := orient.SourceSize(o, prm.Width, prm.Height)
	sx := float64(sw) / float64(prm.ImageWidth)
	sy := float64(sh) / float64(prm.ImageHeight)

	abs := r.Add(image.Pt(t.X, t.Y))
	u := orient.MapRegionReverse(o, abs, sw, sh)

	var dst *image.RGBA
	if o == orient.TopLeft {
		dst = t.Pixels.SubImage(r).(*image.RGBA)
	} else {
		dst = p.scratch.SubImage(image.Rect(0, 0, u.Dx(), u.Dy())).(*image.RGBA)
	}

	s := sampler{u: u, sx: sx, sy: sy, interp: interp, opts: &p.opts}
	if !s.sample(dst, prm.PrimaryOffset, prm) {
		return false
	}

	if prm.Anaglyph != AnaglyphNone && (prm.PrimaryOffset > 0 || prm.SecondaryOffset > 0) {
		second := p.spare.SubImage(image.Rect(0, 0, u.Dx(), u.Dy())).(*image.RGBA)
		s.sample(second, prm.SecondaryOffset, prm)
		combine(prm.Anaglyph, dst, second)
	}

	if o != orient.TopLeft {
		orientInto(t, abs, dst, u, o, sw, sh)
	}
	return true
}

// orientInto copies the unrotated samples in src (covering u) into the
// display rectangle abs of t.
func orientInto(t *tilestore.Tile, abs image.Rectangle, src *image.RGBA, u image.Rectangle, o orient.Orientation, sw, sh int) {
	sb := src.Bounds()
	for dy := abs.Min.Y; dy < abs.Max.Y; dy++ {
		doff := t.Pixels.PixOffset(abs.Min.X-t.X, dy-t.Y)
		for dx := abs.Min.X; dx < abs.Max.X; dx++ {
			ux, uy := orient.MapPointReverse(o, dx, dy, sw, sh)
			soff := src.PixOffset(sb.Min.X+ux-u.Min.X, sb.Min.Y+uy-u.Min.Y)
			copy(t.Pixels.Pix[doff:doff+4], src.Pix[soff:soff+4])
			doff += 4
		}
	}
}

package tileview

import (
	"image"
	"image/color"

	"github.com/gogpu/tileview/internal/paint"
	"github.com/gogpu/tileview/orient"
)

// SourceTile is one partially decoded chunk of a large source image.
type SourceTile = paint.SourceTile

// SourceTiler supplies source tiles for images too large to hold decoded.
// Region is called on the render goroutine and should return quickly;
// chunks not decoded yet are reported Blank and drawn as background.
type SourceTiler = paint.SourceTiler

// PostProcessFunc adjusts freshly rendered pixels, for example to apply a
// color profile. r is the rectangle of dst that was just rendered.
type PostProcessFunc func(dst *image.RGBA, r image.Rectangle)

// View is the state of the image view a Renderer draws. The controller
// owns it; the renderer reads it on every operation and never modifies it.
//
// Coordinates: the display space is the source image scaled and oriented,
// Width x Height pixels. The viewport is the window area of one eye. The
// visible rectangle is the part of the display shown in the viewport,
// starting at (XScroll, YScroll); when the display is smaller than the
// viewport it is centered at (XOffset, YOffset).
type View struct {
	// Image is the decoded source. With stereo input it holds both eyes
	// side by side and ImageWidth is the width of one eye.
	Image                   image.Image
	ImageWidth, ImageHeight int
	Alpha                   bool

	// Source replaces Image for sources decoded in chunks.
	Source SourceTiler

	// Scale is the zoom factor; Aspect the pixel aspect ratio (0 means 1).
	Scale  float64
	Aspect float64

	// Quality overrides the configured interpolation when not
	// InterpDefault.
	Quality Interp

	// Width, Height is the display size.
	Width, Height int

	ViewportWidth, ViewportHeight int
	VisWidth, VisHeight           int
	XOffset, YOffset              int
	XScroll, YScroll              int

	Orientation orient.Orientation

	// Loading is set while the source is still being decoded.
	Loading bool

	PostProcess     PostProcessFunc
	PostProcessSlow bool

	// LeftOffset and RightOffset are the source x offsets of the two eyes.
	LeftOffset, RightOffset int

	// FixedLeft and FixedRight are the window positions of the eyes in
	// StereoFixed mode.
	FixedLeft, FixedRight image.Point

	// Background overrides the configured background color when set.
	Background color.Color
}

// Controller owns the view state and drives a Renderer through its
// notification methods.
type Controller interface {
	View() *View
}

// hasImage reports whether v has anything to render.
func (v *View) hasImage() bool {
	return v != nil && (v.Image != nil || v.Source != nil)
}

func (v *View) aspect() float64 {
	if v.Aspect <= 0 {
		return 1
	}
	return v.Aspect
}

// visible returns the visible rectangle at scroll position (x, y).
func (v *View) visible(x, y int) image.Rectangle {
	return image.Rect(x, y, x+v.VisWidth, y+v.VisHeight)
}

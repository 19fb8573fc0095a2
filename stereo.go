package tileview

import (
	"image"
	"strings"

	"github.com/gogpu/tileview/internal/paint"
)

// StereoMode is a bit mask describing how a renderer presents one eye of
// a stereo image.
//
// A Renderer always draws a single eye. Side-by-side output uses two
// renderers on the same window, the second one with StereoRight.
type StereoMode uint32

const (
	// StereoDual shows both eyes, one per renderer.
	StereoDual StereoMode = 1 << iota
	// StereoFixed places the eyes at View.FixedLeft and View.FixedRight.
	StereoFixed
	// StereoHoriz places the right eye right of the left one.
	StereoHoriz
	// StereoVert places the right eye below the left one.
	StereoVert
	// StereoRight selects the right eye.
	StereoRight

	StereoAnaglyphRC
	StereoAnaglyphGM
	StereoAnaglyphYB
	StereoAnaglyphGrayRC
	StereoAnaglyphGrayGM
	StereoAnaglyphGrayYB
	StereoAnaglyphDuboisRC
	StereoAnaglyphDuboisGM
	StereoAnaglyphDuboisYB

	// StereoMirror and StereoFlip mirror the eye horizontally and
	// vertically.
	StereoMirror
	StereoFlip

	// StereoSwap exchanges the eyes.
	StereoSwap
)

// StereoAnaglyph matches any anaglyph mode.
const StereoAnaglyph = StereoAnaglyphRC | StereoAnaglyphGM | StereoAnaglyphYB |
	StereoAnaglyphGrayRC | StereoAnaglyphGrayGM | StereoAnaglyphGrayYB |
	StereoAnaglyphDuboisRC | StereoAnaglyphDuboisGM | StereoAnaglyphDuboisYB

var stereoNames = []struct {
	mode StereoMode
	name string
}{
	{StereoDual, "dual"},
	{StereoFixed, "fixed"},
	{StereoHoriz, "horiz"},
	{StereoVert, "vert"},
	{StereoRight, "right"},
	{StereoAnaglyphRC, "anaglyph-rc"},
	{StereoAnaglyphGM, "anaglyph-gm"},
	{StereoAnaglyphYB, "anaglyph-yb"},
	{StereoAnaglyphGrayRC, "anaglyph-gray-rc"},
	{StereoAnaglyphGrayGM, "anaglyph-gray-gm"},
	{StereoAnaglyphGrayYB, "anaglyph-gray-yb"},
	{StereoAnaglyphDuboisRC, "anaglyph-dubois-rc"},
	{StereoAnaglyphDuboisGM, "anaglyph-dubois-gm"},
	{StereoAnaglyphDuboisYB, "anaglyph-dubois-yb"},
	{StereoMirror, "mirror"},
	{StereoFlip, "flip"},
	{StereoSwap, "swap"},
}

// String returns the set flags joined with "|", or "none".
func (m StereoMode) String() string {
	var parts []string
	for _, n := range stereoNames {
		if m&n.mode != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseStereoMode parses a "|" or "," separated list of flag names as
// produced by String.
func ParseStereoMode(s string) (StereoMode, bool) {
	var m StereoMode
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		f = strings.TrimSpace(strings.ToLower(f))
		if f == "none" || f == "" {
			continue
		}
		found := false
		for _, n := range stereoNames {
			if n.name == f {
				m |= n.mode
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return m, true
}

// anaglyph returns the painter's anaglyph mode for m.
func (m StereoMode) anaglyph() paint.Anaglyph {
	switch {
	case m&StereoAnaglyphRC != 0:
		return paint.AnaglyphRC
	case m&StereoAnaglyphGM != 0:
		return paint.AnaglyphGM
	case m&StereoAnaglyphYB != 0:
		return paint.AnaglyphYB
	case m&StereoAnaglyphGrayRC != 0:
		return paint.AnaglyphGrayRC
	case m&StereoAnaglyphGrayGM != 0:
		return paint.AnaglyphGrayGM
	case m&StereoAnaglyphGrayYB != 0:
		return paint.AnaglyphGrayYB
	case m&StereoAnaglyphDuboisRC != 0:
		return paint.AnaglyphDuboisRC
	case m&StereoAnaglyphDuboisGM != 0:
		return paint.AnaglyphDuboisGM
	case m&StereoAnaglyphDuboisYB != 0:
		return paint.AnaglyphDuboisYB
	default:
		return paint.AnaglyphNone
	}
}

// right reports whether the renderer shows the right eye.
func (m StereoMode) right() bool {
	return (m&StereoRight != 0) != (m&StereoSwap != 0)
}

// eyeOffsets returns the source x offsets of the displayed eye and of the
// other one. Anaglyph output combines both and always puts the left eye
// first.
func (m StereoMode) eyeOffsets(v *View) (primary, secondary int) {
	left, right := v.LeftOffset, v.RightOffset
	if m&StereoAnaglyph != 0 {
		if m&StereoSwap != 0 {
			return right, left
		}
		return left, right
	}
	if m.right() {
		return right, left
	}
	return left, right
}

// drawOffset returns where the eye's viewport sits in the window.
func (m StereoMode) drawOffset(v *View) image.Point {
	if m&StereoRight != 0 {
		switch {
		case m&StereoHoriz != 0:
			return image.Pt(v.ViewportWidth, 0)
		case m&StereoVert != 0:
			return image.Pt(0, v.ViewportHeight)
		case m&StereoFixed != 0:
			return v.FixedRight
		}
		return image.Point{}
	}
	if m&StereoFixed != 0 {
		return v.FixedLeft
	}
	return image.Point{}
}

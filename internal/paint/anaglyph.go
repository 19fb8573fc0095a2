package paint

import "image"

// Anaglyph selects how two stereo eyes are combined into one image.
type Anaglyph uint8

const (
	AnaglyphNone Anaglyph = iota

	// Color anaglyphs take whole channels from each eye.
	AnaglyphRC // red-cyan
	AnaglyphGM // green-magenta
	AnaglyphYB // yellow-blue

	// Gray anaglyphs use each eye's luminance.
	AnaglyphGrayRC
	AnaglyphGrayGM
	AnaglyphGrayYB

	// Dubois anaglyphs use least-squares projection matrices.
	AnaglyphDuboisRC
	AnaglyphDuboisGM
	AnaglyphDuboisYB
)

// matrix is a 3x3 color transform applied to one eye, row per output
// channel.
type matrix [3][3]float32

var dubois = map[Anaglyph][2]matrix{
	AnaglyphDuboisRC: {
		{{0.437, 0.449, 0.164}, {-0.062, -0.062, -0.024}, {-0.048, -0.050, -0.017}},
		{{-0.011, -0.032, -0.007}, {0.377, 0.761, 0.009}, {-0.026, -0.093, 1.234}},
	},
	AnaglyphDuboisGM: {
		{{-0.062, -0.158, -0.039}, {0.284, 0.668, 0.143}, {-0.015, -0.027, 0.021}},
		{{0.529, 0.705, 0.024}, {-0.016, -0.015, -0.065}, {0.009, 0.075, 0.937}},
	},
	AnaglyphDuboisYB: {
		{{1.062, -0.205, 0.299}, {-0.026, 0.908, 0.068}, {-0.038, -0.173, 0.022}},
		{{-0.016, -0.123, -0.017}, {0.006, 0.062, -0.017}, {0.094, 0.185, 0.911}},
	},
}

// combine writes the anaglyph of left (in place) and right. Both images
// have the same size; their bounds may differ.
func combine(mode Anaglyph, left, right *image.RGBA) {
	lb, rb := left.Bounds(), right.Bounds()
	w, h := lb.Dx(), lb.Dy()
	for y := 0; y < h; y++ {
		lo := left.PixOffset(lb.Min.X, lb.Min.Y+y)
		ro := right.PixOffset(rb.Min.X, rb.Min.Y+y)
		for x := 0; x < w; x++ {
			l := left.Pix[lo : lo+3 : lo+3]
			r := right.Pix[ro : ro+3 : ro+3]
			combinePixel(mode, l, r)
			lo += 4
			ro += 4
		}
	}
}

// combinePixel merges the RGB triplet r into l.
func combinePixel(mode Anaglyph, l, r []uint8) {
	switch mode {
	case AnaglyphRC:
		l[1], l[2] = r[1], r[2]
	case AnaglyphGM:
		l[0], l[2] = r[0], r[2]
	case AnaglyphYB:
		l[2] = r[2]
	case AnaglyphGrayRC:
		gl, gr := luma(l), luma(r)
		l[0], l[1], l[2] = gl, gr, gr
	case AnaglyphGrayGM:
		gl, gr := luma(l), luma(r)
		l[0], l[1], l[2] = gr, gl, gr
	case AnaglyphGrayYB:
		gl, gr := luma(l), luma(r)
		l[0], l[1], l[2] = gl, gl, gr
	case AnaglyphDuboisRC, AnaglyphDuboisGM, AnaglyphDuboisYB:
		m := dubois[mode]
		var out [3]uint8
		for c := range 3 {
			v := m[0][c][0]*float32(l[0]) + m[0][c][1]*float32(l[1]) + m[0][c][2]*float32(l[2]) +
				m[1][c][0]*float32(r[0]) + m[1][c][1]*float32(r[1]) + m[1][c][2]*float32(r[2])
			out[c] = clamp8(v)
		}
		copy(l, out[:])
	}
}

// luma returns the Rec. 601 luminance of an RGB triplet.
func luma(p []uint8) uint8 {
	return uint8((299*uint32(p[0]) + 587*uint32(p[1]) + 114*uint32(p[2]) + 500) / 1000)
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

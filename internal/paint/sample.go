package paint

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// sampler maps the unrotated scaled rectangle u onto source pixels.
type sampler struct {
	u      image.Rectangle
	sx, sy float64
	interp xdraw.Interpolator
	opts   *Options
}

// sample fills dst, which covers u, from the source eye at x offset eye.
// It reports whether any source pixels were available.
func (s *sampler) sample(dst *image.RGBA, eye int, prm *Params) bool {
	if prm.Source != nil {
		return s.sampleTiles(dst, prm.Source, prm.Alpha)
	}

	b := dst.Bounds()
	op := xdraw.Src
	if prm.Alpha {
		s.checker(dst)
		op = xdraw.Over
	} else {
		// Pixels whose centers map outside the source keep the background.
		xdraw.Draw(dst, b, image.NewUniform(s.opts.Background), image.Point{}, xdraw.Src)
	}

	src := prm.Image
	sb := src.Bounds()
	if s.sx == 1 && s.sy == 1 {
		sp := image.Pt(sb.Min.X+eye+s.u.Min.X, sb.Min.Y+s.u.Min.Y)
		xdraw.Draw(dst, b, src, sp, op)
		return true
	}

	// Source to destination: d = scale*(p - origin - eye) - u.Min + b.Min.
	m := f64.Aff3{
		s.sx, 0, float64(b.Min.X-s.u.Min.X) - s.sx*float64(sb.Min.X+eye),
		0, s.sy, float64(b.Min.Y-s.u.Min.Y) - s.sy*float64(sb.Min.Y),
	}
	s.interp.Transform(dst, m, src, sb, op, nil)
	return true
}

// sampleTiles composes dst from the source tiles overlapping u. Tiles not
// decoded yet are filled with the background. With alpha, tiles are drawn
// over the checkerboard as in direct sampling.
func (s *sampler) sampleTiles(dst *image.RGBA, src SourceTiler, alpha bool) bool {
	tw, th := src.TileSize()
	if tw <= 0 || th <= 0 {
		return false
	}
	b := dst.Bounds()
	op := xdraw.Src
	if alpha {
		s.checker(dst)
		op = xdraw.Over
	}
	region := image.Rect(
		int(math.Floor(float64(s.u.Min.X)/s.sx)), int(math.Floor(float64(s.u.Min.Y)/s.sy)),
		int(math.Ceil(float64(s.u.Max.X)/s.sx)), int(math.Ceil(float64(s.u.Max.Y)/s.sy)),
	)

	drew := false
	for _, st := range src.Region(region) {
		scaled := image.Rect(
			int(math.Floor(float64(st.X)*s.sx)), int(math.Floor(float64(st.Y)*s.sy)),
			int(math.Ceil(float64(st.X+tw)*s.sx)), int(math.Ceil(float64(st.Y+th)*s.sy)),
		)
		ov := scaled.Intersect(s.u)
		if ov.Empty() {
			continue
		}
		dr := ov.Sub(s.u.Min).Add(b.Min)
		drew = true

		if st.Blank || st.Image == nil {
			xdraw.Draw(dst, dr, image.NewUniform(s.opts.Background), image.Point{}, xdraw.Src)
			continue
		}

		ib := st.Image.Bounds()
		if s.sx == 1 && s.sy == 1 {
			sp := ib.Min.Add(ov.Min.Sub(image.Pt(st.X, st.Y)))
			xdraw.Draw(dst, dr, st.Image, sp, op)
			continue
		}
		m := f64.Aff3{
			s.sx, 0, s.sx*float64(st.X-ib.Min.X) - float64(s.u.Min.X-b.Min.X),
			0, s.sy, s.sy*float64(st.Y-ib.Min.Y) - float64(s.u.Min.Y-b.Min.Y),
		}
		s.interp.Transform(dst.SubImage(dr).(*image.RGBA), m, st.Image, ib, op, nil)
	}
	return drew
}

// checker fills dst with the transparency checkerboard. Squares are
// anchored at the display origin so neighbouring tiles line up.
func (s *sampler) checker(dst *image.RGBA) {
	b := dst.Bounds()
	size := s.opts.CheckSize
	c1, c2 := s.opts.CheckColor1, s.opts.CheckColor2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		cy := (s.u.Min.Y + y - b.Min.Y) / size
		off := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			cx := (s.u.Min.X + x - b.Min.X) / size
			c := c1
			if (cx+cy)%2 != 0 {
				c = c2
			}
			setRGBA(dst.Pix[off:off+4], c)
			off += 4
		}
	}
}

func setRGBA(p []uint8, c color.RGBA) {
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

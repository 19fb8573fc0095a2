// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package osd renders on-screen-display overlays: lines of text in a
// translucent framed box, ready to be placed with
// tileview.Renderer.OverlayAdd.
//
// Text is normalized to NFC, split into bidi runs, shaped with the
// go-text HarfBuzz port and rasterized from the font's glyph outlines.
//
//	face, err := osd.DefaultFace()
//	if err != nil {
//	    return err
//	}
//	id := face.ShowInfo(renderer, 0, osd.Info{Name: "photo.jpg", Index: 3, Total: 10})
package osd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xdraw "golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// ErrNoFont is returned when the font data cannot be used.
var ErrNoFont = errors.New("osd: no usable font")

// DefaultSize is the font size of DefaultFace, in pixels per em.
const DefaultSize = 12

// Box layout, in pixels.
const (
	padding = 5
	frames  = 3
)

var (
	panelColor = color.NRGBA{R: 240, G: 240, B: 240, A: 210}
	frameAlpha = [frames]uint8{80, 130, 180}
	textColor  = image.NewUniform(color.Black)
)

// Face shapes and draws text with one font at one size.
//
// A Face keeps shaping and outline buffers between calls and is not safe
// for concurrent use.
type Face struct {
	outlines *sfnt.Font
	shaped   *font.Face
	hb       shaping.HarfbuzzShaper
	buf      sfnt.Buffer

	size       float64
	ascent     int
	lineHeight int
}

// NewFace parses a TrueType or OpenType font for drawing at size pixels
// per em.
func NewFace(ttf []byte, size float64) (*Face, error) {
	if len(ttf) == 0 || size <= 0 {
		return nil, ErrNoFont
	}
	outlines, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFont, err)
	}
	shaped, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFont, err)
	}

	f := &Face{outlines: outlines, shaped: shaped, size: size}
	m, err := outlines.Metrics(&f.buf, f.ppem(), xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%w: metrics: %w", ErrNoFont, err)
	}
	f.ascent = m.Ascent.Ceil()
	f.lineHeight = max(m.Height.Ceil(), f.ascent+m.Descent.Ceil(), 1)
	return f, nil
}

// DefaultFace returns a face of the Go Regular font at DefaultSize.
func DefaultFace() (*Face, error) {
	return NewFace(goregular.TTF, DefaultSize)
}

// LineHeight returns the distance between baselines.
func (f *Face) LineHeight() int {
	return f.lineHeight
}

func (f *Face) ppem() fixed.Int26_6 {
	return fixed.Int26_6(math.Round(f.size * 64))
}

// Measure returns the size of the text block, without the box.
func (f *Face) Measure(text string) image.Point {
	lines := strings.Split(norm.NFC.String(text), "\n")
	w := 0.0
	for _, l := range lines {
		_, adv := f.shapeLine(l)
		w = max(w, adv)
	}
	return image.Pt(int(math.Ceil(w)), len(lines)*f.lineHeight)
}

// Render draws text in black on a light translucent panel with a soft
// three-pixel frame and transparent corners.
func (f *Face) Render(text string) *image.RGBA {
	lines := strings.Split(norm.NFC.String(text), "\n")
	shaped := make([][]glyph, len(lines))
	tw := 0.0
	for i, l := range lines {
		var adv float64
		shaped[i], adv = f.shapeLine(l)
		tw = max(tw, adv)
	}

	w := int(math.Ceil(tw)) + 2*padding
	h := len(lines)*f.lineHeight + 2*padding
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	xdraw.Draw(img, image.Rect(frames, frames, w-frames, h-frames), image.NewUniform(panelColor), image.Point{}, xdraw.Src)
	for i, a := range frameAlpha {
		c := color.NRGBA{R: panelColor.R, G: panelColor.G, B: panelColor.B, A: a}
		strokeRect(img, image.Rect(i, i, w-i, h-i), c)
	}
	for _, p := range []image.Point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		img.SetRGBA(p.X, p.Y, color.RGBA{})
	}

	for i, gs := range shaped {
		f.drawGlyphs(img, gs, padding, padding+f.ascent+i*f.lineHeight)
	}
	return img
}

// strokeRect draws the one pixel outline of r.
func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(c)
	for _, e := range []image.Rectangle{
		{r.Min, image.Pt(r.Max.X, r.Min.Y+1)},
		{image.Pt(r.Min.X, r.Max.Y-1), r.Max},
		{r.Min, image.Pt(r.Min.X+1, r.Max.Y)},
		{image.Pt(r.Max.X-1, r.Min.Y), r.Max},
	} {
		xdraw.Draw(img, e, src, image.Point{}, xdraw.Src)
	}
}

// glyph is a shaped glyph positioned relative to the line origin.
type glyph struct {
	id   sfnt.GlyphIndex
	x, y float64
}

// run is a bidi run of rune indices [start, end).
type run struct {
	start, end int
	rtl        bool
}

// shapeLine shapes one line in visual order and returns its glyphs and
// advance.
func (f *Face) shapeLine(line string) ([]glyph, float64) {
	if line == "" {
		return nil, 0
	}
	runes := []rune(line)

	var out []glyph
	x := 0.0
	for _, r := range bidiRuns(line) {
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}
		o := f.hb.Shape(shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      f.shaped,
			Size:      f.ppem(),
			Script:    script(runes[r.start:r.end]),
			Language:  language.NewLanguage("en"),
		})
		for _, g := range o.Glyphs {
			out = append(out, glyph{
				id: sfnt.GlyphIndex(g.GlyphID),
				x:  x + fixedFloat(g.XOffset),
				y:  -fixedFloat(g.YOffset),
			})
			x += fixedFloat(g.Advance)
		}
	}
	return out, x
}

// bidiRuns splits line into directional runs in visual order. Lines the
// bidi algorithm cannot order are treated as a single left-to-right run.
func bidiRuns(line string) []run {
	n := utf8.RuneCountInString(line)
	whole := []run{{0, n, false}}

	var p bidi.Paragraph
	if _, err := p.SetString(line, bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return whole
	}
	o, err := p.Order()
	if err != nil || o.NumRuns() == 0 {
		return whole
	}

	runs := make([]run, 0, o.NumRuns())
	covered := 0
	for i := range o.NumRuns() {
		r := o.Run(i)
		start, end := r.Pos()
		start, end = max(start, 0), min(end+1, n)
		if start >= end {
			continue
		}
		runs = append(runs, run{start, end, r.Direction() == bidi.RightToLeft})
		covered += end - start
	}
	if covered != n {
		return whole
	}
	return runs
}

// script returns the script of the first letter in runes.
func script(runes []rune) language.Script {
	for _, r := range runes {
		if s := language.LookupScript(r); s != language.Common && s != language.Unknown {
			return s
		}
	}
	return language.Latin
}

// drawGlyphs fills the outlines of gs with the text color, the line
// origin at (ox, baseline).
func (f *Face) drawGlyphs(dst *image.RGBA, gs []glyph, ox, baseline int) {
	var z vector.Rasterizer
	for _, g := range gs {
		segs, err := f.outlines.LoadGlyph(&f.buf, g.id, f.ppem(), nil)
		if err != nil || len(segs) == 0 {
			continue
		}

		gx := float64(ox) + g.x
		gy := float64(baseline) + g.y
		b := segs.Bounds()
		r := image.Rect(
			int(math.Floor(gx+fixedFloat(b.Min.X))), int(math.Floor(gy+fixedFloat(b.Min.Y))),
			int(math.Ceil(gx+fixedFloat(b.Max.X))), int(math.Ceil(gy+fixedFloat(b.Max.Y))),
		)
		if r.Empty() {
			continue
		}

		dx, dy := float32(gx-float64(r.Min.X)), float32(gy-float64(r.Min.Y))
		pt := func(p fixed.Point26_6) (float32, float32) {
			return float32(fixedFloat(p.X)) + dx, float32(fixedFloat(p.Y)) + dy
		}

		z.Reset(r.Dx(), r.Dy())
		started := false
		for _, s := range segs {
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				if started {
					z.ClosePath()
				}
				z.MoveTo(pt(s.Args[0]))
				started = true
			case sfnt.SegmentOpLineTo:
				z.LineTo(pt(s.Args[0]))
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(s.Args[0])
				tx, ty := pt(s.Args[1])
				z.QuadTo(cx, cy, tx, ty)
			case sfnt.SegmentOpCubeTo:
				ax, ay := pt(s.Args[0])
				bx, by := pt(s.Args[1])
				tx, ty := pt(s.Args[2])
				z.CubeTo(ax, ay, bx, by, tx, ty)
			}
		}
		if started {
			z.ClosePath()
		}

		mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
		z.DrawOp = xdraw.Src
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		xdraw.DrawMask(dst, r, textColor, image.Point{}, mask, image.Point{}, xdraw.Over)
	}
}

func fixedFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

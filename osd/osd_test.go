// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package osd

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/tileview"
	"github.com/gogpu/tileview/surface"
)

// ===== Info =====

func TestInfoText(t *testing.T) {
	mtime := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"untitled", Info{}, "Untitled"},
		{
			"full",
			Info{Index: 3, Total: 10, Name: "a.jpg", Width: 640, Height: 480, ModTime: mtime, Size: 2048},
			"(3/10) a.jpg\n640 x 480 - 2024-05-06 07:08:09 - 2.0 K",
		},
		{
			"unknown size",
			Info{Index: 1, Total: 1, Name: "b.png", Size: 10},
			"(1/1) b.png\n10 bytes",
		},
		{
			"clamped index",
			Info{Name: "c.tif", Width: 1, Height: 2},
			"(1/1) c.tif\n1 x 2 - 0 bytes",
		},
		{
			"collection",
			Info{Collection: "Holidays", Index: 2, Total: 5, Name: "d.gif", Size: 3 << 20},
			"Holidays\n(2/5) d.gif\n3.0 MB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1536, "1.5 K"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.n); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// ===== Face =====

func TestNewFaceErrors(t *testing.T) {
	tests := []struct {
		name string
		ttf  []byte
		size float64
	}{
		{"empty", nil, 12},
		{"garbage", []byte("not a font"), 12},
		{"zero size", []byte("x"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFace(tt.ttf, tt.size); !errors.Is(err, ErrNoFont) {
				t.Errorf("NewFace() = %v, want ErrNoFont", err)
			}
		})
	}
}

func defaultFace(t *testing.T) *Face {
	t.Helper()
	f, err := DefaultFace()
	if err != nil {
		t.Fatalf("DefaultFace() = %v", err)
	}
	return f
}

func TestMeasure(t *testing.T) {
	f := defaultFace(t)

	short := f.Measure("ab")
	long := f.Measure("abababab")
	if short.X <= 0 || long.X <= short.X {
		t.Errorf("Measure widths = %d, %d; want 0 < short < long", short.X, long.X)
	}
	if short.Y != f.LineHeight() {
		t.Errorf("one line height = %d, want %d", short.Y, f.LineHeight())
	}
	if got := f.Measure("a\nb\nc").Y; got != 3*f.LineHeight() {
		t.Errorf("three line height = %d, want %d", got, 3*f.LineHeight())
	}
}

func TestRenderBox(t *testing.T) {
	f := defaultFace(t)
	text := "(1/2) photo.jpg\n640 x 480 - 12.0 K"
	img := f.Render(text)

	size := f.Measure(text)
	if got, want := img.Bounds().Size(), size.Add(image.Pt(10, 10)); got != want {
		t.Fatalf("box size = %v, want %v", got, want)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for _, p := range []image.Point{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if c := img.RGBAAt(p.X, p.Y); c.A != 0 {
			t.Errorf("corner %v alpha = %d, want 0", p, c.A)
		}
	}
	tests := []struct {
		p     image.Point
		alpha uint8
	}{
		{image.Pt(w/2, 0), 80},
		{image.Pt(w/2, 1), 130},
		{image.Pt(2, h/2), 180},
		{image.Pt(3, 3), 210},
	}
	for _, tt := range tests {
		if c := img.RGBAAt(tt.p.X, tt.p.Y); c.A != tt.alpha {
			t.Errorf("alpha at %v = %d, want %d", tt.p, c.A, tt.alpha)
		}
	}

	// Glyphs darken the panel inside the padding.
	dark := 0
	for y := 5; y < h-5; y++ {
		for x := 5; x < w-5; x++ {
			if c := img.RGBAAt(x, y); c.R < 120 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no text pixels drawn")
	}
}

func TestRenderEmpty(t *testing.T) {
	f := defaultFace(t)
	img := f.Render("")
	if got := img.Bounds().Size(); got != image.Pt(10, 10+f.LineHeight()) {
		t.Errorf("empty box size = %v", got)
	}
}

func TestBidiRuns(t *testing.T) {
	tests := []struct {
		name string
		line string
		rtl  bool
	}{
		{"latin", "hello world", false},
		{"hebrew", "שלום", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := bidiRuns(tt.line)
			n := 0
			anyRTL := false
			for _, r := range runs {
				n += r.end - r.start
				anyRTL = anyRTL || r.rtl
			}
			if n != len([]rune(tt.line)) {
				t.Errorf("runs cover %d runes, want %d", n, len([]rune(tt.line)))
			}
			if !tt.rtl && anyRTL {
				t.Errorf("bidiRuns(%q) has a right-to-left run", tt.line)
			}
		})
	}
}

// ===== ShowInfo =====

type fakeOverlayer struct {
	added, set int
	img        image.Image
	x, y       int
	flags      tileview.OverlayFlags
}

func (o *fakeOverlayer) OverlayAdd(img image.Image, x, y int, flags tileview.OverlayFlags) int {
	o.added++
	o.img, o.x, o.y, o.flags = img, x, y, flags
	return 7
}

func (o *fakeOverlayer) OverlaySet(id int, img image.Image, x, y int) bool {
	if id != 7 {
		return false
	}
	o.set++
	o.img, o.x, o.y = img, x, y
	return true
}

func TestShowInfo(t *testing.T) {
	f := defaultFace(t)
	o := &fakeOverlayer{}
	info := Info{Index: 1, Total: 1, Name: "x.png", Size: 1}

	id := f.ShowInfo(o, 0, info)
	if id != 7 || o.added != 1 {
		t.Fatalf("ShowInfo() = %d, added %d", id, o.added)
	}
	if o.x != InfoX || o.y != InfoY || o.flags != tileview.OverlayRelative {
		t.Errorf("placed at (%d,%d) flags %v", o.x, o.y, o.flags)
	}

	if id = f.ShowInfo(o, id, info); id != 7 || o.set != 1 || o.added != 1 {
		t.Errorf("update: id %d, set %d, added %d", id, o.set, o.added)
	}

	// A stale id adds a fresh overlay.
	if id = f.ShowInfo(o, 3, info); id != 7 || o.added != 2 {
		t.Errorf("stale id: id %d, added %d", id, o.added)
	}
}

type viewController struct {
	v tileview.View
}

func (c *viewController) View() *tileview.View { return &c.v }

func TestShowInfoOnRenderer(t *testing.T) {
	f := defaultFace(t)
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	ctrl := &viewController{v: tileview.View{
		Image: src, ImageWidth: 200, ImageHeight: 100,
		Scale: 1, Width: 200, Height: 100,
		ViewportWidth: 200, ViewportHeight: 100,
		VisWidth: 200, VisHeight: 100,
	}}
	r, err := tileview.New(ctrl, surface.NewImageSurface(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	id := f.ShowInfo(r, 0, Info{Index: 1, Total: 1, Name: "x.png"})
	img, x, y, ok := r.OverlayGet(id)
	if !ok || x != InfoX || y != InfoY {
		t.Fatalf("OverlayGet(%d) = %v, %d, %d, %v", id, img != nil, x, y, ok)
	}
	if c := color.RGBAModel.Convert(img.At(3, 3)).(color.RGBA); c.A != 210 {
		t.Errorf("panel alpha = %d, want 210", c.A)
	}
}

package overlay

import (
	"image"
	"image/color"
	"testing"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileview/surface"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
	return img
}

// ===== Ids =====

func TestAddSmallestUnusedID(t *testing.T) {
	m := New(16, 16, nil)
	img := solid(4, 4, color.RGBA{A: 255})

	a := m.Add(img, 0, 0, 0)
	b := m.Add(img, 0, 0, 0)
	c := m.Add(img, 0, 0, 0)
	if a != 1 || b != 2 || c != 3 {
		t.Fatalf("ids = %d, %d, %d, want 1, 2, 3", a, b, c)
	}

	m.Remove(b)
	if got := m.Add(img, 0, 0, 0); got != 2 {
		t.Errorf("Add() after removing 2 = %d, want 2", got)
	}
	if got := m.Add(img, 0, 0, 0); got != 4 {
		t.Errorf("Add() = %d, want 4", got)
	}
}

func TestAddNil(t *testing.T) {
	m := New(16, 16, nil)
	if id := m.Add(nil, 0, 0, 0); id != 0 {
		t.Errorf("Add(nil) = %d, want 0", id)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestSetGetRemove(t *testing.T) {
	m := New(16, 16, nil)
	a := solid(4, 4, color.RGBA{R: 255, A: 255})
	b := solid(8, 2, color.RGBA{G: 255, A: 255})
	id := m.Add(a, 1, 2, 0)

	if !m.Set(id, b, 5, 6) {
		t.Fatal("Set() on a live id = false")
	}
	img, x, y, ok := m.Get(id)
	if !ok || img != image.Image(b) || x != 5 || y != 6 {
		t.Errorf("Get() = (%v, %d, %d, %v), want the replacement at (5, 6)", img != nil, x, y, ok)
	}

	// A nil image removes.
	m.Set(id, nil, 0, 0)
	if _, _, _, ok := m.Get(id); ok {
		t.Error("overlay survived Set(nil)")
	}

	// Stale ids are no-ops.
	if m.Set(id, a, 0, 0) {
		t.Error("Set() on a stale id = true")
	}
	if m.Remove(id) {
		t.Error("Remove() on a stale id = true")
	}
	if _, ok := m.Bounds(id); ok {
		t.Error("Bounds() on a stale id ok")
	}
}

// ===== Placement =====

func TestRelativeBounds(t *testing.T) {
	m := New(16, 16, nil)
	m.SetViewport(200, 100)
	img := solid(20, 10, color.RGBA{A: 255})

	tests := []struct {
		name  string
		x, y  int
		flags Flags
		want  image.Rectangle
	}{
		{"absolute", 10, -10, 0, image.Rect(10, -10, 30, 0)},
		{"relative bottom", 10, -10, Relative, image.Rect(10, 80, 30, 90)},
		{"relative right", -5, 3, Relative, image.Rect(175, 3, 195, 13)},
		{"relative positive", 7, 8, Relative, image.Rect(7, 8, 27, 18)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := m.Add(img, tt.x, tt.y, tt.flags)
			defer m.Remove(id)
			if got, _ := m.Bounds(id); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelativeFollowsViewport(t *testing.T) {
	m := New(16, 16, nil)
	m.SetViewport(200, 100)
	id := m.Add(solid(20, 10, color.RGBA{A: 255}), 10, -10, Relative)

	m.SetViewport(300, 300)
	if got, want := must(m.Bounds(id)), image.Rect(10, 280, 30, 290); got != want {
		t.Errorf("Bounds() after resize = %v, want %v", got, want)
	}
}

func must(r image.Rectangle, _ bool) image.Rectangle { return r }

func TestIntersecting(t *testing.T) {
	m := New(16, 16, nil)
	img := solid(10, 10, color.RGBA{A: 255})
	a := m.Add(img, 0, 0, 0)
	m.Add(img, 50, 50, 0)

	got := m.Intersecting(image.Rect(5, 5, 20, 20))
	if len(got) != 1 || got[0].ID != a {
		t.Fatalf("Intersecting() = %d overlays, want overlay %d", len(got), a)
	}
	if len(m.All()) != 2 {
		t.Errorf("All() = %d overlays, want 2", len(m.All()))
	}
}

// ===== Drawing =====

func TestComposite(t *testing.T) {
	m := New(16, 16, nil)
	red := color.RGBA{R: 255, A: 255}
	m.Add(solid(4, 4, red), 10, 10, 0)

	dst := surface.NewImageSurface(8, 8)
	m.Composite(dst, image.Rect(8, 8, 16, 16), image.Point{})

	img := dst.Image()
	if got := img.RGBAAt(2, 2); got != red {
		t.Errorf("(2,2) = %v, want overlay", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{}) {
		t.Errorf("(1,1) = %v, want untouched", got)
	}
	if got := img.RGBAAt(5, 5); got != red {
		t.Errorf("(5,5) = %v, want overlay", got)
	}
	if got := img.RGBAAt(6, 6); got != (color.RGBA{}) {
		t.Errorf("(6,6) = %v, want untouched", got)
	}
}

// TestDrawOverBase: translucent overlays blend with what base draws and
// only the overlay area of the window changes.
func TestDrawOverBase(t *testing.T) {
	m := New(8, 8, nil)
	defer m.Close()
	m.Add(solid(20, 20, color.RGBA{A: 0}), 2, 2, 0)
	m.Add(solid(4, 4, color.RGBA{G: 255, A: 255}), 4, 4, 0)

	win := surface.NewImageSurface(32, 32)
	blue := color.RGBA{B: 255, A: 255}
	var chunks []image.Rectangle
	base := func(dst surface.Surface, r image.Rectangle) {
		if r.Dx() > 8 || r.Dy() > 8 {
			t.Errorf("chunk %v larger than 8x8", r)
		}
		chunks = append(chunks, r)
		dst.FillRect(image.Rect(0, 0, r.Dx(), r.Dy()), blue)
	}

	m.Draw(win, image.Rect(0, 0, 32, 32), image.Point{}, base)

	if len(chunks) == 0 {
		t.Fatal("base never called")
	}
	img := win.Image()
	if got := img.RGBAAt(5, 5); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("(5,5) = %v, want opaque overlay", got)
	}
	if got := img.RGBAAt(15, 15); got != blue {
		t.Errorf("(15,15) = %v, want base under transparent overlay", got)
	}
	if got := img.RGBAAt(30, 30); got != (color.RGBA{}) {
		t.Errorf("(30,30) = %v, want untouched window", got)
	}
}

func TestDrawOffset(t *testing.T) {
	m := New(16, 16, nil)
	defer m.Close()
	red := color.RGBA{R: 255, A: 255}
	m.Add(solid(2, 2, red), 0, 0, 0)

	win := surface.NewImageSurface(64, 32)
	m.Draw(win, image.Rect(0, 0, 32, 32), image.Pt(32, 0), func(surface.Surface, image.Rectangle) {})

	img := win.Image()
	if got := img.RGBAAt(32, 0); got != red {
		t.Errorf("(32,0) = %v, want overlay shifted by the offset", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("(0,0) = %v, want untouched", got)
	}
}

// TestDrawOverlapPaintsOnce: overlapping overlays share chunks, so base
// runs once per window pixel.
func TestDrawOverlapPaintsOnce(t *testing.T) {
	m := New(8, 8, nil)
	defer m.Close()
	m.Add(solid(12, 12, color.RGBA{R: 255, A: 255}), 0, 0, 0)
	m.Add(solid(12, 12, color.RGBA{G: 255, A: 128}), 4, 4, 0)
	m.Add(solid(2, 2, color.RGBA{B: 255, A: 255}), 6, 6, 0)

	win := surface.NewImageSurface(32, 32)
	painted := make(map[image.Point]int)
	base := func(dst surface.Surface, r image.Rectangle) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				painted[image.Pt(x, y)]++
			}
		}
	}

	m.Draw(win, image.Rect(0, 0, 32, 32), image.Point{}, base)

	for p, n := range painted {
		if n != 1 {
			t.Errorf("pixel %v based %d times, want 1", p, n)
		}
	}
	for _, p := range []image.Point{{0, 0}, {5, 5}, {15, 15}} {
		if painted[p] != 1 {
			t.Errorf("pixel %v not repainted", p)
		}
	}
	if got := win.Image().RGBAAt(6, 6); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("(6,6) = %v, want top overlay", got)
	}
}

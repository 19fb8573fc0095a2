// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

// TestNewImageSurface tests surface creation.
func TestNewImageSurface(t *testing.T) {
	s := NewImageSurface(100, 100)
	if s == nil {
		t.Fatal("NewImageSurface returned nil")
	}
	defer s.Close()

	if s.Width() != 100 {
		t.Errorf("Width() = %d, want 100", s.Width())
	}
	if s.Height() != 100 {
		t.Errorf("Height() = %d, want 100", s.Height())
	}
}

// TestNewImageSurfaceInvalidSize tests handling of invalid dimensions.
func TestNewImageSurfaceInvalidSize(t *testing.T) {
	// Should clamp to minimum of 1x1
	s := NewImageSurface(0, 0)
	defer s.Close()

	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1, got %dx%d", s.Width(), s.Height())
	}
}

// TestImageSurfaceClear tests the Clear operation.
func TestImageSurfaceClear(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	s.Clear(color.RGBA{255, 0, 0, 255})

	img := s.Snapshot()
	if img == nil {
		t.Fatal("Snapshot returned nil")
	}

	c := img.RGBAAt(5, 5)
	if c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, want (255, 0, 0, 255)", c)
	}
}

func TestImageSurfaceFillRect(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	s.FillRect(image.Rect(2, 2, 4, 4), color.RGBA{0, 0, 255, 255})

	img := s.Image()
	if c := img.RGBAAt(3, 3); c.B != 255 {
		t.Errorf("inside pixel = %v, want blue", c)
	}
	if c := img.RGBAAt(5, 5); c.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", c)
	}
}

func TestImageSurfaceDrawOver(t *testing.T) {
	s := NewImageSurface(4, 4)
	defer s.Close()
	s.Clear(color.RGBA{0, 0, 0, 255})

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})

	s.Draw(image.Rect(1, 1, 3, 3), src, image.Point{}, draw.Over)

	img := s.Image()
	if c := img.RGBAAt(1, 1); c.R != 255 {
		t.Errorf("opaque source pixel = %v, want white", c)
	}
	if c := img.RGBAAt(2, 2); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("transparent source kept destination = %v, want black", c)
	}
}

func TestImageSurfacePaint(t *testing.T) {
	dst := NewImageSurface(8, 8)
	src := NewImageSurface(4, 4)
	src.Clear(color.RGBA{10, 20, 30, 255})

	dst.Paint(image.Rect(4, 4, 6, 6), src, image.Pt(1, 1))

	img := dst.Image()
	if c := img.RGBAAt(5, 5); c != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("painted pixel = %v", c)
	}
	if c := img.RGBAAt(6, 6); c.A != 0 {
		t.Errorf("pixel outside paint rect = %v, want transparent", c)
	}
}

// TestImageSurfaceCopyArea checks overlapping moves in both directions.
func TestImageSurfaceCopyArea(t *testing.T) {
	tests := []struct {
		name string
		dp   image.Point
	}{
		{"left", image.Pt(0, 0)},
		{"right", image.Pt(2, 0)},
		{"down", image.Pt(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewImageSurface(8, 8)
			img := s.Image()
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
				}
			}

			r := image.Rect(1, 0, 5, 4)
			s.CopyArea(r, tt.dp)

			for y := 0; y < r.Dy(); y++ {
				for x := 0; x < r.Dx(); x++ {
					got := img.RGBAAt(tt.dp.X+x, tt.dp.Y+y)
					want := color.RGBA{uint8(r.Min.X + x), uint8(r.Min.Y + y), 0, 255}
					if got != want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", tt.dp.X+x, tt.dp.Y+y, got, want)
					}
				}
			}
		})
	}
}

func TestImageSurfaceCreateSimilar(t *testing.T) {
	s := NewImageSurface(8, 8)
	c, err := s.CreateSimilar(16, 4)
	if err != nil {
		t.Fatalf("CreateSimilar() error = %v", err)
	}
	if b := c.Bounds(); b.Dx() != 16 || b.Dy() != 4 {
		t.Errorf("CreateSimilar bounds = %v, want 16x4", b)
	}
	if _, err := s.CreateSimilar(0, 4); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("CreateSimilar(0, 4) error = %v, want ErrInvalidSize", err)
	}
}

// TestImageSurfaceClose tests idempotent close.
func TestImageSurfaceClose(t *testing.T) {
	s := NewImageSurface(10, 10)

	if err := s.Close(); err != nil {
		t.Errorf("first Close() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if img := s.Snapshot(); img != nil {
		t.Error("Snapshot after Close should return nil")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// This is the default surface implementation for headless rendering and
// tests. It implements Scroller and Imager.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.FillRect(image.Rect(0, 0, 100, 100), color.RGBA{255, 0, 0, 255})
//	img := s.Snapshot()
type ImageSurface struct {
	img *image.RGBA

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	return &ImageSurface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface will render into the provided image directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	return &ImageSurface{img: img}
}

// Bounds returns the surface bounds.
func (s *ImageSurface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.img.Bounds().Dy()
}

// Clear fills the entire surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	s.FillRect(s.img.Bounds(), c)
}

// FillRect fills r with c, replacing the destination.
func (s *ImageSurface) FillRect(r image.Rectangle, c color.Color) {
	if s.closed {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// Draw composites src onto r using op.
func (s *ImageSurface) Draw(r image.Rectangle, src image.Image, sp image.Point, op draw.Op) {
	if s.closed || src == nil {
		return
	}
	draw.Draw(s.img, r, src, sp, op)
}

// Paint copies a region of src into r.
func (s *ImageSurface) Paint(r image.Rectangle, src Surface, sp image.Point) {
	if s.closed || src == nil {
		return
	}
	draw.Draw(s.img, r, imageOf(src), sp, draw.Src)
}

// CopyArea moves the pixels of r to dp within the surface.
func (s *ImageSurface) CopyArea(r image.Rectangle, dp image.Point) {
	if s.closed {
		return
	}
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	dst := image.Rectangle{Min: dp, Max: dp.Add(r.Size())}
	// image/draw handles overlapping regions of the same image.
	draw.Draw(s.img, dst, s.img, r.Min, draw.Src)
}

// CreateSimilar returns a new ImageSurface of the given size.
func (s *ImageSurface) CreateSimilar(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	return NewImageSurface(width, height), nil
}

// Image returns the backing image. Modifying it modifies the surface.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}

	b := s.img.Bounds()
	result := image.NewRGBA(b)
	draw.Draw(result, b, s.img, b.Min, draw.Src)
	return result
}

// Close releases resources. Idempotent.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Surface is the drawing target the tile engine paints through.
//
// A Surface is an opaque 2D context supplied by the host: a window, an
// offscreen buffer or a test double. The engine never touches pixels of a
// Surface directly; it only uses the operations below.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
//
// Example usage:
//
//	win := surface.NewImageSurface(800, 600)
//	defer win.Close()
//
//	win.FillRect(win.Bounds(), color.Black)
//	img := win.Snapshot()
type Surface interface {
	// Bounds returns the drawable area. Min is normally (0, 0).
	Bounds() image.Rectangle

	// FillRect fills r with a solid color.
	FillRect(r image.Rectangle, c color.Color)

	// Draw sets src as the source aligned so that sp maps to r.Min and
	// fills r using op.
	Draw(r image.Rectangle, src image.Image, sp image.Point, op draw.Op)

	// Paint copies the region of src starting at sp into r.
	Paint(r image.Rectangle, src Surface, sp image.Point)

	// CreateSimilar creates a surface compatible with this one, used for
	// tile and scratch buffers.
	CreateSimilar(width, height int) (Surface, error)

	// Snapshot returns the current surface contents as an RGBA image.
	// The returned image is a copy; modifications to it do not affect the surface.
	Snapshot() *image.RGBA

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be used.
	// Close is idempotent; multiple calls are safe.
	Close() error
}

// Scroller is an optional interface for surfaces that can move a region
// of their own content. Used to shift-blit the window on scroll.
type Scroller interface {
	Surface

	// CopyArea moves the pixels of r so that r.Min lands on dp.
	// Overlapping source and destination are allowed.
	CopyArea(r image.Rectangle, dp image.Point)
}

// Imager is an optional interface for surfaces backed by an *image.RGBA.
// Paint uses it to avoid a Snapshot copy.
type Imager interface {
	Image() *image.RGBA
}

// imageOf returns the pixels of s without copying when possible.
func imageOf(s Surface) image.Image {
	if im, ok := s.(Imager); ok {
		return im.Image()
	}
	return s.Snapshot()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package orient maps coordinates between an unrotated image and its
// displayed form under the eight EXIF orientation states.
//
// All functions take the unrotated dimensions (w, h). Display dimensions
// are the same for orientations 1-4 and swapped for 5-8 (see DisplaySize).
//
// Stereo mirroring and flipping compose with a base orientation through
// the Mirror and Flip lookup tables instead of rotation math. The tables
// are closed over the eight valid states.
package orient

import "image"

// Orientation is an EXIF orientation code in the range 1-8.
type Orientation uint8

const (
	// TopLeft is the identity orientation.
	TopLeft Orientation = 1 + iota
	// TopRight mirrors horizontally.
	TopRight
	// BottomRight rotates by 180 degrees.
	BottomRight
	// BottomLeft mirrors vertically.
	BottomLeft
	// LeftTop transposes rows and columns.
	LeftTop
	// RightTop rotates 90 degrees clockwise.
	RightTop
	// RightBottom transverses (anti-diagonal mirror).
	RightBottom
	// LeftBottom rotates 90 degrees counter-clockwise.
	LeftBottom
)

// Normal is an alias for TopLeft.
const Normal = TopLeft

var mirror = [9]Orientation{1, 2, 1, 4, 3, 6, 5, 8, 7}
var flip = [9]Orientation{1, 4, 3, 2, 1, 8, 7, 6, 5}

var names = [9]string{
	"invalid",
	"top-left",
	"top-right",
	"bottom-right",
	"bottom-left",
	"left-top",
	"right-top",
	"right-bottom",
	"left-bottom",
}

// Valid reports whether o is one of the eight orientation codes.
func (o Orientation) Valid() bool {
	return o >= TopLeft && o <= LeftBottom
}

// Normalize returns o, or TopLeft when o is out of range.
func (o Orientation) Normalize() Orientation {
	if !o.Valid() {
		return TopLeft
	}
	return o
}

// Transposed reports whether o swaps the width and height axes.
func (o Orientation) Transposed() bool {
	return o >= LeftTop && o <= LeftBottom
}

// String returns the EXIF name of the orientation.
func (o Orientation) String() string {
	if !o.Valid() {
		return names[0]
	}
	return names[o]
}

// Stereo composes o with the stereo mirror and flip flags.
func (o Orientation) Stereo(mirrored, flipped bool) Orientation {
	o = o.Normalize()
	if mirrored {
		o = mirror[o]
	}
	if flipped {
		o = flip[o]
	}
	return o
}

// Mirror returns the orientation that additionally mirrors o horizontally.
func Mirror(o Orientation) Orientation {
	return mirror[o.Normalize()]
}

// Flip returns the orientation that additionally flips o vertically.
func Flip(o Orientation) Orientation {
	return flip[o.Normalize()]
}

// DisplaySize returns the displayed dimensions of a w x h image.
func DisplaySize(o Orientation, w, h int) (int, int) {
	if o.Transposed() {
		return h, w
	}
	return w, h
}

// SourceSize returns the unrotated dimensions of a w x h display.
// It is the inverse of DisplaySize.
func SourceSize(o Orientation, w, h int) (int, int) {
	return DisplaySize(o, w, h)
}

// MapPoint maps the pixel (x, y) of the unrotated w x h image to its
// display position.
func MapPoint(o Orientation, x, y, w, h int) (int, int) {
	switch o {
	case TopRight:
		return w - 1 - x, y
	case BottomRight:
		return w - 1 - x, h - 1 - y
	case BottomLeft:
		return x, h - 1 - y
	case LeftTop:
		return y, x
	case RightTop:
		return h - 1 - y, x
	case RightBottom:
		return h - 1 - y, w - 1 - x
	case LeftBottom:
		return y, w - 1 - x
	default:
		return x, y
	}
}

// MapPointReverse maps the display pixel (x, y) back into the unrotated
// w x h image. It is the exact inverse of MapPoint.
func MapPointReverse(o Orientation, x, y, w, h int) (int, int) {
	switch o {
	case TopRight:
		return w - 1 - x, y
	case BottomRight:
		return w - 1 - x, h - 1 - y
	case BottomLeft:
		return x, h - 1 - y
	case LeftTop:
		return y, x
	case RightTop:
		return y, h - 1 - x
	case RightBottom:
		return w - 1 - y, h - 1 - x
	case LeftBottom:
		return w - 1 - y, x
	default:
		return x, y
	}
}

// MapRegion maps a rectangle of the unrotated w x h image to display
// space. Every pixel of r lands inside the result and vice versa.
func MapRegion(o Orientation, r image.Rectangle, w, h int) image.Rectangle {
	switch o {
	case TopRight:
		return image.Rect(w-r.Max.X, r.Min.Y, w-r.Min.X, r.Max.Y)
	case BottomRight:
		return image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
	case BottomLeft:
		return image.Rect(r.Min.X, h-r.Max.Y, r.Max.X, h-r.Min.Y)
	case LeftTop:
		return image.Rect(r.Min.Y, r.Min.X, r.Max.Y, r.Max.X)
	case RightTop:
		return image.Rect(h-r.Max.Y, r.Min.X, h-r.Min.Y, r.Max.X)
	case RightBottom:
		return image.Rect(h-r.Max.Y, w-r.Max.X, h-r.Min.Y, w-r.Min.X)
	case LeftBottom:
		return image.Rect(r.Min.Y, w-r.Max.X, r.Max.Y, w-r.Min.X)
	default:
		return r.Canon()
	}
}

// MapRegionReverse maps a display rectangle back into the unrotated
// w x h image.
func MapRegionReverse(o Orientation, r image.Rectangle, w, h int) image.Rectangle {
	switch o {
	case TopRight:
		return image.Rect(w-r.Max.X, r.Min.Y, w-r.Min.X, r.Max.Y)
	case BottomRight:
		return image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
	case BottomLeft:
		return image.Rect(r.Min.X, h-r.Max.Y, r.Max.X, h-r.Min.Y)
	case LeftTop:
		return image.Rect(r.Min.Y, r.Min.X, r.Max.Y, r.Max.X)
	case RightTop:
		return image.Rect(r.Min.Y, h-r.Max.X, r.Max.Y, h-r.Min.X)
	case RightBottom:
		return image.Rect(w-r.Max.Y, h-r.Max.X, w-r.Min.Y, h-r.Min.X)
	case LeftBottom:
		return image.Rect(w-r.Max.Y, r.Min.X, w-r.Min.Y, r.Max.X)
	default:
		return r.Canon()
	}
}

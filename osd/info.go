// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package osd

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/gogpu/tileview"
)

// Position of the info overlay: 10 px from the left viewport edge and
// 10 px above the bottom edge.
const (
	InfoX = 10
	InfoY = -10
)

// Info describes the image shown in a view.
type Info struct {
	// Collection names the list the image belongs to, if any.
	Collection string

	// Index is the 1-based position of the image within Total images.
	Index, Total int

	Name string

	// Width and Height are the source dimensions, zero when unknown.
	Width, Height int

	ModTime time.Time
	Size    int64
}

// Text returns the overlay text: the collection line when set, then
// "(n/t) name" and "W x H - time - size".
func (i Info) Text() string {
	if i.Name == "" {
		return "Untitled"
	}

	var b strings.Builder
	if i.Collection != "" {
		b.WriteString(i.Collection)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "(%d/%d) %s\n", max(i.Index, 1), max(i.Total, 1), i.Name)

	var parts []string
	if i.Width > 0 && i.Height > 0 {
		parts = append(parts, fmt.Sprintf("%d x %d", i.Width, i.Height))
	}
	if !i.ModTime.IsZero() {
		parts = append(parts, i.ModTime.Format(time.DateTime))
	}
	parts = append(parts, FormatSize(i.Size))
	b.WriteString(strings.Join(parts, " - "))
	return b.String()
}

// FormatSize abbreviates a byte count: "512 bytes", "1.5 K", "3.2 MB",
// "1.0 GB".
func FormatSize(n int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)
	switch {
	case n < kib:
		return fmt.Sprintf("%d bytes", n)
	case n < mib:
		return fmt.Sprintf("%.1f K", float64(n)/kib)
	case n < gib:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/gib)
	}
}

// Overlayer is the part of tileview.Renderer the info overlay uses.
type Overlayer interface {
	OverlayAdd(img image.Image, x, y int, flags tileview.OverlayFlags) int
	OverlaySet(id int, img image.Image, x, y int) bool
}

// ShowInfo renders info and shows it on r at (InfoX, InfoY) relative to
// the viewport. With id 0 a new overlay is added; otherwise overlay id is
// updated. It returns the overlay id.
func (f *Face) ShowInfo(r Overlayer, id int, info Info) int {
	img := f.Render(info.Text())
	if id > 0 && r.OverlaySet(id, img, InfoX, InfoY) {
		return id
	}
	return r.OverlayAdd(img, InfoX, InfoY, tileview.OverlayRelative)
}

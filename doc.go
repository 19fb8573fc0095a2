// Package tileview renders large images into a window through a cache of
// fixed-size tiles.
//
// # Overview
//
// A controller owns the view state (image, zoom, scroll, orientation) and
// exposes it as a View. A Renderer reads that state and keeps the window
// surface up to date: it splits damaged display areas into tiles, renders
// the tiles one at a time from a cooperative loop and paints them to the
// window with any overlays on top.
//
// # Quick Start
//
//	win := surface.NewImageSurface(800, 600)
//	r, err := tileview.New(ctrl, win)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	r.PixbufReplaced(false)
//	r.Loop().Flush()
//	out := win.Snapshot()
//
// # Coordinate Spaces
//
//   - Source: pixels of the decoded image, per stereo eye.
//   - Display: the source scaled by View.Scale and oriented by
//     View.Orientation, View.Width x View.Height pixels. Tiles live here.
//   - Viewport: the window area of one eye. The display is centered in it
//     at (View.XOffset, View.YOffset) when it is smaller.
//   - Window: the viewport shifted by the stereo draw offset.
//
// # Two-Pass Rendering
//
// When a zoomed image is drawn with an interpolating filter, each tile is
// first rendered with nearest-neighbor sampling so the window fills
// quickly, then queued again for a quality pass. The quality pass waits
// while View.Loading is set; call Renderer.LoadingFinished once it clears.
//
// # Scheduling
//
// Draw ticks are posted to a loop.Scheduler. The priority follows the
// amount of queued work: redraw priority when more than a tenth of the
// visible area is pending, a short delay when almost nothing is, and idle
// priority while the source is still loading. Hosts with their own main
// loop pass it with WithScheduler; headless hosts drive Renderer.Loop.
//
// # Thread Safety
//
// A Renderer is not safe for concurrent use. Call it, and run its loop, on
// one goroutine.
//
// # Related Packages
//
//   - surface: drawing targets
//   - orient: EXIF orientation mapping
//   - loop: the default scheduler
//   - osd: on-screen-display overlays
package tileview

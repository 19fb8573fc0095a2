// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the drawing surface abstraction used by the
// tile engine.
//
// Surface decouples the engine from the window system. The engine asks a
// Surface to fill rectangles, draw images, paint other surfaces and create
// compatible offscreen surfaces; it never performs hardware access itself.
//
// # Surface Types
//
//   - ImageSurface: CPU-based surface over *image.RGBA (headless, tests)
//   - Host surfaces registered through the registry
//
// # Optional Interfaces
//
//   - Scroller: in-place region moves for cheap scrolling
//   - Imager: direct access to backing pixels
//
// # Usage
//
//	win, err := surface.NewByName("image", surface.Options{Width: 800, Height: 600})
//	if err != nil {
//	    return err
//	}
//	defer win.Close()
package surface

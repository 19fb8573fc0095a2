package tilestore

import (
	"image"
	"sync"
)

// bufferPool provides reuse of tile pixel buffers via sync.Pool.
//
// Evicted tiles hand their buffer back so that the next tile of the same
// size does not allocate. Buffers are cleared before reuse.
//
// Thread safety: bufferPool is safe for concurrent use.
type bufferPool struct {
	// pools holds separate sync.Pool instances for each buffer size.
	// Key format: (width << 16) | height
	pools sync.Map
}

// Get retrieves a cleared buffer of the given size.
func (p *bufferPool) Get(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	img := p.pool(width, height).Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put returns a buffer to the pool. Nil is a no-op.
func (p *bufferPool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if pool, ok := p.pools.Load(poolKey(b.Dx(), b.Dy())); ok {
		pool.(*sync.Pool).Put(img)
	}
	// If pool doesn't exist, let GC reclaim the buffer
}

// poolKey creates a unique key for a buffer size.
// Width and height are clamped to 16-bit values to prevent overflow.
func poolKey(width, height int) uint32 {
	w := min(width, 0xFFFF)
	h := min(height, 0xFFFF)
	return uint32(w)<<16 | uint32(h) //nolint:gosec // values are clamped above
}

// pool gets or creates a sync.Pool for the given dimensions.
func (p *bufferPool) pool(width, height int) *sync.Pool {
	key := poolKey(width, height)
	if pool, ok := p.pools.Load(key); ok {
		return pool.(*sync.Pool)
	}

	newPool := &sync.Pool{
		New: func() any {
			return image.NewRGBA(image.Rect(0, 0, width, height))
		},
	}

	// Try to store; if another goroutine beat us, use theirs
	actual, _ := p.pools.LoadOrStore(key, newPool)
	return actual.(*sync.Pool)
}

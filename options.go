package tileview

import (
	"log/slog"

	"github.com/gogpu/tileview/loop"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	l := loop.New()
//	r, err := tileview.New(ctrl, win,
//	    tileview.WithScheduler(l),
//	    tileview.WithTileSize(256, 256),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	cfg   Config
	sched loop.Scheduler
	log   *slog.Logger
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		cfg: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.cfg = c
	}
}

// WithTileSize sets the cache tile dimensions.
func WithTileSize(w, h int) Option {
	return func(o *options) {
		o.cfg.TileWidth, o.cfg.TileHeight = w, h
	}
}

// WithCacheBudget sets the tile cache size in bytes.
func WithCacheBudget(bytes int64) Option {
	return func(o *options) {
		o.cfg.CacheBudget = bytes
	}
}

// WithTwoPass enables or disables the fast nearest pass ahead of the
// quality pass.
func WithTwoPass(on bool) Option {
	return func(o *options) {
		o.cfg.TwoPass = on
	}
}

// WithQuality sets the interpolation of the quality pass.
func WithQuality(q Interp) Option {
	return func(o *options) {
		o.cfg.Quality = q
	}
}

// WithScheduler sets the loop draw ticks are posted to. Without it the
// renderer creates its own loop.Loop, available from Renderer.Loop.
//
// Example:
//
//	// Run ticks on the host toolkit's main loop.
//	r, _ := tileview.New(ctrl, win, tileview.WithScheduler(hostLoop))
func WithScheduler(s loop.Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// WithLogger sets the renderer's logger instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

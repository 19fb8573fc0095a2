package tileview

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/tileview/internal/overlay"
	"github.com/gogpu/tileview/internal/paint"
	"github.com/gogpu/tileview/internal/queue"
	"github.com/gogpu/tileview/internal/tilestore"
	"github.com/gogpu/tileview/loop"
	"github.com/gogpu/tileview/orient"
	"github.com/gogpu/tileview/surface"
)

// Stats is a snapshot of the renderer's cache and queue.
type Stats struct {
	Tiles     int
	Bytes     int64
	Budget    int64
	Created   uint64
	Evictions uint64

	QueuedFast    int
	QueuedQuality int
}

// Renderer draws a View onto a window surface through a cache of
// fixed-size tiles.
//
// All methods, and the ticks the renderer posts to its scheduler, must run
// on the same goroutine. Work is done one tile per tick so the host loop
// stays responsive while a large image is drawn.
type Renderer struct {
	ctrl Controller
	win  surface.Surface
	cfg  Config
	log  *slog.Logger

	sched loop.Scheduler
	own   *loop.Loop

	store    *tilestore.Store
	queue    *queue.Queue
	painter  *paint.Painter
	overlays *overlay.Manager
	prm      paint.Params

	stereo    StereoMode
	stereoOff image.Point

	// Local scroll, mirrored or flipped by the stereo mode.
	xScroll, yScroll int

	prio   loop.Priority
	armed  bool
	cancel func()

	complete []func()
	closed   bool
}

// New creates a renderer for the view of ctrl, drawing on win.
func New(ctrl Controller, win surface.Surface, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if ctrl == nil || win == nil {
		return nil, fmt.Errorf("%w: nil controller or surface", ErrInvalidConfig)
	}
	if o.cfg.Quality == InterpDefault {
		o.cfg.Quality = InterpBilinear
	}

	log := o.log
	if log == nil {
		log = Logger()
	}

	r := &Renderer{
		ctrl:  ctrl,
		win:   win,
		cfg:   o.cfg,
		log:   log,
		sched: o.sched,
		prio:  loop.PriorityIdle,
	}
	if r.sched == nil {
		r.own = loop.New()
		r.sched = r.own
	}

	r.store = tilestore.New(o.cfg.TileWidth, o.cfg.TileHeight, o.cfg.CacheBudget, log)
	r.queue = queue.New(r.store, log)
	r.painter = paint.New(r.store, paint.Options{
		Background:   color.RGBA(o.cfg.Background),
		CheckColor1:  color.RGBA(o.cfg.CheckColor1),
		CheckColor2:  color.RGBA(o.cfg.CheckColor2),
		CheckSize:    o.cfg.CheckSize,
		SurfaceAlloc: win.CreateSimilar,
	}, log)
	r.overlays = overlay.New(o.cfg.TileWidth, o.cfg.TileHeight, log)

	v := r.view()
	r.store.SetSize(v.Width, v.Height)
	r.stereoOff = r.stereo.drawOffset(v)
	r.overlays.SetViewport(v.ViewportWidth, v.ViewportHeight)
	r.syncScroll(v)
	return r, nil
}

// Loop returns the loop the renderer created for itself, or nil when a
// scheduler was supplied with WithScheduler.
func (r *Renderer) Loop() *loop.Loop {
	return r.own
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// ===== Notifications =====

// AreaChanged reports that the source pixels in src (source image
// coordinates) changed, typically while an image is being decoded. Only
// tiles that exist or are visible are queued.
func (r *Renderer) AreaChanged(src image.Rectangle) {
	v := r.view()
	if v.Scale <= 0 {
		return
	}
	off := v.LeftOffset
	if r.stereo.right() {
		off = v.RightOffset
	}

	d := orient.MapRegion(r.orientation(v), src.Canon().Sub(image.Pt(off, 0)), v.ImageWidth, v.ImageHeight)
	if v.Scale != 1 && r.quality(v) != InterpNearest {
		// Interpolation reads one source row beyond the damage.
		d.Min.Y--
		d.Max.Y++
	}

	sy := v.Scale * v.aspect()
	area := image.Rect(
		int(math.Floor(float64(d.Min.X)*v.Scale)), int(math.Floor(float64(d.Min.Y)*sy)),
		int(math.Ceil(float64(d.Max.X)*v.Scale)), int(math.Ceil(float64(d.Max.Y)*sy)),
	)
	r.enqueue(v, area, false, tilestore.RenderArea, true, true)
}

// PixbufReplaced reports a new source image. Pending work is dropped and
// every tile is invalidated; unless lazy, the visible area is redrawn.
func (r *Renderer) PixbufReplaced(lazy bool) {
	r.clearQueue()
	r.ZoomChanged(lazy)
}

// ZoomChanged reports a new display size, scale or orientation. Pending
// work is dropped and every tile is invalidated; unless lazy, the visible
// area is redrawn.
func (r *Renderer) ZoomChanged(lazy bool) {
	v := r.view()
	r.clearQueue()
	r.store.InvalidateAll(v.Width, v.Height)
	if !lazy {
		r.redraw(v, image.Rect(0, 0, v.Width, v.Height), true, tilestore.RenderAll, true, false)
	}
	r.borderClear(v)
}

// LoadingFinished reports that the source image finished loading. Quality
// work held back while View.Loading was set is scheduled.
func (r *Renderer) LoadingFinished() {
	if r.closed || r.armed || r.queue.Empty() {
		return
	}
	r.schedule(r.view(), true)
}

// InvalidateRegion marks the tiles under r (display coordinates) for a
// full render on their next request. Nothing is queued.
func (r *Renderer) InvalidateRegion(rect image.Rectangle) {
	r.store.InvalidateRegion(rect)
}

// Expose repaints the window rectangle rect, for example after the window
// system discarded its contents.
func (r *Renderer) Expose(rect image.Rectangle) {
	r.redraw(r.view(), rect, false, tilestore.RenderAll, false, false)
}

// ViewportResized reports a new viewport size or centering. Stereo draw
// offsets are recomputed, relative overlays follow the viewport edges and
// the borders are cleared.
func (r *Renderer) ViewportResized() {
	v := r.view()
	r.stereoOff = r.stereo.drawOffset(v)
	r.syncScroll(v)

	r.overlays.SetViewport(v.ViewportWidth, v.ViewportHeight)
	for _, p := range r.overlays.All() {
		if p.Flags&overlay.Relative != 0 {
			r.overlayQueueDraw(v, p.Rect, 0, 0, 0, 0)
		}
	}
	r.borderClear(v)
	r.log.Debug("tileview: viewport resized",
		"width", v.ViewportWidth, "height", v.ViewportHeight, "offset", r.stereoOff)
}

// SetStereo sets the stereo mode. It takes effect with the next
// ViewportResized and ZoomChanged.
func (r *Renderer) SetStereo(m StereoMode) {
	r.stereo = m
}

// Stereo returns the stereo mode.
func (r *Renderer) Stereo() StereoMode {
	return r.stereo
}

// OnRenderComplete registers fn to run each time the queue drains.
func (r *Renderer) OnRenderComplete(fn func()) {
	r.complete = append(r.complete, fn)
}

// SetBudget sets the tile cache size in bytes and evicts down to it.
func (r *Renderer) SetBudget(bytes int64) {
	r.cfg.CacheBudget = bytes
	r.store.SetBudget(bytes)
}

// Stats returns cache and queue counters.
func (r *Renderer) Stats() Stats {
	s := r.store.Stats()
	return Stats{
		Tiles:         s.Tiles,
		Bytes:         s.Bytes,
		Budget:        s.Budget,
		Created:       s.Created,
		Evictions:     s.Evictions,
		QueuedFast:    r.queue.Len(tilestore.PassFast),
		QueuedQuality: r.queue.Len(tilestore.PassQuality),
	}
}

// Idle reports whether no render work is pending.
func (r *Renderer) Idle() bool {
	return r.queue.Empty()
}

// Close drops pending work and releases every tile and overlay. The
// window surface is not closed.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.clearQueue()
	r.store.FreeAll()
	r.overlays.Close()
}

// ===== Queueing =====

// clearQueue drops all pending work and the armed tick. Nothing is
// notified.
func (r *Renderer) clearQueue() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.armed = false
	r.queue.Clear()
}

// view returns the controller's view, never nil.
func (r *Renderer) view() *View {
	if v := r.ctrl.View(); v != nil {
		return v
	}
	return &View{}
}

func (r *Renderer) orientation(v *View) orient.Orientation {
	return v.Orientation.Stereo(r.stereo&StereoMirror != 0, r.stereo&StereoFlip != 0)
}

func (r *Renderer) quality(v *View) Interp {
	if v.Quality != InterpDefault {
		return v.Quality
	}
	return r.cfg.Quality
}

func (r *Renderer) background(v *View) color.RGBA {
	if v.Background != nil {
		return color.RGBAModel.Convert(v.Background).(color.RGBA)
	}
	return color.RGBA(r.cfg.Background)
}

// syncScroll updates the local scroll and the store's visible rectangle.
func (r *Renderer) syncScroll(v *View) {
	x, y := v.XScroll, v.YScroll
	if r.stereo&StereoMirror != 0 {
		x = v.Width - v.VisWidth - v.XScroll
	}
	if r.stereo&StereoFlip != 0 {
		y = v.Height - v.VisHeight - v.YScroll
	}
	r.xScroll, r.yScroll = x, y
	r.store.SetVisible(v.visible(x, y))
}

// enqueue queues display rectangle rect and arms a draw tick if none is
// pending.
func (r *Renderer) enqueue(v *View, rect image.Rectangle, clamp bool, level tilestore.RenderLevel, newData, onlyExisting bool) {
	if r.closed {
		return
	}
	r.syncScroll(v)
	if !r.queue.Enqueue(rect, clamp, level, newData, onlyExisting) {
		return
	}
	if !r.armed {
		r.schedule(v, true)
	}
}

// redraw paints the borders of window rectangle rect and queues the
// display area under it.
func (r *Renderer) redraw(v *View, rect image.Rectangle, clamp bool, level tilestore.RenderLevel, newData, onlyExisting bool) {
	rect = rect.Sub(r.stereoOff)
	r.borderDraw(v, rect)

	x := max(0, rect.Min.X-v.XOffset+v.XScroll)
	y := max(0, rect.Min.Y-v.YOffset+v.YScroll)
	w := min(rect.Dx(), v.Width-x)
	h := min(rect.Dy(), v.Height-y)
	if w < 1 || h < 1 {
		return
	}
	r.enqueue(v, image.Rect(x, y, x+w, y+h), clamp, level, newData, onlyExisting)
}

// schedule arms the next tick at the priority the queue state calls for.
// It returns true when the current tick should simply stay armed.
func (r *Renderer) schedule(v *View, force bool) bool {
	prio, arm := queue.NextPriority(r.prio, v.Loading, r.queue.Area(tilestore.PassFast), v.VisWidth*v.VisHeight, force)
	if !arm {
		return true
	}
	r.post(prio)
	return false
}

func (r *Renderer) post(p loop.Priority) {
	if p != r.prio {
		r.log.Debug("tileview: redraw priority", "priority", p)
	}
	r.prio = p
	r.armed = true
	r.cancel = r.sched.Post(p, r.tick)
}

// tick renders one queue entry. Fast entries go first; quality entries
// wait until the source finished loading.
func (r *Renderer) tick() bool {
	if r.closed {
		r.armed = false
		return false
	}
	v := r.view()
	if !v.hasImage() || r.queue.Empty() {
		r.armed = false
		r.queue.Clear()
		r.renderComplete()
		return false
	}

	e := r.queue.Front(tilestore.PassFast)
	fast := false
	if e != nil {
		fast = r.cfg.TwoPass &&
			((r.quality(v) != InterpNearest && v.Scale != 1) || v.PostProcessSlow)
	} else {
		if v.Loading {
			// Wait for LoadingFinished or new data.
			r.armed = false
			r.prio = loop.PriorityIdle
			return false
		}
		e = r.queue.Front(tilestore.PassQuality)
	}

	r.painter.SetBackground(r.background(v))
	r.exposeTile(v, e.Tile, e.Rect, e.NewData, fast)
	r.queue.Done(e, fast)

	if r.queue.Empty() {
		r.armed = false
		r.renderComplete()
		return false
	}
	return r.schedule(v, false)
}

func (r *Renderer) renderComplete() {
	for _, fn := range r.complete {
		fn()
	}
}

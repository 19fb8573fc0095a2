package queue

import (
	"image"
	"testing"

	"github.com/gogpu/tileview/internal/tilestore"
	"github.com/gogpu/tileview/loop"
)

func newTestQueue(w, h int, visible image.Rectangle) (*Queue, *tilestore.Store) {
	s := tilestore.New(128, 128, 1<<40, nil)
	s.SetSize(w, h)
	s.SetVisible(visible)
	return New(s, nil), s
}

func entries(q *Queue, p tilestore.Pass) []*Entry {
	return append([]*Entry(nil), q.passes[p]...)
}

// ===== Enqueue =====

// TestEnqueueClampScenario: a request at (-50,-50) of 200x200 against a
// visible rectangle of (0,0,256,256) queues only the (0,0,150,150)
// intersection and never cells at negative coordinates.
func TestEnqueueClampScenario(t *testing.T) {
	q, s := newTestQueue(1024, 1024, image.Rect(0, 0, 256, 256))

	if !q.Enqueue(image.Rect(-50, -50, 150, 150), true, tilestore.RenderAll, false, false) {
		t.Fatal("Enqueue() = false")
	}

	want := map[image.Point]image.Rectangle{
		image.Pt(0, 0):     image.Rect(0, 0, 128, 128),
		image.Pt(128, 0):   image.Rect(0, 0, 22, 128),
		image.Pt(0, 128):   image.Rect(0, 0, 128, 22),
		image.Pt(128, 128): image.Rect(0, 0, 22, 22),
	}
	got := entries(q, tilestore.PassFast)
	if len(got) != len(want) {
		t.Fatalf("queued %d entries, want %d", len(got), len(want))
	}
	area := 0
	for _, e := range got {
		origin := image.Pt(e.Tile.X, e.Tile.Y)
		if e.Tile.X < 0 || e.Tile.Y < 0 {
			t.Errorf("entry for negative cell %v", origin)
		}
		if r, ok := want[origin]; !ok || r != e.Rect {
			t.Errorf("entry %v rect = %v, want %v", origin, e.Rect, r)
		}
		area += e.Rect.Dx() * e.Rect.Dy()
	}
	if area != 150*150 {
		t.Errorf("queued area = %d, want %d", area, 150*150)
	}
	if s.Len() != 4 {
		t.Errorf("store holds %d tiles, want 4", s.Len())
	}
}

func TestEnqueueDropsOffscreen(t *testing.T) {
	q, s := newTestQueue(4096, 4096, image.Rect(0, 0, 256, 256))

	if q.Enqueue(image.Rect(1000, 1000, 1200, 1200), true, tilestore.RenderAll, false, false) {
		t.Error("Enqueue() accepted a request outside the viewport")
	}
	if !q.Empty() || s.Len() != 0 {
		t.Error("dropped request left work or tiles behind")
	}
}

// TestBackpressureBound: a clamped request over a huge image queues no
// more cells than cover the viewport.
func TestBackpressureBound(t *testing.T) {
	q, _ := newTestQueue(100000, 100000, image.Rect(300, 300, 556, 556))

	q.Enqueue(image.Rect(0, 0, 100000, 100000), true, tilestore.RenderAll, true, false)

	// 256px viewport not aligned to 128px cells spans at most 3x3 cells.
	if n := q.Len(tilestore.PassFast); n > 9 {
		t.Errorf("queued %d entries for a 2x2-tile viewport", n)
	}
	for _, e := range entries(q, tilestore.PassFast) {
		if !e.Tile.Bounds().Overlaps(image.Rect(300, 300, 556, 556)) {
			t.Errorf("entry for cell (%d,%d) outside the viewport", e.Tile.X, e.Tile.Y)
		}
	}
	if area := q.Area(tilestore.PassFast); area != 256*256 {
		t.Errorf("Area() = %d, want %d", area, 256*256)
	}
}

func TestEnqueueClipsToImage(t *testing.T) {
	q, _ := newTestQueue(200, 100, image.Rect(0, 0, 1000, 1000))

	q.Enqueue(image.Rect(150, 50, 400, 400), false, tilestore.RenderAll, false, false)

	got := entries(q, tilestore.PassFast)
	if len(got) != 1 {
		t.Fatalf("queued %d entries, want 1", len(got))
	}
	if want := image.Rect(22, 50, 72, 100); got[0].Rect != want {
		t.Errorf("Rect = %v, want %v", got[0].Rect, want)
	}
	if q.Enqueue(image.Rect(300, 300, 400, 400), false, tilestore.RenderAll, false, false) {
		t.Error("request fully outside the image accepted")
	}
}

// TestEnqueueMerges: overlapping requests merge by union, never duplicate.
func TestEnqueueMerges(t *testing.T) {
	q, _ := newTestQueue(1024, 1024, image.Rect(0, 0, 1024, 1024))

	q.Enqueue(image.Rect(10, 10, 20, 20), false, tilestore.RenderArea, false, false)
	q.Enqueue(image.Rect(50, 5, 60, 15), false, tilestore.RenderArea, true, false)

	got := entries(q, tilestore.PassFast)
	if len(got) != 1 {
		t.Fatalf("queued %d entries, want 1 merged entry", len(got))
	}
	if want := image.Rect(10, 5, 60, 20); got[0].Rect != want {
		t.Errorf("merged Rect = %v, want %v", got[0].Rect, want)
	}
	if !got[0].NewData {
		t.Error("merge did not OR NewData")
	}
}

func TestEnqueueOnlyExisting(t *testing.T) {
	q, s := newTestQueue(1024, 1024, image.Rect(0, 0, 128, 128))

	existing := s.GetOrCreate(512, 0)
	q.Enqueue(image.Rect(0, 0, 1024, 128), false, tilestore.RenderArea, true, true)

	got := entries(q, tilestore.PassFast)
	if len(got) != 2 {
		t.Fatalf("queued %d entries, want visible tile plus existing tile", len(got))
	}
	if s.Len() != 2 {
		t.Errorf("store holds %d tiles, want 2", s.Len())
	}
	if existing.Pending(tilestore.PassFast) == 0 {
		t.Error("existing off-screen tile was not queued")
	}
}

func TestEnqueueLevels(t *testing.T) {
	q, s := newTestQueue(1024, 1024, image.Rect(0, 0, 1024, 1024))
	tile := s.GetOrCreate(0, 0)

	tile.Done = tilestore.RenderAll
	tile.Todo = tilestore.RenderNone
	q.Enqueue(image.Rect(0, 0, 10, 10), false, tilestore.RenderAll, false, false)
	if tile.Todo != tilestore.RenderNone {
		t.Errorf("RenderAll on a done tile set Todo = %v", tile.Todo)
	}

	q.Enqueue(image.Rect(0, 0, 10, 10), false, tilestore.RenderArea, true, false)
	if tile.Todo != tilestore.RenderArea {
		t.Errorf("RenderArea set Todo = %v, want area", tile.Todo)
	}

	tile.Todo = tilestore.RenderAll
	q.Enqueue(image.Rect(0, 0, 10, 10), false, tilestore.RenderArea, true, false)
	if tile.Todo != tilestore.RenderAll {
		t.Errorf("RenderArea downgraded Todo to %v", tile.Todo)
	}
}

// ===== Passes =====

// TestTwoPassConvergence: every fast entry done with requeue yields
// exactly one quality entry, scheduled after it.
func TestTwoPassConvergence(t *testing.T) {
	q, _ := newTestQueue(1024, 1024, image.Rect(0, 0, 256, 256))
	q.Enqueue(image.Rect(0, 0, 256, 256), true, tilestore.RenderAll, true, false)

	fast := q.Len(tilestore.PassFast)
	for e := q.Front(tilestore.PassFast); e != nil; e = q.Front(tilestore.PassFast) {
		q.Done(e, true)
	}
	if q.Len(tilestore.PassQuality) != fast {
		t.Fatalf("quality entries = %d, want %d", q.Len(tilestore.PassQuality), fast)
	}

	// A second fast round for the same tiles merges into the quality entries.
	q.Enqueue(image.Rect(0, 0, 256, 256), true, tilestore.RenderAll, false, false)
	for e := q.Front(tilestore.PassFast); e != nil; e = q.Front(tilestore.PassFast) {
		q.Done(e, true)
	}
	if q.Len(tilestore.PassQuality) != fast {
		t.Errorf("quality entries after merge = %d, want %d", q.Len(tilestore.PassQuality), fast)
	}

	for e := q.Front(tilestore.PassQuality); e != nil; e = q.Front(tilestore.PassQuality) {
		if !e.NewData {
			t.Error("quality entry lost NewData")
		}
		q.Done(e, true)
	}
	if !q.Empty() {
		t.Error("quality entries requeued")
	}
}

func TestDoneClearsHandle(t *testing.T) {
	q, _ := newTestQueue(1024, 1024, image.Rect(0, 0, 1024, 1024))
	q.Enqueue(image.Rect(0, 0, 10, 10), false, tilestore.RenderAll, false, false)

	e := q.Front(tilestore.PassFast)
	q.Done(e, false)
	if e.Tile.Queued() {
		t.Error("tile still holds a handle after Done")
	}

	// Done with a stale entry is a no-op.
	q.Enqueue(image.Rect(0, 0, 10, 10), false, tilestore.RenderAll, false, false)
	q.Done(e, false)
	if q.Len(tilestore.PassFast) != 1 {
		t.Error("stale Done removed a live entry")
	}
}

func TestClear(t *testing.T) {
	q, s := newTestQueue(1024, 1024, image.Rect(0, 0, 1024, 1024))
	q.Enqueue(image.Rect(0, 0, 512, 512), false, tilestore.RenderAll, false, false)
	q.Done(q.Front(tilestore.PassFast), true)

	q.Clear()

	if !q.Empty() {
		t.Error("Clear left entries")
	}
	for _, tile := range s.Tiles() {
		if tile.Queued() {
			t.Errorf("tile (%d,%d) still holds a handle", tile.X, tile.Y)
		}
	}
}

func TestForgetOnRelease(t *testing.T) {
	q, s := newTestQueue(1024, 1024, image.Rect(0, 0, 1024, 1024))
	q.Enqueue(image.Rect(512, 0, 700, 100), false, tilestore.RenderAll, false, false)

	s.InvalidateAll(256, 256)

	if !q.Empty() {
		t.Errorf("entries of released tiles remain: %d", q.Len(tilestore.PassFast))
	}
}

// ===== Scheduling =====

func TestNextPriority(t *testing.T) {
	const visible = 10000
	tests := []struct {
		name    string
		current loop.Priority
		loading bool
		queued  int
		force   bool
		want    loop.Priority
		wantArm bool
	}{
		{"loading", loop.PriorityRedraw, true, 9000, false, loop.PriorityIdle, true},
		{"loading keeps idle", loop.PriorityIdle, true, 9000, false, loop.PriorityIdle, false},
		{"high", loop.PriorityDelayed, false, 1001, false, loop.PriorityRedraw, true},
		{"high unchanged", loop.PriorityRedraw, false, 5000, false, loop.PriorityRedraw, false},
		{"low", loop.PriorityRedraw, false, 99, false, loop.PriorityDelayed, true},
		{"drained", loop.PriorityRedraw, false, 0, false, loop.PriorityDelayed, true},
		{"force", loop.PriorityIdle, false, 500, true, loop.PriorityDelayed, true},
		{"middle band keeps", loop.PriorityIdle, false, 500, false, loop.PriorityIdle, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, arm := NextPriority(tt.current, tt.loading, tt.queued, visible, tt.force)
			if got != tt.want || arm != tt.wantArm {
				t.Errorf("NextPriority() = (%v, %v), want (%v, %v)", got, arm, tt.want, tt.wantArm)
			}
		})
	}
}

func TestNextPriorityUnknownViewport(t *testing.T) {
	got, _ := NextPriority(loop.PriorityIdle, false, 0, 0, false)
	if got != loop.PriorityRedraw {
		t.Errorf("NextPriority with zero visible area = %v, want redraw", got)
	}
}

package queue

import "github.com/gogpu/tileview/loop"

// Scheduling thresholds, as fractions of the visible area.
const (
	highWater = 0.10
	lowWater  = 0.01
)

// NextPriority picks the priority for the next draw tick from the work
// still queued on the fast pass relative to the visible area.
//
//   - source still loading: idle, so other UI events interleave
//   - more than 10% queued: redraw priority, to catch up
//   - less than 1% queued, or force: delayed
//   - otherwise: keep the current priority
//
// The second result is false when the caller should keep its current
// source armed unchanged.
func NextPriority(current loop.Priority, loading bool, queuedArea, visibleArea int, force bool) (loop.Priority, bool) {
	if loading {
		return loop.PriorityIdle, force || current != loop.PriorityIdle
	}

	fraction := 1.0
	if visibleArea > 0 {
		fraction = float64(queuedArea) / float64(visibleArea)
	}

	switch {
	case fraction > highWater:
		return loop.PriorityRedraw, force || current != loop.PriorityRedraw
	case fraction < lowWater || force:
		return loop.PriorityDelayed, true
	default:
		return current, false
	}
}

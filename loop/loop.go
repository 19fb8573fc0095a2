// Package loop provides the cooperative event loop the renderer schedules
// its draw ticks on.
//
// A callback is posted at a priority and runs on the goroutine driving the
// loop. Returning true keeps the callback armed at the same priority,
// returning false removes it. This is the contract of idle and timeout
// sources in common UI toolkits, so a host may implement Scheduler on top
// of its own main loop instead of using Loop.
package loop

import (
	"context"
	"sync"
	"time"
)

// Priority selects when a posted callback runs.
type Priority int

const (
	// PriorityRedraw runs ahead of idle work, at redraw priority.
	PriorityRedraw Priority = iota
	// PriorityIdle runs when nothing more urgent is pending.
	PriorityIdle
	// PriorityDelayed runs at idle priority after Delay has elapsed.
	PriorityDelayed
)

// Delay is the wait applied to PriorityDelayed callbacks.
const Delay = 50 * time.Millisecond

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityRedraw:
		return "redraw"
	case PriorityIdle:
		return "idle"
	case PriorityDelayed:
		return "delayed"
	default:
		return "unknown"
	}
}

// Scheduler accepts callbacks to run later on the UI goroutine.
type Scheduler interface {
	// Post arms fn at priority p. The returned function cancels it; calling
	// it more than once, or after fn was removed, is a no-op.
	Post(p Priority, fn func() bool) (cancel func())
}

// Loop is a single-goroutine Scheduler. Post may be called from any
// goroutine; callbacks only run inside Iterate, Flush or Run.
type Loop struct {
	mu      sync.Mutex
	sources []*source
	seq     uint64
	wake    chan struct{}

	// now is replaceable in tests.
	now func() time.Time
}

type source struct {
	prio Priority
	fn   func() bool
	due  time.Time
	seq  uint64
	dead bool
}

// maxFlush bounds Flush so a callback that never finishes cannot hang it.
const maxFlush = 1 << 22

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		now:  time.Now,
	}
}

// Post implements Scheduler.
func (l *Loop) Post(p Priority, fn func() bool) func() {
	l.mu.Lock()
	s := &source{prio: p, fn: fn, seq: l.seq}
	l.seq++
	if p == PriorityDelayed {
		s.due = l.now().Add(Delay)
	}
	l.sources = append(l.sources, s)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return func() {
		l.mu.Lock()
		s.dead = true
		l.mu.Unlock()
	}
}

// Pending returns the number of armed callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, s := range l.sources {
		if !s.dead {
			n++
		}
	}
	return n
}

// Iterate runs at most one ready callback and reports whether it did.
func (l *Loop) Iterate() bool {
	return l.step(false)
}

// Flush runs callbacks, ignoring delays, until none remain armed. It
// returns the number of callbacks run. Intended for headless hosts and
// tests.
func (l *Loop) Flush() int {
	n := 0
	for n < maxFlush && l.step(true) {
		n++
	}
	return n
}

// Run dispatches callbacks until ctx is done, sleeping while nothing is
// ready.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.step(false) {
			continue
		}

		wait := time.Hour
		if due, ok := l.nextDue(); ok {
			wait = max(due.Sub(l.now()), 0)
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}

// step runs the best ready source. Redraw sources run before idle and
// delayed ones; within a class, sources run in posting order.
func (l *Loop) step(ignoreDelay bool) bool {
	l.mu.Lock()
	now := l.now()
	var best *source
	live := l.sources[:0]
	for _, s := range l.sources {
		if s.dead {
			continue
		}
		live = append(live, s)
		if s.prio == PriorityDelayed && !ignoreDelay && now.Before(s.due) {
			continue
		}
		if best == nil || rank(s.prio) < rank(best.prio) ||
			(rank(s.prio) == rank(best.prio) && s.seq < best.seq) {
			best = s
		}
	}
	clear(l.sources[len(live):])
	l.sources = live
	l.mu.Unlock()

	if best == nil {
		return false
	}

	keep := best.fn()

	l.mu.Lock()
	if !keep {
		best.dead = true
	} else if !best.dead {
		best.seq = l.seq
		l.seq++
		if best.prio == PriorityDelayed {
			best.due = l.now().Add(Delay)
		}
	}
	l.mu.Unlock()
	return true
}

// nextDue returns the earliest due time of a live delayed source.
func (l *Loop) nextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due time.Time
	found := false
	for _, s := range l.sources {
		if s.dead || s.prio != PriorityDelayed {
			continue
		}
		if !found || s.due.Before(due) {
			due = s.due
			found = true
		}
	}
	return due, found
}

func rank(p Priority) int {
	if p == PriorityRedraw {
		return 0
	}
	return 1
}

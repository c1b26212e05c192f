package scroll

import "time"

// Child is the inner scrollable view the coordinator negotiates with.
type Child interface {
	// CanScrollUp reports whether the child has content above its viewport,
	// i.e. whether it could still move towards its own top.
	CanScrollUp() bool
}

// OwnScrollAborter is implemented by children that can stop their own
// running scroll animation when the coordinator takes over.
type OwnScrollAborter interface {
	AbortOwnScroll()
}

// Surface receives redraw requests when the header offset changes.
type Surface interface {
	Invalidate()
}

// FrameFunc is called once per animation frame with a monotonic time.
type FrameFunc func(now time.Duration)

// Scheduler arranges for fn to run on the next animation frame.
type Scheduler interface {
	RequestFrame(fn FrameFunc)
}

// FrameQueue is a Scheduler that holds requested callbacks until the host's
// render loop runs them.
type FrameQueue struct {
	pending []FrameFunc
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) {
	if fn != nil {
		q.pending = append(q.pending, fn)
	}
}

// Pending reports whether any callback waits for the next frame.
func (q *FrameQueue) Pending() bool { return len(q.pending) > 0 }

// Run calls the callbacks queued so far. Callbacks requested while running
// wait for the following frame.
func (q *FrameQueue) Run(now time.Duration) int {
	fns := q.pending
	q.pending = nil
	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

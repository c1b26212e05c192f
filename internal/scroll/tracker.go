package scroll

import (
	"math"
	"time"
)

// EventKind tags a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PointerEvent is a single-pointer vertical input sample.
type PointerEvent struct {
	Kind EventKind
	At   time.Duration
	Y    float64
}

// TrackerOptions configures fling thresholds and the velocity window.
type TrackerOptions struct {
	MinFlingVelocity float64
	MaxFlingVelocity float64
	VelocityWindow   time.Duration
	SampleGap        time.Duration
}

// Tracker turns raw pointer events on the coordinator's own surface into
// header drags and release flings. Events arriving out of order (a move
// without a down, say) are ignored.
type Tracker struct {
	coord    *Coordinator
	velocity VelocityEstimator
	minFling float64
	maxFling float64

	tracking bool
	lastY    float64
	carry    float64
	released float64
}

func NewTracker(c *Coordinator, opts TrackerOptions) *Tracker {
	t := &Tracker{
		coord:    c,
		minFling: opts.MinFlingVelocity,
		maxFling: opts.MaxFlingVelocity,
	}
	if t.minFling <= 0 {
		t.minFling = DefaultMinFlingVelocity
	}
	if t.maxFling <= 0 {
		t.maxFling = DefaultMaxFlingVelocity
	}
	t.velocity.Window = opts.VelocityWindow
	t.velocity.Gap = opts.SampleGap
	return t
}

// Tracking reports whether a drag is in progress.
func (t *Tracker) Tracking() bool { return t.tracking }

// ReleaseVelocity returns the finger velocity estimated at the last Up.
func (t *Tracker) ReleaseVelocity() float64 { return t.released }

// Handle processes ev and reports whether it was acted upon.
func (t *Tracker) Handle(ev PointerEvent) bool {
	if math.IsNaN(ev.Y) || math.IsInf(ev.Y, 0) {
		return false
	}
	switch ev.Kind {
	case PointerDown:
		t.down(ev)
		return true
	case PointerMove:
		if !t.tracking {
			return false
		}
		t.move(ev)
		return true
	case PointerUp:
		if !t.tracking {
			return false
		}
		t.up(ev)
		return true
	case PointerCancel:
		if !t.tracking {
			return false
		}
		t.cancel()
		return true
	}
	return false
}

func (t *Tracker) down(ev PointerEvent) {
	t.velocity.Clear()
	t.coord.BeginDrag()
	t.tracking = true
	t.lastY = ev.Y
	t.carry = 0
	t.velocity.AddSample(ev.At, ev.Y)
}

func (t *Tracker) move(ev PointerEvent) {
	// finger moving up grows the offset
	delta := t.lastY - ev.Y + t.carry
	step := int(delta)
	t.carry = delta - float64(step)
	t.coord.ScrollBy(step)
	t.velocity.AddSample(ev.At, ev.Y)
	t.lastY = ev.Y
}

func (t *Tracker) up(ev PointerEvent) {
	if ev.Y != t.lastY {
		t.move(ev)
	} else {
		// a finger held still before release leaves a gap the estimate sees
		t.velocity.AddSample(ev.At, ev.Y)
	}
	v := t.velocity.Estimate(t.maxFling)
	t.released = v
	t.velocity.Clear()
	t.tracking = false
	if math.Abs(v) >= t.minFling {
		t.coord.StartFling(-v)
		return
	}
	t.coord.EndDrag()
}

func (t *Tracker) cancel() {
	t.velocity.Clear()
	t.tracking = false
	t.coord.AbortFling()
	t.coord.EndDrag()
}

package service

import (
	"fmt"
	"log/slog"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/scroll"
)

// Step is the outcome of replaying one trace event.
type Step struct {
	Index int
	Kind  string
	Want  int
	Got   int
}

// Diverged reports whether the replayed offset differs from the recorded one.
func (s Step) Diverged() bool { return s.Want != s.Got }

// DivergenceError is returned by Verify for the first mismatching step.
type DivergenceError struct {
	Trace string
	Step  Step
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("trace %q diverges at event %d (%s): recorded offset %d, replayed %d",
		e.Trace, e.Step.Index, e.Step.Kind, e.Step.Want, e.Step.Got)
}

// replayChild answers CanScrollUp with whatever the trace recorded.
type replayChild struct{ canScrollUp bool }

func (c *replayChild) CanScrollUp() bool { return c.canScrollUp }

// Replayer feeds recorded traces through a fresh scroll core.
type Replayer struct {
	Physics config.PhysicsConfig
	Logger  *slog.Logger
}

// Run replays every event of t and returns one step per event.
func (r Replayer) Run(t repository.Trace) []Step {
	child := &replayChild{}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := NewSession(SessionOptions{
		HeaderHeight: t.HeaderHeight,
		Physics:      physicsFor(t.Physics, r.Physics),
		Child:        child,
		Logger:       logger,
	})
	steps := make([]Step, 0, len(t.Events))
	for i, ev := range t.Events {
		child.canScrollUp = ev.ChildCanScrollUp
		switch ev.Kind {
		case KindDown:
			s.Pointer(scroll.PointerEvent{Kind: scroll.PointerDown, At: ev.At, Y: ev.Y})
		case KindMove:
			s.Pointer(scroll.PointerEvent{Kind: scroll.PointerMove, At: ev.At, Y: ev.Y})
		case KindUp:
			s.Pointer(scroll.PointerEvent{Kind: scroll.PointerUp, At: ev.At, Y: ev.Y})
		case KindCancel:
			s.Pointer(scroll.PointerEvent{Kind: scroll.PointerCancel, At: ev.At, Y: ev.Y})
		case KindPreScroll:
			s.PreScroll(ev.At, ev.Delta, ev.ChildCanScrollUp)
		case KindPreFling:
			s.PreFling(ev.At, ev.Velocity)
		case KindFling:
			s.Fling(ev.At, ev.Velocity)
		case KindFrame:
			s.Frame(ev.At)
		case KindMeasure:
			s.Measure(ev.At, ev.Delta)
		case KindApply:
			s.Apply(ev.At, ev.Delta)
		default:
			logger.Warn("unknown trace event", "trace", t.Name, "index", i, "kind", ev.Kind)
		}
		steps = append(steps, Step{Index: i, Kind: ev.Kind, Want: ev.Offset, Got: s.Offset()})
	}
	return steps
}

// Verify replays t and returns a *DivergenceError at the first event whose
// offset differs from the recording.
func (r Replayer) Verify(t repository.Trace) error {
	for _, st := range r.Run(t) {
		if st.Diverged() {
			return &DivergenceError{Trace: t.Name, Step: st}
		}
	}
	return nil
}

package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/database"
	"github.com/jask/stickyscroll/internal/database/repository"
	"github.com/jask/stickyscroll/internal/scroll"
)

// Trace event kinds.
const (
	KindDown      = "down"
	KindMove      = "move"
	KindUp        = "up"
	KindCancel    = "cancel"
	KindPreScroll = "prescroll"
	KindPreFling  = "prefling"
	KindFling     = "fling"
	KindFrame     = "frame"
	KindMeasure   = "measure"
	KindApply     = "apply"
)

var pointerKinds = map[scroll.EventKind]string{
	scroll.PointerDown:   KindDown,
	scroll.PointerMove:   KindMove,
	scroll.PointerUp:     KindUp,
	scroll.PointerCancel: KindCancel,
}

// SessionOptions wires a Session.
type SessionOptions struct {
	HeaderHeight int
	Physics      config.PhysicsConfig
	Child        scroll.Child
	Surface      scroll.Surface
	Logger       *slog.Logger
}

// Session is the host-facing front of the scroll core. It owns the
// coordinator, the gesture tracker and the frame queue they share, and can
// record every input it forwards together with the resulting header offset.
type Session struct {
	coord   *scroll.Coordinator
	tracker *scroll.Tracker
	frames  *scroll.FrameQueue
	child   scroll.Child
	physics config.PhysicsConfig
	log     *slog.Logger

	recording   bool
	startHeader int
	events      []repository.TraceEvent
	// index of the frame event whose offset is still to be filled in
	openFrame int
}

func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	frames := &scroll.FrameQueue{}
	coord := scroll.NewCoordinator(opts.HeaderHeight, scroll.Options{
		Child:        opts.Child,
		Surface:      opts.Surface,
		Scheduler:    frames,
		Friction:     opts.Physics.Friction,
		StopVelocity: opts.Physics.StopVelocity,
		Logger:       logger,
	})
	return &Session{
		coord:     coord,
		tracker:   scroll.NewTracker(coord, opts.Physics.TrackerOptions()),
		frames:    frames,
		child:     opts.Child,
		physics:   opts.Physics,
		log:       logger,
		openFrame: -1,
	}
}

// Coordinator exposes the underlying coordinator for read access.
func (s *Session) Coordinator() *scroll.Coordinator { return s.coord }

// Offset returns the current header offset.
func (s *Session) Offset() int { return s.coord.Offset() }

// FramePending reports whether a callback waits for the next frame.
func (s *Session) FramePending() bool { return s.frames.Pending() }

// RequestFrame lets a child schedule its own animation on the shared queue.
func (s *Session) RequestFrame(fn scroll.FrameFunc) { s.frames.RequestFrame(fn) }

// Pointer forwards a pointer event on the header surface to the tracker.
func (s *Session) Pointer(ev scroll.PointerEvent) bool {
	handled := s.tracker.Handle(ev)
	if kind, ok := pointerKinds[ev.Kind]; ok {
		s.record(repository.TraceEvent{Kind: kind, At: ev.At, Y: ev.Y})
	}
	return handled
}

// PreScroll offers a child delta to the coordinator.
func (s *Session) PreScroll(at time.Duration, dy int, childCanScrollUp bool) scroll.Consumption {
	res := s.coord.OnPreScroll(dy, childCanScrollUp)
	s.record(repository.TraceEvent{Kind: KindPreScroll, At: at, Delta: dy, ChildCanScrollUp: childCanScrollUp})
	return res
}

// PreFling asks whether the coordinator intercepts a child fling.
func (s *Session) PreFling(at time.Duration, velocity float64) bool {
	intercepted := s.coord.OnPreFling(velocity)
	s.record(repository.TraceEvent{Kind: KindPreFling, At: at, Velocity: velocity})
	return intercepted
}

// Fling reports a child fling to the coordinator.
func (s *Session) Fling(at time.Duration, velocity float64) bool {
	canUp := s.child != nil && s.child.CanScrollUp()
	handled := s.coord.OnFling(velocity)
	s.record(repository.TraceEvent{Kind: KindFling, At: at, Velocity: velocity, ChildCanScrollUp: canUp})
	return handled
}

// Frame runs the callbacks queued for this frame.
func (s *Session) Frame(now time.Duration) int {
	if s.recording {
		s.events = append(s.events, repository.TraceEvent{Kind: KindFrame, At: now})
		s.openFrame = len(s.events) - 1
	}
	n := s.frames.Run(now)
	s.closeFrame()
	return n
}

// Measure records a new header height.
func (s *Session) Measure(at time.Duration, height int) {
	s.coord.SetHeaderHeight(height)
	s.record(repository.TraceEvent{Kind: KindMeasure, At: at, Delta: height})
}

// Apply sets the header offset directly.
func (s *Session) Apply(at time.Duration, offset int) {
	s.coord.AbortFling()
	s.coord.SetOffset(offset)
	s.record(repository.TraceEvent{Kind: KindApply, At: at, Delta: offset})
}

// StartRecording discards any previous recording and starts a new one.
func (s *Session) StartRecording() {
	s.recording = true
	s.startHeader = s.coord.HeaderHeight()
	s.events = nil
	s.openFrame = -1
	if off := s.coord.Offset(); off != 0 {
		// replay starts from a fresh core at offset 0
		s.record(repository.TraceEvent{Kind: KindApply, Delta: off})
	}
	s.log.Info("trace recording started", "header", s.startHeader, "offset", s.coord.Offset())
}

// Recording reports whether inputs are being recorded.
func (s *Session) Recording() bool { return s.recording }

// RecordedEvents returns how many inputs have been recorded.
func (s *Session) RecordedEvents() int { return len(s.events) }

// StopRecording ends the recording and returns it as an unnamed trace.
func (s *Session) StopRecording() repository.Trace {
	s.recording = false
	s.closeFrame()
	t := repository.Trace{
		ID:           uuid.NewString(),
		HeaderHeight: s.startHeader,
		CreatedAt:    database.Now(),
		Physics:      tracePhysics(s.physics),
		Events:       s.events,
	}
	s.events = nil
	s.log.Info("trace recording stopped", "events", len(t.Events))
	return t
}

func (s *Session) record(ev repository.TraceEvent) {
	if !s.recording {
		return
	}
	// a child reacting inside a frame callback records its own event; the
	// frame keeps the offset the coordinator produced before that
	s.closeFrame()
	ev.Offset = s.coord.Offset()
	s.events = append(s.events, ev)
}

func (s *Session) closeFrame() {
	if s.openFrame < 0 || s.openFrame >= len(s.events) {
		s.openFrame = -1
		return
	}
	s.events[s.openFrame].Offset = s.coord.Offset()
	s.openFrame = -1
}

func tracePhysics(p config.PhysicsConfig) repository.TracePhysics {
	return repository.TracePhysics{
		Friction:         p.Friction,
		StopVelocity:     p.StopVelocity,
		MinFlingVelocity: p.MinFlingVelocity,
		MaxFlingVelocity: p.MaxFlingVelocity,
		VelocityWindow:   p.VelocityWindow,
		SampleGap:        p.SampleGap,
	}
}

// physicsFor prefers the tuning recorded with a trace over the fallback.
func physicsFor(t repository.TracePhysics, fallback config.PhysicsConfig) config.PhysicsConfig {
	p := fallback
	if t.Friction > 0 {
		p.Friction = t.Friction
	}
	if t.StopVelocity > 0 {
		p.StopVelocity = t.StopVelocity
	}
	if t.MinFlingVelocity > 0 {
		p.MinFlingVelocity = t.MinFlingVelocity
	}
	if t.MaxFlingVelocity > 0 {
		p.MaxFlingVelocity = t.MaxFlingVelocity
	}
	if t.VelocityWindow > 0 {
		p.VelocityWindow = t.VelocityWindow
	}
	if t.SampleGap > 0 {
		p.SampleGap = t.SampleGap
	}
	return p
}

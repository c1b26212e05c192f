package scroll

import (
	"log/slog"
	"time"
)

// Phase is the coordinator's gesture/fling lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Flinging
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Flinging:
		return "flinging"
	default:
		return "unknown"
	}
}

// Consumption splits a child's scroll delta between the header and the child.
// Consumed + Remainder always equals the offered delta.
type Consumption struct {
	Consumed  int
	Remainder int
}

// Options wires a Coordinator to its collaborators. Every field is optional.
type Options struct {
	Child     Child
	Surface   Surface
	Scheduler Scheduler

	Friction     float64
	StopVelocity float64

	Logger *slog.Logger
}

// Coordinator owns the header offset and arbitrates every scroll increment
// between the header and the inner child.
//
// The header takes priority while it is not fully collapsed and the content
// moves up, and again when the content moves down but the child is already
// at its own top. Everything else stays with the child.
//
// A Coordinator is not safe for concurrent use; it expects to be driven from
// a single event loop.
type Coordinator struct {
	child     Child
	surface   Surface
	scheduler Scheduler
	log       *slog.Logger

	header int
	offset int
	phase  Phase
	fling  Fling
	gen    uint64
}

func NewCoordinator(headerHeight int, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Coordinator{
		child:     opts.Child,
		surface:   opts.Surface,
		scheduler: opts.Scheduler,
		log:       logger,
		fling:     Fling{Friction: opts.Friction, StopVelocity: opts.StopVelocity},
	}
	c.SetHeaderHeight(headerHeight)
	return c
}


// SetHeaderHeight records a new header measurement and re-clamps the offset.
func (c *Coordinator) SetHeaderHeight(h int) {
	if h < 0 {
		h = 0
	}
	c.header = h
	c.SetOffset(c.offset)
}

func (c *Coordinator) HeaderHeight() int { return c.header }
func (c *Coordinator) Offset() int       { return c.offset }
func (c *Coordinator) Phase() Phase      { return c.phase }

// FlingActive reports whether the header fling is still moving.
func (c *Coordinator) FlingActive() bool { return c.fling.Active() }

// SetOffset clamps n to [0, HeaderHeight] and applies it, asking the surface
// for a redraw only when the value changed.
func (c *Coordinator) SetOffset(n int) bool {
	out, _ := Clamp(n, 0, c.header)
	if out == c.offset {
		return false
	}
	c.offset = out
	if c.surface != nil {
		c.surface.Invalidate()
	}
	return true
}

// ScrollBy moves the header by dy, clamped, and returns the amount applied.
func (c *Coordinator) ScrollBy(dy int) int {
	dy, _ = Clamp(dy, -c.offset, c.header-c.offset)
	c.SetOffset(c.offset + dy)
	return dy
}

// OnPreScroll is offered every child delta before the child applies it.
// Positive dy moves the content up (hides the header).
//
// Consumed is always the distance the header actually moved. When the child
// is at its top and a downward dy overshoots offset 0, only the part that
// reveals the header is consumed and the rest is returned as Remainder,
// rather than claiming all of dy. Consumed + Remainder == dy holds for
// every call.
func (c *Coordinator) OnPreScroll(dy int, childCanScrollUp bool) Consumption {
	c.AbortFling()

	consumed := 0
	switch {
	case dy > 0 && c.offset < c.header:
		consumed = c.ScrollBy(dy)
	case dy < 0 && c.offset >= 0 && !childCanScrollUp:
		// at offset 0 nothing moves and the child keeps the delta
		consumed = c.ScrollBy(dy)
	}
	return Consumption{Consumed: consumed, Remainder: dy - consumed}
}

// OnPreFling never intercepts; the child gets the first chance to fling.
func (c *Coordinator) OnPreFling(velocity float64) bool { return false }

// OnFling reports every child fling as handled by the coordinator. When the
// header can still move in the fling direction, the coordinator's own
// simulator takes the motion over.
func (c *Coordinator) OnFling(velocity float64) bool {
	switch {
	case velocity > 0 && c.offset < c.header:
		c.StartFling(velocity)
	case velocity < 0 && c.offset > 0 && !c.childCanScrollUp():
		c.StartFling(velocity)
	}
	return true
}

// BeginDrag starts a direct drag on the coordinator's own surface. Any fling
// is aborted first, and so is the child's own scroll animation when it
// supports that.
func (c *Coordinator) BeginDrag() {
	c.AbortFling()
	if a, ok := c.child.(OwnScrollAborter); ok {
		a.AbortOwnScroll()
	}
	c.setPhase(Dragging)
}

// EndDrag finishes a drag that did not turn into a fling.
func (c *Coordinator) EndDrag() {
	if c.phase == Dragging {
		c.setPhase(Idle)
	}
}

// StartFling launches the header fling from the current offset. Velocity is
// in offset units per second. It reports whether any motion was started.
func (c *Coordinator) StartFling(velocity float64) bool {
	c.fling.Abort()
	c.gen++
	c.fling.Start(c.offset, velocity, 0, c.header)
	if !c.fling.Active() {
		c.setPhase(Idle)
		return false
	}
	c.log.Debug("fling start", "offset", c.offset, "velocity", velocity,
		"target", c.fling.Target(), "duration", c.fling.Duration())
	c.setPhase(Flinging)
	c.requestFrame()
	return true
}

// AbortFling stops the header fling. Safe to call in any phase.
func (c *Coordinator) AbortFling() {
	c.fling.Abort()
	if c.phase == Flinging {
		c.gen++
		c.setPhase(Idle)
	}
}

// Tick advances the header fling to now. It reports whether the fling keeps
// going. Outside of Flinging it does nothing.
func (c *Coordinator) Tick(now time.Duration) bool {
	if c.phase != Flinging {
		return false
	}
	off, active := c.fling.Tick(now)
	c.SetOffset(off)
	if !active {
		c.log.Debug("fling settled", "offset", c.offset)
		c.setPhase(Idle)
	}
	return active
}

func (c *Coordinator) requestFrame() {
	if c.scheduler == nil {
		return
	}
	gen := c.gen
	c.scheduler.RequestFrame(func(now time.Duration) {
		if gen != c.gen {
			// frame belongs to an aborted fling
			return
		}
		if c.Tick(now) {
			c.requestFrame()
		}
	})
}

func (c *Coordinator) childCanScrollUp() bool {
	return c.child != nil && c.child.CanScrollUp()
}

func (c *Coordinator) setPhase(p Phase) {
	if c.phase == p {
		return
	}
	c.log.Debug("scroll phase", "from", c.phase, "to", p)
	c.phase = p
}

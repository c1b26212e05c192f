package scroll

import (
	"math"
	"time"
)

// Defaults for the deceleration model and fling thresholds, in px and seconds.
const (
	DefaultFriction         = 4.2
	DefaultStopVelocity     = 20.0
	DefaultMinFlingVelocity = 50.0
	DefaultMaxFlingVelocity = 8000.0
)

// Fling integrates a ballistic scroll whose velocity decays exponentially:
//
//	v(t) = v0 * exp(-k*t)
//	x(t) = x0 + v0/k * (1 - exp(-k*t))
//
// Motion ends once |v(t)| falls below StopVelocity or the position reaches
// one of the bounds, where it settles without bouncing. The curve is
// anchored at the first Tick after Start, so the output depends only on the
// start arguments and the supplied tick times.
type Fling struct {
	Friction     float64
	StopVelocity float64

	x0, v0   float64
	lo, hi   float64
	startAt  time.Duration
	anchored bool
	active   bool
	offset   int
}

// Start seeds a new curve, replacing any running one.
func (f *Fling) Start(startOffset int, velocity float64, minOffset, maxOffset int) {
	if minOffset > maxOffset {
		minOffset, maxOffset = maxOffset, minOffset
	}
	start, _ := Clamp(startOffset, minOffset, maxOffset)
	f.x0 = float64(start)
	f.v0 = velocity
	f.lo = float64(minOffset)
	f.hi = float64(maxOffset)
	f.offset = start
	f.anchored = false
	f.startAt = 0

	switch {
	case math.IsNaN(velocity) || math.IsInf(velocity, 0):
		f.active = false
	case math.Abs(velocity) < f.stopVelocity():
		f.active = false
	case velocity < 0 && start <= minOffset, velocity > 0 && start >= maxOffset:
		// already resting against the bound it is heading to
		f.active = false
	default:
		f.active = true
	}
}

// Tick returns the offset at now and whether motion continues.
func (f *Fling) Tick(now time.Duration) (int, bool) {
	if !f.active {
		return f.offset, false
	}
	if !f.anchored {
		f.startAt = now
		f.anchored = true
		return f.offset, true
	}
	t := (now - f.startAt).Seconds()
	if t < 0 {
		t = 0
	}
	done := false
	if rest := f.restTime(); t >= rest {
		t = rest
		done = true
	}
	pos := f.position(t)
	// only the bound the curve is heading for can stop it
	if f.v0 < 0 && pos <= f.lo {
		pos = f.lo
		done = true
	} else if f.v0 > 0 && pos >= f.hi {
		pos = f.hi
		done = true
	}
	f.offset = int(math.Round(pos))
	if done {
		f.active = false
	}
	return f.offset, !done
}

// Abort stops the curve where it is. Safe to call at any time.
func (f *Fling) Abort() { f.active = false }

// Active reports whether the curve is still moving.
func (f *Fling) Active() bool { return f.active }

// Offset returns the last offset produced.
func (f *Fling) Offset() int { return f.offset }

// Target returns the offset the curve will come to rest at if not aborted.
func (f *Fling) Target() int {
	if !f.active {
		return f.offset
	}
	pos := clampFloat(f.position(f.restTime()), f.lo, f.hi)
	return int(math.Round(pos))
}

// Duration returns how long the unbounded curve takes to come to rest.
func (f *Fling) Duration() time.Duration {
	return time.Duration(f.restTime() * float64(time.Second))
}

func (f *Fling) position(t float64) float64 {
	k := f.friction()
	return f.x0 + f.v0/k*(1-math.Exp(-k*t))
}

func (f *Fling) restTime() float64 {
	stop := f.stopVelocity()
	speed := math.Abs(f.v0)
	if speed <= stop {
		return 0
	}
	return math.Log(speed/stop) / f.friction()
}

func (f *Fling) friction() float64 {
	if f.Friction <= 0 {
		return DefaultFriction
	}
	return f.Friction
}

func (f *Fling) stopVelocity() float64 {
	if f.StopVelocity <= 0 {
		return DefaultStopVelocity
	}
	return f.StopVelocity
}

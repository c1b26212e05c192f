package scroll

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeChild struct {
	canScrollUp bool
	aborted     int
}

func (c *fakeChild) CanScrollUp() bool { return c.canScrollUp }
func (c *fakeChild) AbortOwnScroll()   { c.aborted++ }

type countingSurface struct{ invalidations int }

func (s *countingSurface) Invalidate() { s.invalidations++ }

func TestPreScrollScenario(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})

	res := c.OnPreScroll(120, false)
	require.Equal(t, Consumption{Consumed: 120, Remainder: 0}, res)
	require.Equal(t, 120, c.Offset())

	res = c.OnPreScroll(-50, false)
	require.Equal(t, Consumption{Consumed: -50, Remainder: 0}, res)
	require.Equal(t, 70, c.Offset())

	res = c.OnPreScroll(300, false)
	require.Equal(t, Consumption{Consumed: 230, Remainder: 70}, res)
	require.Equal(t, 300, c.Offset())

	res = c.OnPreScroll(50, false)
	require.Equal(t, Consumption{Consumed: 0, Remainder: 50}, res)
	require.Equal(t, 300, c.Offset())
}

func TestPreScrollChildKeepsDownwardDeltaWhileItCanScroll(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	c.SetOffset(300)

	res := c.OnPreScroll(-40, true)
	require.Zero(t, res.Consumed)
	require.Equal(t, -40, res.Remainder)
	require.Equal(t, 300, c.Offset())

	res = c.OnPreScroll(-40, false)
	require.Equal(t, -40, res.Consumed)
	require.Equal(t, 260, c.Offset())
}

func TestPreScrollAtFullyRevealedHeader(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	for i := 0; i < 3; i++ {
		res := c.OnPreScroll(-25, false)
		require.Zero(t, res.Consumed)
		require.Equal(t, -25, res.Remainder)
		require.Zero(t, c.Offset())
	}

	c.SetOffset(10)
	res := c.OnPreScroll(-25, false)
	require.Equal(t, Consumption{Consumed: -10, Remainder: -15}, res)
	require.Zero(t, c.Offset())
}

func TestPreScrollMonotonicCollapse(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	prev := c.Offset()
	for i := 0; i < 40; i++ {
		res := c.OnPreScroll(13, false)
		require.GreaterOrEqual(t, c.Offset(), prev)
		if prev == 300 {
			require.Zero(t, res.Consumed)
			require.Equal(t, 13, res.Remainder)
		}
		prev = c.Offset()
	}
	require.Equal(t, 300, c.Offset())
}

func TestOffsetInvariantAndConservation(t *testing.T) {
	t.Parallel()

	q := &FrameQueue{}
	child := &fakeChild{}
	c := NewCoordinator(300, Options{Child: child, Scheduler: q})
	rng := rand.New(rand.NewSource(7))
	now := time.Duration(0)

	for i := 0; i < 5000; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			dy := rng.Intn(401) - 200
			child.canScrollUp = rng.Intn(2) == 0
			res := c.OnPreScroll(dy, child.canScrollUp)
			require.Equal(t, dy, res.Consumed+res.Remainder)
		case 2:
			c.OnFling(float64(rng.Intn(8001) - 4000))
		case 3:
			now += 16 * time.Millisecond
			q.Run(now)
		}
		require.GreaterOrEqual(t, c.Offset(), 0)
		require.LessOrEqual(t, c.Offset(), c.HeaderHeight())
	}
}

func TestSetOffsetInvalidatesOnlyOnChange(t *testing.T) {
	t.Parallel()

	s := &countingSurface{}
	c := NewCoordinator(300, Options{Surface: s})

	require.False(t, c.SetOffset(0))
	require.False(t, c.SetOffset(-20))
	require.Zero(t, s.invalidations)

	require.True(t, c.SetOffset(400))
	require.Equal(t, 300, c.Offset())
	require.Equal(t, 1, s.invalidations)

	require.False(t, c.SetOffset(300))
	require.Equal(t, 1, s.invalidations)
}

func TestHeaderRemeasureClampsOffset(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	c.SetOffset(250)
	c.SetHeaderHeight(200)
	require.Equal(t, 200, c.Offset())
	c.SetHeaderHeight(-5)
	require.Zero(t, c.HeaderHeight())
	require.Zero(t, c.Offset())
}

func TestFlingHooks(t *testing.T) {
	t.Parallel()

	q := &FrameQueue{}
	child := &fakeChild{canScrollUp: true}
	c := NewCoordinator(300, Options{Child: child, Scheduler: q})

	require.False(t, c.OnPreFling(1000))

	// content already scrolled: a downward fling stays with the child
	c.SetOffset(300)
	require.True(t, c.OnFling(-1500))
	require.Equal(t, Idle, c.Phase())

	child.canScrollUp = false
	require.True(t, c.OnFling(-1500))
	require.Equal(t, Flinging, c.Phase())
	require.True(t, q.Pending())

	now := time.Duration(0)
	for i := 0; i < 200 && q.Pending(); i++ {
		q.Run(now)
		now += 16 * time.Millisecond
	}
	require.Equal(t, Idle, c.Phase())
	require.Zero(t, c.Offset())

	// nothing left to collapse
	c.SetOffset(300)
	require.True(t, c.OnFling(2000))
	require.Equal(t, Idle, c.Phase())
	require.False(t, q.Pending())
}

func TestPreScrollAbortsFling(t *testing.T) {
	t.Parallel()

	q := &FrameQueue{}
	c := NewCoordinator(1000, Options{Scheduler: q})
	require.True(t, c.StartFling(3000))
	q.Run(0)
	q.Run(16 * time.Millisecond)
	at := c.Offset()

	c.OnPreScroll(5, true)
	require.Equal(t, Idle, c.Phase())
	require.False(t, c.FlingActive())
	require.Equal(t, at+5, c.Offset())

	// the frame already queued for the aborted fling must not move anything
	q.Run(32 * time.Millisecond)
	require.Equal(t, at+5, c.Offset())
	require.False(t, q.Pending())
}

func TestStaleFrameDoesNotDriveNewFling(t *testing.T) {
	t.Parallel()

	q := &FrameQueue{}
	c := NewCoordinator(1000, Options{Scheduler: q})
	c.StartFling(3000)
	c.AbortFling()
	c.AbortFling()
	c.StartFling(3000)

	// both the stale and the live callback are queued; only one frame chain survives
	q.Run(0)
	q.Run(16 * time.Millisecond)
	require.Equal(t, Flinging, c.Phase())
	require.Len(t, q.pending, 1)
}

func TestBeginDragAbortsFlingAndChildScroll(t *testing.T) {
	t.Parallel()

	q := &FrameQueue{}
	child := &fakeChild{}
	c := NewCoordinator(300, Options{Child: child, Scheduler: q})
	c.StartFling(2000)
	require.Equal(t, Flinging, c.Phase())

	c.BeginDrag()
	require.Equal(t, Dragging, c.Phase())
	require.False(t, c.FlingActive())
	require.Equal(t, 1, child.aborted)

	require.False(t, c.Tick(time.Second))
	c.EndDrag()
	require.Equal(t, Idle, c.Phase())
}

func TestTickOutsideFlingIsNoop(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	c.SetOffset(40)
	require.False(t, c.Tick(0))
	require.Equal(t, 40, c.Offset())
	c.AbortFling()
	require.Equal(t, Idle, c.Phase())
}

func TestPreScrollRevealOvershootReturnsRest(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(300, Options{})
	c.SetOffset(30)

	res := c.OnPreScroll(-50, false)
	require.Equal(t, Consumption{Consumed: -30, Remainder: -20}, res)
	require.Zero(t, c.Offset())
}

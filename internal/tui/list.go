package tui

import (
	"fmt"
	"time"

	"github.com/jask/stickyscroll/internal/config"
	"github.com/jask/stickyscroll/internal/scroll"
)

// contentList is the scrollable child under the header. It keeps its own
// drag velocity and fling, but every delta it produces is offered to the
// session's pre-scroll hook first.
type contentList struct {
	items  []string
	cellPx int
	rows   int // viewport rows with the header fully collapsed
	pos    int // px scrolled from the top

	velocity scroll.VelocityEstimator
	fling    scroll.Fling
	flingGen uint64
	flingAt  int // last fling position already applied
}

func newContentList(cfg config.Config) *contentList {
	items := make([]string, cfg.Demo.Items)
	for i := range items {
		items[i] = fmt.Sprintf("item %03d", i+1)
	}
	return &contentList{
		items:  items,
		cellPx: cfg.Demo.CellPx,
		rows:   1,
		velocity: scroll.VelocityEstimator{
			Window: cfg.Physics.VelocityWindow,
			Gap:    cfg.Physics.SampleGap,
		},
		fling: scroll.Fling{
			Friction:     cfg.Physics.Friction,
			StopVelocity: cfg.Physics.StopVelocity,
		},
	}
}

func (l *contentList) CanScrollUp() bool { return l.pos > 0 }

func (l *contentList) AbortOwnScroll() { l.stopFling() }

func (l *contentList) maxPos() int {
	return max(0, (len(l.items)-l.rows)*l.cellPx)
}

func (l *contentList) resize(rows int) {
	l.rows = max(1, rows)
	l.pos, _ = scroll.Clamp(l.pos, 0, l.maxPos())
}

// scrollBy moves the list by dy px and returns what was applied.
func (l *contentList) scrollBy(dy int) int {
	next, _ := scroll.Clamp(l.pos+dy, 0, l.maxPos())
	moved := next - l.pos
	l.pos = next
	return moved
}

func (l *contentList) beginDrag(at time.Duration, y float64) {
	l.stopFling()
	l.velocity.Clear()
	l.velocity.AddSample(at, y)
}

// endDrag returns the content velocity at release. Positive moves the
// content up, like a positive scroll delta.
func (l *contentList) endDrag(at time.Duration, y float64, maxVelocity float64) float64 {
	l.velocity.AddSample(at, y)
	v := l.velocity.Estimate(maxVelocity)
	l.velocity.Clear()
	return -v
}

func (l *contentList) stopFling() {
	if l.fling.Active() {
		l.fling.Abort()
		l.flingGen++
	}
}

// firstRow is the index of the topmost visible item.
func (l *contentList) firstRow() int {
	if l.cellPx <= 0 {
		return 0
	}
	return l.pos / l.cellPx
}

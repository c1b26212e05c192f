package repository

import "time"

// Trace is a recorded sequence of inputs to the scroll core.
type Trace struct {
	ID           string
	Name         string
	HeaderHeight int
	CreatedAt    time.Time
	Physics      TracePhysics
	Events       []TraceEvent
}

// TracePhysics records the fling tuning a trace was captured with. Zero
// values mean the replaying side's defaults apply.
type TracePhysics struct {
	Friction         float64
	StopVelocity     float64
	MinFlingVelocity float64
	MaxFlingVelocity float64
	VelocityWindow   time.Duration
	SampleGap        time.Duration
}

// TraceEvent is one recorded input together with the header offset observed
// right after it was applied.
type TraceEvent struct {
	Kind             string
	At               time.Duration
	Y                float64
	Delta            int
	Velocity         float64
	ChildCanScrollUp bool
	Offset           int
}

// TraceSummary describes a stored trace without its events.
type TraceSummary struct {
	ID           string
	Name         string
	HeaderHeight int
	CreatedAt    time.Time
	EventCount   int
}

// Package scroll coordinates vertical scrolling between a collapsible header
// and an inner scrollable child.
//
// A drag or fling first collapses or reveals the header and then hands the
// rest of the motion to the child, and the other way round when scrolling
// back. The package holds the whole decision core: velocity estimation,
// the fling deceleration curve, offset clamping, the pre-scroll negotiation
// in Coordinator and the pointer state machine in Tracker. Layout, drawing
// and frame scheduling are reached through the Child, Surface and Scheduler
// interfaces.
package scroll

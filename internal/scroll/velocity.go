package scroll

import (
	"math"
	"time"
)

const (
	defaultVelocityWindow = 100 * time.Millisecond
	defaultSampleGap      = 40 * time.Millisecond
)

// Sample is a single pointer position observed at a monotonic time.
type Sample struct {
	At  time.Duration
	Pos float64
}

// VelocityEstimator estimates the release velocity of a single-axis gesture.
// Only samples within Window of the newest one, with no gap wider than Gap
// between neighbours, take part in the estimate.
type VelocityEstimator struct {
	Window time.Duration
	Gap    time.Duration

	samples []Sample
}

// AddSample appends a sample. Samples older than the newest one are kept in
// arrival order; the estimate only looks backwards from the last.
func (e *VelocityEstimator) AddSample(at time.Duration, pos float64) {
	e.samples = append(e.samples, Sample{At: at, Pos: pos})
}

// Len returns the number of samples held.
func (e *VelocityEstimator) Len() int { return len(e.samples) }

// Clear drops every sample.
func (e *VelocityEstimator) Clear() { e.samples = e.samples[:0] }

// Estimate returns the velocity in units per second, with its magnitude
// limited to maxVelocity. It returns 0 when fewer than two samples qualify.
func (e *VelocityEstimator) Estimate(maxVelocity float64) float64 {
	recent := e.recent()
	if len(recent) < 2 {
		return 0
	}
	// Least squares slope of position over time.
	var meanT, meanP float64
	for _, s := range recent {
		meanT += s.At.Seconds()
		meanP += s.Pos
	}
	n := float64(len(recent))
	meanT /= n
	meanP /= n
	var num, den float64
	for _, s := range recent {
		dt := s.At.Seconds() - meanT
		num += dt * (s.Pos - meanP)
		den += dt * dt
	}
	if den == 0 {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	maxVelocity = math.Abs(maxVelocity)
	return clampFloat(v, -maxVelocity, maxVelocity)
}

// recent walks backwards from the newest sample collecting the ones that
// still belong to the current motion.
func (e *VelocityEstimator) recent() []Sample {
	if len(e.samples) == 0 {
		return nil
	}
	window, gap := e.Window, e.Gap
	if window <= 0 {
		window = defaultVelocityWindow
	}
	if gap <= 0 {
		gap = defaultSampleGap
	}
	last := len(e.samples) - 1
	newest := e.samples[last].At
	prev := newest
	first := last
	for i := last; i >= 0; i-- {
		s := e.samples[i]
		if newest-s.At > window || prev-s.At > gap {
			break
		}
		prev = s.At
		first = i
	}
	return e.samples[first:]
}

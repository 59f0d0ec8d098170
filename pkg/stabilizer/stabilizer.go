// Package stabilizer implements spec.md §4.3's temporal stabilizer:
// an exponentially-smoothed, deadzoned estimate of marker positions
// across live-preview frames, plus a lock-confidence counter. It is
// the only piece of shared mutable state in the pipeline (spec.md §5),
// owned exclusively by the live-preview loop in package preview.
package stabilizer

import (
	"math"

	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/marker"
)

const (
	// LockThreshold is the number of consecutive stable frames
	// required before the stabilizer reports Locked.
	LockThreshold = 3
	// Deadzone is the per-corner pixel drift below which the
	// stabilizer refuses to update its estimate.
	Deadzone = 8.0
	// Smooth is the exponential blending weight applied to a new
	// reading once drift exceeds the jitter-rejection window.
	Smooth = 0.15
	// maxStableFrames caps the counter so a long-held lock does not
	// take unbounded frames to decay once occlusion starts.
	maxStableFrames = LockThreshold + 5
)

// State is spec.md §3's StabilizerState: process-local, mutated once
// per tick by the owning live-preview loop.
type State struct {
	Quad         marker.Quad
	HasQuad      bool
	StableFrames int
	Locked       bool
}

// Update advances the stabilizer by one frame's detection result, per
// spec.md §4.3. It never mutates its receiver; callers replace their
// State with the returned value.
func Update(prev State, detected marker.Quad, found bool) State {
	if !prev.HasQuad {
		if !found {
			return State{}
		}
		return State{Quad: detected, HasQuad: true, StableFrames: 1, Locked: false}
	}

	if !found {
		next := prev
		next.StableFrames--
		if next.StableFrames <= 0 {
			return State{}
		}
		return next
	}

	drift := maxCornerDrift(prev.Quad, detected)
	switch {
	case drift < Deadzone:
		stable := prev.StableFrames + 1
		if stable > maxStableFrames {
			stable = maxStableFrames
		}
		locked := prev.Locked || stable >= LockThreshold
		return State{Quad: prev.Quad, HasQuad: true, StableFrames: stable, Locked: locked}
	case drift < 4*Deadzone && prev.Locked:
		// Reject jitter while locked: keep the prior quad and lock.
		return State{Quad: prev.Quad, HasQuad: true, StableFrames: prev.StableFrames, Locked: true}
	default:
		blended := blendQuad(prev.Quad, detected, Smooth)
		return State{Quad: blended, HasQuad: true, StableFrames: 0, Locked: false}
	}
}

func cornerDrift(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func maxCornerDrift(a, b marker.Quad) float64 {
	drifts := [4]float64{
		cornerDrift(a.TopLeft, b.TopLeft),
		cornerDrift(a.TopRight, b.TopRight),
		cornerDrift(a.BottomLeft, b.BottomLeft),
		cornerDrift(a.BottomRight, b.BottomRight),
	}
	max := drifts[0]
	for _, d := range drifts[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

func blendPoint(a, b geom.Point, weight float64) geom.Point {
	return geom.Point{
		X: a.X + (b.X-a.X)*weight,
		Y: a.Y + (b.Y-a.Y)*weight,
	}
}

func blendQuad(a, b marker.Quad, weight float64) marker.Quad {
	return marker.Quad{
		TopLeft:     blendPoint(a.TopLeft, b.TopLeft, weight),
		TopRight:    blendPoint(a.TopRight, b.TopRight, weight),
		BottomLeft:  blendPoint(a.BottomLeft, b.BottomLeft, weight),
		BottomRight: blendPoint(a.BottomRight, b.BottomRight, weight),
	}
}

// Package marker locates the four corner fiducials (spec.md §4.2):
// a multi-scale coarse density/uniformity/edge-density scan, a
// flood-fill centroid refinement, then geometry validation.
package marker

import (
	"math"

	"github.com/bubblesheet/omr-core/pkg/geom"
)

// Quad is a MarkerQuad (spec.md §3): four corner points in image-pixel
// coordinates. A Quad is only "found" once geometry validation passes;
// callers should check Detect's found return rather than inspecting
// the zero value.
type Quad struct {
	TopLeft, TopRight, BottomLeft, BottomRight geom.Point
}

// ToGeomQuad adapts a marker.Quad to the geom package's corner order.
func (q Quad) ToGeomQuad() geom.Quad {
	return geom.Quad{
		TopLeft:     q.TopLeft,
		TopRight:    q.TopRight,
		BottomLeft:  q.BottomLeft,
		BottomRight: q.BottomRight,
	}
}

// FullImageQuad returns the degraded quad spanning the whole image,
// used when Phase 3 geometry validation fails on both passes
// (spec.md §4.2, §7 MarkersNotFound).
func FullImageQuad(w, h int) Quad {
	fw, fh := float64(w), float64(h)
	return Quad{
		TopLeft:     geom.Point{X: 0, Y: 0},
		TopRight:    geom.Point{X: fw, Y: 0},
		BottomLeft:  geom.Point{X: 0, Y: fh},
		BottomRight: geom.Point{X: fw, Y: fh},
	}
}

func dist(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Validate checks spec.md §3's MarkerQuad invariants / §4.2 Phase 3:
// hRatio, vRatio, diagRatio thresholds and minimum edge span.
func (q Quad) Validate(w, h int) bool {
	top := dist(q.TopLeft, q.TopRight)
	bottom := dist(q.BottomLeft, q.BottomRight)
	left := dist(q.TopLeft, q.BottomLeft)
	right := dist(q.TopRight, q.BottomRight)
	d1 := dist(q.TopLeft, q.BottomRight)
	d2 := dist(q.TopRight, q.BottomLeft)

	hRatio := ratio(top, bottom)
	vRatio := ratio(left, right)
	diagRatio := ratio(d1, d2)

	minWH := float64(w)
	if h < w {
		minWH = float64(h)
	}

	return hRatio > 0.7 && vRatio > 0.7 && diagRatio > 0.8 &&
		top >= 0.3*minWH && left >= 0.3*minWH
}

func ratio(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a < b {
		return a / b
	}
	return b / a
}

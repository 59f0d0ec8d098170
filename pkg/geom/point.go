// Package geom provides the normalized-to-pixel coordinate mapper of
// spec.md §4.4: a perspective-free bilinear blend of the four marker
// corners, correct only up to mild shear by design (a deliberate CPU
// budget tradeoff, not an oversight).
package geom

// Point is a pair of reals in image-pixel (or normalized) space.
type Point struct {
	X, Y float64
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Quad holds the four corners of a region in a fixed order.
type Quad struct {
	TopLeft, TopRight, BottomLeft, BottomRight Point
}

// Map bilinearly projects a normalized point (nx, ny) in [0,1]^2 onto
// pixel space given the quad's four corners, per spec.md §4.4:
//
//	top = lerp(TL, TR, nx); bot = lerp(BL, BR, nx); out = lerp(top, bot, ny)
func (q Quad) Map(nx, ny float64) Point {
	top := lerp(q.TopLeft, q.TopRight, nx)
	bot := lerp(q.BottomLeft, q.BottomRight, nx)
	return lerp(top, bot, ny)
}

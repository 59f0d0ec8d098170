package marker

import "github.com/bubblesheet/omr-core/pkg/pixelimage"

// Corner identifies which of the four fiducials a search targets.
type Corner int

const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
)

// candidate is a scored coarse-scan window (spec.md §4.2 Phase 1).
type candidate struct {
	cx, cy   float64
	size     int
	density  float64
	score    float64
}

// cornerRegion returns the pixel bounds searched for a given corner,
// inset by searchFraction of each dimension from the respective corner.
func cornerRegion(corner Corner, w, h int, searchFraction float64) (x0, y0, x1, y1 int) {
	rw := int(float64(w) * searchFraction)
	rh := int(float64(h) * searchFraction)
	switch corner {
	case CornerTopLeft:
		return 0, 0, rw, rh
	case CornerTopRight:
		return w - rw, 0, w, rh
	case CornerBottomLeft:
		return 0, h - rh, rw, h
	default: // CornerBottomRight
		return w - rw, h - rh, w, h
	}
}

// scanCorner performs spec.md §4.2 Phase 1: slide a window with
// stride ~ size/4 and sample with stride ~ size/8 across the corner
// region, for each of the three candidate marker sizes, keeping the
// highest-scoring window.
func scanCorner(bin *pixelimage.PixelImage, corner Corner, w, h int, baseMarkerSize int, searchFraction, minDensity float64) (candidate, bool) {
	x0, y0, x1, y1 := cornerRegion(corner, w, h, searchFraction)
	var best candidate
	found := false

	for _, scale := range []float64{0.6, 1.0, 1.5} {
		size := int(float64(baseMarkerSize) * scale)
		if size < 4 {
			continue
		}
		stride := maxInt(1, size/4)
		sampleStride := maxInt(1, size/8)

		for wy := y0; wy+size <= y1; wy += stride {
			for wx := x0; wx+size <= x1; wx += stride {
				density, ok := windowDensity(bin, wx, wy, size, sampleStride)
				if !ok || density < minDensity {
					continue
				}
				uniformity := quadrantUniformity(bin, wx, wy, size, sampleStride)
				if uniformity < 0.40 {
					continue
				}
				if !edgeDensityOK(bin, wx, wy, size, sampleStride) {
					continue
				}
				score := density * uniformity
				if !found || score > best.score {
					best = candidate{
						cx:      float64(wx) + float64(size)/2,
						cy:      float64(wy) + float64(size)/2,
						size:    size,
						density: density,
						score:   score,
					}
					found = true
				}
			}
		}
	}
	return best, found
}

func windowDensity(bin *pixelimage.PixelImage, x0, y0, size, stride int) (float64, bool) {
	dark, total := 0, 0
	for y := y0; y < y0+size; y += stride {
		for x := x0; x < x0+size; x += stride {
			if bin.BinaryAt(x, y) {
				dark++
			}
			total++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(dark) / float64(total), true
}

// quadrantUniformity computes min(q1..q4)/max(q1..q4) of per-quadrant
// fill density, rejecting non-square shapes (spec.md §4.2 Phase 1 #2).
func quadrantUniformity(bin *pixelimage.PixelImage, x0, y0, size, stride int) float64 {
	half := size / 2
	quads := [4][2]int{{x0, y0}, {x0 + half, y0}, {x0, y0 + half}, {x0 + half, y0 + half}}
	vals := make([]float64, 4)
	for i, q := range quads {
		d, ok := windowDensity(bin, q[0], q[1], half, maxInt(1, stride))
		if !ok {
			d = 0
		}
		vals[i] = d
	}
	minV, maxV := vals[0], vals[0]
	for _, v := range vals {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == 0 {
		return 0
	}
	return minV / maxV
}

// edgeDensityOK requires each of the four sides, sampled along its
// length, to be >= 30% filled (spec.md §4.2 Phase 1 #3), rejecting
// hollow shapes.
func edgeDensityOK(bin *pixelimage.PixelImage, x0, y0, size, sampleStride int) bool {
	sides := [][2][2]int{
		{{x0, y0}, {x0 + size, y0}},                 // top
		{{x0, y0 + size - 1}, {x0 + size, y0 + size - 1}}, // bottom
		{{x0, y0}, {x0, y0 + size}},                 // left
		{{x0 + size - 1, y0}, {x0 + size - 1, y0 + size}}, // right
	}
	for _, side := range sides {
		dark, total := 0, 0
		x, y := side[0][0], side[0][1]
		ex, ey := side[1][0], side[1][1]
		if x == ex {
			for yy := y; yy < ey; yy += maxInt(1, sampleStride) {
				if bin.BinaryAt(x, yy) {
					dark++
				}
				total++
			}
		} else {
			for xx := x; xx < ex; xx += maxInt(1, sampleStride) {
				if bin.BinaryAt(xx, y) {
					dark++
				}
				total++
			}
		}
		if total == 0 || float64(dark)/float64(total) < 0.30 {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package bubble implements spec.md §4.5: ellipse-kernel bubble
// sampling (binary estimator for scans, grayscale estimator for
// camera frames), per-query adaptive thresholds, and ID/answer
// decoding with noise rejection and double-shade/multiple-answer
// flags.
package bubble

import (
	"math"

	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

// innerFactor selects the inner-sample radius as a fraction of the
// bubble radius: 0.70 for answers, 0.75 (tighter) for ID digits.
const (
	InnerFactorAnswer = 0.70
	InnerFactorID      = 0.75
	outerFactor        = 1.6
	binarySigma        = 0.6
)

// BinaryScore is the scan-sourced estimator: a Gaussian-weighted mean
// of the 1-bit plane over the inner ellipse, sigma ~= 0.6*r in
// normalized-radius units.
func BinaryScore(bin *pixelimage.PixelImage, cx, cy, rx, ry, innerFactor float64) float64 {
	x0, y0, x1, y1 := ellipseBounds(cx, cy, rx, ry, innerFactor)
	var weighted, weightSum float64
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			nd := normalizedDist(x, y, cx, cy, rx, ry)
			if nd > innerFactor {
				continue
			}
			w := math.Exp(-(nd * nd) / (2 * binarySigma * binarySigma))
			v := 0.0
			if bin.BinaryAt(x, y) {
				v = 1.0
			}
			weighted += w * v
			weightSum += w
		}
	}
	if weightSum == 0 {
		return 0
	}
	return weighted / weightSum
}

// GrayscaleScore is the camera-sourced estimator: darkness = max(0,
// (bg - mu_in) / bg), where mu_in is the Gaussian-weighted inner-ellipse
// mean and bg is the arithmetic mean over the surrounding annulus (or
// 50, whichever is greater, so a near-black background never inflates
// darkness by division).
func GrayscaleScore(gray []byte, w, h int, cx, cy, rx, ry, innerFactor float64) float64 {
	x0, y0, x1, y1 := ellipseBounds(cx, cy, rx, ry, outerFactor)

	var weighted, weightSum float64
	var annulusSum float64
	var annulusCount int

	for y := y0; y <= y1; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 || x >= w {
				continue
			}
			nd := normalizedDist(x, y, cx, cy, rx, ry)
			v := float64(gray[y*w+x])
			switch {
			case nd <= innerFactor:
				wgt := math.Exp(-(nd * nd) / (2 * binarySigma * binarySigma))
				weighted += wgt * v
				weightSum += wgt
			case nd > innerFactor && nd <= outerFactor:
				annulusSum += v
				annulusCount++
			}
		}
	}
	if weightSum == 0 {
		return 0
	}
	muIn := weighted / weightSum
	muOut := 50.0
	if annulusCount > 0 {
		muOut = annulusSum / float64(annulusCount)
	}
	bg := math.Max(muOut, 50)
	darkness := (bg - muIn) / bg
	if darkness < 0 {
		return 0
	}
	return darkness
}

func normalizedDist(x, y int, cx, cy, rx, ry float64) float64 {
	dx := (float64(x) - cx) / rx
	dy := (float64(y) - cy) / ry
	return math.Sqrt(dx*dx + dy*dy)
}

func ellipseBounds(cx, cy, rx, ry, factor float64) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(cx - rx*factor))
	x1 = int(math.Ceil(cx + rx*factor))
	y0 = int(math.Floor(cy - ry*factor))
	y1 = int(math.Ceil(cy + ry*factor))
	return
}

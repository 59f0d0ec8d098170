package preprocess

import (
	"math"
	"sort"
)

// CropBox is a pixel-space rectangle, end-exclusive.
type CropBox struct {
	X0, Y0, X1, Y1 int
}

// AutoCrop locates the paper rectangle in a camera frame per spec.md
// §4.1: outermost rows/columns whose brightness exceeds 0.65*median,
// refined toward the nearest gradient peak still >= 0.8*threshold
// within 5% of each edge, padded 1.5% per side. Returns ok=false when
// the crop would not shrink the frame by at least 6% along either axis.
func AutoCrop(gray []byte, w, h int) (box CropBox, ok bool) {
	if w == 0 || h == 0 {
		return CropBox{0, 0, w, h}, false
	}
	rowBrightness := make([]float64, h)
	colBrightness := make([]float64, w)
	for y := 0; y < h; y++ {
		var s int64
		for x := 0; x < w; x++ {
			s += int64(gray[y*w+x])
		}
		rowBrightness[y] = float64(s) / float64(w)
	}
	for x := 0; x < w; x++ {
		var s int64
		for y := 0; y < h; y++ {
			s += int64(gray[y*w+x])
		}
		colBrightness[x] = float64(s) / float64(h)
	}

	median := medianOf(gray)
	threshold := median * 0.65

	top := firstAbove(rowBrightness, threshold, false)
	bottom := firstAbove(rowBrightness, threshold, true)
	left := firstAbove(colBrightness, threshold, false)
	right := firstAbove(colBrightness, threshold, true)

	rowGrad := sobelRowGradientMeans(gray, w, h)
	colGrad := sobelColGradientMeans(gray, w, h)
	top = refineToGradientPeak(rowGrad, top, h, int(float64(h)*0.05), threshold, rowBrightness)
	bottom = refineToGradientPeak(rowGrad, bottom, h, int(float64(h)*0.05), threshold, rowBrightness)
	left = refineToGradientPeak(colGrad, left, w, int(float64(w)*0.05), threshold, colBrightness)
	right = refineToGradientPeak(colGrad, right, w, int(float64(w)*0.05), threshold, colBrightness)

	padY := int(float64(h) * 0.015)
	padX := int(float64(w) * 0.015)
	x0 := clampInt(left-padX, 0, w)
	x1 := clampInt(right+padX, 0, w)
	y0 := clampInt(top-padY, 0, h)
	y1 := clampInt(bottom+padY, 0, h)

	croppedW := x1 - x0
	croppedH := y1 - y0
	if croppedW <= 0 || croppedH <= 0 {
		return CropBox{0, 0, w, h}, false
	}
	if float64(croppedW) >= 0.94*float64(w) && float64(croppedH) >= 0.94*float64(h) {
		return CropBox{0, 0, w, h}, false
	}
	return CropBox{x0, y0, x1, y1}, true
}

func medianOf(gray []byte) float64 {
	if len(gray) == 0 {
		return 0
	}
	cp := make([]byte, len(gray))
	copy(cp, gray)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return float64(cp[len(cp)/2])
}

func firstAbove(v []float64, threshold float64, fromEnd bool) int {
	n := len(v)
	if !fromEnd {
		for i := 0; i < n; i++ {
			if v[i] >= threshold {
				return i
			}
		}
		return 0
	}
	for i := n - 1; i >= 0; i-- {
		if v[i] >= threshold {
			return i + 1
		}
	}
	return n
}

func refineToGradientPeak(grad []float64, edge, length, window int, threshold float64, brightness []float64) int {
	lo := clampInt(edge-window, 0, length-1)
	hi := clampInt(edge+window, 0, length-1)
	bestIdx := edge
	bestGrad := -1.0
	for i := lo; i <= hi; i++ {
		if brightness[i] < 0.8*threshold {
			continue
		}
		if grad[i] > bestGrad {
			bestGrad = grad[i]
			bestIdx = i
		}
	}
	return bestIdx
}

// sobelRowGradientMeans computes, per row, the mean Sobel gradient magnitude.
func sobelRowGradientMeans(gray []byte, w, h int) []float64 {
	mag := sobelMagnitude(gray, w, h)
	out := make([]float64, h)
	for y := 0; y < h; y++ {
		var s float64
		for x := 0; x < w; x++ {
			s += mag[y*w+x]
		}
		out[y] = s / float64(w)
	}
	return out
}

func sobelColGradientMeans(gray []byte, w, h int) []float64 {
	mag := sobelMagnitude(gray, w, h)
	out := make([]float64, w)
	for x := 0; x < w; x++ {
		var s float64
		for y := 0; y < h; y++ {
			s += mag[y*w+x]
		}
		out[x] = s / float64(h)
	}
	return out
}

var sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

func sobelMagnitude(gray []byte, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					xx := clampInt(x+kx, 0, w-1)
					yy := clampInt(y+ky, 0, h-1)
					v := int(gray[yy*w+xx])
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			out[y*w+x] = math.Sqrt(float64(gx*gx + gy*gy))
		}
	}
	return out
}

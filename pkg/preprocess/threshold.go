package preprocess

import "github.com/bubblesheet/omr-core/pkg/pixelimage"

// integralImage builds a summed-area table over an 8-bit grayscale
// plane so that any rectangle's sum is four lookups.
type integralImage struct {
	w, h int
	sum  []int64
}

func newIntegralImage(gray []byte, w, h int) *integralImage {
	sum := make([]int64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum[(y+1)*stride+(x+1)] = int64(gray[y*w+x]) + sum[y*stride+(x+1)] + sum[(y+1)*stride+x] - sum[y*stride+x]
		}
	}
	return &integralImage{w: w, h: h, sum: sum}
}

// RectSum returns the sum over [x0,x1) x [y0,y1), clamped to bounds.
func (ii *integralImage) RectSum(x0, y0, x1, y1 int) (sum int64, count int) {
	x0 = clampInt(x0, 0, ii.w)
	x1 = clampInt(x1, 0, ii.w)
	y0 = clampInt(y0, 0, ii.h)
	y1 = clampInt(y1, 0, ii.h)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0
	}
	stride := ii.w + 1
	s := ii.sum[y1*stride+x1] - ii.sum[y0*stride+x1] - ii.sum[y1*stride+x0] + ii.sum[y0*stride+x0]
	return s, (x1 - x0) * (y1 - y0)
}

func (ii *integralImage) Mean(x0, y0, x1, y1 int) float64 {
	sum, count := ii.RectSum(x0, y0, x1, y1)
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// Otsu computes the global threshold over an 8-bit grayscale plane by
// maximizing between-class variance on a 256-bin histogram, per
// spec.md §4.1. The result is the first level above the dark class, so
// callers classify a pixel as dark when its value is < the threshold.
func Otsu(gray []byte) int {
	var hist [256]int
	for _, v := range gray {
		hist[v]++
	}
	total := len(gray)
	if total == 0 {
		return 128
	}
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}
	var sumB, wB float64
	best := 0
	bestVar := -1.0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	if bestVar < 0 {
		return best
	}
	return best + 1
}

func globalMean(gray []byte) float64 {
	if len(gray) == 0 {
		return 0
	}
	var sum int64
	for _, v := range gray {
		sum += int64(v)
	}
	return float64(sum) / float64(len(gray))
}

// AdaptiveThreshold emits a 1-bit plane where 1 = darker than the local
// threshold, calibrated per spec.md §4.1 for camera vs. scan sources.
func AdaptiveThreshold(gray []byte, w, h int, isCamera bool) *pixelimage.PixelImage {
	out := pixelimage.New(pixelimage.KindBinary, w, h)
	if w == 0 || h == 0 {
		return out
	}
	ii := newIntegralImage(gray, w, h)
	minWH := w
	if h < minWH {
		minWH = h
	}

	var half int
	var offset func(localMean float64) float64
	if isCamera {
		half = maxInt(15, minWH/18)
		gMean := globalMean(gray)
		margin := maxInt(4, roundHalfAwayFromZero(gMean*0.05))
		offset = func(localMean float64) float64 { return localMean - float64(margin) }
	} else {
		half = maxInt(8, minWH/35)
		otsuGlobal := float64(Otsu(gray))
		offset = func(localMean float64) float64 {
			scanThresh := localMean - 8
			if otsuGlobal < scanThresh {
				return otsuGlobal
			}
			return scanThresh
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			localMean := ii.Mean(x-half, y-half, x+half+1, y+half+1)
			thresh := offset(localMean)
			if float64(gray[y*w+x]) < thresh {
				out.Pix[y*w+x] = 1
			}
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package preprocess implements the grayscale/background-subtraction/
// threshold/crop/contrast pipeline of spec.md §4.1. Every operation
// takes its buffers and dimensions explicitly; none of them close over
// ambient state.
package preprocess

import "github.com/bubblesheet/omr-core/pkg/pixelimage"

// Grayscale converts an RGBA PixelImage to 8-bit grayscale using the
// BT.601 luma weights from spec.md §4.1: Y = round(.299R + .587G + .114B).
func Grayscale(src *pixelimage.PixelImage) *pixelimage.PixelImage {
	if src.Kind != pixelimage.KindRGBA {
		out := pixelimage.New(pixelimage.KindGray, src.W, src.H)
		copy(out.Pix, src.Pix)
		return out
	}
	out := pixelimage.New(pixelimage.KindGray, src.W, src.H)
	for i := 0; i < src.W*src.H; i++ {
		off := i * 4
		r := float64(src.Pix[off])
		g := float64(src.Pix[off+1])
		b := float64(src.Pix[off+2])
		y := 0.299*r + 0.587*g + 0.114*b
		out.Pix[i] = clampByte(roundHalfAwayFromZero(y))
	}
	return out
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

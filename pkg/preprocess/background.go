package preprocess

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const backgroundBlockSize = 8

// SubtractBackground divides out multiplicative lighting per spec.md
// §4.1: downsample by a factor of 8 taking the local max per block
// (paper is brighter than marks), smooth with a 3x3 box mean, upsample
// bilinearly, then normalize gray against the recovered background.
func SubtractBackground(gray []byte, w, h int) []byte {
	bw := (w + backgroundBlockSize - 1) / backgroundBlockSize
	bh := (h + backgroundBlockSize - 1) / backgroundBlockSize
	if bw < 1 {
		bw = 1
	}
	if bh < 1 {
		bh = 1
	}

	down := image.NewGray(image.Rect(0, 0, bw, bh))
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			x0, y0 := bx*backgroundBlockSize, by*backgroundBlockSize
			x1, y1 := min(x0+backgroundBlockSize, w), min(y0+backgroundBlockSize, h)
			maxV := byte(0)
			for y := y0; y < y1; y++ {
				row := y * w
				for x := x0; x < x1; x++ {
					if v := gray[row+x]; v > maxV {
						maxV = v
					}
				}
			}
			down.Pix[down.PixOffset(bx, by)] = maxV
		}
	}

	smoothed := boxBlur3x3Gray(down)

	full := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(full, full.Bounds(), smoothed, smoothed.Bounds(), draw.Over, nil)

	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bg := full.Pix[full.PixOffset(x, y)]
			g := gray[y*w+x]
			if bg < 1 {
				bg = 1
			}
			v := roundHalfAwayFromZero(float64(g) / float64(bg) * 255.0)
			out[y*w+x] = clampByte(v)
		}
	}
	return out
}

func boxBlur3x3Gray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, n := 0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || xx >= w || yy < 0 || yy >= h {
						continue
					}
					sum += int(src.Pix[src.PixOffset(b.Min.X+xx, b.Min.Y+yy)])
					n++
				}
			}
			out.Pix[out.PixOffset(x, y)] = byte(sum / n)
		}
	}
	return out
}

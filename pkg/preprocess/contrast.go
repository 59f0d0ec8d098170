package preprocess

import "sort"

// ContrastStretchAndSharpen remaps the 2nd/95th brightness percentiles
// to 0/255 and adds back 0.3 * (gray - boxBlur3x3(gray)), per spec.md
// §4.1's camera-only contrast stretch + unsharp mask.
func ContrastStretchAndSharpen(gray []byte, w, h int) []byte {
	p2, p95 := percentiles(gray, 2, 95)
	stretched := make([]byte, len(gray))
	spread := p95 - p2
	if spread < 1 {
		spread = 1
	}
	for i, v := range gray {
		scaled := (float64(v) - p2) / spread * 255.0
		stretched[i] = clampByte(roundHalfAwayFromZero(scaled))
	}

	blurred := boxBlur3x3Plane(stretched, w, h)
	out := make([]byte, len(gray))
	for i, v := range stretched {
		sharpened := float64(v) + 0.3*(float64(v)-float64(blurred[i]))
		out[i] = clampByte(roundHalfAwayFromZero(sharpened))
	}
	return out
}

func percentiles(gray []byte, loPct, hiPct int) (lo, hi float64) {
	if len(gray) == 0 {
		return 0, 255
	}
	cp := make([]byte, len(gray))
	copy(cp, gray)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	loIdx := clampInt(len(cp)*loPct/100, 0, len(cp)-1)
	hiIdx := clampInt(len(cp)*hiPct/100, 0, len(cp)-1)
	return float64(cp[loIdx]), float64(cp[hiIdx])
}

func boxBlur3x3Plane(plane []byte, w, h int) []byte {
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, n := 0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || xx >= w || yy < 0 || yy >= h {
						continue
					}
					sum += int(plane[yy*w+xx])
					n++
				}
			}
			out[y*w+x] = byte(sum / n)
		}
	}
	return out
}

package marker

import "github.com/bubblesheet/omr-core/pkg/pixelimage"

type point struct{ x, y int }

// floodFillRefine performs spec.md §4.2 Phase 2: seed at the coarse
// center (or spiral outward to the nearest dark pixel within
// 1.5*markerSize), BFS 4-connected over the binary plane bounded by a
// neighborhood of radius 1.8*markerSize and a pixel cap of 6*size^2,
// then accept the centroid only if the connected component's aspect
// ratio and bounding-box fill ratio clear the thresholds.
func floodFillRefine(bin *pixelimage.PixelImage, cx, cy float64, size int) (refinedX, refinedY float64, ok bool) {
	seedX, seedY := int(cx), int(cy)
	if !bin.BinaryAt(seedX, seedY) {
		sx, sy, found := spiralToNearestDark(bin, seedX, seedY, int(1.5*float64(size)))
		if !found {
			return cx, cy, false
		}
		seedX, seedY = sx, sy
	}

	radius := int(1.8 * float64(size))
	pixelCap := 6 * size * size
	visited := make(map[point]bool)
	queue := []point{{seedX, seedY}}
	visited[point{seedX, seedY}] = true

	minX, minY := seedX, seedY
	maxX, maxY := seedX, seedY
	var sumX, sumY, count int64

	for len(queue) > 0 && len(visited) <= pixelCap {
		p := queue[0]
		queue = queue[1:]
		if !bin.BinaryAt(p.x, p.y) {
			continue
		}
		sumX += int64(p.x)
		sumY += int64(p.y)
		count++
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}

		neighbors := [4]point{{p.x + 1, p.y}, {p.x - 1, p.y}, {p.x, p.y + 1}, {p.x, p.y - 1}}
		for _, n := range neighbors {
			dx, dy := n.x-seedX, n.y-seedY
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if visited[n] {
				continue
			}
			if n.x < 0 || n.x >= bin.W || n.y < 0 || n.y >= bin.H {
				continue
			}
			visited[n] = true
			if bin.BinaryAt(n.x, n.y) {
				queue = append(queue, n)
			}
		}
	}

	if count == 0 {
		return cx, cy, false
	}

	bboxW := float64(maxX - minX + 1)
	bboxH := float64(maxY - minY + 1)
	aspect := ratio(bboxW, bboxH)
	fillRatio := float64(count) / (bboxW * bboxH)

	if aspect < 0.55 || fillRatio < 0.65 {
		return cx, cy, false
	}

	return float64(sumX) / float64(count), float64(sumY) / float64(count), true
}

func spiralToNearestDark(bin *pixelimage.PixelImage, cx, cy, maxRadius int) (int, int, bool) {
	if bin.BinaryAt(cx, cy) {
		return cx, cy, true
	}
	for r := 1; r <= maxRadius; r++ {
		for dx := -r; dx <= r; dx++ {
			for _, dy := range []int{-r, r} {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < bin.W && y >= 0 && y < bin.H && bin.BinaryAt(x, y) {
					return x, y, true
				}
			}
		}
		for dy := -r + 1; dy <= r-1; dy++ {
			for _, dx := range []int{-r, r} {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < bin.W && y >= 0 && y < bin.H && bin.BinaryAt(x, y) {
					return x, y, true
				}
			}
		}
	}
	return 0, 0, false
}

// Package debugdump writes intermediate decode planes to disk as
// progressive JPEGs when a debug directory is configured. It is never
// on the path a decode needs to succeed (SPEC_FULL.md §11).
package debugdump

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/dlecorfec/progjpeg"

	"github.com/bubblesheet/omr-core/pkg/marker"
)

// Dumper writes planes under Dir, named "<ts>-<label>.jpg". A zero
// Dumper (empty Dir) is a harmless no-op, so callers can construct one
// unconditionally and only pay the cost when DEBUG_DIR is set.
type Dumper struct {
	Dir string
}

func (d Dumper) enabled() bool { return d.Dir != "" }

// Plane writes a single grayscale or binary byte plane.
func (d Dumper) Plane(ts int64, label string, gray []byte, w, h int) error {
	if !d.enabled() {
		return nil
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, gray)
	return d.write(ts, label, img)
}

// Annotated writes gray with the detected marker quad drawn over it as
// thin crosses at each corner, so a reviewer can see what the detector
// locked onto without re-running the pipeline.
func (d Dumper) Annotated(ts int64, label string, gray []byte, w, h int, quad marker.Quad, found bool) error {
	if !d.enabled() {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		v := gray[i]
		off := i * 4
		img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = v, v, v, 255
	}
	if found {
		markRed := func(x, y int) {
			if x < 0 || x >= w || y < 0 || y >= h {
				return
			}
			off := (y*w + x) * 4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2] = 255, 0, 0
		}
		for _, p := range []struct{ x, y float64 }{
			{quad.TopLeft.X, quad.TopLeft.Y}, {quad.TopRight.X, quad.TopRight.Y},
			{quad.BottomLeft.X, quad.BottomLeft.Y}, {quad.BottomRight.X, quad.BottomRight.Y},
		} {
			cx, cy := int(p.x), int(p.y)
			for d := -4; d <= 4; d++ {
				markRed(cx+d, cy)
				markRed(cx, cy+d)
			}
		}
	}
	return d.write(ts, label, img)
}

func (d Dumper) write(ts int64, label string, img image.Image) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("debugdump: create dir: %w", err)
	}
	path := filepath.Join(d.Dir, fmt.Sprintf("%d-%s.jpg", ts, label))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debugdump: create file: %w", err)
	}
	defer f.Close()
	opts := &progjpeg.Options{Quality: 90, Progressive: true}
	if err := progjpeg.Encode(f, img, opts); err != nil {
		return fmt.Errorf("debugdump: encode: %w", err)
	}
	return nil
}

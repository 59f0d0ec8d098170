package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

// syntheticSheet builds a binary plane with four solid square fiducials
// near the corners of a w x h frame, matching spec.md's printed layout.
func syntheticSheet(w, h, markerSize, inset int) *pixelimage.PixelImage {
	bin := pixelimage.New(pixelimage.KindBinary, w, h)
	fill := func(x0, y0 int) {
		for y := y0; y < y0+markerSize; y++ {
			for x := x0; x < x0+markerSize; x++ {
				bin.Pix[y*w+x] = 1
			}
		}
	}
	fill(inset, inset)
	fill(w-inset-markerSize, inset)
	fill(inset, h-inset-markerSize)
	fill(w-inset-markerSize, h-inset-markerSize)
	return bin
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name      string
		bin       func() *pixelimage.PixelImage
		w, h      int
		wantFound bool
	}{
		{
			name:      "finds all four corners on a clean sheet",
			bin:       func() *pixelimage.PixelImage { return syntheticSheet(800, 1000, 32, 20) },
			w:         800,
			h:         1000,
			wantFound: true,
		},
		{
			name:      "empty image has no corners",
			bin:       func() *pixelimage.PixelImage { return pixelimage.New(pixelimage.KindBinary, 400, 500) },
			w:         400,
			h:         500,
			wantFound: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			quad, found := Detect(c.bin(), c.w, c.h, false)
			assert.Equal(t, c.wantFound, found)
			if !c.wantFound {
				return
			}
			markerSize, inset := 32, 20
			assert.InDelta(t, float64(inset+markerSize/2), quad.TopLeft.X, 6)
			assert.InDelta(t, float64(inset+markerSize/2), quad.TopLeft.Y, 6)
			assert.InDelta(t, float64(c.w-inset-markerSize/2), quad.TopRight.X, 6)
			assert.InDelta(t, float64(c.h-inset-markerSize/2), quad.BottomLeft.Y, 6)
		})
	}
}

func TestQuad_Validate(t *testing.T) {
	w, h := 800, 1000
	cases := []struct {
		name string
		quad Quad
		want bool
	}{
		{
			name: "rejects clipped top span below 30% of min dimension",
			quad: Quad{
				TopLeft:     geom.Point{X: 390, Y: 5},
				TopRight:    geom.Point{X: 410, Y: 5},
				BottomLeft:  geom.Point{X: 20, Y: 980},
				BottomRight: geom.Point{X: 780, Y: 980},
			},
			want: false,
		},
		{
			name: "accepts a well-formed full-frame quad",
			quad: Quad{
				TopLeft:     geom.Point{X: 20, Y: 20},
				TopRight:    geom.Point{X: 780, Y: 20},
				BottomLeft:  geom.Point{X: 20, Y: 980},
				BottomRight: geom.Point{X: 780, Y: 980},
			},
			want: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.quad.Validate(w, h))
		})
	}
}

package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

func TestDownscale_GrayPreservesAspectAndKind(t *testing.T) {
	pi := pixelimage.New(pixelimage.KindGray, 640, 480)
	out := downscale(pi, 320)
	require.Equal(t, pixelimage.KindGray, out.Kind)
	assert.Equal(t, 320, out.W)
	assert.Equal(t, 240, out.H)
	assert.Len(t, out.Pix, 320*240)
}

func TestDownscale_RGBAPreservesAspectAndKind(t *testing.T) {
	pi := pixelimage.New(pixelimage.KindRGBA, 1280, 720)
	out := downscale(pi, 320)
	require.Equal(t, pixelimage.KindRGBA, out.Kind)
	assert.Equal(t, 320, out.W)
	assert.Equal(t, 180, out.H)
	assert.Len(t, out.Pix, 320*180*4)
}

func TestDownscale_NoopWhenAlreadySmaller(t *testing.T) {
	pi := pixelimage.New(pixelimage.KindGray, 200, 200)
	out := downscale(pi, 320)
	assert.Same(t, pi, out)
}

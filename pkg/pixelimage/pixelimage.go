// Package pixelimage owns the raw pixel planes the rest of the OMR
// pipeline reads and writes: RGBA, 8-bit grayscale, and 1-bit binary.
package pixelimage

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "github.com/deepteams/webp" // registers "webp" with image.Decode
)

// MinDimension is the smallest width or height the pipeline will accept.
// Anything below this produces an empty binary plane rather than a panic.
const MinDimension = 200

// Kind identifies which plane a PixelImage stores.
type Kind int

const (
	KindRGBA Kind = iota
	KindGray
	KindBinary
)

// PixelImage is an immutable pixel buffer: one of {RGBA interleaved,
// 8-bit grayscale, 1-bit binary}. Buffer length is always W*H*channels.
// It is produced fresh by each preprocessing step rather than mutated
// in place, so callers never observe a half-written plane.
type PixelImage struct {
	W, H int
	Kind Kind
	Pix  []byte
}

func channels(k Kind) int {
	if k == KindRGBA {
		return 4
	}
	return 1
}

// New allocates a zeroed PixelImage of the given kind and dimensions.
func New(kind Kind, w, h int) *PixelImage {
	return &PixelImage{W: w, H: h, Kind: kind, Pix: make([]byte, w*h*channels(kind))}
}

// Decode reads an encoded PNG/JPEG/WebP file into an RGBA PixelImage.
func Decode(r io.Reader) (*PixelImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pixelimage: decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image.Image into an RGBA PixelImage.
func FromImage(img image.Image) *PixelImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pi := New(KindRGBA, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*w + x) * 4
			pi.Pix[off] = byte(r >> 8)
			pi.Pix[off+1] = byte(g >> 8)
			pi.Pix[off+2] = byte(bl >> 8)
			pi.Pix[off+3] = byte(a >> 8)
		}
	}
	return pi
}

// FromFrame wraps a raw camera frame buffer + dimensions + channel count
// already supplied by the caller (spec.md §6: raw pixel bytes + (W,H,channels)).
func FromFrame(buf []byte, w, h, ch int) (*PixelImage, error) {
	var kind Kind
	switch ch {
	case 4:
		kind = KindRGBA
	case 1:
		kind = KindGray
	default:
		return nil, fmt.Errorf("pixelimage: unsupported channel count %d", ch)
	}
	if len(buf) != w*h*ch {
		return nil, fmt.Errorf("pixelimage: buffer length %d does not match %dx%dx%d", len(buf), w, h, ch)
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return &PixelImage{W: w, H: h, Kind: kind, Pix: cp}, nil
}

// TooSmall reports whether either dimension is below MinDimension,
// per spec.md §7's DimensionError condition.
func (p *PixelImage) TooSmall() bool {
	return p.W < MinDimension || p.H < MinDimension
}

// At returns the grayscale/binary sample at (x, y). For RGBA images it
// returns the red channel; callers needing luma should convert first.
func (p *PixelImage) At(x, y int) byte {
	if x < 0 || x >= p.W || y < 0 || y >= p.H {
		return 0
	}
	ch := channels(p.Kind)
	return p.Pix[(y*p.W+x)*ch]
}

// BinaryAt reports whether the 1-bit plane is set (dark) at (x, y).
func (p *PixelImage) BinaryAt(x, y int) bool {
	return p.At(x, y) != 0
}

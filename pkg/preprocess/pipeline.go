package preprocess

import (
	"image"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"

	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

// Result carries every intermediate plane a decode needs downstream:
// the grayscale before background subtraction (contrast-stretched for
// camera sources; used by the raw-grayscale retry in marker detection),
// the background-subtracted/normalized grayscale, and the binarized
// plane used for scanning.
type Result struct {
	W, H       int
	RawGray    []byte
	Normalized []byte
	Binary     *pixelimage.PixelImage
	Cropped    bool
	CropBox    CropBox
}

// Run executes spec.md §4.1 end to end. No call path panics: images
// below pixelimage.MinDimension yield an empty Result with a nil
// Binary plane, which the caller reports as "markers not found."
func Run(src *pixelimage.PixelImage, isCamera bool) Result {
	w, h := src.W, src.H
	if w < pixelimage.MinDimension || h < pixelimage.MinDimension {
		slog.Debug("preprocess: image below minimum dimension", "w", w, "h", h)
		return Result{W: w, H: h}
	}

	gray := extractGray(src)

	cropBox := CropBox{0, 0, w, h}
	cropped := false
	if isCamera {
		if box, ok := AutoCrop(gray, w, h); ok {
			gray = cropPlane(gray, w, h, box)
			w, h = box.X1-box.X0, box.Y1-box.Y0
			cropBox = box
			cropped = true
			slog.Debug("preprocess: auto-cropped", "w", w, "h", h, "box", box)
		}
	}

	rawGray := gray
	if isCamera {
		rawGray = ContrastStretchAndSharpen(rawGray, w, h)
	}

	normalized := SubtractBackground(rawGray, w, h)
	binary := AdaptiveThreshold(normalized, w, h, isCamera)

	slog.Debug("preprocess: run complete", "w", w, "h", h, "isCamera", isCamera, "cropped", cropped)

	return Result{
		W: w, H: h,
		RawGray:    rawGray,
		Normalized: normalized,
		Binary:     binary,
		Cropped:    cropped,
		CropBox:    cropBox,
	}
}

// RetryOnRawGrayscale re-binarizes the un-normalized grayscale plane
// (Result.RawGray) with Otsu, per spec.md §4.2's single retry after a
// failed background-subtracted detection.
func RetryOnRawGrayscale(rawGray []byte, w, h int) *pixelimage.PixelImage {
	otsu := Otsu(rawGray)
	slog.Debug("preprocess: retrying binarization on raw grayscale", "w", w, "h", h, "otsuThreshold", otsu)
	out := pixelimage.New(pixelimage.KindBinary, w, h)
	for i, v := range rawGray {
		if int(v) < otsu {
			out.Pix[i] = 1
		}
	}
	return out
}

// DownscaleWidth bilinearly resamples a grayscale plane so its width
// equals targetW, preserving aspect ratio, for the stabilizer's 320px
// detection-on-downscaled-copy rule (spec.md §4.3).
func DownscaleWidth(gray []byte, w, h, targetW int) (out []byte, tw, th int) {
	if w <= targetW {
		cp := make([]byte, len(gray))
		copy(cp, gray)
		return cp, w, h
	}
	tw = targetW
	th = h * targetW / w
	if th < 1 {
		th = 1
	}
	src := &image.Gray{Pix: gray, Stride: w, Rect: image.Rect(0, 0, w, h)}
	dst := image.NewGray(image.Rect(0, 0, tw, th))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst.Pix, tw, th
}

func extractGray(src *pixelimage.PixelImage) []byte {
	if src.Kind == pixelimage.KindGray {
		out := make([]byte, len(src.Pix))
		copy(out, src.Pix)
		return out
	}
	return Grayscale(src).Pix
}

func cropPlane(gray []byte, w, h int, box CropBox) []byte {
	nw, nh := box.X1-box.X0, box.Y1-box.Y0
	out := make([]byte, nw*nh)
	for y := 0; y < nh; y++ {
		srcRow := (y + box.Y0) * w
		copy(out[y*nw:(y+1)*nw], gray[srcRow+box.X0:srcRow+box.X1])
	}
	return out
}

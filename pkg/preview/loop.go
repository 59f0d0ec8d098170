package preview

import (
	"context"
	"image"
	"image/draw"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/bubblesheet/omr-core/pkg/marker"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
	"github.com/bubblesheet/omr-core/pkg/preprocess"
	"github.com/bubblesheet/omr-core/pkg/stabilizer"
)

// tickInterval is the scheduler cadence spec.md §5 caps live-preview
// detection at: "runs the marker-detection step at most every 500 ms".
const tickInterval = 500 * time.Millisecond

// detectWidth is the downscaled copy width detection runs against
// (spec.md §5, §4.3's 320px stabilizer downscale rule).
const detectWidth = 320

// FrameSource supplies the latest available camera frame. Callers own
// frame lifetime; Loop never retains a frame past one tick.
type FrameSource interface {
	NextFrame(ctx context.Context) (*pixelimage.PixelImage, error)
}

// Loop owns the only shared mutable state in the pipeline — the
// StabilizerState (spec.md §3 Ownership) — ticking at most every
// 500ms, running detection on a downscaled copy, and publishing each
// result to hub. Loop returns when ctx is cancelled; cancellation
// merely stops scheduling and discards StabilizerState.
func Loop(ctx context.Context, src FrameSource, hub *Hub) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var state stabilizer.State
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame, err := src.NextFrame(ctx)
			if err != nil {
				hub.log.Debug("preview loop: frame source error", "error", err)
				continue
			}
			small := downscale(frame, detectWidth)
			pre := preprocess.Run(small, true)

			var quad marker.Quad
			found := false
			if pre.Binary != nil {
				quad, found = marker.Detect(pre.Binary, pre.W, pre.H, true)
			}
			state = stabilizer.Update(state, quad, found)
			hub.log.Debug("preview loop: tick", "found", state.HasQuad, "locked", state.Locked, "stableFrames", state.StableFrames, "detectW", pre.W, "detectH", pre.H)

			hub.Publish(Tick{
				Quad:         state.Quad,
				Found:        state.HasQuad,
				Locked:       state.Locked,
				StableFrames: state.StableFrames,
				TimestampMS:  time.Now().UnixMilli(),
			})
		}
	}
}

// downscale returns a copy of frame resampled to targetW wide,
// preserving aspect ratio and pixel kind, so detection on live-preview
// frames runs against a cheap 320px-wide plane instead of the full
// camera resolution (spec.md §5). A frame already no wider than
// targetW is returned as is, not copied.
func downscale(frame *pixelimage.PixelImage, targetW int) *pixelimage.PixelImage {
	if frame.W <= targetW {
		return frame
	}

	if frame.Kind == pixelimage.KindGray {
		gray, tw, th := preprocess.DownscaleWidth(frame.Pix, frame.W, frame.H, targetW)
		return &pixelimage.PixelImage{W: tw, H: th, Kind: pixelimage.KindGray, Pix: gray}
	}

	tw := targetW
	th := frame.H * targetW / frame.W
	if th < 1 {
		th = 1
	}
	src := &image.RGBA{Pix: frame.Pix, Stride: frame.W * 4, Rect: image.Rect(0, 0, frame.W, frame.H)}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return &pixelimage.PixelImage{W: tw, H: th, Kind: pixelimage.KindRGBA, Pix: dst.Pix}
}

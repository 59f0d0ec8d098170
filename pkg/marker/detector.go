package marker

import (
	"log/slog"

	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
)

// Params holds the derived thresholds from spec.md §4.2, split by
// source since camera and scan inputs calibrate differently.
type Params struct {
	BaseMarkerSize int
	SearchFraction float64
	MinDensity     float64
}

// DeriveParams computes baseMarkerSize = max(12, floor(min(W,H)*0.04))
// and the source-specific searchFraction/minDensity.
func DeriveParams(w, h int, isCamera bool) Params {
	minWH := w
	if h < minWH {
		minWH = h
	}
	base := int(float64(minWH) * 0.04)
	if base < 12 {
		base = 12
	}
	p := Params{BaseMarkerSize: base}
	if isCamera {
		p.SearchFraction = 0.35
		p.MinDensity = 0.25
	} else {
		p.SearchFraction = 0.30
		p.MinDensity = 0.35
	}
	return p
}

var allCorners = [4]Corner{CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight}

// Detect runs all three phases of spec.md §4.2 against a binarized
// plane and reports whether a valid MarkerQuad was found.
func Detect(bin *pixelimage.PixelImage, w, h int, isCamera bool) (Quad, bool) {
	params := DeriveParams(w, h, isCamera)

	var corners [4]geom.Point
	for i, corner := range allCorners {
		cand, ok := scanCorner(bin, corner, w, h, params.BaseMarkerSize, params.SearchFraction, params.MinDensity)
		if !ok {
			slog.Debug("marker: corner scan failed", "corner", corner, "baseMarkerSize", params.BaseMarkerSize)
			return Quad{}, false
		}
		rx, ry, refined := floodFillRefine(bin, cand.cx, cand.cy, cand.size)
		if !refined {
			rx, ry = cand.cx, cand.cy
		}
		corners[i] = geom.Point{X: rx, Y: ry}
	}

	quad := Quad{
		TopLeft:     corners[0],
		TopRight:    corners[1],
		BottomLeft:  corners[2],
		BottomRight: corners[3],
	}

	if !quad.Validate(w, h) {
		slog.Debug("marker: quad failed geometry validation", "quad", quad, "w", w, "h", h)
		return Quad{}, false
	}
	slog.Debug("marker: quad detected", "quad", quad, "isCamera", isCamera)
	return quad, true
}

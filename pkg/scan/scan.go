// Package scan wires pixelimage -> preprocess -> marker -> template ->
// geom -> bubble into the single Decode call of spec.md §4: "raw frame
// -> Preprocessor -> Marker detector (-> Temporal stabilizer in camera
// mode) -> Template lookup -> Coordinate mapper -> Bubble sampler ->
// Decoder -> ScanResult".
package scan

import (
	"log/slog"
	"math"

	"github.com/bubblesheet/omr-core/pkg/bubble"
	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/marker"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
	"github.com/bubblesheet/omr-core/pkg/preprocess"
	"github.com/bubblesheet/omr-core/pkg/template"
)

// Decode runs the full pipeline against a single image. It never
// panics; every failure mode is either a *Error or a degraded,
// still-populated Response with MarkersFound=false (spec.md §7).
func Decode(img *pixelimage.PixelImage, opts Options) (*Response, error) {
	if img.TooSmall() {
		return nil, newError(DimensionError, "image below minimum dimension", nil)
	}
	layout, ok := template.Lookup(opts.NumQuestions)
	if !ok {
		return nil, newError(TemplateUnknown, "no registered template for question count", nil)
	}

	isCamera := opts.isCamera()
	slog.Debug("scan: decode starting", "numQuestions", opts.NumQuestions, "numChoices", opts.NumChoices, "source", opts.Source)
	pre := preprocess.Run(img, isCamera)

	quad, found := marker.Detect(pre.Binary, pre.W, pre.H, isCamera)
	if !found {
		slog.Debug("scan: marker detection failed on background-subtracted plane, retrying on raw grayscale")
		retry := preprocess.RetryOnRawGrayscale(pre.RawGray, pre.W, pre.H)
		quad, found = marker.Detect(retry, pre.W, pre.H, isCamera)
	}
	if !found {
		slog.Debug("scan: markers not found, falling back to full-image quad")
		quad = marker.FullImageQuad(pre.W, pre.H)
	}
	if opts.Dump != nil {
		opts.Dump.Plane(opts.DumpTS, "raw_gray", pre.RawGray, pre.W, pre.H)
		opts.Dump.Annotated(opts.DumpTS, "markers", pre.RawGray, pre.W, pre.H, quad, found)
	}
	gquad := quad.ToGeomQuad()
	rx, ry := bubbleRadii(gquad, layout)

	source := "upload"
	if isCamera {
		source = "camera"
	}

	studentID, doubleShades, idScores := decodeID(pre, gquad, layout, rx, ry, isCamera, opts.WithDebugScores)
	answers, multi, ansScores := decodeAnswers(pre, gquad, layout, rx, ry, isCamera, opts)

	resp := &Response{
		Result: Result{
			StudentID:               studentID,
			Answers:                 answers,
			MultipleAnswerQuestions: multi,
			IDDoubleShadeColumns:    doubleShades,
			SourceHint:              source,
		},
		MarkersFound: found,
	}
	if opts.WithDebugScores {
		resp.Debug = &DebugScores{IDColumnScores: idScores, AnswerScores: ansScores}
	}
	slog.Debug("scan: decode complete", "studentId", studentID, "markersFound", found, "multipleAnswerQuestions", len(multi), "idDoubleShadeColumns", len(doubleShades))
	return resp, nil
}

// bubbleRadii derives pixel-space ellipse radii from the layout's
// normalized bubble diameter and the detected quad's edge lengths, so
// sampling scales with whatever size the markers were found at.
func bubbleRadii(q geom.Quad, layout template.Layout) (rx, ry float64) {
	widthPx := (dist(q.TopLeft, q.TopRight) + dist(q.BottomLeft, q.BottomRight)) / 2
	heightPx := (dist(q.TopLeft, q.BottomLeft) + dist(q.TopRight, q.BottomRight)) / 2
	rx = layout.BubbleDiameterNX / 2 * widthPx
	ry = layout.BubbleDiameterNY / 2 * heightPx
	return
}

func dist(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func sampleScore(pre preprocess.Result, p geom.Point, rx, ry, innerFactor float64, isCamera bool) float64 {
	if isCamera {
		return bubble.GrayscaleScore(pre.Normalized, pre.W, pre.H, p.X, p.Y, rx, ry, innerFactor)
	}
	return bubble.BinaryScore(pre.Binary, p.X, p.Y, rx, ry, innerFactor)
}

func decodeID(pre preprocess.Result, q geom.Quad, layout template.Layout, rx, ry float64, isCamera, withDebug bool) (string, []int, [][]float64) {
	digits := make([]byte, layout.ID.Columns)
	var doubleShades []int
	var debug [][]float64

	for col := 0; col < layout.ID.Columns; col++ {
		var scores [10]float64
		for d := 0; d < 10; d++ {
			nx, ny := layout.IDBubbleAt(col, d)
			p := q.Map(nx, ny)
			scores[d] = sampleScore(pre, p, rx, ry, bubble.InnerFactorID, isCamera)
		}
		r := bubble.DecodeIDColumn(scores, isCamera)
		digits[col] = r.Digit
		if r.DoubleShaded {
			doubleShades = append(doubleShades, col+1)
		}
		if withDebug {
			debug = append(debug, append([]float64(nil), scores[:]...))
		}
	}
	return string(digits), doubleShades, debug
}

func decodeAnswers(pre preprocess.Result, q geom.Quad, layout template.Layout, rx, ry float64, isCamera bool, opts Options) ([]string, []int, [][]float64) {
	answers := make([]string, opts.NumQuestions)
	var multi []int
	var debug [][]float64

	for question := 1; question <= opts.NumQuestions; question++ {
		scores := make([]float64, opts.NumChoices)
		for c := 0; c < opts.NumChoices; c++ {
			nx, ny, ok := layout.BubbleAt(question, c)
			if !ok {
				continue
			}
			p := q.Map(nx, ny)
			scores[c] = sampleScore(pre, p, rx, ry, bubble.InnerFactorAnswer, isCamera)
		}
		r := bubble.DecodeAnswer(scores, isCamera)
		if r.ChoiceIndex >= 0 {
			answers[question-1] = string(rune('A' + r.ChoiceIndex))
		}
		if r.Multiple {
			multi = append(multi, question)
		}
		if opts.WithDebugScores {
			debug = append(debug, scores)
		}
	}
	return answers, multi, debug
}

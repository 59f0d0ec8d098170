package scan

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/pixelimage"
	"github.com/bubblesheet/omr-core/pkg/template"
)

func blankGray(w, h int) *pixelimage.PixelImage {
	pi := pixelimage.New(pixelimage.KindGray, w, h)
	for i := range pi.Pix {
		pi.Pix[i] = 230
	}
	return pi
}

func drawFilledRect(pi *pixelimage.PixelImage, x0, y0, size int) {
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			pi.Pix[y*pi.W+x] = 10
		}
	}
}

func drawFilledEllipse(pi *pixelimage.PixelImage, cx, cy, rx, ry float64) {
	x0, y0 := int(cx-rx-1), int(cy-ry-1)
	x1, y1 := int(cx+rx+1), int(cy+ry+1)
	for y := y0; y <= y1; y++ {
		if y < 0 || y >= pi.H {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 0 || x >= pi.W {
				continue
			}
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			if dx*dx+dy*dy <= 1 {
				pi.Pix[y*pi.W+x] = 10
			}
		}
	}
}

// syntheticAnswerSheet draws four corner fiducials plus shaded ID
// digits and answer choices onto a grayscale plane, at the exact
// geometry a marker.Quad{inset+markerSize/2, ...} implies, so Decode
// can be exercised without a renderer.
func syntheticAnswerSheet(t *testing.T, w, h, markerSize, inset int, layout template.Layout, idDigits map[int]int, answerChoice map[int]int) *pixelimage.PixelImage {
	t.Helper()
	gray := blankGray(w, h)
	drawFilledRect(gray, inset, inset, markerSize)
	drawFilledRect(gray, w-inset-markerSize, inset, markerSize)
	drawFilledRect(gray, inset, h-inset-markerSize, markerSize)
	drawFilledRect(gray, w-inset-markerSize, h-inset-markerSize, markerSize)

	half := float64(markerSize) / 2
	quad := geom.Quad{
		TopLeft:     geom.Point{X: float64(inset) + half, Y: float64(inset) + half},
		TopRight:    geom.Point{X: float64(w-inset-markerSize) + half, Y: float64(inset) + half},
		BottomLeft:  geom.Point{X: float64(inset) + half, Y: float64(h-inset-markerSize) + half},
		BottomRight: geom.Point{X: float64(w-inset-markerSize) + half, Y: float64(h-inset-markerSize) + half},
	}
	widthPx := dist(quad.TopLeft, quad.TopRight)
	heightPx := dist(quad.TopLeft, quad.BottomLeft)
	rx := layout.BubbleDiameterNX / 2 * widthPx
	ry := layout.BubbleDiameterNY / 2 * heightPx

	for col, digit := range idDigits {
		nx, ny := layout.IDBubbleAt(col, digit)
		p := quad.Map(nx, ny)
		drawFilledEllipse(gray, p.X, p.Y, rx, ry)
	}
	for q, choice := range answerChoice {
		nx, ny, ok := layout.BubbleAt(q, choice)
		require.True(t, ok)
		p := quad.Map(nx, ny)
		drawFilledEllipse(gray, p.X, p.Y, rx, ry)
	}
	return gray
}

func TestDecode_DimensionError(t *testing.T) {
	pi := pixelimage.New(pixelimage.KindGray, 50, 50)
	_, err := Decode(pi, Options{NumQuestions: 20, NumChoices: 4, Source: "upload"})
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, DimensionError, se.Kind)
}

func TestDecode_TemplateUnknown(t *testing.T) {
	pi := blankGray(400, 400)
	_, err := Decode(pi, Options{NumQuestions: 37, NumChoices: 4, Source: "upload"})
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, TemplateUnknown, se.Kind)
}

func TestDecode_NoMarkersDegradesGracefully(t *testing.T) {
	pi := blankGray(400, 500)
	resp, err := Decode(pi, Options{NumQuestions: 20, NumChoices: 4, Source: "upload"})
	require.NoError(t, err)
	assert.False(t, resp.MarkersFound)
	assert.Len(t, resp.Answers, 20)
}

func TestDecode_FullSheetMatchesShadedGroundTruth(t *testing.T) {
	layout, ok := template.Lookup(20)
	require.True(t, ok)

	idDigits := map[int]int{0: 2, 1: 0, 2: 2, 3: 6}
	answers := map[int]int{}
	for q := 1; q <= 20; q++ {
		answers[q] = 0 // all "A"
	}

	w, h, markerSize, inset := 800, 1000, 32, 20
	gray := syntheticAnswerSheet(t, w, h, markerSize, inset, layout, idDigits, answers)

	resp, err := Decode(gray, Options{NumQuestions: 20, NumChoices: 4, Source: "upload"})
	require.NoError(t, err)
	require.True(t, resp.MarkersFound)

	assert.Equal(t, "202600000", resp.StudentID)
	for _, a := range resp.Answers {
		assert.Equal(t, "A", a)
	}
	assert.Empty(t, resp.MultipleAnswerQuestions)
}

// TestDecode_RoundTripsShadedGroundTruth is spec.md §8 property-1: for
// any sheet where exactly one bubble per ID column and per question is
// shaded, Decode must recover exactly that ground truth. A fixed seed
// keeps the sweep reproducible across runs while still exercising many
// random ID/answer combinations across every registered template size.
func TestDecode_RoundTripsShadedGroundTruth(t *testing.T) {
	const trials = 1000
	const numChoices = 4
	w, h, markerSize, inset := 800, 1000, 32, 20

	rng := rand.New(rand.NewSource(20240601))
	counts := template.QuestionCounts()

	for trial := 0; trial < trials; trial++ {
		numQuestions := counts[rng.Intn(len(counts))]
		layout, ok := template.Lookup(numQuestions)
		require.True(t, ok)

		idDigits := make(map[int]int, layout.ID.Columns)
		for col := 0; col < layout.ID.Columns; col++ {
			idDigits[col] = rng.Intn(10)
		}
		answers := make(map[int]int, numQuestions)
		for q := 1; q <= numQuestions; q++ {
			answers[q] = rng.Intn(numChoices)
		}

		gray := syntheticAnswerSheet(t, w, h, markerSize, inset, layout, idDigits, answers)
		resp, err := Decode(gray, Options{NumQuestions: numQuestions, NumChoices: numChoices, Source: "upload"})
		require.NoError(t, err, "trial %d (numQuestions=%d)", trial, numQuestions)
		require.True(t, resp.MarkersFound, "trial %d (numQuestions=%d)", trial, numQuestions)

		wantID := ""
		for col := 0; col < layout.ID.Columns; col++ {
			wantID += fmt.Sprintf("%d", idDigits[col])
		}
		assert.Equal(t, wantID, resp.StudentID, "trial %d (numQuestions=%d)", trial, numQuestions)
		assert.Empty(t, resp.IDDoubleShadeColumns, "trial %d (numQuestions=%d)", trial, numQuestions)
		assert.Empty(t, resp.MultipleAnswerQuestions, "trial %d (numQuestions=%d)", trial, numQuestions)

		require.Len(t, resp.Answers, numQuestions, "trial %d (numQuestions=%d)", trial, numQuestions)
		for q := 1; q <= numQuestions; q++ {
			want := string(rune('A' + answers[q]))
			assert.Equal(t, want, resp.Answers[q-1], "trial %d (numQuestions=%d, question=%d)", trial, numQuestions, q)
		}
	}
}

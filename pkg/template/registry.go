// Package template defines the normalized-coordinate TemplateLayouts of
// spec.md §4.6 for the 20/50/100-question sheets. The registry here is
// the single source of truth package render draws from and package
// bubble samples against — spec.md: "the renderer and detector must
// share that table to remain in lockstep."
package template

import "fmt"

// IDGrid describes the student-id bubble matrix: one digit column per
// ID character, ten rows (0-9) per column.
type IDGrid struct {
	FirstColNX, FirstRowNY   float64
	ColSpacingNX, RowSpacingNY float64
	Columns                  int
}

// AnswerBlock is a contiguous rectangular group of question rows
// (spec.md GLOSSARY), e.g. Q1-10.
type AnswerBlock struct {
	StartQ, EndQ                   int
	FirstBubbleNX, FirstBubbleNY   float64
	BubbleSpacingNX, RowSpacingNY  float64
}

// Layout is spec.md §3's TemplateLayout, keyed by question count.
type Layout struct {
	NumQuestions                       int
	ID                                 IDGrid
	AnswerBlocks                       []AnswerBlock
	BubbleDiameterNX, BubbleDiameterNY float64
	// MarkerSizeMM and FrameWidthMM/FrameHeightMM describe the printed
	// geometry package render uses; the normalized coordinates above
	// are already expressed against the marker-to-marker frame these
	// imply, per spec.md §4.6.
	MarkerSizeMM                float64
	FrameWidthMM, FrameHeightMM float64
}

// registry is populated by init(); Lookup is the only accessor so
// callers can't mutate the shared table in place.
var registry = map[int]Layout{}

func init() {
	registry[20] = build20()
	registry[50] = build50()
	registry[100] = build100()
}

// Lookup returns the registered layout for numQuestions and whether it
// exists (spec.md §7 TemplateUnknown when it does not).
func Lookup(numQuestions int) (Layout, bool) {
	l, ok := registry[numQuestions]
	return l, ok
}

// QuestionCounts returns the registered template sizes, smallest first.
func QuestionCounts() []int {
	return []int{20, 50, 100}
}

// BubbleAt returns the normalized center of question q's bubble for
// the given choice index (0-based), and whether q is covered by any
// answer block in the layout.
func (l Layout) BubbleAt(question, choiceIndex int) (nx, ny float64, ok bool) {
	for _, b := range l.AnswerBlocks {
		if question < b.StartQ || question > b.EndQ {
			continue
		}
		row := question - b.StartQ
		nx = b.FirstBubbleNX + float64(choiceIndex)*b.BubbleSpacingNX
		ny = b.FirstBubbleNY + float64(row)*b.RowSpacingNY
		return nx, ny, true
	}
	return 0, 0, false
}

// IDBubbleAt returns the normalized center of ID column col's digit row.
func (l Layout) IDBubbleAt(col, digit int) (nx, ny float64) {
	nx = l.ID.FirstColNX + float64(col)*l.ID.ColSpacingNX
	ny = l.ID.FirstRowNY + float64(digit)*l.ID.RowSpacingNY
	return nx, ny
}

// ValidateCoverage checks spec.md §3's invariant: answerBlocks' ranges
// union to exactly {1..N} without overlap.
func (l Layout) ValidateCoverage() error {
	seen := make([]bool, l.NumQuestions+1)
	for _, b := range l.AnswerBlocks {
		if b.StartQ < 1 || b.EndQ > l.NumQuestions || b.StartQ > b.EndQ {
			return fmt.Errorf("template: block [%d,%d] out of range for %d questions", b.StartQ, b.EndQ, l.NumQuestions)
		}
		for q := b.StartQ; q <= b.EndQ; q++ {
			if seen[q] {
				return fmt.Errorf("template: question %d covered by more than one block", q)
			}
			seen[q] = true
		}
	}
	for q := 1; q <= l.NumQuestions; q++ {
		if !seen[q] {
			return fmt.Errorf("template: question %d not covered by any block", q)
		}
	}
	return nil
}

func build20() Layout {
	return Layout{
		NumQuestions: 20,
		ID: IDGrid{
			FirstColNX: 0.05, FirstRowNY: 0.05,
			ColSpacingNX: 0.024, RowSpacingNY: 0.018,
			Columns: 9, // legacy mini sheet: 9 ID columns, spec.md §3
		},
		AnswerBlocks: []AnswerBlock{
			{StartQ: 1, EndQ: 10, FirstBubbleNX: 0.10, FirstBubbleNY: 0.45, BubbleSpacingNX: 0.03, RowSpacingNY: 0.04},
			{StartQ: 11, EndQ: 20, FirstBubbleNX: 0.55, FirstBubbleNY: 0.45, BubbleSpacingNX: 0.03, RowSpacingNY: 0.04},
		},
		BubbleDiameterNX: 0.022, BubbleDiameterNY: 0.016,
		MarkerSizeMM: 4, FrameWidthMM: 180, FrameHeightMM: 250,
	}
}

func build50() Layout {
	return Layout{
		NumQuestions: 50,
		ID: IDGrid{
			FirstColNX: 0.04, FirstRowNY: 0.05,
			ColSpacingNX: 0.022, RowSpacingNY: 0.016,
			Columns: 10,
		},
		AnswerBlocks: []AnswerBlock{
			{StartQ: 1, EndQ: 25, FirstBubbleNX: 0.08, FirstBubbleNY: 0.30, BubbleSpacingNX: 0.022, RowSpacingNY: 0.026},
			{StartQ: 26, EndQ: 50, FirstBubbleNX: 0.55, FirstBubbleNY: 0.30, BubbleSpacingNX: 0.022, RowSpacingNY: 0.026},
		},
		BubbleDiameterNX: 0.018, BubbleDiameterNY: 0.014,
		MarkerSizeMM: 7, FrameWidthMM: 190, FrameHeightMM: 277,
	}
}

func build100() Layout {
	blocks := []AnswerBlock{
		// Top band: Q41-50 and Q71-80 alongside the ID grid, same
		// vertical span as the ten ID rows (spec.md §4.6).
		{StartQ: 41, EndQ: 50, FirstBubbleNX: 0.30, FirstBubbleNY: 0.05, BubbleSpacingNX: 0.022, RowSpacingNY: 0.016},
		{StartQ: 71, EndQ: 80, FirstBubbleNX: 0.55, FirstBubbleNY: 0.05, BubbleSpacingNX: 0.022, RowSpacingNY: 0.016},
	}
	// Bottom 4-column x 2-row grid of ten-question blocks.
	bottomRanges := [2][4][2]int{
		{{1, 10}, {11, 20}, {21, 30}, {31, 40}},
		{{51, 60}, {61, 70}, {81, 90}, {91, 100}},
	}
	for rowIdx, row := range bottomRanges {
		for colIdx, rng := range row {
			blocks = append(blocks, AnswerBlock{
				StartQ:          rng[0],
				EndQ:            rng[1],
				FirstBubbleNX:   0.04 + float64(colIdx)*0.24,
				FirstBubbleNY:   0.30 + float64(rowIdx)*0.33,
				BubbleSpacingNX: 0.022,
				RowSpacingNY:    0.028,
			})
		}
	}
	return Layout{
		NumQuestions: 100,
		ID: IDGrid{
			FirstColNX: 0.04, FirstRowNY: 0.05,
			ColSpacingNX: 0.022, RowSpacingNY: 0.016,
			Columns: 10,
		},
		AnswerBlocks:     blocks,
		BubbleDiameterNX: 0.018, BubbleDiameterNY: 0.014,
		MarkerSizeMM: 7, FrameWidthMM: 190, FrameHeightMM: 277,
	}
}

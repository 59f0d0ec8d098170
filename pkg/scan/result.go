package scan

import "github.com/bubblesheet/omr-core/pkg/marker"

// DebugDumper receives intermediate decode planes; pkg/debugdump.Dumper
// satisfies it. A nil DebugDumper (the zero value of Options) disables
// dumping entirely, so Decode never depends on it to succeed.
type DebugDumper interface {
	Plane(ts int64, label string, gray []byte, w, h int) error
	Annotated(ts int64, label string, gray []byte, w, h int, quad marker.Quad, found bool) error
}

// Result is spec.md §3's ScanResult.
type Result struct {
	StudentID               string
	Answers                 []string // len == NumQuestions; letter or ""
	MultipleAnswerQuestions []int    // 1-based
	IDDoubleShadeColumns    []int    // 1-based
	SourceHint              string   // "camera" | "upload"
}

// DebugScores carries the raw per-bubble scores behind a Response,
// gated by Options.WithDebugScores (spec.md §6: "optional per-bubble
// scores for debugging").
type DebugScores struct {
	IDColumnScores [][]float64 // [column][digit]
	AnswerScores   [][]float64 // [question-1][choice]
}

// Response is spec.md §6's decode response: the ScanResult plus the
// markersFound diagnostic and, optionally, debug scores.
type Response struct {
	Result
	MarkersFound bool
	Debug        *DebugScores `json:",omitempty"`
}

// Options configures a single Decode call.
type Options struct {
	NumQuestions    int
	NumChoices      int // choices per question, A.. ; spec.md caps letters at A-E
	Source          string
	WithDebugScores bool

	// Dump, when non-nil, receives the raw grayscale and annotated
	// marker planes for this decode, stamped with DumpTS.
	Dump   DebugDumper
	DumpTS int64
}

func (o Options) isCamera() bool { return o.Source == "camera" }

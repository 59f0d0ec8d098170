package scan

import "fmt"

// ErrorKind classifies a scan.Error per spec.md §7. MarkersNotFound is
// listed here for completeness but is never constructed by Decode: a
// failed marker detection is not fatal, it degrades to a full-image
// quad and sets Response.MarkersFound=false instead (spec.md: "the
// pipeline continues ... the caller decides whether to trust the
// result").
type ErrorKind int

const (
	InputDecodeError ErrorKind = iota
	DimensionError
	MarkersNotFound
	TemplateUnknown
	RendererIOError
)

func (k ErrorKind) String() string {
	switch k {
	case InputDecodeError:
		return "InputDecodeError"
	case DimensionError:
		return "DimensionError"
	case MarkersNotFound:
		return "MarkersNotFound"
	case TemplateUnknown:
		return "TemplateUnknown"
	case RendererIOError:
		return "RendererIOError"
	default:
		return "UnknownError"
	}
}

// Error is the one error type the decode/render calls return; nothing
// in the pipeline panics or raises out-of-band (spec.md §7).
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("scan: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// NewError lets collaborators outside this package (pkg/render) raise
// the same typed error taxonomy, per spec.md §7's single error model
// for both decode and render calls.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return newError(kind, msg, err)
}

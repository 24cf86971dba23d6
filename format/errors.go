package format

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind is the closed error taxonomy from the spec: a read past the end
// of a source, a malformed field inside an otherwise well-formed
// structure, no container recognized, a recognized container with an
// unsupported sub-format, or upstream cancellation.
type ErrKind int

const (
	EndOfStream ErrKind = iota
	DecodeError
	UnsupportedContainer
	UnsupportedFeature
	Cancelled
)

func (k ErrKind) String() string {
	switch k {
	case EndOfStream:
		return "EndOfStream"
	case DecodeError:
		return "DecodeError"
	case UnsupportedContainer:
		return "UnsupportedContainer"
	case UnsupportedFeature:
		return "UnsupportedFeature"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error carries a Kind alongside the operation that failed and the
// underlying cause, wrapped with github.com/pkg/errors so callers keep a
// stack trace across container/tokenizer boundaries.
type Error struct {
	Kind ErrKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err (which may be nil) into a *Error of the given kind,
// attaching op for diagnostics and a stack trace via pkg/errors.
func NewError(kind ErrKind, op string, err error) *Error {
	if err != nil {
		err = errors.Wrap(err, op)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// ErrNoContainer is returned by the sniffer when no magic bytes match and
// no MPEG/ADTS sync word is found anywhere in the initial scan window.
var ErrNoContainer = errors.New("no recognized container format")

// Warning is a non-fatal defect recorded during a parse: a malformed field,
// a re-assigned format fact, an unsupported sub-format that was skipped,
// or any other condition the spec treats as "parse anyway, but tell the
// caller". It is intentionally a plain struct rather than an error type so
// it can't accidentally be treated as fatal by a type switch on `error`.
type Warning struct {
	Kind    ErrKind
	Op      string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s[%s]: %s", w.Op, w.Kind, w.Message)
}

// Warnf constructs a Warning with a formatted message.
func Warnf(kind ErrKind, op, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

package internal

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies runtime errors.
type Kind int

const (
	// SyntaxFailure means source text could not be parsed.
	SyntaxFailure Kind = iota + 1
	// ResolutionMiss means a name resolved to nothing.
	ResolutionMiss
	// GenerationFailure means generated code could not be bound into an
	// executable form.
	GenerationFailure
	// NativeFault means a native holder failed or panicked.
	NativeFault
	// DepthExceeded means invocations nested deeper than the configured
	// limit.
	DepthExceeded
)

func (k Kind) String() string {
	switch k {
	case SyntaxFailure:
		return "syntax failure"
	case ResolutionMiss:
		return "resolution miss"
	case GenerationFailure:
		return "generation failure"
	case NativeFault:
		return "native fault"
	case DepthExceeded:
		return "depth exceeded"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the error type for all steplang failures.
type Error struct {
	Kind Kind
	Msg  string
	// Label names the text the position refers to, usually a closure name.
	Label string
	// Line and Col are 1-based. Zero means no position.
	Line, Col int
	// Source is the full text the position refers to.
	Source string
	// Trace is a stack trace for native faults caused by panics.
	Trace string
	// Err is the underlying error, if any.
	Err error
	// incomplete marks syntax failures caused by input ending too early.
	incomplete bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Label != "" {
		b.WriteString(" in ")
		b.WriteString(e.Label)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Col)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic renders the error with the offending source line and a caret
// under the failing column. Errors without a position render as Error().
func (e *Error) Diagnostic() string {
	if e.Line <= 0 || e.Source == "" {
		return e.Error() + "\n"
	}
	msg := e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return caretSnippet(e.Source, strings.ToUpper(e.Kind.String()), e.Label, e.Line, e.Col, msg)
}

// caretSnippet formats a header line followed by the failing line, its
// neighbors, and a caret marker.
func caretSnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// IsKind returns true if err is or wraps an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsIncomplete returns true if err is a syntax failure caused by source text
// that ended in the middle of a construct, so that more input could fix it.
func IsIncomplete(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.incomplete
}

func (vm *VM) missError(o *Object, name string) *Error {
	return &Error{
		Kind: ResolutionMiss,
		Msg:  fmt.Sprintf("%s does not understand %s", vm.classes[o.class].Name, name),
	}
}

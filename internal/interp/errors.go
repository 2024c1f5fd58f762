package interp

import (
	"fmt"
	"strings"

	"github.com/skyrlang/skyr/internal/token"
)

// ErrKind classifies evaluation failures.
type ErrKind int

const (
	// ResolutionError is a static name-resolution failure surfaced
	// before any statement runs.
	ResolutionError ErrKind = iota
	// TypeError covers unsupported operator/kind combinations, bad
	// call arity, unexpected keywords and unhashable keys.
	TypeError
	// ValueError covers out-of-range indexes, division by zero and
	// explicit fail() calls.
	ValueError
	// StackOverflowError is raised when the call-depth or step
	// ceiling is exceeded.
	StackOverflowError
	// HeapInvariantError reports internal consistency failures such
	// as cross-heap aliasing. These are implementation bugs, not
	// program errors.
	HeapInvariantError
)

func (k ErrKind) String() string {
	switch k {
	case ResolutionError:
		return "resolution error"
	case TypeError:
		return "type error"
	case ValueError:
		return "value error"
	case StackOverflowError:
		return "stack overflow"
	case HeapInvariantError:
		return "heap invariant violation"
	}
	return "error"
}

// FrameInfo is one entry in an error traceback.
type FrameInfo struct {
	Name string
	Path string
	Pos  token.Pos
}

// EvalError is the single terminal error value callers receive: a
// kind, a message and the call sites active when the error unwound.
type EvalError struct {
	Kind   ErrKind
	Msg    string
	Frames []FrameInfo
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Traceback renders the frame chain, outermost call first.
func (e *EvalError) Traceback() string {
	if len(e.Frames) == 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString("traceback (most recent call last):\n")
	for i := len(e.Frames) - 1; i >= 0; i-- {
		f := e.Frames[i]
		fmt.Fprintf(&b, "  %s:%d:%d in %s\n", f.Path, f.Pos.Line, f.Pos.Column, f.Name)
	}
	b.WriteString(e.Error())
	return b.String()
}

func typeErrf(format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: TypeError, Msg: fmt.Sprintf(format, args...)}
}

func valueErrf(format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: ValueError, Msg: fmt.Sprintf(format, args...)}
}

func overflowErrf(format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: StackOverflowError, Msg: fmt.Sprintf(format, args...)}
}

func heapErrf(format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: HeapInvariantError, Msg: fmt.Sprintf(format, args...)}
}

// asEvalError normalizes an error into *EvalError so frame
// annotations can be attached during unwinding.
func asEvalError(err error) *EvalError {
	if ee, ok := err.(*EvalError); ok {
		return ee
	}
	return &EvalError{Kind: ValueError, Msg: err.Error()}
}

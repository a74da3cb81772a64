// Package failure defines the tagged error type keywords fail with: a Kind,
// an optional verification Check, and the stack captured where it was raised.
package failure

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind is the category of a keyword failure.
type Kind int

const (
	// KindDelegate is a failure raised by the underlying capability (browser, OS).
	KindDelegate Kind = iota + 1
	// KindLookup means the requested keyword does not exist.
	KindLookup
	// KindUsage means the keyword was called with malformed arguments or in the wrong state.
	KindUsage
	// KindVerification means a keyword's postcondition check did not hold.
	KindVerification
)

// String returns the name used in logs and CLI output.
func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "LookupFailure"
	case KindUsage:
		return "UsageFailure"
	case KindVerification:
		return "VerificationFailure"
	case KindDelegate:
		return "DelegateFailure"
	default:
		return ""
	}
}

// MarshalText lets Kind appear by name in YAML/JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Check names the property a verification failure was about.
type Check string

const (
	CheckExistence   Check = "existence"
	CheckAbsence     Check = "absence"
	CheckVisibility  Check = "visibility"
	CheckTextMatch   Check = "text_match"
	CheckTitleMatch  Check = "title_match"
	CheckURLMatch    Check = "url_match"
	CheckPageMatch   Check = "page_match"
	CheckWindowMatch Check = "window_match"
	CheckSelection   Check = "selection"
)

// Frame is one entry of a captured call stack.
type Frame struct {
	Function string
	File     string
	Line     int
}

// String formats the frame the way tracebacks print it.
func (f Frame) String() string {
	return fmt.Sprintf("%s:%d in %s", f.File, f.Line, f.Function)
}

// Error is the single failure type keywords raise. Message is what the remote
// client sees in the envelope's error field.
type Error struct {
	Kind       Kind
	Check      Check
	Message    string
	Underlying error
	Stack      []Frame
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Lookupf creates a lookup failure.
func Lookupf(format string, args ...any) *Error {
	return &Error{Kind: KindLookup, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// Usagef creates an argument/usage failure.
func Usagef(format string, args ...any) *Error {
	return &Error{Kind: KindUsage, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// Verifyf creates a verification failure for the given check.
func Verifyf(check Check, format string, args ...any) *Error {
	return &Error{Kind: KindVerification, Check: check, Message: fmt.Sprintf(format, args...), Stack: captureStack(2)}
}

// Delegate wraps an error raised by a capability. The message is preserved
// verbatim. Delegate returns nil for a nil error.
func Delegate(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindDelegate, Message: err.Error(), Underlying: err, Stack: captureStack(2)}
}

// Recovered converts a recovered panic value into a delegate failure. It must
// be called directly from the deferred function that called recover, so the
// captured stack still contains the panicking frames.
func Recovered(v any) *Error {
	msg := fmt.Sprint(v)
	var underlying error
	if err, ok := v.(error); ok {
		underlying = err
		msg = err.Error()
	}
	return &Error{Kind: KindDelegate, Message: msg, Underlying: underlying, Stack: captureStack(2)}
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// KindOf classifies any error. Errors that are not *Error are delegate failures.
func KindOf(err error) Kind {
	if fe := As(err); fe != nil {
		return fe.Kind
	}
	return KindDelegate
}

// Traceback renders err as the multi-line diagnostic sent to the client.
// Frames come from the first *Error in the chain; the wrapped messages follow.
func Traceback(err error) string {
	if err == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Traceback:\n")
	if fe := As(err); fe != nil {
		for _, f := range fe.Stack {
			sb.WriteString("  ")
			sb.WriteString(f.String())
			sb.WriteString("\n")
		}
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		sb.WriteString(fmt.Sprintf("  caused by %T: %s\n", cur, cur.Error()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// captureStack captures the current call stack, skipping runtime internals.
func captureStack(skip int) []Frame {
	const maxDepth = 32
	var pcs [maxDepth]uintptr

	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			out = append(out, Frame{Function: frame.Function, File: frame.File, Line: frame.Line})
		}
		if !more {
			break
		}
	}
	return out
}

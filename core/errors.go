package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrTerminate is returned by a handler (or anything in the loop) to request
// a clean process exit. It bypasses reporting and restart.
var ErrTerminate = errors.New("termination requested")

// ErrMessageTooLong marks a send rejected because the text exceeds the
// transport's message size limit.
var ErrMessageTooLong = errors.New("message is too long")

// TransportError is a network or remote-service failure during fetch or send.
type TransportError struct {
	Op          string
	StatusCode  int
	Description string
	Err         error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("telegram ")
	b.WriteString(e.Op)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// HandlerError wraps an error returned by a handler's Process. The update ID
// is kept out of the message so identical failures share a signature.
type HandlerError struct {
	Handler  string
	UpdateID int64
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q: %v", e.Handler, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError is a recovered panic with the frames that led to it.
type PanicError struct {
	Value  any
	Frames []string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ContainmentError is a failure inside the reporting path itself. It escapes
// the inner cycle and forces a full restart.
type ContainmentError struct {
	Err error
}

func (e *ContainmentError) Error() string {
	return "containment failed: " + e.Err.Error()
}

func (e *ContainmentError) Unwrap() error { return e.Err }

// newPanicError captures the stack of the panicking goroutine. Call it from
// the deferred function that recovered the panic.
func newPanicError(v any) *PanicError {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line))
		}
		if !more {
			break
		}
	}
	return &PanicError{Value: v, Frames: out}
}

// Signature renders err as a deduplication key: the message followed by the
// type of every error in the chain and, for panics, the stack frames.
// Argument values are never part of the frames, so the same failure on the
// same code path yields the same signature.
func Signature(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(err.Error())

	var pe *PanicError
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "\n  %T", e)
		if p, ok := e.(*PanicError); ok && pe == nil {
			pe = p
		}
	}
	if pe != nil && len(pe.Frames) > 0 {
		b.WriteString("\n\ngoroutine [running]:\n")
		b.WriteString(strings.Join(pe.Frames, "\n"))
	}
	return b.String()
}

// IsFatal reports whether err must terminate the process without reporting.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTerminate)
}

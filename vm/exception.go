package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error kinds
// ---------------------------------------------------------------------------

// Exception is a language exception: a thrown script value that no handler
// in the current call caught. Script try/catch can intercept it.
type Exception struct {
	Value Value
	Trace []string // function:line entries, innermost first
}

func (e *Exception) Error() string {
	msg := "uncaught exception: " + e.Value.String()
	if len(e.Trace) > 0 {
		msg += " (at " + e.Trace[0] + ")"
	}
	return msg
}

// FatalError is a host-fatal condition: stack underflow, malformed
// bytecode, exhausted call depth, or a native function breaking its
// contract. Scripts can never catch it.
type FatalError struct {
	Reason   string
	Function string
	PC       int
}

func (e *FatalError) Error() string {
	if e.Function == "" {
		return "fatal: " + e.Reason
	}
	return fmt.Sprintf("fatal: %s (in %s at pc %d)", e.Reason, e.Function, e.PC)
}

// fatalf aborts the run. The panic is recovered by RunScript and turned
// back into a *FatalError return.
func fatalf(format string, args ...any) {
	panic(&FatalError{Reason: fmt.Sprintf(format, args...)})
}

// IsException reports whether err carries a language exception.
func IsException(err error) bool {
	var exc *Exception
	return errors.As(err, &exc)
}

// IsFatal reports whether err is a host-fatal error.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// ---------------------------------------------------------------------------
// Handler stack
// ---------------------------------------------------------------------------

// tryHandler is one protected region live in a frame: where to resume,
// how deep the operand stack was, and which environment was current.
type tryHandler struct {
	addr  int
	depth int
	env   *Environment
	prev  *tryHandler
}

// ---------------------------------------------------------------------------
// Raising exceptions from the VM
// ---------------------------------------------------------------------------

// Throw wraps a script value as a language exception.
func Throw(v Value) error {
	return &Exception{Value: v}
}

// ThrowError creates an exception object with the given name and message
// and returns it as a language exception.
func (rt *Runtime) ThrowError(name, format string, args ...any) error {
	return Throw(ObjectValue(rt.NewError(name, fmt.Sprintf(format, args...))))
}

// TypeError raises a TypeError exception.
func (rt *Runtime) TypeError(format string, args ...any) error {
	return rt.ThrowError("TypeError", format, args...)
}

// ReferenceError raises a ReferenceError exception.
func (rt *Runtime) ReferenceError(format string, args ...any) error {
	return rt.ThrowError("ReferenceError", format, args...)
}

// RangeError raises a RangeError exception.
func (rt *Runtime) RangeError(format string, args ...any) error {
	return rt.ThrowError("RangeError", format, args...)
}

// NewError creates an exception object inheriting from Exception.prototype.
func (rt *Runtime) NewError(name, message string) *Object {
	o := NewObject(rt.Prototypes.Exception, &ExceptionClass{Name: name, Message: message})
	o.props.put("name", &Property{Value: rt.String(name), Attrs: AttrHidden})
	o.props.put("message", &Property{Value: rt.String(message), Attrs: AttrHidden})
	return o
}

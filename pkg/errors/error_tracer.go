package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors carrying a github.com/pkg/errors stack.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs an ErrorCode message with the underlying failure so a log
// line carries both the domain code (snapshot store, feed decode, QuestDB
// exec) and the stack of the call site that produced it.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer starts a tracer for the given code. Chain Wrap to attach the
// underlying error.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{
		Message: message,
	}
}

// TracerFromError wraps an arbitrary error under its own message, capturing a
// stack here when the error does not already carry one.
func TracerFromError(err error) *ErrorTracer {
	return NewTracer(err.Error()).Wrap(err)
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As chains.
func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap attaches the underlying error, adding a stack when it lacks one.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.Err = err
		return e
	}
	e.Err = errors.WithStack(err)
	return e
}

// StackTrace returns the wrapped error's stack, nil when there is none.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if st, ok := e.Unwrap().(StackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

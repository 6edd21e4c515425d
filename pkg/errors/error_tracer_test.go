package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: Wrap adds a stack to plain errors and keeps the code as the message
func TestErrorTracer_WrapPlainError(t *testing.T) {
	cause := stderrors.New("connection refused")
	tracer := NewTracer(string(SnapshotStoreError)).Wrap(cause)

	assert.Equal(t, string(SnapshotStoreError), tracer.Error())
	assert.ErrorIs(t, tracer, cause)
	require.NotNil(t, tracer.StackTrace(), "a stack is captured when the cause has none")
}

// Test 2: An already-stacked cause keeps its original stack
func TestErrorTracer_WrapStackedError(t *testing.T) {
	cause := pkgerrors.New("exec failed")
	tracer := NewTracer(string(QuestDBExecError)).Wrap(cause)

	assert.Same(t, cause, tracer.Unwrap())
	assert.NotNil(t, tracer.StackTrace())
}

// Test 3: TracerFromError uses the cause's message
func TestTracerFromError(t *testing.T) {
	cause := stderrors.New("dial timeout")
	tracer := TracerFromError(cause)

	assert.Equal(t, "dial timeout", tracer.Error())
	assert.ErrorIs(t, tracer, cause)
	assert.NotNil(t, tracer.StackTrace())
}

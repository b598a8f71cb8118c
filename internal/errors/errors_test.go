package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New("failed to create optimizer").
		WithOperation("optimization.start").
		WithComponent("server")

	assert.Equal(t,
		"failed to create optimizer: operation=optimization.start, component=server",
		err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("bounds for \"x\" must satisfy lo < hi")
	err := Wrap(cause, "failed to create optimizer")

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to create optimizer")
	assert.Contains(t, err.Error(), cause.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestWrapExistingError(t *testing.T) {
	inner := New("disk full")
	outer := Wrap(inner, "failed to persist run report")

	// Wrapping an *Error annotates it in place instead of nesting.
	assert.Same(t, inner, outer)
	assert.Equal(t, "failed to persist run report", outer.Message)
}

func TestErrorfCapturesStack(t *testing.T) {
	err := Errorf("run %s not found", "run_1")

	assert.Equal(t, "run run_1 not found", err.Message)
	require.NotEmpty(t, err.StackTrace())
	for _, frame := range err.StackTrace() {
		assert.NotContains(t, frame, "internal/errors",
			"stack should skip this package's own frames")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, "store unavailable")

	assert.Equal(t, cause, Unwrap(err))
	assert.Nil(t, Unwrap(cause))
}

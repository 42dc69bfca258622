package toolerrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentkernel/agentkernel/agent/toolerrors"
)

func TestErrorFormatsWithAndWithoutCause(t *testing.T) {
	plain := toolerrors.New("boom")
	assert.Equal(t, "boom", plain.Error())

	wrapped := toolerrors.NewWithCause("boom", errors.New("root cause"))
	assert.Equal(t, "boom: root cause", wrapped.Error())
}

func TestFromErrorPassesThroughToolError(t *testing.T) {
	original := toolerrors.New("already structured")
	assert.Same(t, original, toolerrors.FromError(original))
}

func TestFromErrorWrapsPlainError(t *testing.T) {
	plain := errors.New("plain")
	wrapped := toolerrors.FromError(plain)
	assert.Equal(t, "plain", wrapped.Message)
	assert.ErrorIs(t, wrapped, plain)
}

func TestFromErrorNil(t *testing.T) {
	assert.Nil(t, toolerrors.FromError(nil))
}

func TestErrorfFormats(t *testing.T) {
	err := toolerrors.Errorf("tool %s failed with code %d", "fs_read", 2)
	assert.Equal(t, "tool fs_read failed with code 2", err.Error())
}

package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("beginning value must be positive")
	assert.EqualError(t, err, "beginning value must be positive")
	assert.True(t, IsValidationError(err))
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("weighted base value %.2f must be positive", -12.5)
	assert.EqualError(t, err, "weighted base value -12.50 must be positive")
	assert.True(t, IsValidationError(err))
}

func TestIsValidationErrorWrapped(t *testing.T) {
	inner := NewValidationError("bad input")
	wrapped := fmt.Errorf("computing return: %w", inner)
	assert.True(t, IsValidationError(wrapped))
}

func TestIsValidationErrorRejectsOtherErrors(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("connection refused")))
	assert.False(t, IsValidationError(nil))
}

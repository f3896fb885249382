package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(cause, CodeNotFound, "shipment not found")

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, err.Error(), "row not found")
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	inner := New(CodeConflict, "already locked")
	outer := fmt.Errorf("lock shipment: %w", inner)

	assert.True(t, HasCode(outer, CodeConflict))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.Equal(t, CodeConflict, CodeOf(outer))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("disk on fire")))
}

func TestIsMatchesOnCode(t *testing.T) {
	a := New(CodeForbidden, "not your shipment")
	b := New(CodeForbidden, "different message")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, New(CodeConflict, "x"))
}

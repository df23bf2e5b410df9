package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	err := Wrap(ErrUnknownParty, "debt A -> Z")
	assert.EqualError(t, err, "debt A -> Z: unknown party")
	assert.True(t, errors.Is(err, ErrUnknownParty))
}

func TestClassification(t *testing.T) {
	assert.True(t, IsConfiguration(Wrap(ErrNoIntermediary, "x")))
	assert.True(t, IsConfiguration(ErrInvalidIntermediary))
	assert.False(t, IsConfiguration(ErrUnknownParty))

	assert.True(t, IsValidation(Wrap(Wrap(ErrDuplicateParty, "a"), "b")))
	assert.True(t, IsValidation(ErrEmptyChannelSet))
	assert.False(t, IsValidation(ErrUnsettled))
	assert.False(t, IsValidation(ErrNoIntermediary))
}

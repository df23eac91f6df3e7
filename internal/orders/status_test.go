package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusCompleted))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusPending, StatusConfirmed))
	assert.Error(t, ValidateTransition(StatusCompleted, StatusCancelled))
}

func TestIsEditable(t *testing.T) {
	assert.True(t, IsEditable(StatusPending))
	assert.True(t, IsEditable(StatusConfirmed))
	assert.False(t, IsEditable(StatusProcessing))
	assert.False(t, IsEditable(StatusCompleted))
	assert.False(t, IsEditable(StatusCancelled))
}

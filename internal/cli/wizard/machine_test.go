package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineAdvanceGating(t *testing.T) {
	ok := true
	m := NewMachine([]string{"a", "b", "c"}, []Validator{
		func() error {
			if !ok {
				return errors.New("blocked")
			}
			return nil
		},
		nil,
		nil,
	})

	ok = false
	assert.Error(t, m.Advance())
	assert.Equal(t, 0, m.Step())

	ok = true
	require.NoError(t, m.Advance())
	assert.Equal(t, 1, m.Step())
	require.NoError(t, m.Advance())
	assert.True(t, m.AtFinal())

	// A passing Advance on the final step stays put.
	require.NoError(t, m.Advance())
	assert.Equal(t, 2, m.Step())
}

func TestMachineRetreat(t *testing.T) {
	m := NewMachine([]string{"a", "b"}, []Validator{nil, nil})
	require.NoError(t, m.Advance())

	assert.True(t, m.Retreat())
	assert.Equal(t, 0, m.Step())

	// Retreating from the first step signals an exit.
	assert.False(t, m.Retreat())
	assert.Equal(t, 0, m.Step())
}

func TestMachineJumpValidatesPrecedingStep(t *testing.T) {
	blocked := errors.New("fill in step b")
	m := NewMachine([]string{"a", "b", "c"}, []Validator{
		nil,
		func() error { return blocked },
		nil,
	})

	// Jumping to c is gated on b's validator.
	assert.ErrorIs(t, m.Jump(2), blocked)
	assert.Equal(t, 0, m.Step())

	require.NoError(t, m.Jump(1))
	assert.Equal(t, 1, m.Step())

	assert.Error(t, m.Jump(3))
	assert.Error(t, m.Jump(-1))
}

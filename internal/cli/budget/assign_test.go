package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
)

func TestSetEpsilonGuard(t *testing.T) {
	a := NewAssignment(types.Budget{Epsilon: 10})
	a.AddRow()
	a.AddRow()

	require.NoError(t, a.SetEpsilon(0, 5))
	require.NoError(t, a.SetEpsilon(1, 3))

	// 8 already pending: 5 more would exceed the total of 10 and the row
	// resets to 0.
	err := a.SetEpsilon(2, 5)
	assert.Error(t, err)
	assert.Zero(t, a.Rows[2].Epsilon)

	// 2 still fits.
	require.NoError(t, a.SetEpsilon(2, 2))
	assert.Equal(t, 2.0, a.Rows[2].Epsilon)
}

func TestSetEpsilonReEnter(t *testing.T) {
	a := NewAssignment(types.Budget{Epsilon: 10})
	require.NoError(t, a.SetEpsilon(0, 8))
	// Re-entering the same row replaces the old value instead of summing
	// with it.
	require.NoError(t, a.SetEpsilon(0, 10))
	assert.Equal(t, 10.0, a.Rows[0].Epsilon)

	err := a.SetEpsilon(0, 11)
	assert.Error(t, err)
	assert.Zero(t, a.Rows[0].Epsilon)
}

func TestSetDeltaGuard(t *testing.T) {
	d := 0.001
	a := NewAssignment(types.Budget{Epsilon: 10, Delta: &d})
	a.AddRow()

	require.NoError(t, a.SetDelta(0, 0.0008))
	err := a.SetDelta(1, 0.0008)
	assert.Error(t, err)
	assert.Zero(t, a.Rows[1].Delta)
}

func TestRowManagement(t *testing.T) {
	a := NewAssignment(types.Budget{Epsilon: 1})
	require.Len(t, a.Rows, 1)
	a.AddRow()
	require.Len(t, a.Rows, 2)
	a.RemoveRow()
	a.RemoveRow() // keeps the final row
	require.Len(t, a.Rows, 1)
}

func TestCandidates(t *testing.T) {
	users := []types.User{
		{Handle: "ada", Roles: []string{session.RoleAnalyst}},
		{Handle: "carl", Roles: []string{session.RoleCurator}},
		{Handle: "eve", Roles: []string{session.RoleAnalyst}},
		{Handle: "norole"},
	}
	assigned := []types.Allocation{{User: "eve"}}

	assert.Equal(t, []string{"ada"}, Candidates(users, assigned))
}

func TestRemaining(t *testing.T) {
	d := 0.01
	info := types.BudgetInfo{
		Allocated: types.Budget{Epsilon: 5, Delta: &d},
		Consumed:  types.Budget{Epsilon: 2},
	}
	rem := info.Remaining()
	assert.Equal(t, 3.0, rem.Epsilon)
	require.NotNil(t, rem.Delta)
	assert.Equal(t, 0.01, *rem.Delta)
}

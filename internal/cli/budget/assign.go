// Package budget holds the client-side arithmetic around allocating a
// dataset's privacy budget to analysts. The server is the source of truth;
// the checks here only stop an operator from over-committing within one
// assignment sitting.
package budget

import (
	"fmt"

	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
)

// PendingRow is one not-yet-submitted analyst grant in a bulk assignment.
type PendingRow struct {
	Handle  string
	Epsilon float64
	Delta   float64
}

// Assignment accumulates pending analyst grants against a dataset's total
// budget. The total is the dataset's configured budget, not the unallocated
// remainder: budget already consumed or granted to analysts outside this
// view is not accounted for here.
type Assignment struct {
	Total types.Budget
	Rows  []PendingRow
}

// NewAssignment starts a bulk assignment with one empty row.
func NewAssignment(total types.Budget) *Assignment {
	return &Assignment{Total: total, Rows: make([]PendingRow, 1)}
}

// AddRow appends an empty pending row.
func (a *Assignment) AddRow() {
	a.Rows = append(a.Rows, PendingRow{})
}

// RemoveRow drops the last pending row, keeping at least one.
func (a *Assignment) RemoveRow() {
	if len(a.Rows) > 1 {
		a.Rows = a.Rows[:len(a.Rows)-1]
	}
}

// SetEpsilon records an epsilon entry for row i. When the entry would push
// the sum of all pending epsilons past the dataset total, the row is reset
// to 0 and an error describes the violation.
func (a *Assignment) SetEpsilon(i int, value float64) error {
	sum := value
	for j, row := range a.Rows {
		if j != i {
			sum += row.Epsilon
		}
	}
	if sum > a.Total.Epsilon || value > a.Total.Epsilon {
		a.Rows[i].Epsilon = 0
		return fmt.Errorf("total epsilon limit of %g exceeded", a.Total.Epsilon)
	}
	a.Rows[i].Epsilon = value
	return nil
}

// SetDelta records a delta entry for row i, with the same total-budget
// guard as SetEpsilon.
func (a *Assignment) SetDelta(i int, value float64) error {
	total := a.Total.DeltaValue()
	sum := value
	for j, row := range a.Rows {
		if j != i {
			sum += row.Delta
		}
	}
	if sum > total || value > total {
		a.Rows[i].Delta = 0
		return fmt.Errorf("total delta limit of %g exceeded", total)
	}
	a.Rows[i].Delta = value
	return nil
}

// Candidates returns the handles an allocation can be created for: users
// whose first role is Analyst and who do not already hold an allocation on
// the dataset.
func Candidates(users []types.User, assigned []types.Allocation) []string {
	taken := make(map[string]bool, len(assigned))
	for _, a := range assigned {
		taken[a.User] = true
	}

	var handles []string
	for _, u := range users {
		if len(u.Roles) == 0 || u.Roles[0] != session.RoleAnalyst {
			continue
		}
		if !taken[u.Handle] {
			handles = append(handles, u.Handle)
		}
	}
	return handles
}

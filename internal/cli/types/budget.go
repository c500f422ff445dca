package types

import "math"

// Budget is a privacy budget. Delta is present only under ApproxDP.
type Budget struct {
	Epsilon float64  `json:"epsilon"`
	Delta   *float64 `json:"delta,omitempty"`
}

// DeltaValue returns the delta component, 0 when absent.
func (b Budget) DeltaValue() float64 {
	if b.Delta == nil {
		return 0
	}
	return *b.Delta
}

// ValidFor reports whether the budget is a committable allocation under the
// given privacy notion: epsilon must be a nonzero number, and under ApproxDP
// delta must be present and nonzero as well.
func (b Budget) ValidFor(notion string) bool {
	if math.IsNaN(b.Epsilon) || b.Epsilon == 0 {
		return false
	}
	if notion == ApproxDP {
		return b.Delta != nil && !math.IsNaN(*b.Delta) && *b.Delta != 0
	}
	return true
}

// BudgetInfo is the allocated/consumed pair for one (user, dataset) grant.
type BudgetInfo struct {
	Dataset   int    `json:"dataset,omitempty"`
	Allocated Budget `json:"allocated"`
	Consumed  Budget `json:"consumed"`
}

// Remaining returns allocated minus consumed, component-wise.
func (b BudgetInfo) Remaining() Budget {
	rem := Budget{Epsilon: b.Allocated.Epsilon - b.Consumed.Epsilon}
	if b.Allocated.Delta != nil {
		d := b.Allocated.DeltaValue() - b.Consumed.DeltaValue()
		rem.Delta = &d
	}
	return rem
}

// Allocation is one analyst's grant as listed under a dataset.
type Allocation struct {
	User      string `json:"user"`
	Allocated Budget `json:"allocated"`
	Consumed  Budget `json:"consumed"`
}

// DatasetBudget summarizes a dataset's budget accounting.
type DatasetBudget struct {
	Total      Budget       `json:"total"`
	Allocated  Budget       `json:"allocated"`
	Consumed   Budget       `json:"consumed"`
	Allocation []Allocation `json:"allocation"`
}

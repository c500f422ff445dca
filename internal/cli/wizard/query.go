package wizard

import (
	"context"
	"errors"

	"github.com/dpella/frontdp/internal/cli/query"
	"github.com/dpella/frontdp/internal/cli/types"
)

// Step indices of the query flow.
const (
	QueryStepVariables = iota
	QueryStepStatistic
	QueryStepBudget
)

var querySteps = []string{"confirm variables", "statistics measure", "set budget"}

// Evaluator is the slice of the API client the query flow needs.
type Evaluator interface {
	EvaluateQuery(ctx context.Context, datasetID int, budget types.Budget, pipeline []map[string]any) ([]types.Result, error)
}

// Selections holds the statistic configuration gathered on the middle step.
type Selections struct {
	Statistic       string
	Variable        string
	GroupBy         *types.Variable
	BinOptions      string
	EnumOptions     []string
	ShowHistogram   bool
	EqualBinsNumber int
}

// Outcome is what the results view renders: the raw rows plus the names
// they are keyed under, after label edits.
type Outcome struct {
	Rows      []types.Result
	Statistic string
	Variable  string
	Histogram bool
	Dataset   types.DatasetInfo
}

// Query collects a statistical query against a dataset step by step,
// bounded by the analyst's allocation on that dataset.
type Query struct {
	*Machine

	Dataset    types.DatasetInfo
	Allocation types.BudgetInfo

	Selected   []types.Variable
	LabelEdits map[string]string
	Data       Selections
	Budget     types.Budget
}

// NewQuery starts the flow on the variable-selection step. The budget
// starts at zero epsilon, with a zero delta slot only when the analyst's
// allocation carries delta.
func NewQuery(dataset types.DatasetInfo, allocation types.BudgetInfo) *Query {
	q := &Query{
		Dataset:    dataset,
		Allocation: allocation,
		LabelEdits: map[string]string{},
	}
	if allocation.Allocated.DeltaValue() > 0 {
		zero := 0.0
		q.Budget.Delta = &zero
	}
	q.Machine = NewMachine(querySteps, []Validator{
		q.validateVariables,
		q.validateStatistic,
		q.validateBudget,
	})
	return q
}

func (q *Query) validateVariables() error {
	if len(q.Selected) == 0 {
		return errors.New("please select at least one variable to proceed")
	}
	return nil
}

func (q *Query) validateStatistic() error {
	if q.Data.Statistic == "" || q.Data.Variable == "" {
		return errors.New("please fill in the statistic and variable to proceed")
	}
	if q.Data.ShowHistogram && q.Data.Statistic != query.StatCount {
		if q.Data.GroupBy == nil {
			return errors.New("please select a group-by variable")
		}
		if q.Data.GroupBy.Type.Numeric() && q.Data.BinOptions == "" {
			return errors.New("please specify bin options for the numeric group-by variable")
		}
		if q.Data.GroupBy.Type.Name == types.TypeEnum && len(q.Data.EnumOptions) == 0 {
			return errors.New("please select at least one label for the group-by variable")
		}
	}
	return nil
}

func (q *Query) validateBudget() error {
	if q.Budget.Epsilon <= 0 {
		return errors.New("epsilon must be greater than 0")
	}
	if q.Budget.Delta != nil && *q.Budget.Delta <= 0 {
		return errors.New("delta must be greater than 0 when included in the budget")
	}
	return nil
}

// Remaining is the analyst's unconsumed slice of the allocation, the upper
// bound shown on the budget step.
func (q *Query) Remaining() types.Budget {
	return q.Allocation.Remaining()
}

// Complete validates the budget step, builds the query pipeline and runs
// it. On failure the machine stays on the budget step so the analyst can
// adjust and resubmit.
func (q *Query) Complete(ctx context.Context, api Evaluator) (*Outcome, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	pipeline := query.Build(query.BuildParams{
		Statistic:       q.Data.Statistic,
		Variable:        q.Data.Variable,
		GroupBy:         q.Data.GroupBy,
		EnumOptions:     q.Data.EnumOptions,
		BinOptions:      q.Data.BinOptions,
		EqualBinsNumber: q.Data.EqualBinsNumber,
		LabelEdits:      q.LabelEdits,
	})

	rows, err := api.EvaluateQuery(ctx, q.Dataset.ID, q.Budget, query.Wire(pipeline))
	if err != nil {
		return nil, err
	}

	variable := q.Data.Variable
	if edited, ok := q.LabelEdits[variable]; ok {
		variable = edited
	}
	return &Outcome{
		Rows:      rows,
		Statistic: q.Data.Statistic,
		Variable:  variable,
		Histogram: q.Data.ShowHistogram,
		Dataset:   q.Dataset,
	}, nil
}

package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpella/frontdp/internal/cli/query"
	"github.com/dpella/frontdp/internal/cli/types"
)

type fakeEvaluator struct {
	datasetID int
	budget    types.Budget
	pipeline  []map[string]any
	rows      []types.Result
	err       error
}

func (f *fakeEvaluator) EvaluateQuery(_ context.Context, id int, budget types.Budget, pipeline []map[string]any) ([]types.Result, error) {
	f.datasetID = id
	f.budget = budget
	f.pipeline = pipeline
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func testDataset() types.DatasetInfo {
	return types.DatasetInfo{ID: 3, Name: "salaries", PrivacyNotion: types.PureDP}
}

func pureAllocation() types.BudgetInfo {
	return types.BudgetInfo{Allocated: types.Budget{Epsilon: 10}, Consumed: types.Budget{Epsilon: 4}}
}

func approxAllocation() types.BudgetInfo {
	d := 0.01
	used := 0.002
	return types.BudgetInfo{
		Allocated: types.Budget{Epsilon: 10, Delta: &d},
		Consumed:  types.Budget{Epsilon: 4, Delta: &used},
	}
}

func TestNewQueryBudgetShape(t *testing.T) {
	q := NewQuery(testDataset(), pureAllocation())
	assert.Nil(t, q.Budget.Delta)

	q = NewQuery(testDataset(), approxAllocation())
	require.NotNil(t, q.Budget.Delta)
	assert.Zero(t, *q.Budget.Delta)
}

func TestQueryVariableStepGating(t *testing.T) {
	q := NewQuery(testDataset(), pureAllocation())
	assert.Error(t, q.Advance())

	q.Selected = []types.Variable{{Name: "age"}}
	require.NoError(t, q.Advance())
	assert.Equal(t, QueryStepStatistic, q.Step())
}

func TestQueryStatisticStepGating(t *testing.T) {
	enum := types.VariableType{Name: types.TypeEnum, Labels: []string{"hr", "eng"}}
	numeric := types.VariableType{Name: types.TypeInt, Low: fp(0), High: fp(99)}

	tests := []struct {
		name    string
		data    Selections
		wantErr string
	}{
		{
			name:    "missing statistic",
			data:    Selections{Variable: "age"},
			wantErr: "statistic",
		},
		{
			name: "histogram needs group-by",
			data: Selections{Statistic: query.StatMean, Variable: "age", ShowHistogram: true},
			wantErr: "group-by",
		},
		{
			name: "histogram with count needs nothing else",
			data: Selections{Statistic: query.StatCount, Variable: "age", ShowHistogram: true},
		},
		{
			name: "numeric group-by needs bin option",
			data: Selections{
				Statistic: query.StatMean, Variable: "age", ShowHistogram: true,
				GroupBy: &types.Variable{Name: "age", Type: numeric},
			},
			wantErr: "bin options",
		},
		{
			name: "enum group-by needs labels",
			data: Selections{
				Statistic: query.StatMean, Variable: "age", ShowHistogram: true,
				GroupBy: &types.Variable{Name: "dept", Type: enum},
			},
			wantErr: "label",
		},
		{
			name: "complete histogram config",
			data: Selections{
				Statistic: query.StatMean, Variable: "age", ShowHistogram: true,
				GroupBy:     &types.Variable{Name: "dept", Type: enum},
				EnumOptions: []string{"hr"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(testDataset(), pureAllocation())
			q.Selected = []types.Variable{{Name: "age"}}
			require.NoError(t, q.Advance())

			q.Data = tt.data
			err := q.Advance()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, QueryStepStatistic, q.Step())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, QueryStepBudget, q.Step())
			}
		})
	}
}

func TestQueryBudgetStepGating(t *testing.T) {
	tests := []struct {
		name       string
		allocation types.BudgetInfo
		epsilon    float64
		delta      *float64
		wantErr    bool
	}{
		{"zero epsilon puredp", pureAllocation(), 0, nil, true},
		{"valid puredp", pureAllocation(), 5, nil, false},
		{"zero epsilon approxdp", approxAllocation(), 0, fp(0.001), true},
		{"zero delta approxdp", approxAllocation(), 5, fp(0), true},
		{"valid approxdp", approxAllocation(), 5, fp(0.001), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(testDataset(), tt.allocation)
			q.Selected = []types.Variable{{Name: "age"}}
			q.Data = Selections{Statistic: query.StatMean, Variable: "age"}
			q.Budget.Epsilon = tt.epsilon
			if tt.delta != nil {
				q.Budget.Delta = tt.delta
			}
			require.NoError(t, q.Jump(QueryStepBudget))

			err := q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryComplete(t *testing.T) {
	q := NewQuery(testDataset(), pureAllocation())
	q.Selected = []types.Variable{{Name: "age"}}
	q.LabelEdits["age"] = "Age (yrs)"
	q.Data = Selections{Statistic: query.StatMean, Variable: "age"}
	q.Budget.Epsilon = 2
	require.NoError(t, q.Jump(QueryStepBudget))

	api := &fakeEvaluator{rows: []types.Result{{"Age (yrs)_mean": 34.2}}}
	out, err := q.Complete(context.Background(), api)
	require.NoError(t, err)

	assert.Equal(t, 3, api.datasetID)
	assert.Equal(t, 2.0, api.budget.Epsilon)
	// Rename first, statistic on the rewritten column.
	require.Len(t, api.pipeline, 2)
	assert.Contains(t, api.pipeline[0], "rename")
	assert.Equal(t, map[string]string{"column": "Age (yrs)"}, api.pipeline[1]["mean"])

	assert.Equal(t, "Age (yrs)", out.Variable)
	assert.Equal(t, query.StatMean, out.Statistic)
	assert.Equal(t, testDataset(), out.Dataset)
}

func TestQueryCompleteErrorStaysOnBudgetStep(t *testing.T) {
	q := NewQuery(testDataset(), pureAllocation())
	q.Selected = []types.Variable{{Name: "age"}}
	q.Data = Selections{Statistic: query.StatCount, Variable: "age"}
	q.Budget.Epsilon = 2
	require.NoError(t, q.Jump(QueryStepBudget))

	api := &fakeEvaluator{err: errors.New("evaluation failed")}
	_, err := q.Complete(context.Background(), api)
	require.Error(t, err)
	assert.Equal(t, QueryStepBudget, q.Step())
}

func TestQueryResubmitAfterFailedEvaluation(t *testing.T) {
	q := NewQuery(testDataset(), pureAllocation())
	q.Selected = []types.Variable{{Name: "age"}}
	q.Data = Selections{Statistic: query.StatMean, Variable: "age"}
	q.Budget.Epsilon = 20
	require.NoError(t, q.Jump(QueryStepBudget))

	api := &fakeEvaluator{err: errors.New("budget exceeded")}
	_, err := q.Complete(context.Background(), api)
	require.Error(t, err)
	require.Equal(t, QueryStepBudget, q.Step())

	// Lowering the spend on the same flow resubmits the identical query.
	api.err = nil
	api.rows = []types.Result{{"age_mean": 34.2}}
	q.Budget.Epsilon = 2
	out, err := q.Complete(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 2.0, api.budget.Epsilon)
	assert.Equal(t, query.StatMean, out.Statistic)
	assert.Equal(t, "age", out.Variable)
}

func TestQueryRemaining(t *testing.T) {
	q := NewQuery(testDataset(), approxAllocation())
	rem := q.Remaining()
	assert.Equal(t, 6.0, rem.Epsilon)
	require.NotNil(t, rem.Delta)
	assert.InDelta(t, 0.008, *rem.Delta, 1e-12)
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpella/frontdp/internal/cli/types"
)

func fptr(v float64) *float64 { return &v }

func numericVar(name string, low, high float64) *types.Variable {
	return &types.Variable{
		Name: name,
		Type: types.VariableType{Name: types.TypeInt, Low: fptr(low), High: fptr(high)},
	}
}

func TestEdgesOnePerValue(t *testing.T) {
	tests := []struct {
		name string
		low  float64
		high float64
		want []float64
	}{
		{"small range", 0, 4, []float64{0, 1, 2, 3, 4}},
		{"single value", 5, 5, []float64{5}},
		{"offset range", 18, 21, []float64{18, 19, 20, 21}},
		{"inverted range", 5, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EdgesOnePerValue(tt.low, tt.high))
		})
	}
}

func TestEdgesEqualRange(t *testing.T) {
	tests := []struct {
		name string
		low  float64
		high float64
		k    int
		want []float64
	}{
		{"uneven last bin", 0, 10, 3, []float64{0, 3, 6, 9, 10}},
		{"exact split", 0, 10, 2, []float64{0, 5, 10}},
		{"one bin", 0, 7, 1, []float64{0, 7}},
		{"more bins than width", 0, 2, 4, []float64{0, 0, 0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EdgesEqualRange(tt.low, tt.high, tt.k))
		})
	}
}

func TestBuildOnePerValueGrouping(t *testing.T) {
	comps := Build(BuildParams{
		Statistic:  StatMean,
		Variable:   "salary",
		GroupBy:    numericVar("age", 0, 4),
		BinOptions: BinOnePerValue,
	})
	require.Len(t, comps, 3)

	bin, ok := comps[0].(Bin)
	require.True(t, ok)
	assert.Equal(t, "age", bin.Column)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, bin.Edges)

	group, ok := comps[1].(GroupBy)
	require.True(t, ok)
	assert.Equal(t, "age_binned", group.Column)
	// One-per-value grouping keys on the full edge list.
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, group.Edges)

	agg, ok := comps[2].(Aggregate)
	require.True(t, ok)
	assert.Equal(t, StatMean, agg.Kind)
	assert.Equal(t, "salary", agg.Column)
}

func TestBuildEqualRangeGrouping(t *testing.T) {
	comps := Build(BuildParams{
		Statistic:       StatSum,
		Variable:        "salary",
		GroupBy:         numericVar("age", 0, 10),
		BinOptions:      BinEqualRange,
		EqualBinsNumber: 3,
	})
	require.Len(t, comps, 3)

	bin := comps[0].(Bin)
	assert.Equal(t, []float64{0, 3, 6, 9, 10}, bin.Edges)

	// Equal-range grouping drops the first boundary so each bin is keyed
	// by its upper edge.
	group := comps[1].(GroupBy)
	assert.Equal(t, "age_binned", group.Column)
	assert.Equal(t, []float64{3, 6, 9, 10}, group.Edges)
}

func TestBuildInvertedRangeSkipsGrouping(t *testing.T) {
	comps := Build(BuildParams{
		Statistic:  StatMean,
		Variable:   "salary",
		GroupBy:    numericVar("age", 10, 5),
		BinOptions: BinOnePerValue,
	})
	// No bin, no groupby, no panic: the statistic goes through alone.
	require.Len(t, comps, 1)
	agg := comps[0].(Aggregate)
	assert.Equal(t, StatMean, agg.Kind)
}

func TestBuildCountHasNoColumn(t *testing.T) {
	comps := Build(BuildParams{Statistic: StatCount, Variable: "salary"})
	require.Len(t, comps, 1)

	wire := comps[0].wire()
	require.Contains(t, wire, "count")
	assert.Equal(t, struct{}{}, wire["count"])
}

func TestBuildEnumGrouping(t *testing.T) {
	comps := Build(BuildParams{
		Statistic: StatCount,
		Variable:  "salary",
		GroupBy: &types.Variable{
			Name: "dept",
			Type: types.VariableType{Name: types.TypeEnum, Labels: []string{"hr", "eng"}},
		},
		EnumOptions: []string{"eng"},
	})
	require.Len(t, comps, 2)

	group := comps[0].(GroupBy)
	assert.Equal(t, "dept", group.Column)
	assert.Equal(t, []string{"eng"}, group.Labels)
}

func TestBuildLabelSubstitution(t *testing.T) {
	comps := Build(BuildParams{
		Statistic:  StatMean,
		Variable:   "age",
		LabelEdits: map[string]string{"age": "Age (yrs)"},
	})
	require.Len(t, comps, 2)

	rename, ok := comps[0].(Rename)
	require.True(t, ok)
	assert.Equal(t, "Age (yrs)", rename["age"])

	agg := comps[1].(Aggregate)
	assert.Equal(t, "Age (yrs)", agg.Column)
}

func TestBuildLabelSubstitutionGroupByNotMutated(t *testing.T) {
	groupBy := numericVar("age", 0, 4)
	Build(BuildParams{
		Statistic:  StatMean,
		Variable:   "salary",
		GroupBy:    groupBy,
		BinOptions: BinOnePerValue,
		LabelEdits: map[string]string{"age": "Age (yrs)"},
	})
	// The caller's variable keeps its original name.
	assert.Equal(t, "age", groupBy.Name)
}

func TestWireShapes(t *testing.T) {
	wire := Wire([]Component{
		Rename{"age": "Age"},
		Bin{Column: "Age", Edges: []float64{0, 1}},
		GroupBy{Column: "Age_binned", Edges: []float64{0, 1}},
		Aggregate{Kind: StatMean, Column: "salary"},
	})
	require.Len(t, wire, 4)
	assert.Equal(t, map[string]string{"age": "Age"}, wire[0]["rename"])
	assert.Equal(t, map[string][]float64{"Age": {0, 1}}, wire[1]["bin"])
	assert.Equal(t, map[string][]float64{"Age_binned": {0, 1}}, wire[2]["groupby"])
	assert.Equal(t, map[string]string{"column": "salary"}, wire[3]["mean"])
}

func TestMethodKey(t *testing.T) {
	assert.Equal(t, "salary_mean", MethodKey(StatMean, "Salary"))
	assert.Equal(t, "count", MethodKey(StatCount, "salary"))
}

func TestGroupKey(t *testing.T) {
	row := types.Result{"salary_mean": 1200.5, "age_binned": 3.0}
	assert.Equal(t, "age_binned", GroupKey(row, "salary_mean"))

	noGroup := types.Result{"count": 10.0}
	assert.Equal(t, "", GroupKey(noGroup, "count"))
}

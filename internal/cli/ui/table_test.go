package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dpella/frontdp/internal/cli/types"
)

func TestFormatBudget(t *testing.T) {
	assert.Equal(t, "ε=1.5", FormatBudget(types.Budget{Epsilon: 1.5}))

	d := 0.001
	assert.Equal(t, "ε=2 δ=0.001", FormatBudget(types.Budget{Epsilon: 2, Delta: &d}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42", FormatValue(float64(42)))
	assert.Equal(t, "3.142", FormatValue(3.14159))
	assert.Equal(t, "hr", FormatValue("hr"))
	assert.Equal(t, "", FormatValue(nil))
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "NAME"},
		[][]string{{"1", "salaries"}, {"12", "census"}},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	// The short id is padded to the width of the longest.
	assert.Contains(t, lines[1], "1   salaries")
	assert.Contains(t, lines[2], "12  census")
}

func TestRenderResultTableGrouped(t *testing.T) {
	rows := []types.Result{
		{"dept": "hr", "salary_mean": 1200.5},
		{"dept": "eng", "salary_mean": 1500.0},
	}
	out := RenderResultTable(rows, "salary_mean", "dept")
	assert.Contains(t, out, "DEPT")
	assert.Contains(t, out, "SALARY_MEAN")
	assert.Contains(t, out, "1200.500")
	assert.Contains(t, out, "1500")
}

func TestRenderResultTableUngrouped(t *testing.T) {
	rows := []types.Result{{"count": float64(321)}}
	out := RenderResultTable(rows, "count", "")
	assert.Contains(t, out, "COUNT")
	assert.Contains(t, out, "321")
}

func TestRenderBarChart(t *testing.T) {
	rows := []types.Result{
		{"dept": "hr", "count": float64(10)},
		{"dept": "eng", "count": float64(20)},
	}
	out := RenderBarChart(rows, "count", "dept")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	// The larger value gets the longer bar.
	assert.Greater(t, strings.Count(lines[1], "█"), strings.Count(lines[0], "█"))
}

func TestRenderBarChartNegativeValues(t *testing.T) {
	rows := []types.Result{{"dept": "hr", "count": float64(-3)}}
	out := RenderBarChart(rows, "count", "dept")
	assert.NotContains(t, out, "█")
	assert.Contains(t, out, "-3")
}

func TestRenderBarChartEmpty(t *testing.T) {
	assert.Empty(t, RenderBarChart(nil, "count", "dept"))
	assert.Empty(t, RenderBarChart([]types.Result{{"count": float64(1)}}, "count", ""))
}

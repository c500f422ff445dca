package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dpella/frontdp/internal/cli/types"
)

const maxBarWidth = 40

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

// RenderBarChart renders grouped query results as a horizontal bar chart,
// one bar per group. Bars scale to the largest absolute value; negative
// noised values render as zero-length bars with their value still shown.
func RenderBarChart(rows []types.Result, methodKey, groupKey string) string {
	if len(rows) == 0 || groupKey == "" {
		return ""
	}

	type bar struct {
		label string
		value float64
	}
	bars := make([]bar, 0, len(rows))
	labelWidth := 0
	maxAbs := 0.0
	for _, row := range rows {
		v, ok := row[methodKey].(float64)
		if !ok {
			continue
		}
		label := FormatValue(row[groupKey])
		if w := runewidth.StringWidth(label); w > labelWidth {
			labelWidth = w
		}
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
		bars = append(bars, bar{label: label, value: v})
	}
	if len(bars) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, b := range bars {
		length := 0
		if maxAbs > 0 && b.value > 0 {
			length = int(math.Round(b.value / maxAbs * maxBarWidth))
		}
		sb.WriteString(fmt.Sprintf("%s  %s %s\n",
			pad(b.label, labelWidth),
			barStyle.Render(strings.Repeat("█", length)),
			FormatValue(b.value),
		))
	}
	return sb.String()
}

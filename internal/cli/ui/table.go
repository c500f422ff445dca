package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dpella/frontdp/internal/cli/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// FormatBudget renders a budget for display. Delta is shown only when
// present.
func FormatBudget(b types.Budget) string {
	eps := strconv.FormatFloat(b.Epsilon, 'g', -1, 64)
	if b.Delta == nil {
		return fmt.Sprintf("ε=%s", eps)
	}
	return fmt.Sprintf("ε=%s δ=%s", eps, strconv.FormatFloat(*b.Delta, 'g', -1, 64))
}

// FormatValue renders a result cell. Floats keep a short precision so noised
// values stay readable.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', 3, 64)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

// RenderTable renders rows under a header with column widths computed in a
// first pass. Widths are measured with runewidth so wide glyphs line up.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range header {
		sb.WriteString(headerStyle.Render(pad(h, widths[i])))
		if i < len(header)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			sb.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderDatasetTable renders the dataset listing.
func RenderDatasetTable(datasets []types.DatasetInfo) string {
	if len(datasets) == 0 {
		return dimStyle.Render("No datasets found") + "\n"
	}
	rows := make([][]string, 0, len(datasets))
	for _, ds := range datasets {
		rows = append(rows, []string{
			strconv.Itoa(ds.ID),
			ds.Name,
			ds.Owner,
			ds.PrivacyNotion,
			ds.UpdatedTime,
		})
	}
	return RenderTable([]string{"ID", "NAME", "OWNER", "PRIVACY NOTION", "UPDATED"}, rows)
}

// RenderUserTable renders the user listing.
func RenderUserTable(users []types.User) string {
	if len(users) == 0 {
		return dimStyle.Render("No users found") + "\n"
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.Handle,
			u.Name,
			strings.Join(u.Roles, ", "),
			u.CreatedTime,
		})
	}
	return RenderTable([]string{"HANDLE", "NAME", "ROLES", "CREATED"}, rows)
}

// RenderSchemaTable renders a dataset schema with per-type detail.
func RenderSchemaTable(schema []types.ColumnSchema) string {
	rows := make([][]string, 0, len(schema))
	for _, col := range schema {
		detail := ""
		switch {
		case col.Type.Numeric():
			detail = fmt.Sprintf("[%s, %s]",
				strconv.FormatFloat(*col.Type.Low, 'g', -1, 64),
				strconv.FormatFloat(*col.Type.High, 'g', -1, 64))
		case col.Type.Name == types.TypeEnum:
			detail = strings.Join(col.Type.Labels, ", ")
		}
		rows = append(rows, []string{col.Name, col.Type.Name, detail})
	}
	return RenderTable([]string{"COLUMN", "TYPE", "DETAIL"}, rows)
}

// RenderAllocationTable renders per-analyst allocations of a dataset.
func RenderAllocationTable(allocations []types.Allocation) string {
	if len(allocations) == 0 {
		return dimStyle.Render("No allocations") + "\n"
	}
	rows := make([][]string, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, []string{
			a.User,
			FormatBudget(a.Allocated),
			FormatBudget(a.Consumed),
		})
	}
	return RenderTable([]string{"USER", "ALLOCATED", "CONSUMED"}, rows)
}

// RenderUserBudgetTable renders a user's allocations across datasets. The
// dataset name column is resolved from the listing when available.
func RenderUserBudgetTable(budgets []types.BudgetInfo, names map[int]string) string {
	if len(budgets) == 0 {
		return dimStyle.Render("No budget allocations") + "\n"
	}
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		name := names[b.Dataset]
		if name == "" {
			name = strconv.Itoa(b.Dataset)
		}
		rows = append(rows, []string{
			name,
			FormatBudget(b.Allocated),
			FormatBudget(b.Consumed),
			FormatBudget(b.Remaining()),
		})
	}
	return RenderTable([]string{"DATASET", "ALLOCATED", "CONSUMED", "REMAINING"}, rows)
}

// RenderResultTable renders query result rows. Grouped results show the
// group value column first, ungrouped results a single statistic column.
func RenderResultTable(rows []types.Result, methodKey, groupKey string) string {
	if len(rows) == 0 {
		return dimStyle.Render("No results") + "\n"
	}

	if groupKey == "" {
		out := make([][]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, []string{FormatValue(row[methodKey])})
		}
		return RenderTable([]string{strings.ToUpper(methodKey)}, out)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			FormatValue(row[groupKey]),
			FormatValue(row[methodKey]),
		})
	}
	return RenderTable([]string{strings.ToUpper(groupKey), strings.ToUpper(methodKey)}, out)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dpella/frontdp/internal/cli/query"
	"github.com/dpella/frontdp/internal/cli/ui"
	"github.com/dpella/frontdp/internal/cli/wizard"
)

// UI configuration constants
const (
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	headerHeightReserved  = 3
	footerHeightReserved  = 2
	minContentHeight      = 5
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

// ResultsProgram encapsulates the query results TUI program
type ResultsProgram struct {
	model resultsModel
}

// NewResultsProgram creates a results browser for a completed query
func NewResultsProgram(outcome wizard.Outcome) *ResultsProgram {
	return &ResultsProgram{model: initialModel(outcome)}
}

// Run starts the results TUI program
func (p *ResultsProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// resultsModel is the Bubble Tea model for browsing result rows
type resultsModel struct {
	outcome wizard.Outcome

	contentView viewport.Model

	// showChart toggles between the table and the bar chart view. The
	// chart is only reachable for grouped results.
	showChart bool

	width  int
	height int
}

func initialModel(outcome wizard.Outcome) resultsModel {
	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)

	m := resultsModel{
		outcome:     outcome,
		contentView: contentViewport,
		showChart:   outcome.Histogram && groupKey(outcome) != "",
	}
	m.refreshContent()
	return m
}

func methodKey(outcome wizard.Outcome) string {
	return query.MethodKey(outcome.Statistic, outcome.Variable)
}

func groupKey(outcome wizard.Outcome) string {
	if len(outcome.Rows) == 0 {
		return ""
	}
	return query.GroupKey(outcome.Rows[0], methodKey(outcome))
}

// Init initializes the model (Bubble Tea interface)
func (m resultsModel) Init() tea.Cmd {
	return nil
}

// Update processes messages and updates the model (Bubble Tea interface)
func (m resultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.contentView.LineUp(1)
		case tea.KeyDown:
			m.contentView.LineDown(1)
		case tea.KeyPgUp:
			m.contentView.ViewUp()
		case tea.KeyPgDown:
			m.contentView.ViewDown()
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "q":
				return m, tea.Quit
			case "c":
				if groupKey(m.outcome) != "" {
					m.showChart = !m.showChart
					m.refreshContent()
				}
			}
		}

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)
	}

	return m, nil
}

// handleWindowResize handles window size changes
func (m *resultsModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - headerHeightReserved - footerHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight

	m.refreshContent()
}

// refreshContent rebuilds the viewport content for the active view
func (m *resultsModel) refreshContent() {
	mk := methodKey(m.outcome)
	gk := groupKey(m.outcome)

	var body string
	if m.showChart {
		body = ui.RenderBarChart(m.outcome.Rows, mk, gk)
	} else {
		body = ui.RenderResultTable(m.outcome.Rows, mk, gk)
	}

	if m.width > 0 {
		body = wrapText(body, m.width)
	}
	m.contentView.SetContent(body)
	m.contentView.GotoTop()
}

// wrapText applies auto-wrapping, measuring display width per rune
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(wrapLine(line, maxWidth))
	}
	return result.String()
}

func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)
		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}
		currentLine.WriteRune(r)
		currentWidth += runeW
	}
	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}
	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m resultsModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("%s of %s", m.outcome.Statistic, m.outcome.Variable))
	status := dimStyle.Render(fmt.Sprintf("dataset %s • %d rows", m.outcome.Dataset.Name, len(m.outcome.Rows)))

	view := "table"
	if m.showChart {
		view = "chart"
	}
	help := dimStyle.Render("↑↓ scroll • q quit")
	if groupKey(m.outcome) != "" {
		help = dimStyle.Render(fmt.Sprintf("↑↓ scroll • c toggle chart (%s) • q quit", accentStyle.Render(view)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		"",
		m.contentView.View(),
		"",
		help,
	)
}

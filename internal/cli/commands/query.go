package commands

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/query"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/tui"
	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/internal/cli/ui"
	"github.com/dpella/frontdp/internal/cli/wizard"
)

var queryInteractive bool

// queryCmd runs the statistical query flow against one dataset.
var queryCmd = &cobra.Command{
	Use:   "query <dataset-id>",
	Short: "run a statistical query against a dataset",
	Long: `Build and evaluate a differentially private statistical query.

The flow walks through variable selection, statistic configuration and
budget entry. The budget you spend is drawn from your allocation on the
dataset; the remaining allocation is shown on the budget step.

Results render as a table, or as a bar chart when the query was grouped
into a histogram. With --interactive the results open in a scrollable
browser instead.`,
	Example: `  # Query dataset 3
  $ dpctl query 3

  # Browse results interactively
  $ dpctl query 3 --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVarP(&queryInteractive, "interactive", "i", false, "Browse results in a scrollable viewer")
	queryCmd.SilenceUsage = true
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 5*time.Minute)
	defer cancel()

	id, err := datasetIDArg(args[0])
	if err != nil {
		return err
	}

	apiClient, cfg, err := authedClient(session.RoleAnalyst)
	if err != nil {
		return err
	}

	dataset, err := apiClient.GetDataset(ctx, id)
	if err != nil {
		ui.PrintError("failed to fetch dataset: %v", err)
		return fmt.Errorf("fetch failed")
	}
	allocation, err := apiClient.GetAllocation(ctx, cfg.Handle, id)
	if err != nil {
		ui.PrintError("no budget allocation on dataset %d: %v", id, err)
		return fmt.Errorf("allocation fetch failed")
	}

	flow := wizard.NewQuery(dataset, allocation)

	var outcome *wizard.Outcome
	for outcome == nil {
		var stepErr error
		switch flow.Step() {
		case wizard.QueryStepVariables:
			stepErr = promptVariables(flow)
		case wizard.QueryStepStatistic:
			stepErr = promptStatistic(flow)
		case wizard.QueryStepBudget:
			stepErr = promptQueryBudget(flow)
		}
		if stepErr != nil {
			return stepErr
		}

		back, exit, err := promptStepNav(flow.Machine)
		if err != nil {
			return err
		}
		if exit {
			ui.PrintInfo("Cancelled")
			return nil
		}
		if back {
			continue
		}

		if !flow.AtFinal() {
			if err := flow.Advance(); err != nil {
				ui.PrintWarning("%v", err)
			}
			continue
		}

		if err := flow.Validate(); err != nil {
			ui.PrintWarning("%v", err)
			continue
		}

		ui.PrintInfo("Evaluating query...")
		outcome, err = flow.Complete(ctx, apiClient)
		if err != nil {
			// The flow stays on the budget step so the spend can be
			// adjusted and the same query resubmitted.
			ui.PrintErrorBox("Query Failed", err.Error())
			retry := true
			confirm := &survey.Confirm{Message: "Adjust the budget and try again?", Default: true}
			if err := survey.AskOne(confirm, &retry); err != nil {
				return fmt.Errorf("input failed")
			}
			if !retry {
				return fmt.Errorf("evaluation failed")
			}
		}
	}

	return renderOutcome(*outcome)
}

// promptVariables selects the working variables and optional display names.
func promptVariables(flow *wizard.Query) error {
	options := make([]string, len(flow.Dataset.Schema))
	byName := make(map[string]types.Variable, len(flow.Dataset.Schema))
	for i, col := range flow.Dataset.Schema {
		options[i] = col.Name
		byName[col.Name] = types.Variable{Name: col.Name, Type: col.Type}
	}

	var defaults []string
	for _, v := range flow.Selected {
		defaults = append(defaults, v.Name)
	}

	var selected []string
	sel := &survey.MultiSelect{
		Message: "Variables to work with:",
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(sel, &selected); err != nil {
		return fmt.Errorf("input failed")
	}

	flow.Selected = flow.Selected[:0]
	for _, name := range selected {
		flow.Selected = append(flow.Selected, byName[name])
	}

	rename := false
	confirm := &survey.Confirm{Message: "Rename any variables for display?"}
	if err := survey.AskOne(confirm, &rename); err != nil {
		return fmt.Errorf("input failed")
	}
	if rename {
		for _, v := range flow.Selected {
			label := flow.LabelEdits[v.Name]
			if label == "" {
				label = v.Name
			}
			prompt := &survey.Input{Message: fmt.Sprintf("Display name for %q:", v.Name), Default: label}
			if err := survey.AskOne(prompt, &label); err != nil {
				return fmt.Errorf("input failed")
			}
			if label != "" && label != v.Name {
				flow.LabelEdits[v.Name] = label
			} else {
				delete(flow.LabelEdits, v.Name)
			}
		}
	}
	return nil
}

// promptStatistic configures the statistic and optional histogram grouping.
func promptStatistic(flow *wizard.Query) error {
	statistic := flow.Data.Statistic
	sel := &survey.Select{
		Message: "Statistics measure:",
		Options: []string{query.StatMean, query.StatSum, query.StatMin, query.StatMax, query.StatCount},
	}
	if statistic != "" {
		sel.Default = statistic
	}
	if err := survey.AskOne(sel, &statistic); err != nil {
		return fmt.Errorf("input failed")
	}

	names := make([]string, len(flow.Selected))
	for i, v := range flow.Selected {
		names[i] = v.Name
	}

	variable := flow.Data.Variable
	if statistic != query.StatCount {
		varSel := &survey.Select{Message: "Variable to measure:", Options: names}
		if variable != "" {
			varSel.Default = variable
		}
		if err := survey.AskOne(varSel, &variable); err != nil {
			return fmt.Errorf("input failed")
		}
	} else if variable == "" && len(names) > 0 {
		// count needs no column; keep a variable name for result keying
		variable = names[0]
	}

	histogram := flow.Data.ShowHistogram
	confirm := &survey.Confirm{Message: "Show results as a histogram?", Default: histogram}
	if err := survey.AskOne(confirm, &histogram); err != nil {
		return fmt.Errorf("input failed")
	}

	flow.Data = wizard.Selections{
		Statistic:     statistic,
		Variable:      variable,
		ShowHistogram: histogram,
	}

	if histogram {
		return promptGrouping(flow, names)
	}
	return nil
}

func promptGrouping(flow *wizard.Query, names []string) error {
	byName := make(map[string]types.Variable, len(flow.Selected))
	for _, v := range flow.Selected {
		byName[v.Name] = v
	}

	var groupName string
	sel := &survey.Select{Message: "Group results by:", Options: names}
	if err := survey.AskOne(sel, &groupName); err != nil {
		return fmt.Errorf("input failed")
	}
	groupVar := byName[groupName]
	flow.Data.GroupBy = &groupVar

	switch {
	case groupVar.Type.Numeric():
		binSel := &survey.Select{
			Message: "Binning:",
			Options: []string{query.BinOnePerValue, query.BinEqualRange},
		}
		if err := survey.AskOne(binSel, &flow.Data.BinOptions); err != nil {
			return fmt.Errorf("input failed")
		}
		if flow.Data.BinOptions == query.BinEqualRange {
			bins, err := promptFloat("Number of bins:", 0)
			if err != nil {
				return err
			}
			flow.Data.EqualBinsNumber = int(bins)
		}

	case groupVar.Type.Name == types.TypeEnum:
		labelSel := &survey.MultiSelect{
			Message: "Labels to group into:",
			Options: groupVar.Type.Labels,
			Default: groupVar.Type.Labels,
		}
		if err := survey.AskOne(labelSel, &flow.Data.EnumOptions); err != nil {
			return fmt.Errorf("input failed")
		}
	}
	return nil
}

func promptQueryBudget(flow *wizard.Query) error {
	remaining := flow.Remaining()
	ui.PrintInfo("Remaining allocation: %s", ui.FormatBudget(remaining))

	eps, err := promptFloat("Epsilon to spend:", flow.Budget.Epsilon)
	if err != nil {
		return err
	}
	flow.Budget.Epsilon = eps

	if flow.Budget.Delta != nil {
		delta, err := promptFloat("Delta to spend:", *flow.Budget.Delta)
		if err != nil {
			return err
		}
		flow.Budget.Delta = &delta
	}
	return nil
}

// renderOutcome prints the result rows, as a chart for histogram queries.
func renderOutcome(outcome wizard.Outcome) error {
	if queryInteractive {
		return tui.NewResultsProgram(outcome).Run()
	}

	methodKey := query.MethodKey(outcome.Statistic, outcome.Variable)
	groupKey := ""
	if len(outcome.Rows) > 0 {
		groupKey = query.GroupKey(outcome.Rows[0], methodKey)
	}

	fmt.Println()
	ui.PrintBold("%s of %s on %s (%d rows)",
		outcome.Statistic, outcome.Variable, outcome.Dataset.Name, len(outcome.Rows))
	fmt.Println()

	if outcome.Histogram && groupKey != "" {
		fmt.Print(ui.RenderBarChart(outcome.Rows, methodKey, groupKey))
		return nil
	}
	fmt.Print(ui.RenderResultTable(outcome.Rows, methodKey, groupKey))
	return nil
}

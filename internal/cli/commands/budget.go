package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/budget"
	"github.com/dpella/frontdp/internal/cli/client"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/internal/cli/ui"
)

// budgetCmd is the parent budget command
var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage privacy budget allocations",
	Long: `Inspect and distribute a dataset's privacy budget.

Every authenticated user can list their own allocations. Assigning,
updating and revoking allocations requires the Curator or Admin role.

Bulk assignment checks each entered value against the dataset's total
budget: an entry that would over-commit the total is rejected and reset.
The total is the dataset's configured budget; it does not subtract what
earlier assignments already granted, the server enforces that on submit.`,
	Example: `  # List your own allocations
  $ dpctl budget list

  # List allocations on dataset 3
  $ dpctl budget list 3

  # Assign budget on dataset 3 to analysts
  $ dpctl budget assign 3

  # Update or revoke one analyst's allocation
  $ dpctl budget update 3 analyst1
  $ dpctl budget revoke 3 analyst1`,
}

func init() {
	budgetCmd.AddCommand(budgetListCmd)
	budgetCmd.AddCommand(budgetAssignCmd)
	budgetCmd.AddCommand(budgetUpdateCmd)
	budgetCmd.AddCommand(budgetRevokeCmd)

	budgetCmd.SilenceUsage = true
}

var budgetListCmd = &cobra.Command{
	Use:   "list [dataset-id]",
	Short: "list budget allocations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		if len(args) == 0 {
			apiClient, cfg, err := authedClient()
			if err != nil {
				return err
			}
			budgets, err := apiClient.GetUserBudgets(ctx, cfg.Handle)
			if err != nil {
				ui.PrintError("failed to fetch allocations: %v", err)
				return fmt.Errorf("fetch failed")
			}

			names := map[int]string{}
			if datasets, err := apiClient.ListDatasets(ctx); err == nil {
				for _, ds := range datasets {
					names[ds.ID] = ds.Name
				}
			}
			fmt.Print(ui.RenderUserBudgetTable(budgets, names))
			return nil
		}

		id, err := datasetIDArg(args[0])
		if err != nil {
			return err
		}
		apiClient, _, err := authedClient(session.RoleCurator, session.RoleAdmin)
		if err != nil {
			return err
		}
		dsBudget, err := apiClient.GetDatasetBudget(ctx, id)
		if err != nil {
			ui.PrintError("failed to fetch dataset budget: %v", err)
			return fmt.Errorf("fetch failed")
		}

		unallocated := types.Budget{Epsilon: dsBudget.Total.Epsilon - dsBudget.Allocated.Epsilon}
		if dsBudget.Total.Delta != nil {
			d := dsBudget.Total.DeltaValue() - dsBudget.Allocated.DeltaValue()
			unallocated.Delta = &d
		}
		fmt.Printf("Total:        %s\n", ui.FormatBudget(dsBudget.Total))
		fmt.Printf("Allocated:    %s\n", ui.FormatBudget(dsBudget.Allocated))
		fmt.Printf("Consumed:     %s\n", ui.FormatBudget(dsBudget.Consumed))
		fmt.Printf("Unallocated:  %s\n", ui.FormatBudget(unallocated))
		fmt.Println()
		fmt.Print(ui.RenderAllocationTable(dsBudget.Allocation))
		return nil
	},
}

var budgetAssignCmd = &cobra.Command{
	Use:   "assign <dataset-id>",
	Short: "assign budget to analysts in bulk",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetAssign,
}

func runBudgetAssign(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 5*time.Minute)
	defer cancel()

	id, err := datasetIDArg(args[0])
	if err != nil {
		return err
	}

	apiClient, _, err := authedClient(session.RoleCurator, session.RoleAdmin)
	if err != nil {
		return err
	}

	dataset, err := apiClient.GetDataset(ctx, id)
	if err != nil {
		ui.PrintError("failed to fetch dataset: %v", err)
		return fmt.Errorf("fetch failed")
	}
	dsBudget, err := apiClient.GetDatasetBudget(ctx, id)
	if err != nil {
		ui.PrintError("failed to fetch dataset budget: %v", err)
		return fmt.Errorf("fetch failed")
	}
	users, err := apiClient.ListUsers(ctx)
	if err != nil {
		ui.PrintError("failed to list users: %v", err)
		return fmt.Errorf("listing failed")
	}

	candidates := budget.Candidates(users, dsBudget.Allocation)
	if len(candidates) == 0 {
		ui.PrintInfo("Every analyst already holds an allocation on dataset %d", id)
		return nil
	}

	// The guard below checks entries against the total, not against what is
	// still unallocated; surface both so the operator sees the difference.
	ui.PrintInfo("Total budget of %q: %s (already allocated: %s)",
		dataset.Name, ui.FormatBudget(dsBudget.Total), ui.FormatBudget(dsBudget.Allocated))

	assignment := budget.NewAssignment(dsBudget.Total)
	approx := dataset.PrivacyNotion == types.ApproxDP

	for i := 0; ; i++ {
		if i >= len(assignment.Rows) {
			assignment.AddRow()
		}
		if err := promptAssignmentRow(assignment, i, candidates, approx); err != nil {
			return err
		}

		remaining := remainingCandidates(candidates, assignment)
		if len(remaining) == 0 {
			break
		}

		more := false
		confirm := &survey.Confirm{Message: "Assign budget to another analyst?"}
		if err := survey.AskOne(confirm, &more); err != nil {
			return fmt.Errorf("input failed")
		}
		if !more {
			break
		}
		candidates = remaining
	}

	return submitAssignment(ctx, apiClient, id, dataset.PrivacyNotion, assignment)
}

// promptAssignmentRow fills one pending row, re-prompting values the
// over-commitment guard rejects.
func promptAssignmentRow(assignment *budget.Assignment, i int, candidates []string, approx bool) error {
	sel := &survey.Select{Message: "Analyst:", Options: candidates}
	if err := survey.AskOne(sel, &assignment.Rows[i].Handle); err != nil {
		return fmt.Errorf("input failed")
	}

	for {
		eps, err := promptFloat("Epsilon to allocate:", assignment.Rows[i].Epsilon)
		if err != nil {
			return err
		}
		if err := assignment.SetEpsilon(i, eps); err != nil {
			ui.PrintWarning("%v", err)
			continue
		}
		break
	}

	if approx {
		for {
			delta, err := promptFloat("Delta to allocate:", assignment.Rows[i].Delta)
			if err != nil {
				return err
			}
			if err := assignment.SetDelta(i, delta); err != nil {
				ui.PrintWarning("%v", err)
				continue
			}
			break
		}
	}
	return nil
}

// remainingCandidates drops handles already used by a pending row.
func remainingCandidates(candidates []string, a *budget.Assignment) []string {
	used := make(map[string]bool, len(a.Rows))
	for _, row := range a.Rows {
		used[row.Handle] = true
	}
	var out []string
	for _, c := range candidates {
		if !used[c] {
			out = append(out, c)
		}
	}
	return out
}

// submitAssignment posts the pending rows one by one.
func submitAssignment(ctx context.Context, apiClient *client.APIClient, datasetID int, notion string, assignment *budget.Assignment) error {
	var pending []budget.PendingRow
	for _, row := range assignment.Rows {
		if row.Handle != "" && row.Epsilon > 0 {
			pending = append(pending, row)
		}
	}
	if len(pending) == 0 {
		ui.PrintInfo("Nothing to assign")
		return nil
	}

	fmt.Println()
	for _, row := range pending {
		b := types.Budget{Epsilon: row.Epsilon}
		if notion == types.ApproxDP {
			d := row.Delta
			b.Delta = &d
		}
		fmt.Printf("  %s  %s\n", row.Handle, ui.FormatBudget(b))
	}
	fmt.Println()

	confirm := false
	prompt := &survey.Confirm{Message: "Submit these allocations?", Default: true}
	if err := survey.AskOne(prompt, &confirm); err != nil {
		return fmt.Errorf("confirmation cancelled")
	}
	if !confirm {
		ui.PrintInfo("Cancelled")
		return nil
	}

	failed := 0
	for _, row := range pending {
		b := types.Budget{Epsilon: row.Epsilon}
		if notion == types.ApproxDP {
			d := row.Delta
			b.Delta = &d
		}
		if err := apiClient.AllocateBudget(ctx, row.Handle, datasetID, notion, b); err != nil {
			ui.PrintError("allocation for %s failed: %v", row.Handle, err)
			failed++
			continue
		}
		ui.PrintSuccess("Allocated %s to %s", ui.FormatBudget(b), row.Handle)
	}
	if failed > 0 {
		return fmt.Errorf("%d allocation(s) failed", failed)
	}
	return nil
}

var budgetUpdateCmd = &cobra.Command{
	Use:   "update <dataset-id> <handle>",
	Short: "update an analyst's allocation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 5*time.Minute)
		defer cancel()

		id, err := datasetIDArg(args[0])
		if err != nil {
			return err
		}
		handle := args[1]

		apiClient, _, err := authedClient(session.RoleCurator, session.RoleAdmin)
		if err != nil {
			return err
		}

		current, err := apiClient.GetAllocation(ctx, handle, id)
		if err != nil {
			ui.PrintError("failed to fetch allocation: %v", err)
			return fmt.Errorf("fetch failed")
		}

		ui.PrintInfo("Current allocation: %s (consumed %s)",
			ui.FormatBudget(current.Allocated), ui.FormatBudget(current.Consumed))

		updated := types.Budget{}
		eps, err := promptFloat("New epsilon:", current.Allocated.Epsilon)
		if err != nil {
			return err
		}
		updated.Epsilon = eps

		if current.Allocated.Delta != nil {
			delta, err := promptFloat("New delta:", current.Allocated.DeltaValue())
			if err != nil {
				return err
			}
			updated.Delta = &delta
		}

		if err := apiClient.UpdateBudget(ctx, handle, id, updated); err != nil {
			ui.PrintError("failed to update allocation: %v", err)
			return fmt.Errorf("update failed")
		}

		ui.PrintSuccess("Allocation for %s updated to %s", handle, ui.FormatBudget(updated))
		return nil
	},
}

var budgetRevokeCmd = &cobra.Command{
	Use:   "revoke <dataset-id> <handle>",
	Short: "revoke an analyst's allocation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		id, err := datasetIDArg(args[0])
		if err != nil {
			return err
		}
		handle := args[1]

		apiClient, _, err := authedClient(session.RoleCurator, session.RoleAdmin)
		if err != nil {
			return err
		}

		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Revoke %s's allocation on dataset %d?", handle, id),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation cancelled")
		}
		if !confirm {
			ui.PrintInfo("Cancelled")
			return nil
		}

		if err := apiClient.DeallocateBudget(ctx, handle, id); err != nil {
			ui.PrintError("failed to revoke allocation: %v", err)
			return fmt.Errorf("revocation failed")
		}

		ui.PrintSuccess("Allocation for %s revoked", handle)
		return nil
	},
}

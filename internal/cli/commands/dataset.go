package commands

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/internal/cli/ui"
)

// datasetCmd is the parent dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage datasets",
	Long: `List, inspect and manage the platform's datasets.

Listing and inspection are open to every authenticated user; creating,
editing and deleting datasets requires the Curator role.`,
	Example: `  # List accessible datasets
  $ dpctl dataset list

  # Show schema and budget of dataset 3
  $ dpctl dataset show 3

  # Upload a new dataset interactively
  $ dpctl dataset create data.csv

  # Delete dataset 3
  $ dpctl dataset delete 3`,
}

func init() {
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetShowCmd)
	datasetCmd.AddCommand(datasetCreateCmd)
	datasetCmd.AddCommand(datasetEditCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)

	datasetCmd.SilenceUsage = true
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "list datasets visible to you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		apiClient, _, err := authedClient()
		if err != nil {
			return err
		}

		datasets, err := apiClient.ListDatasets(ctx)
		if err != nil {
			ui.PrintError("failed to list datasets: %v", err)
			return fmt.Errorf("listing failed")
		}

		fmt.Print(ui.RenderDatasetTable(datasets))
		return nil
	},
}

var datasetShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "show a dataset's schema and budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		id, err := datasetIDArg(args[0])
		if err != nil {
			return err
		}

		apiClient, _, err := authedClient()
		if err != nil {
			return err
		}

		ds, err := apiClient.GetDataset(ctx, id)
		if err != nil {
			ui.PrintError("failed to fetch dataset: %v", err)
			return fmt.Errorf("fetch failed")
		}

		ui.PrintBold("%s", ds.Name)
		fmt.Printf("Owner:           %s\n", ds.Owner)
		fmt.Printf("Privacy notion:  %s\n", ds.PrivacyNotion)
		if ds.UpdatedTime != "" {
			fmt.Printf("Updated:         %s\n", ds.UpdatedTime)
		}
		fmt.Println()
		fmt.Print(ui.RenderSchemaTable(ds.Schema))

		// Budget accounting is a curator/admin view; skip quietly otherwise.
		if budget, err := apiClient.GetDatasetBudget(ctx, id); err == nil {
			fmt.Println()
			fmt.Printf("Total budget:      %s\n", ui.FormatBudget(budget.Total))
			fmt.Printf("Allocated budget:  %s\n", ui.FormatBudget(budget.Allocated))
			fmt.Printf("Consumed budget:   %s\n", ui.FormatBudget(budget.Consumed))
		}
		return nil
	},
}

var datasetEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "edit a dataset's name, owner and total budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetEdit,
}

func runDatasetEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 5*time.Minute)
	defer cancel()

	id, err := datasetIDArg(args[0])
	if err != nil {
		return err
	}

	apiClient, _, err := authedClient(session.RoleCurator)
	if err != nil {
		return err
	}

	ds, err := apiClient.GetDataset(ctx, id)
	if err != nil {
		ui.PrintError("failed to fetch dataset: %v", err)
		return fmt.Errorf("fetch failed")
	}
	budget, err := apiClient.GetDatasetBudget(ctx, id)
	if err != nil {
		ui.PrintError("failed to fetch dataset budget: %v", err)
		return fmt.Errorf("fetch failed")
	}

	req := types.EditDatasetRequest{
		Name:          ds.Name,
		Owner:         ds.Owner,
		PrivacyNotion: ds.PrivacyNotion,
		TotalBudget:   budget.Total,
	}

	questions := []*survey.Question{
		{
			Name:     "name",
			Prompt:   &survey.Input{Message: "Dataset name:", Default: req.Name},
			Validate: survey.Required,
		},
		{
			Name:     "owner",
			Prompt:   &survey.Input{Message: "Owner handle:", Default: req.Owner},
			Validate: survey.Required,
		},
	}
	answers := struct {
		Name  string
		Owner string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return fmt.Errorf("input failed")
	}
	req.Name = answers.Name
	req.Owner = answers.Owner

	eps, err := promptFloat("Total epsilon:", req.TotalBudget.Epsilon)
	if err != nil {
		return err
	}
	req.TotalBudget.Epsilon = eps

	if ds.PrivacyNotion == types.ApproxDP {
		delta, err := promptFloat("Total delta:", req.TotalBudget.DeltaValue())
		if err != nil {
			return err
		}
		req.TotalBudget.Delta = &delta
	}

	if !req.TotalBudget.ValidFor(ds.PrivacyNotion) {
		ui.PrintError("budget values must be nonzero")
		return fmt.Errorf("invalid budget")
	}

	if err := apiClient.EditDataset(ctx, id, req); err != nil {
		ui.PrintError("failed to update dataset: %v", err)
		return fmt.Errorf("update failed")
	}

	ui.PrintSuccess("Dataset %d updated", id)
	return nil
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "delete a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		id, err := datasetIDArg(args[0])
		if err != nil {
			return err
		}

		apiClient, _, err := authedClient(session.RoleCurator)
		if err != nil {
			return err
		}

		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete dataset %d? This cannot be undone.", id),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation cancelled")
		}
		if !confirm {
			ui.PrintInfo("Cancelled")
			return nil
		}

		if err := apiClient.DeleteDataset(ctx, id); err != nil {
			ui.PrintError("failed to delete dataset: %v", err)
			return fmt.Errorf("deletion failed")
		}

		ui.PrintSuccess("Dataset %d deleted", id)
		return nil
	},
}

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/client"
	"github.com/dpella/frontdp/internal/cli/loader"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/internal/cli/ui"
	"github.com/dpella/frontdp/internal/cli/wizard"
)

var createFile string

// datasetCreateCmd uploads a new dataset, either through the interactive
// flow over a CSV file or from a YAML definition.
var datasetCreateCmd = &cobra.Command{
	Use:   "create [data-file]",
	Short: "upload a new dataset",
	Long: `Register a new dataset and upload its data.

The interactive flow reads a CSV or TSV file, walks through naming, schema
confirmation and budget configuration, then registers the dataset and
uploads the selected columns.

Registration and data upload are two separate server calls. When the data
upload fails the registered dataset remains on the server without data;
the command prints its id so you can retry or delete it.

Alternatively, -f registers a dataset from a YAML definition without data.`,
	Example: `  # Interactive upload from a CSV file
  $ dpctl dataset create salaries.csv

  # Register a dataset from a YAML definition
  $ dpctl dataset create -f dataset.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDatasetCreate,
}

func init() {
	datasetCreateCmd.Flags().StringVarP(&createFile, "file", "f", "", "YAML file containing a dataset definition")
	datasetCreateCmd.SilenceUsage = true
}

func runDatasetCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 5*time.Minute)
	defer cancel()

	apiClient, cfg, err := authedClient(session.RoleCurator)
	if err != nil {
		return err
	}

	if createFile != "" {
		return createFromDefinition(ctx, apiClient, cfg.Handle, createFile)
	}

	if len(args) == 0 {
		return cmd.Help()
	}
	return createInteractive(ctx, apiClient, cfg.Handle, args[0])
}

// createFromDefinition registers a dataset from a YAML file, without data.
func createFromDefinition(ctx context.Context, apiClient *client.APIClient, owner, filepath string) error {
	ui.PrintInfo("Loading dataset definition from %s", filepath)

	definition, err := loader.LoadFromFile(filepath)
	if err != nil {
		ui.PrintError("failed to load file: %v", err)
		return fmt.Errorf("file load failed")
	}

	req, err := definition.ToCreateRequest(owner)
	if err != nil {
		ui.PrintError("invalid dataset definition: %v", err)
		return fmt.Errorf("validation failed")
	}

	ui.PrintInfo("Registering dataset:")
	fmt.Printf("  Name: %s\n", req.Name)
	fmt.Printf("  Owner: %s\n", req.Owner)
	fmt.Printf("  Privacy notion: %s\n", req.PrivacyNotion)
	fmt.Printf("  Columns: %d\n", len(req.Schema))
	fmt.Printf("  Total budget: %s\n", ui.FormatBudget(req.TotalBudget))
	fmt.Println()

	confirm := false
	confirmPrompt := &survey.Confirm{
		Message: "Confirm registration?",
		Default: true,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return fmt.Errorf("confirmation cancelled")
	}
	if !confirm {
		ui.PrintInfo("Cancelled")
		return nil
	}

	id, err := apiClient.CreateDataset(ctx, *req)
	if err != nil {
		ui.PrintError("failed to register dataset: %v", err)
		return fmt.Errorf("registration failed")
	}

	ui.PrintSuccess("Dataset '%s' registered with id %d", req.Name, id)
	fmt.Println()
	fmt.Printf("Upload data later with: dpctl dataset create and the interactive flow,\n")
	fmt.Printf("or inspect it with: dpctl dataset show %d\n", id)
	return nil
}

// createInteractive walks the three-step upload flow over a data file.
func createInteractive(ctx context.Context, apiClient *client.APIClient, owner, dataFile string) error {
	contents, err := os.ReadFile(dataFile)
	if err != nil {
		ui.PrintError("failed to read data file: %v", err)
		return fmt.Errorf("file read failed")
	}

	flow, err := wizard.NewUpload(dataFile, string(contents))
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("file parsing failed")
	}

	for {
		var stepErr error
		switch flow.Step() {
		case wizard.UploadStepName:
			stepErr = promptDatasetName(flow)
		case wizard.UploadStepSchema:
			stepErr = promptSchema(flow)
		case wizard.UploadStepBudget:
			stepErr = promptUploadBudget(flow)
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

		if flow.AtFinal() {
			if err := flow.Validate(); err != nil {
				ui.PrintWarning("%v", err)
				continue
			}
			break
		}
		if err := flow.Advance(); err != nil {
			ui.PrintWarning("%v", err)
		}
	}

	ui.PrintInfo("Registering dataset and uploading data...")

	id, err := flow.Complete(ctx, apiClient, owner)
	if err != nil {
		if id > 0 {
			ui.PrintErrorBox("Upload Incomplete", fmt.Sprintf(
				"%v\n\nThe dataset was registered without data.\nDelete it with: dpctl dataset delete %d", err, id))
		} else {
			ui.PrintErrorBox("Upload Failed", err.Error())
		}
		return fmt.Errorf("upload failed")
	}

	ui.PrintSuccessBox("✓ Dataset Uploaded", fmt.Sprintf(
		"Name:     %s\nID:       %d\nColumns:  %d\nBudget:   %s",
		flow.Name, id, len(flow.Schema()), ui.FormatBudget(flow.TotalBudget)))
	return nil
}

func promptDatasetName(flow *wizard.Upload) error {
	prompt := &survey.Input{Message: "Name of dataset:", Default: flow.Name}
	if err := survey.AskOne(prompt, &flow.Name); err != nil {
		return fmt.Errorf("input failed")
	}
	return nil
}

// promptSchema confirms which columns to include and types each of them.
func promptSchema(flow *wizard.Upload) error {
	options := make([]string, len(flow.Entries))
	var defaults []string
	for i, e := range flow.Entries {
		options[i] = e.Column
		if e.Checked {
			defaults = append(defaults, e.Column)
		}
	}

	var selected []string
	sel := &survey.MultiSelect{
		Message: "Columns to include:",
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(sel, &selected); err != nil {
		return fmt.Errorf("input failed")
	}

	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	for i := range flow.Entries {
		flow.Entries[i].Checked = chosen[flow.Entries[i].Column]
	}

	for i := range flow.Entries {
		e := &flow.Entries[i]
		if !e.Checked {
			continue
		}
		if err := promptColumnType(e); err != nil {
			return err
		}
	}
	return nil
}

func promptColumnType(e *wizard.SchemaEntry) error {
	typeName := e.Type.Name
	sel := &survey.Select{
		Message: fmt.Sprintf("Type of column %q:", e.Column),
		Options: []string{types.TypeInt, types.TypeDouble, types.TypeEnum, types.TypeText},
		Default: typeName,
	}
	if err := survey.AskOne(sel, &typeName); err != nil {
		return fmt.Errorf("input failed")
	}
	e.Type = types.VariableType{Name: typeName}

	switch {
	case e.Type.Numeric():
		low, err := promptFloat(fmt.Sprintf("Lower bound of %q:", e.Column), 0)
		if err != nil {
			return err
		}
		high, err := promptFloat(fmt.Sprintf("Upper bound of %q:", e.Column), 0)
		if err != nil {
			return err
		}
		e.Type.Low = &low
		e.Type.High = &high

	case typeName == types.TypeEnum:
		var labels string
		prompt := &survey.Input{Message: fmt.Sprintf("Labels of %q (comma separated):", e.Column)}
		if err := survey.AskOne(prompt, &labels); err != nil {
			return fmt.Errorf("input failed")
		}
		for _, l := range strings.Split(labels, ",") {
			if l = strings.TrimSpace(l); l != "" {
				e.Type.Labels = append(e.Type.Labels, l)
			}
		}
	}
	return nil
}

func promptUploadBudget(flow *wizard.Upload) error {
	sel := &survey.Select{
		Message: "Privacy notion:",
		Options: []string{types.PureDP, types.ApproxDP},
		Default: flow.PrivacyNotion,
	}
	if err := survey.AskOne(sel, &flow.PrivacyNotion); err != nil {
		return fmt.Errorf("input failed")
	}

	eps, err := promptFloat("Total epsilon:", flow.TotalBudget.Epsilon)
	if err != nil {
		return err
	}
	flow.TotalBudget.Epsilon = eps

	if flow.PrivacyNotion == types.ApproxDP {
		delta, err := promptFloat("Total delta:", flow.TotalBudget.DeltaValue())
		if err != nil {
			return err
		}
		flow.TotalBudget.Delta = &delta
	} else {
		flow.TotalBudget.Delta = nil
	}
	return nil
}

package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dpella/frontdp/internal/cli/csvdata"
	"github.com/dpella/frontdp/internal/cli/types"
)

// Step indices of the dataset upload flow.
const (
	UploadStepName = iota
	UploadStepSchema
	UploadStepBudget
)

var uploadSteps = []string{"name of dataset", "confirm variables", "privacy notion and budget"}

// DatasetRegistrar is the slice of the API client the upload flow needs.
type DatasetRegistrar interface {
	CreateDataset(ctx context.Context, req types.CreateDatasetRequest) (int, error)
	UploadDatasetData(ctx context.Context, datasetID int, data string) error
}

// SchemaEntry is one discovered column with the curator's choices for it.
// Unchecked columns are excluded from both the registered schema and the
// uploaded data.
type SchemaEntry struct {
	Column  string
	Checked bool
	Type    types.VariableType
}

// Upload collects everything needed to register a dataset and push its
// data: a name, a per-column schema, and the total privacy budget.
type Upload struct {
	*Machine

	Name          string
	PrivacyNotion string
	Entries       []SchemaEntry
	TotalBudget   types.Budget

	contents string
}

// NewUpload discovers the file's columns and starts the flow on the naming
// step. Every column starts as an unchecked Int, the defaults the schema
// step presents for confirmation.
func NewUpload(filename, contents string) (*Upload, error) {
	columns, err := csvdata.Columns(filename, contents)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.New("no columns found in file header")
	}

	u := &Upload{
		PrivacyNotion: types.PureDP,
		contents:      contents,
	}
	for _, col := range columns {
		u.Entries = append(u.Entries, SchemaEntry{
			Column: col,
			Type:   types.VariableType{Name: types.TypeInt},
		})
	}
	u.Machine = NewMachine(uploadSteps, []Validator{
		u.validateName,
		u.validateSchema,
		u.validateBudget,
	})
	return u, nil
}

func (u *Upload) validateName() error {
	if u.Name == "" {
		return errors.New("please give the dataset a name before proceeding")
	}
	return nil
}

func (u *Upload) validateSchema() error {
	for _, e := range u.Entries {
		if !e.Checked {
			continue
		}
		if !e.Type.Valid() {
			return fmt.Errorf("please fill in all fields of column %q", e.Column)
		}
	}
	return nil
}

func (u *Upload) validateBudget() error {
	if !u.TotalBudget.ValidFor(u.PrivacyNotion) {
		return errors.New("please fill in the budget fields with nonzero values")
	}
	return nil
}

// Schema returns the schema entries that will be registered: the checked
// columns, in file order.
func (u *Upload) Schema() []types.ColumnSchema {
	var schema []types.ColumnSchema
	for _, e := range u.Entries {
		if e.Checked {
			schema = append(schema, types.ColumnSchema{Name: e.Column, Type: e.Type})
		}
	}
	return schema
}

// Complete runs the two-phase upload: register the dataset's metadata,
// schema and total budget, then push the checked columns' data as CSV text.
// There is no rollback: when the data push fails the registration stands,
// and the returned id lets the caller point at the orphaned dataset.
func (u *Upload) Complete(ctx context.Context, api DatasetRegistrar, owner string) (int, error) {
	if err := u.Validate(); err != nil {
		return 0, err
	}

	id, err := api.CreateDataset(ctx, types.CreateDatasetRequest{
		Name:          u.Name,
		Owner:         owner,
		PrivacyNotion: u.PrivacyNotion,
		Schema:        u.Schema(),
		TotalBudget:   u.TotalBudget,
	})
	if err != nil {
		return 0, err
	}

	checked := make([]bool, len(u.Entries))
	for i, e := range u.Entries {
		checked[i] = e.Checked
	}
	data := csvdata.FilterColumns(u.contents, checked)

	if err := api.UploadDatasetData(ctx, id, data); err != nil {
		return id, fmt.Errorf("dataset %d registered but data upload failed: %w", id, err)
	}
	return id, nil
}

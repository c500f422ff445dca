package loader

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/dpella/frontdp/internal/cli/types"
)

// DatasetFile represents a dataset definition loaded from a YAML file
type DatasetFile struct {
	// Kind must be "Dataset"
	Kind string `yaml:"kind"`
	// Spec contains the dataset specification
	Spec DatasetSpec `yaml:"spec"`
}

// DatasetSpec defines a dataset registration without data
type DatasetSpec struct {
	Name          string       `yaml:"name"`
	Owner         string       `yaml:"owner,omitempty"`
	PrivacyNotion string       `yaml:"privacyNotion,omitempty"`
	Epsilon       float64      `yaml:"epsilon"`
	Delta         *float64     `yaml:"delta,omitempty"`
	Schema        []ColumnSpec `yaml:"schema"`
}

// ColumnSpec describes one column of the dataset schema
type ColumnSpec struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Low    *float64 `yaml:"low,omitempty"`
	High   *float64 `yaml:"high,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
}

// LoadFromFile loads a dataset definition from a YAML file.
func LoadFromFile(filepath string) (*DatasetFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var dataset DatasetFile
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if dataset.Kind == "" {
		return nil, fmt.Errorf("'kind' field is required")
	}
	if dataset.Kind != "Dataset" {
		return nil, fmt.Errorf("invalid kind '%s', must be 'Dataset'", dataset.Kind)
	}

	return &dataset, nil
}

// ToCreateRequest converts the file to a dataset registration request. The
// owner argument is used when the spec leaves the owner empty.
func (d *DatasetFile) ToCreateRequest(owner string) (*types.CreateDatasetRequest, error) {
	if d.Spec.Name == "" {
		return nil, fmt.Errorf("spec.name is required")
	}
	if len(d.Spec.Schema) == 0 {
		return nil, fmt.Errorf("spec.schema is required and must not be empty")
	}

	notion := d.Spec.PrivacyNotion
	if notion == "" {
		notion = types.PureDP
	}
	if notion != types.PureDP && notion != types.ApproxDP {
		return nil, fmt.Errorf("invalid privacy notion '%s', must be '%s' or '%s'", notion, types.PureDP, types.ApproxDP)
	}

	if d.Spec.Owner != "" {
		owner = d.Spec.Owner
	}

	budget := types.Budget{Epsilon: d.Spec.Epsilon, Delta: d.Spec.Delta}
	if !budget.ValidFor(notion) {
		return nil, fmt.Errorf("invalid total budget for %s", notion)
	}

	schema := make([]types.ColumnSchema, 0, len(d.Spec.Schema))
	for i, col := range d.Spec.Schema {
		if col.Name == "" {
			return nil, fmt.Errorf("spec.schema[%d].name is required", i)
		}
		vt := types.VariableType{
			Name:   col.Type,
			Low:    col.Low,
			High:   col.High,
			Labels: col.Labels,
		}
		if !vt.Valid() {
			return nil, fmt.Errorf("spec.schema[%d] (%s): invalid %s type", i, col.Name, col.Type)
		}
		schema = append(schema, types.ColumnSchema{Name: col.Name, Type: vt})
	}

	return &types.CreateDatasetRequest{
		Name:          d.Spec.Name,
		Owner:         owner,
		PrivacyNotion: notion,
		Schema:        schema,
		TotalBudget:   budget,
	}, nil
}

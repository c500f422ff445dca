package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpella/frontdp/internal/cli/types"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validDefinition = `kind: Dataset
spec:
  name: salaries
  privacyNotion: PureDP
  epsilon: 10
  schema:
    - name: age
      type: Int
      low: 18
      high: 90
    - name: dept
      type: Enum
      labels: [hr, eng]
    - name: comment
      type: Text
`

func TestLoadFromFile(t *testing.T) {
	path := writeDefinition(t, validDefinition)

	dataset, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Dataset", dataset.Kind)
	assert.Equal(t, "salaries", dataset.Spec.Name)
	assert.Len(t, dataset.Spec.Schema, 3)
}

func TestLoadFromFileRejectsWrongKind(t *testing.T) {
	path := writeDefinition(t, "kind: Report\nspec:\n  name: x\n")
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")

	path = writeDefinition(t, "spec:\n  name: x\n")
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'kind' field is required")
}

func TestToCreateRequest(t *testing.T) {
	path := writeDefinition(t, validDefinition)
	dataset, err := LoadFromFile(path)
	require.NoError(t, err)

	req, err := dataset.ToCreateRequest("curator1")
	require.NoError(t, err)
	assert.Equal(t, "curator1", req.Owner)
	assert.Equal(t, types.PureDP, req.PrivacyNotion)
	assert.Equal(t, 10.0, req.TotalBudget.Epsilon)
	require.Len(t, req.Schema, 3)
	assert.Equal(t, types.TypeInt, req.Schema[0].Type.Name)
	assert.Equal(t, []string{"hr", "eng"}, req.Schema[1].Type.Labels)
}

func TestToCreateRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    DatasetSpec
		wantErr string
	}{
		{
			name:    "missing name",
			spec:    DatasetSpec{Epsilon: 1, Schema: []ColumnSpec{{Name: "a", Type: types.TypeText}}},
			wantErr: "spec.name",
		},
		{
			name:    "empty schema",
			spec:    DatasetSpec{Name: "d", Epsilon: 1},
			wantErr: "spec.schema",
		},
		{
			name:    "bad notion",
			spec:    DatasetSpec{Name: "d", PrivacyNotion: "Renyi", Epsilon: 1, Schema: []ColumnSpec{{Name: "a", Type: types.TypeText}}},
			wantErr: "invalid privacy notion",
		},
		{
			name:    "approxdp without delta",
			spec:    DatasetSpec{Name: "d", PrivacyNotion: types.ApproxDP, Epsilon: 1, Schema: []ColumnSpec{{Name: "a", Type: types.TypeText}}},
			wantErr: "invalid total budget",
		},
		{
			name:    "int without bounds",
			spec:    DatasetSpec{Name: "d", Epsilon: 1, Schema: []ColumnSpec{{Name: "a", Type: types.TypeInt}}},
			wantErr: "invalid Int type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DatasetFile{Kind: "Dataset", Spec: tt.spec}
			_, err := d.ToCreateRequest("owner")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToCreateRequestOwnerFromSpec(t *testing.T) {
	d := DatasetFile{Kind: "Dataset", Spec: DatasetSpec{
		Name:    "d",
		Owner:   "other",
		Epsilon: 1,
		Schema:  []ColumnSpec{{Name: "a", Type: types.TypeText}},
	}}
	req, err := d.ToCreateRequest("me")
	require.NoError(t, err)
	assert.Equal(t, "other", req.Owner)
}

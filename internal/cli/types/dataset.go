package types

// Privacy notions supported by the platform. ApproxDP additionally tracks
// a delta budget component.
const (
	PureDP   = "PureDP"
	ApproxDP = "ApproxDP"
)

// Variable type names accepted in dataset schemas.
const (
	TypeInt    = "Int"
	TypeDouble = "Double"
	TypeEnum   = "Enum"
	TypeText   = "Text"
)

// VariableType describes the type of a dataset column. Int and Double carry
// numeric bounds, Enum carries a label set, Text carries nothing else.
type VariableType struct {
	Name   string   `json:"name"`
	Low    *float64 `json:"low,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Numeric reports whether the type takes low/high bounds.
func (t VariableType) Numeric() bool {
	return t.Name == TypeInt || t.Name == TypeDouble
}

// Valid reports whether the type satisfies the schema invariants:
// Int/Double need both bounds, Enum needs at least one non-empty label.
func (t VariableType) Valid() bool {
	switch t.Name {
	case TypeInt, TypeDouble:
		return t.Low != nil && t.High != nil
	case TypeEnum:
		if len(t.Labels) == 0 {
			return false
		}
		for _, l := range t.Labels {
			if l == "" {
				return false
			}
		}
		return true
	case TypeText:
		return true
	}
	return false
}

// Variable is a named dataset column together with its type.
type Variable struct {
	Name string       `json:"name"`
	Type VariableType `json:"type"`
}

// ColumnSchema is one entry of a dataset schema as sent to the server.
type ColumnSchema struct {
	Name string       `json:"name"`
	Type VariableType `json:"type"`
}

// DatasetInfo describes a dataset registered on the platform.
type DatasetInfo struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Owner         string         `json:"owner"`
	PrivacyNotion string         `json:"privacy_notion"`
	UpdatedTime   string         `json:"updated_time,omitempty"`
	Schema        []ColumnSchema `json:"schema,omitempty"`
}

// CreateDatasetRequest registers a new dataset with its schema and total
// budget. The total_budget wire shape depends on the privacy notion and is
// applied by the client at the boundary.
type CreateDatasetRequest struct {
	Name          string
	Owner         string
	PrivacyNotion string
	Schema        []ColumnSchema
	TotalBudget   Budget
}

// EditDatasetRequest updates name, owner and total budget of a dataset.
type EditDatasetRequest struct {
	Name          string
	Owner         string
	PrivacyNotion string
	TotalBudget   Budget
}

package query

// Query components form the ordered pipeline sent to the evaluation
// endpoint. They are modeled as tagged variants and flattened to the
// backend's single-key object shape only at the wire boundary.

// Component is one stage of a query pipeline.
type Component interface {
	// wire returns the single-key object the backend expects.
	wire() map[string]any
}

// Rename maps original column names to display labels. When present it is
// always the first component, and the renamed labels act as the column
// identifiers for the rest of the pipeline.
type Rename map[string]string

func (r Rename) wire() map[string]any {
	return map[string]any{"rename": map[string]string(r)}
}

// Bin partitions a numeric column into buckets delimited by Edges. The
// backend materializes the bucketed values under "<column>_binned".
type Bin struct {
	Column string
	Edges  []float64
}

func (b Bin) wire() map[string]any {
	return map[string]any{"bin": map[string][]float64{b.Column: b.Edges}}
}

// GroupBy groups rows by a column. Exactly one of Labels (Enum columns) or
// Edges (binned numeric columns) is set.
type GroupBy struct {
	Column string
	Labels []string
	Edges  []float64
}

func (g GroupBy) wire() map[string]any {
	if g.Labels != nil {
		return map[string]any{"groupby": map[string][]string{g.Column: g.Labels}}
	}
	return map[string]any{"groupby": map[string][]float64{g.Column: g.Edges}}
}

// Aggregate applies a statistic. Count takes no column: it is a row count,
// not a column aggregate.
type Aggregate struct {
	Kind   string
	Column string
}

func (a Aggregate) wire() map[string]any {
	if a.Kind == StatCount {
		return map[string]any{a.Kind: struct{}{}}
	}
	return map[string]any{a.Kind: map[string]string{"column": a.Column}}
}

// Wire flattens a component pipeline to the loose wire shape.
func Wire(components []Component) []map[string]any {
	out := make([]map[string]any, 0, len(components))
	for _, c := range components {
		out = append(out, c.wire())
	}
	return out
}

package query

import (
	"log/slog"
	"math"

	"github.com/dpella/frontdp/internal/cli/types"
)

// Statistics accepted by the evaluation endpoint.
const (
	StatMean  = "mean"
	StatSum   = "sum"
	StatMin   = "min"
	StatMax   = "max"
	StatCount = "count"
)

// Binning directives offered for numeric group-by columns. The strings are
// user-facing and double as the wizard's selection values.
const (
	BinOnePerValue = "One bin per value"
	BinEqualRange  = "Equal range bins within variable bounds"
)

// Bounds assumed for a numeric group-by column that has none recorded.
const (
	defaultLow  = 0
	defaultHigh = 100
)

// BuildParams carries the wizard selections a query is built from.
type BuildParams struct {
	Statistic       string
	Variable        string
	GroupBy         *types.Variable
	EnumOptions     []string
	BinOptions      string
	EqualBinsNumber int
	LabelEdits      map[string]string
}

// Build translates UI selections into the ordered component pipeline.
//
// The rename component, when present, comes first and rewrites the working
// column names for everything after it. Grouping follows, then the
// statistic. An invalid numeric bin range drops the grouping stage with a
// logged error; the query still proceeds without it.
func Build(p BuildParams) []Component {
	var components []Component

	variable := p.Variable
	groupBy := p.GroupBy

	if len(p.LabelEdits) > 0 {
		if edited, ok := p.LabelEdits[variable]; ok {
			variable = edited
		}
		if groupBy != nil {
			g := *groupBy
			if edited, ok := p.LabelEdits[g.Name]; ok {
				g.Name = edited
			}
			groupBy = &g
		}
		components = append(components, Rename(p.LabelEdits))
	}

	if groupBy != nil {
		switch {
		case groupBy.Type.Name == types.TypeEnum:
			components = append(components, GroupBy{Column: groupBy.Name, Labels: p.EnumOptions})

		case groupBy.Type.Numeric():
			low := float64(defaultLow)
			if groupBy.Type.Low != nil {
				low = *groupBy.Type.Low
			}
			high := float64(defaultHigh)
			if groupBy.Type.High != nil {
				high = *groupBy.Type.High
			}

			switch {
			case p.BinOptions == BinOnePerValue:
				edges := EdgesOnePerValue(low, high)
				if edges == nil {
					slog.Error("invalid range for binning, high must not be below low",
						"column", groupBy.Name, "low", low, "high", high)
					break
				}
				components = append(components,
					Bin{Column: groupBy.Name, Edges: edges},
					GroupBy{Column: groupBy.Name + "_binned", Edges: edges},
				)

			case p.BinOptions == BinEqualRange && p.EqualBinsNumber > 0:
				edges := EdgesEqualRange(low, high, p.EqualBinsNumber)
				components = append(components,
					Bin{Column: groupBy.Name, Edges: edges},
					GroupBy{Column: groupBy.Name + "_binned", Edges: edges[1:]},
				)
			}
		}
	}

	if p.Statistic == StatCount {
		components = append(components, Aggregate{Kind: StatCount})
	} else {
		components = append(components, Aggregate{Kind: p.Statistic, Column: variable})
	}

	return components
}

// EdgesOnePerValue returns one bin edge for every integer in [low, high],
// or nil when the range holds no values.
func EdgesOnePerValue(low, high float64) []float64 {
	length := int(high - low + 1)
	if length <= 0 {
		return nil
	}
	edges := make([]float64, length)
	for i := range edges {
		edges[i] = low + float64(i)
	}
	return edges
}

// EdgesEqualRange splits [low, high] into k bins of equal integer width.
// Edge generation steps by floor((high-low)/k) from low; an edge past high
// is capped at high and ends the walk, and the final edge is always forced
// to high exactly. The flooring can leave the last bin wider than the rest.
func EdgesEqualRange(low, high float64, k int) []float64 {
	binSize := math.Floor((high - low) / float64(k))

	var edges []float64
	for i := 0; i <= k; i++ {
		next := low + binSize*float64(i)
		if next > high {
			edges = append(edges, high)
			break
		}
		edges = append(edges, next)
	}
	if edges[len(edges)-1] != high {
		edges[len(edges)-1] = high
	}
	return edges
}

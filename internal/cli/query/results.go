package query

import (
	"sort"
	"strings"

	"github.com/dpella/frontdp/internal/cli/types"
)

// MethodKey returns the column name the backend reports the statistic
// under: "count" for row counts, "<variable>_<statistic>" otherwise,
// lowercased.
func MethodKey(statistic, variable string) string {
	if statistic == StatCount {
		return strings.ToLower(statistic)
	}
	return strings.ToLower(variable + "_" + statistic)
}

// GroupKey returns the key carrying the group axis of a result row: the
// first key that is not the statistic column. Keys are scanned in sorted
// order since wire maps carry no ordering. Empty when the row has no group
// column.
func GroupKey(row types.Result, methodKey string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k != methodKey {
			return k
		}
	}
	return ""
}

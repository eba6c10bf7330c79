package agg

import (
	"slices"
	"strings"
)

var operators = map[string]Operator{}

var aliases = map[string]string{
	"collect":        "collect_to_array",
	"dcount_map":     "approx_count_distinct_to_map",
	"first":          "first_of_group",
	"last":           "last_of_group",
	"map_sum":        "map_group_sum",
	"moving_average": "moving_avg",
}

func init() {
	for _, op := range []Operator{
		CollectToArray,
		CountDistinctToMap,
		ApproxCountDistinctToMap,
		MapGroupSum,
		FirstOfGroup,
		LastOfGroup,
		MovingAvg,
	} {
		operators[op.Name()] = op
	}
}

// Lookup returns the operator with the given name or alias.  Names are
// case-insensitive.
func Lookup(name string) (Operator, error) {
	name = strings.ToLower(name)
	if canon, ok := aliases[name]; ok {
		name = canon
	}
	if op, ok := operators[name]; ok {
		return op, nil
	}
	return nil, errorf(name, ErrConfiguration, "unknown aggregate function")
}

// Names returns the canonical names of all operators in sorted order.
func Names() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package pipeline

import "sort"

// RealityCheck is one "equivalent purchase" bucket.
type RealityCheck struct {
	Threshold float64 `toml:"threshold" json:"threshold" yaml:"threshold"`
	Label     string  `toml:"label" json:"label" yaml:"label"`
}

// DefaultRealityChecks is the built-in table, ascending by threshold.
var DefaultRealityChecks = []RealityCheck{
	{Threshold: 10, Label: "A nice lunch"},
	{Threshold: 50, Label: "Team dinner"},
	{Threshold: 100, Label: "New mechanical keyboard"},
	{Threshold: 500, Label: "Round trip flight to Europe"},
	{Threshold: 1000, Label: "High-end laptop"},
	{Threshold: 5000, Label: "Used car"},
}

// SortRealityChecks returns a copy of table sorted ascending by threshold.
func SortRealityChecks(table []RealityCheck) []RealityCheck {
	out := make([]RealityCheck, len(table))
	copy(out, table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Threshold < out[j].Threshold
	})
	return out
}

// LookupRealityCheck returns the entry with the highest threshold not
// exceeding cost. table must be ascending. ok is false when cost is below
// every threshold.
func LookupRealityCheck(table []RealityCheck, cost float64) (RealityCheck, bool) {
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].Threshold <= cost {
			return table[i], true
		}
	}
	return RealityCheck{}, false
}

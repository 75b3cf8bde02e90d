// Package universe defines the fixed market-cap quintile registry.
// Group membership is decided upstream when the dataset is built; this
// package only maps group IDs to display metadata.
package universe

import "fmt"

// Group is one market-cap quintile.
type Group struct {
	ID           int     `json:"id"`             // 1 (smallest) .. 5 (largest)
	Name         string  `json:"name"`           // Display name used as matrix column
	AvgMarketCap float64 `json:"avg_market_cap"` // Representative average cap, informational
}

// MinGroupID and MaxGroupID bound the valid quintile identifiers.
const (
	MinGroupID = 1
	MaxGroupID = 5
)

// groups is the fixed registry. The mapping is total over 1..5.
var groups = [...]Group{
	{ID: 1, Name: "Smallest Cap", AvgMarketCap: 20.00},
	{ID: 2, Name: "Small Cap", AvgMarketCap: 57.50},
	{ID: 3, Name: "Mid Cap", AvgMarketCap: 180.00},
	{ID: 4, Name: "Large Cap", AvgMarketCap: 380.00},
	{ID: 5, Name: "Largest Cap", AvgMarketCap: 850.00},
}

// All returns every group in ID order.
func All() []Group {
	out := make([]Group, len(groups))
	copy(out, groups[:])
	return out
}

// ByID returns the group for a quintile identifier.
func ByID(id int) (Group, error) {
	if id < MinGroupID || id > MaxGroupID {
		return Group{}, fmt.Errorf("invalid group id %d (must be %d..%d)", id, MinGroupID, MaxGroupID)
	}
	return groups[id-1], nil
}

// ByName returns the group with the given display name.
func ByName(name string) (Group, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Names returns all display names in ID order. This is the default column
// order for aggregation when the caller does not narrow the group set.
func Names() []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

package reconcile

import (
	"fmt"
	"strings"
)

// AddPolicy decides what the single addMany call of a pass carries.
type AddPolicy string

const (
	// AddFullDesired re-submits the whole desired set. The add endpoint is a
	// set union, so codes already linked are no-ops.
	AddFullDesired AddPolicy = "full"
	// AddDelta submits only desired − server.
	AddDelta AddPolicy = "delta"
)

// ParseAddPolicy maps a config value to an AddPolicy. Empty means AddFullDesired.
func ParseAddPolicy(raw string) (AddPolicy, error) {
	switch AddPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", AddFullDesired:
		return AddFullDesired, nil
	case AddDelta:
		return AddDelta, nil
	default:
		return "", fmt.Errorf("unknown add policy %q (want %q or %q)", raw, AddFullDesired, AddDelta)
	}
}

// Plan is the outcome of Diff. Both slices are sorted.
type Plan struct {
	ToRemove []string `json:"toRemove"`
	ToAdd    []string `json:"toAdd"`
}

// IsEmpty reports whether the plan needs no backend call at all.
func (p Plan) IsEmpty() bool {
	return len(p.ToRemove) == 0 && len(p.ToAdd) == 0
}

// Diff computes toRemove = server − desired, and toAdd according to policy.
func Diff(server, desired CodeSet, policy AddPolicy) Plan {
	plan := Plan{ToRemove: server.Difference(desired).Sorted()}
	if policy == AddDelta {
		plan.ToAdd = desired.Difference(server).Sorted()
	} else {
		plan.ToAdd = desired.Sorted()
	}
	return plan
}

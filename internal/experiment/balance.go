package experiment

import (
	"fmt"
	"sort"

	"gesher/internal/profile"
)

// Balance is the post-hoc allocation check: completed-conversation counts per
// (profile-group, intervention) cell. A verification of the randomized
// schedule, not an enforced runtime constraint.
type Balance struct {
	IsBalanced bool           `json:"is_balanced"`
	Counts     map[string]int `json:"combination_counts"`
	Distinct   []int          `json:"unique_counts"`
}

// ValidateBalance counts successful conversations per cell. Cells are keyed
// "group_intervention", where group is the leading token of the profile ID.
// Planned cells with zero completions stay in the tally, so a starved cell
// breaks balance. The allocation is balanced when cell counts differ by at
// most one (run vs run+1).
func ValidateBalance(r *RunResult) Balance {
	counts := make(map[string]int)
	for _, p := range r.Planned {
		counts[cellKey(p.ProfileID, p.Intervention)] = 0
	}
	for _, s := range r.Successful {
		counts[cellKey(s.ProfileID, s.Intervention)]++
	}

	seen := make(map[int]bool)
	for _, n := range counts {
		seen[n] = true
	}
	distinct := make([]int, 0, len(seen))
	for n := range seen {
		distinct = append(distinct, n)
	}
	sort.Ints(distinct)

	balanced := true
	if len(distinct) > 0 {
		balanced = distinct[len(distinct)-1]-distinct[0] <= 1
	}

	return Balance{
		IsBalanced: balanced,
		Counts:     counts,
		Distinct:   distinct,
	}
}

// cellKey joins the profile's stance group with the intervention name.
func cellKey(profileID, intervention string) string {
	return fmt.Sprintf("%s_%s", profile.GroupOf(profileID), intervention)
}

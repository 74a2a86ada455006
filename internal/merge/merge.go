package merge

import (
	"fmt"
	"maps"
	"slices"

	"shotscan/internal/faults"
)

// Entry is one merged frame and the position of the list it came from.
type Entry struct {
	Frame int `json:"frame"`
	Tier  int `json:"tier"`
}

// Result holds the merged entries in increasing frame order.
type Result struct {
	Entries  []Entry `json:"entries"`
	Rejected int     `json:"rejected"`
}

// Frames returns the merged frame indices.
func (r Result) Frames() []int {
	out := make([]int, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Frame
	}
	return out
}

// Merge combines lists ordered from lowest to highest sample rate. Each list
// must be strictly increasing and minSpace must be positive.
func Merge(lists [][]int, minSpace int) (Result, error) {
	if minSpace <= 0 {
		return Result{}, faults.Wrap(faults.ErrConfiguration, "merge", "validate", fmt.Sprintf("minimum spacing %d must be positive", minSpace), nil)
	}
	for tier, list := range lists {
		for i := 1; i < len(list); i++ {
			if list[i] <= list[i-1] {
				return Result{}, faults.Wrap(faults.ErrOrdering, "merge", "validate",
					fmt.Sprintf("list %d is not strictly increasing at %d", tier, list[i]), nil)
			}
		}
	}
	if len(lists) == 0 {
		return Result{Entries: []Entry{}}, nil
	}

	merged := make([]Entry, 0, len(lists[0]))
	for _, frame := range lists[0] {
		merged = append(merged, Entry{Frame: frame})
	}

	var rejected int
	for tier := 1; tier < len(lists); tier++ {
		// Both sides are sorted, so the cursor only moves forward within a tier.
		cursor := 0
		for _, v := range lists[tier] {
			for cursor < len(merged) && merged[cursor].Frame < v {
				cursor++
			}
			if cursor > 0 && v-merged[cursor-1].Frame < minSpace {
				rejected++
				continue
			}
			if cursor < len(merged) && merged[cursor].Frame-v < minSpace {
				rejected++
				continue
			}
			merged = slices.Insert(merged, cursor, Entry{Frame: v, Tier: tier})
			cursor++
		}
	}
	return Result{Entries: merged, Rejected: rejected}, nil
}

// MergeByRate merges candidate lists keyed by sample rate, lowest rate first.
func MergeByRate(byRate map[int][]int, minSpace int) (Result, error) {
	rates := slices.Sorted(maps.Keys(byRate))
	lists := make([][]int, len(rates))
	for i, rate := range rates {
		lists[i] = byRate[rate]
	}
	return Merge(lists, minSpace)
}

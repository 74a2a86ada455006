package merge_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"shotscan/internal/faults"
	"shotscan/internal/merge"
)

func mustMerge(t *testing.T, lists [][]int, minSpace int) merge.Result {
	t.Helper()
	res, err := merge.Merge(lists, minSpace)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	return res
}

func TestMergeScenarios(t *testing.T) {
	cases := []struct {
		name     string
		lists    [][]int
		minSpace int
		want     []int
		rejected int
	}{
		{"conflicts rejected", [][]int{{10, 50}, {12, 52}}, 5, []int{10, 50}, 2},
		{"spaced accepted", [][]int{{10}, {30}}, 5, []int{10, 30}, 0},
		{"exact spacing accepted", [][]int{{10}, {15, 20}}, 5, []int{10, 15, 20}, 0},
		{"duplicate rejected", [][]int{{10}, {10}}, 1, []int{10}, 1},
		{"empty seed", [][]int{{}, {3, 4, 20}}, 5, []int{3, 20}, 1},
		{"leading and trailing gaps", [][]int{{50}, {1, 44, 56, 99}}, 6, []int{1, 44, 50, 56, 99}, 0},
		{"three tiers", [][]int{{100}, {90, 110}, {}, {80, 200}}, 10, []int{80, 90, 100, 110, 200}, 0},
		{"no lists", nil, 5, []int{}, 0},
	}
	for _, tc := range cases {
		res := mustMerge(t, tc.lists, tc.minSpace)
		if !slices.Equal(res.Frames(), tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, res.Frames(), tc.want)
		}
		if res.Rejected != tc.rejected {
			t.Fatalf("%s: rejected %d want %d", tc.name, res.Rejected, tc.rejected)
		}
	}
}

func TestSeedIsAcceptedVerbatim(t *testing.T) {
	res := mustMerge(t, [][]int{{1, 2, 3}, {4, 9}}, 5)
	if !slices.Equal(res.Frames(), []int{1, 2, 3, 9}) {
		t.Fatalf("unexpected merge %v", res.Frames())
	}
	for _, e := range res.Entries[:3] {
		if e.Tier != 0 {
			t.Fatalf("seed entry %+v should be tier 0", e)
		}
	}
	if res.Entries[3].Tier != 1 {
		t.Fatalf("expected tier 1 entry, got %+v", res.Entries[3])
	}
}

func TestMergeValidation(t *testing.T) {
	if _, err := merge.Merge([][]int{{1}}, 0); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := merge.Merge([][]int{{1}, {5, 5}}, 2); !errors.Is(err, faults.ErrOrdering) {
		t.Fatalf("expected ordering error, got %v", err)
	}
}

func TestMergeByRateOrdersByRate(t *testing.T) {
	res, err := merge.MergeByRate(map[int][]int{4: {12, 52}, 1: {10, 50}}, 5)
	if err != nil {
		t.Fatalf("MergeByRate returned error: %v", err)
	}
	if !slices.Equal(res.Frames(), []int{10, 50}) {
		t.Fatalf("expected lower rate to win, got %v", res.Frames())
	}
}

func randomList(rng *rand.Rand, limit int) []int {
	n := rng.IntN(15)
	seen := map[int]bool{}
	var out []int
	for len(out) < n {
		v := rng.IntN(limit)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 23))
	for trial := 0; trial < 300; trial++ {
		tiers := 1 + rng.IntN(4)
		lists := make([][]int, tiers)
		for i := range lists {
			lists[i] = randomList(rng, 200)
		}
		minSpace := 1 + rng.IntN(12)
		res := mustMerge(t, lists, minSpace)
		frames := res.Frames()

		if !slices.IsSorted(frames) || len(slices.Compact(slices.Clone(frames))) != len(frames) {
			t.Fatalf("trial %d: merged list not strictly increasing: %v", trial, frames)
		}
		for _, f := range lists[0] {
			if _, ok := slices.BinarySearch(frames, f); !ok {
				t.Fatalf("trial %d: seed frame %d missing from %v", trial, f, frames)
			}
		}
		// Lower tiers are never displaced: merging a prefix of the tiers
		// yields a subsequence of the full result.
		for k := 1; k < tiers; k++ {
			partial := mustMerge(t, lists[:k], minSpace)
			for _, f := range partial.Frames() {
				if _, ok := slices.BinarySearch(frames, f); !ok {
					t.Fatalf("trial %d: frame %d from tiers < %d was displaced", trial, f, k)
				}
			}
		}
		for i := 1; i < len(res.Entries); i++ {
			prev, cur := res.Entries[i-1], res.Entries[i]
			if (prev.Tier > 0 || cur.Tier > 0) && cur.Frame-prev.Frame < minSpace {
				t.Fatalf("trial %d: entries %+v and %+v closer than %d", trial, prev, cur, minSpace)
			}
		}
		accepted := len(frames) - len(lists[0])
		total := 0
		for _, l := range lists[1:] {
			total += len(l)
		}
		if accepted+res.Rejected != total {
			t.Fatalf("trial %d: accepted %d + rejected %d != %d", trial, accepted, res.Rejected, total)
		}
	}
}

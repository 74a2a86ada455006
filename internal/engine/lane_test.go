package engine

import (
	"errors"
	"testing"

	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/metric"
)

func TestMissingCacheFailsOnlyThatLane(t *testing.T) {
	m, err := metric.Lookup(metric.Cosine)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	eng, err := New("s", []int{1, 3}, m)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	records := make([]features.Record, 8)
	for i := range records {
		records[i] = features.Record{Index: i, Vector: features.Vector{float32(i + 1), 1}}
	}
	if err := eng.Process(features.Batch{Begin: 0, Records: records[:2]}); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	slow := eng.lane(3)
	slow.hasCache = false
	slow.cache = nil

	if err := eng.Process(features.Batch{Begin: 2, Records: records[2:]}); err != nil {
		t.Fatalf("Process returned stream error: %v", err)
	}
	laneErr := eng.LaneErr(3)
	if !errors.Is(laneErr, faults.ErrOrdering) {
		t.Fatalf("expected ordering failure on rate 3, got %v", laneErr)
	}
	if !errors.Is(laneErr, faults.ErrLane) || faults.Fatal(eng.Err()) {
		t.Fatalf("expected a lane-confined failure, got %v", eng.Err())
	}
	var le *LaneError
	if !errors.As(eng.Err(), &le) || le.Rate != 3 {
		t.Fatalf("expected LaneError for rate 3, got %v", eng.Err())
	}
	if eng.LaneErr(1) != nil || len(eng.Sequence(1)) != 7 {
		t.Fatalf("rate 1 lane should be unaffected: err=%v points=%d", eng.LaneErr(1), len(eng.Sequence(1)))
	}
}

func TestCacheHoldsNextLeftFrame(t *testing.T) {
	m, err := metric.Lookup(metric.Cosine)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	eng, err := New("s", []int{5}, m)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	batch := features.Batch{Begin: 0, Records: []features.Record{
		{Index: 0, Vector: features.Vector{1, 0}},
		{Index: 1, Vector: features.Vector{0, 1}},
	}}
	if err := eng.Process(batch); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	l := eng.lane(5)
	if !l.hasCache || l.cachePos != 0 || l.cacheFrame != 0 {
		t.Fatalf("unexpected cache state pos=%d frame=%d has=%v", l.cachePos, l.cacheFrame, l.hasCache)
	}
	batch.Records[0].Vector[0] = 42
	if l.cache[0] != 1 {
		t.Fatal("cache aliases the batch buffer")
	}
}

package engine_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"shotscan/internal/engine"
	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/metric"
)

func cosine(t *testing.T) metric.Metric {
	t.Helper()
	m, err := metric.Lookup(metric.Cosine)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	return m
}

func randomStream(seed uint64, n, dim int) []features.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	records := make([]features.Record, n)
	for i := range records {
		vec := make(features.Vector, dim)
		for d := range vec {
			vec[d] = rng.Float32()*2 - 1
		}
		records[i] = features.Record{Index: i, Vector: vec}
	}
	return records
}

// reference computes the expected sequence with the whole stream in memory.
func reference(t *testing.T, records []features.Record, rate int, m metric.Metric) engine.Sequence {
	t.Helper()
	var seq engine.Sequence
	for p := 0; p+rate < len(records); p += rate {
		d, err := m.Calculate(records[p].Vector, records[p+rate].Vector)
		if err != nil {
			t.Fatalf("Calculate returned error: %v", err)
		}
		seq = append(seq, engine.Point{Frame: records[p].Index, Distance: d})
	}
	return seq
}

func runPartition(t *testing.T, records []features.Record, sizes []int, rates []int, opts ...engine.Option) *engine.Engine {
	t.Helper()
	eng, err := engine.New("fc7", rates, cosine(t), opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := eng.Run(context.Background(), features.NewPartitionSource(records, sizes)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return eng
}

func assertSequenceEqual(t *testing.T, label string, got, want engine.Sequence) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d points, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].Frame != want[i].Frame || got[i].Distance != want[i].Distance {
			t.Fatalf("%s: point %d = %+v, want %+v", label, i, got[i], want[i])
		}
	}
}

func TestSingleBatchMatchesOneFrameBatches(t *testing.T) {
	records := randomStream(7, 120, 16)
	m := cosine(t)
	for _, batchSize := range []int{1, 100} {
		single := runPartition(t, records, []int{len(records)}, []int{7})
		split := runPartition(t, records, []int{batchSize}, []int{7})
		assertSequenceEqual(t, "single vs split", split.Sequence(7), single.Sequence(7))
		assertSequenceEqual(t, "reference", single.Sequence(7), reference(t, records, 7, m))
	}
}

func TestRandomPartitionsProduceIdenticalSequences(t *testing.T) {
	records := randomStream(42, 257, 8)
	rates := []int{1, 2, 3, 5, 16, 40, 300}
	m := cosine(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := 0; trial < 25; trial++ {
		sizes := make([]int, 1+rng.IntN(6))
		for i := range sizes {
			sizes[i] = 1 + rng.IntN(50)
		}
		eng := runPartition(t, records, sizes, rates)
		for _, rate := range rates {
			assertSequenceEqual(t, "partition", eng.Sequence(rate), reference(t, records, rate, m))
		}
	}
}

func TestParallelLanesMatchSequential(t *testing.T) {
	records := randomStream(3, 90, 12)
	rates := []int{1, 4, 9, 13}
	seq := runPartition(t, records, []int{7}, rates)
	par := runPartition(t, records, []int{7}, rates, engine.WithParallelLanes(4))
	for _, rate := range rates {
		assertSequenceEqual(t, "parallel", par.Sequence(rate), seq.Sequence(rate))
	}
}

func TestCursorIsMonotonicInRateSteps(t *testing.T) {
	records := randomStream(11, 60, 4)
	rates := []int{1, 6, 25}
	eng, err := engine.New("pool5", rates, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	src := features.NewSliceSource(records, 4)
	prev := map[int]int{}
	for {
		batch, err := src.Next(context.Background())
		if err != nil {
			break
		}
		if err := eng.Process(batch); err != nil {
			t.Fatalf("Process returned error: %v", err)
		}
		for _, rate := range rates {
			cur := eng.Cursor(rate)
			if cur < prev[rate] {
				t.Fatalf("rate %d cursor went backwards: %d -> %d", rate, prev[rate], cur)
			}
			if cur%rate != 0 {
				t.Fatalf("rate %d cursor %d is not a multiple of the rate", rate, cur)
			}
			prev[rate] = cur
		}
	}
	if eng.Positions() != len(records) || eng.Batches() != 15 {
		t.Fatalf("unexpected counters positions=%d batches=%d", eng.Positions(), eng.Batches())
	}
}

func TestNonContiguousFrameIndicesKeyByLeftFrame(t *testing.T) {
	records := []features.Record{
		{Index: 0, Vector: features.Vector{1, 0}},
		{Index: 5, Vector: features.Vector{0, 1}},
		{Index: 10, Vector: features.Vector{1, 0}},
		{Index: 15, Vector: features.Vector{1, 0}},
	}
	eng := runPartition(t, records, []int{1}, []int{1, 2})
	frames := eng.Sequence(1).Frames()
	if len(frames) != 3 || frames[0] != 0 || frames[1] != 5 || frames[2] != 10 {
		t.Fatalf("unexpected rate 1 frames %v", frames)
	}
	seq2 := eng.Sequence(2)
	if len(seq2) != 1 || seq2[0].Frame != 0 || math.Abs(seq2[0].Distance) > 1e-9 {
		t.Fatalf("unexpected rate 2 sequence %+v", seq2)
	}
}

func TestRateLargerThanStreamYieldsEmptySequence(t *testing.T) {
	records := randomStream(5, 10, 3)
	eng := runPartition(t, records, []int{3}, []int{10, 50})
	if len(eng.Sequence(10)) != 0 || len(eng.Sequence(50)) != 0 {
		t.Fatalf("expected empty sequences, got %v and %v", eng.Sequence(10), eng.Sequence(50))
	}
}

func TestNewValidatesRates(t *testing.T) {
	m := cosine(t)
	if _, err := engine.New("s", nil, m); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for no rates, got %v", err)
	}
	if _, err := engine.New("s", []int{2, 0}, m); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for zero rate, got %v", err)
	}
	if _, err := engine.New("s", []int{1}, nil); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for nil metric, got %v", err)
	}
	eng, err := engine.New("s", []int{4, 1, 4, 2}, m)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	rates := eng.Rates()
	if len(rates) != 3 || rates[0] != 1 || rates[1] != 2 || rates[2] != 4 {
		t.Fatalf("expected sorted unique rates, got %v", rates)
	}
}

func TestProcessRejectsGapsAndOverlaps(t *testing.T) {
	records := randomStream(9, 10, 3)
	eng, err := engine.New("s", []int{1, 3}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := eng.Process(features.Batch{Begin: 0, Records: records[:4]}); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	before := len(eng.Sequence(1))

	gap := features.Batch{Begin: 5, Records: records[5:7]}
	if err := eng.Process(gap); !errors.Is(err, faults.ErrOrdering) {
		t.Fatalf("expected ordering error for gap, got %v", err)
	}
	overlap := features.Batch{Begin: 3, Records: records[3:6]}
	if err := eng.Process(overlap); !errors.Is(err, faults.ErrOrdering) {
		t.Fatalf("expected ordering error for overlap, got %v", err)
	}
	if len(eng.Sequence(1)) != before || eng.Positions() != 4 {
		t.Fatal("rejected batch must not change engine state")
	}

	if err := eng.Process(features.Batch{Begin: 4, Records: records[4:]}); err != nil {
		t.Fatalf("Process after rejection returned error: %v", err)
	}
	if len(eng.Sequence(1)) != 9 || len(eng.Sequence(3)) != 3 {
		t.Fatalf("unexpected sequence lengths %d and %d", len(eng.Sequence(1)), len(eng.Sequence(3)))
	}
}

func TestProcessRejectsDecreasingFrameIndex(t *testing.T) {
	eng, err := engine.New("s", []int{1}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	first := features.Batch{Begin: 0, Records: []features.Record{{Index: 4, Vector: features.Vector{1}}}}
	if err := eng.Process(first); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	second := features.Batch{Begin: 1, Records: []features.Record{{Index: 4, Vector: features.Vector{1}}}}
	if err := eng.Process(second); !errors.Is(err, faults.ErrOrdering) {
		t.Fatalf("expected ordering error, got %v", err)
	}
}

func TestProcessRejectsDimensionChange(t *testing.T) {
	eng, err := engine.New("s", []int{1}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	first := features.Batch{Begin: 0, Records: []features.Record{{Index: 0, Vector: features.Vector{1, 2}}}}
	if err := eng.Process(first); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	second := features.Batch{Begin: 1, Records: []features.Record{{Index: 1, Vector: features.Vector{1, 2, 3}}}}
	if err := eng.Process(second); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if eng.Dimension() != 2 {
		t.Fatalf("expected dimension 2, got %d", eng.Dimension())
	}
}

func TestCachedVectorIsNotAliased(t *testing.T) {
	records := randomStream(21, 8, 4)
	want := reference(t, records, 3, cosine(t))

	eng, err := engine.New("s", []int{3}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	// Reuse one buffer for every batch, the way a decoder would.
	buf := make([]features.Record, 1)
	for pos, rec := range records {
		buf[0] = features.Record{Index: rec.Index, Vector: append(features.Vector(nil), rec.Vector...)}
		if err := eng.Process(features.Batch{Begin: pos, Records: buf}); err != nil {
			t.Fatalf("Process returned error: %v", err)
		}
		for i := range buf[0].Vector {
			buf[0].Vector[i] = -99
		}
	}
	assertSequenceEqual(t, "reused buffer", eng.Sequence(3), want)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng, err := engine.New("s", []int{1}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = eng.Run(ctx, features.NewSliceSource(randomStream(1, 5, 2), 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if eng.Positions() != 0 {
		t.Fatalf("expected no batches consumed, got %d", eng.Positions())
	}
}

func TestUnknownRateAccessors(t *testing.T) {
	eng, err := engine.New("s", []int{2}, cosine(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if eng.Sequence(3) != nil || eng.Cursor(3) != -1 || eng.LaneErr(3) != nil {
		t.Fatal("expected zero values for unknown rate")
	}
	if eng.Err() != nil {
		t.Fatalf("expected no lane errors, got %v", eng.Err())
	}
}

package features_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"shotscan/internal/faults"
	"shotscan/internal/features"
)

func makeRecords(n int) []features.Record {
	records := make([]features.Record, n)
	for i := range records {
		records[i] = features.Record{Index: i, Vector: features.Vector{float32(i), 1}}
	}
	return records
}

func TestSliceSourceBatchesAreContiguous(t *testing.T) {
	src := features.NewSliceSource(makeRecords(10), 4)
	ctx := context.Background()

	var begins, lens []int
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		begins = append(begins, batch.Begin)
		lens = append(lens, batch.Len())
	}
	wantBegins := []int{0, 4, 8}
	wantLens := []int{4, 4, 2}
	for i := range wantBegins {
		if begins[i] != wantBegins[i] || lens[i] != wantLens[i] {
			t.Fatalf("batch %d: begin=%d len=%d, want begin=%d len=%d", i, begins[i], lens[i], wantBegins[i], wantLens[i])
		}
	}
}

func TestSliceSourceZeroBatchSizeDeliversAll(t *testing.T) {
	src := features.NewSliceSource(makeRecords(7), 0)
	batch, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if batch.Len() != 7 || batch.End() != 7 {
		t.Fatalf("unexpected batch: len=%d end=%d", batch.Len(), batch.End())
	}
	if _, err := src.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestPartitionSourceCyclesSizes(t *testing.T) {
	src := features.NewPartitionSource(makeRecords(9), []int{1, 3})
	records, err := features.Collect(context.Background(), src)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("expected 9 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Index != i {
			t.Fatalf("record %d has index %d", i, rec.Index)
		}
	}
}

func TestSourceHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := features.NewSliceSource(makeRecords(3), 1).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCheckDimension(t *testing.T) {
	dim, err := features.CheckDimension(0, makeRecords(3))
	if err != nil || dim != 2 {
		t.Fatalf("CheckDimension = %d, %v; want 2, nil", dim, err)
	}

	bad := []features.Record{{Index: 4, Vector: features.Vector{1, 2, 3}}}
	if _, err := features.CheckDimension(dim, bad); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	empty := []features.Record{{Index: 0}}
	if _, err := features.CheckDimension(0, empty); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty vector, got %v", err)
	}
}

func TestVectorCloneDoesNotAlias(t *testing.T) {
	v := features.Vector{1, 2, 3}
	c := v.Clone()
	v[0] = 9
	if c[0] != 1 {
		t.Fatalf("clone aliased the source vector: %v", c)
	}
}

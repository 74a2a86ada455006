package featurestore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/featurestore"
	"shotscan/internal/testsupport"
)

func TestPutAndSourceRoundTrip(t *testing.T) {
	for _, compression := range []string{"zstd", "none"} {
		t.Run(compression, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithCompression(compression))
			store := testsupport.MustOpenStore(t, cfg)

			want := testsupport.Random(7, 23, 16)
			testsupport.MustPut(t, store, "clip", "0", want)

			got, err := features.Collect(context.Background(), store.Source("clip", "0", 5))
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("got %d records, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i].Index != want[i].Index || !slices.Equal(got[i].Vector, want[i].Vector) {
					t.Fatalf("record %d mismatch: got %+v want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestSourceBatchesArePositional(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := testsupport.Constant(10, 1, 2)
	for i := range records {
		records[i].Index = i * 3
	}
	testsupport.MustPut(t, store, "clip", "a", records)

	src := store.Source("clip", "a", 4)
	var begins []int
	for {
		batch, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		begins = append(begins, batch.Begin)
	}
	if !slices.Equal(begins, []int{0, 4, 8}) {
		t.Fatalf("unexpected batch begins %v", begins)
	}
}

func TestSourceExactMultipleEndsCleanly(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustPut(t, store, "clip", "0", testsupport.Constant(8, 1))

	got, err := features.Collect(context.Background(), store.Source("clip", "0", 4))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d records", len(got))
	}
}

func TestSourceMissingStreamIsSourceError(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := store.Source("nope", "0", 4).Next(context.Background())
	if !errors.Is(err, faults.ErrSource) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestPutRejectsDimensionChange(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustPut(t, store, "clip", "0", testsupport.Constant(3, 1, 2))

	extra := []features.Record{{Index: 5, Vector: features.Vector{1, 2, 3}}}
	err := store.Put(context.Background(), "clip", "0", extra)
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	n, err := store.Count(context.Background(), "clip", "0")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 stored records, got %d (%v)", n, err)
	}
}

func TestPutRejectsEmptyKeys(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := store.Put(context.Background(), "", "0", testsupport.Constant(1, 1)); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty video, got %v", err)
	}
}

func TestImportFromDump(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := testsupport.Random(3, 12, 4)

	var buf bytes.Buffer
	if err := features.WriteDump(&buf, records); err != nil {
		t.Fatalf("WriteDump: %v", err)
	}
	n, err := store.Import(context.Background(), "clip", "1", features.NewDumpSource(&buf, 5))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 12 {
		t.Fatalf("imported %d records", n)
	}
}

func TestCatalogQueriesAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustPut(t, store, "b", "0", testsupport.Constant(4, 1, 0))
	testsupport.MustPut(t, store, "a", "0", testsupport.Constant(3, 1, 0, 0))
	testsupport.MustPut(t, store, "a", "1", testsupport.Constant(5, 1))

	videos, err := store.Videos(ctx)
	if err != nil || !slices.Equal(videos, []string{"a", "b"}) {
		t.Fatalf("Videos = %v (%v)", videos, err)
	}

	streams, err := store.Streams(ctx, "a")
	if err != nil {
		t.Fatalf("Streams: %v", err)
	}
	want := []featurestore.StreamInfo{
		{Name: "0", Frames: 3, Dimension: 3, FirstFrame: 0, LastFrame: 2},
		{Name: "1", Frames: 5, Dimension: 1, FirstFrame: 0, LastFrame: 4},
	}
	if !slices.Equal(streams, want) {
		t.Fatalf("Streams = %+v, want %+v", streams, want)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Videos != 2 || stats.Streams != 3 || stats.Records != 12 || stats.PayloadBytes <= 0 || stats.FileBytes <= 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	removed, err := store.Delete(ctx, "a", "1")
	if err != nil || removed != 5 {
		t.Fatalf("Delete stream removed %d (%v)", removed, err)
	}
	removed, err = store.Delete(ctx, "a", "")
	if err != nil || removed != 3 {
		t.Fatalf("Delete video removed %d (%v)", removed, err)
	}
	videos, _ = store.Videos(ctx)
	if !slices.Equal(videos, []string{"b"}) {
		t.Fatalf("Videos after delete = %v", videos)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := featurestore.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.MustPut(t, store, "clip", "0", testsupport.Constant(2, 1))
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	n, err := reopened.Count(context.Background(), "clip", "0")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 records after reopen, got %d (%v)", n, err)
	}
}

func TestOpenPathRejectsUnknownCompression(t *testing.T) {
	_, err := featurestore.OpenPath(t.TempDir()+"/f.db", "lz4")
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

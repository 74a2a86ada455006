package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"shotscan/internal/faults"
)

// Vector is a fixed-length feature vector for one frame.
type Vector []float32

// Clone returns an owned copy of v.
func (v Vector) Clone() Vector {
	return slices.Clone(v)
}

// Record pairs a frame index with its feature vector.
type Record struct {
	Index  int
	Vector Vector
}

// Batch is a contiguous chunk of a feature stream. Begin is the stream
// position (0-based ordinal) of the first record.
type Batch struct {
	Begin   int
	Records []Record
}

// End returns the position one past the last record in the batch.
func (b Batch) End() int {
	return b.Begin + len(b.Records)
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// Source delivers batches in strictly increasing order. Next returns io.EOF
// after the final batch.
type Source interface {
	Next(ctx context.Context) (Batch, error)
}

// SliceSource serves an in-memory record slice in fixed-size batches.
type SliceSource struct {
	records   []Record
	batchSize int
	pos       int
}

// NewSliceSource wraps records; batchSize <= 0 delivers everything at once.
func NewSliceSource(records []Record, batchSize int) *SliceSource {
	if batchSize <= 0 {
		batchSize = len(records)
	}
	return &SliceSource{records: records, batchSize: batchSize}
}

// Next returns the following batch or io.EOF.
func (s *SliceSource) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.pos >= len(s.records) {
		return Batch{}, io.EOF
	}
	end := min(s.pos+s.batchSize, len(s.records))
	batch := Batch{Begin: s.pos, Records: s.records[s.pos:end]}
	s.pos = end
	return batch, nil
}

// PartitionSource serves records using an explicit list of batch sizes,
// cycling through sizes when the list is shorter than the stream.
type PartitionSource struct {
	records []Record
	sizes   []int
	pos     int
	next    int
}

// NewPartitionSource builds a source that splits records using sizes.
func NewPartitionSource(records []Record, sizes []int) *PartitionSource {
	return &PartitionSource{records: records, sizes: sizes}
}

// Next returns the following batch or io.EOF.
func (s *PartitionSource) Next(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.pos >= len(s.records) {
		return Batch{}, io.EOF
	}
	size := 1
	if len(s.sizes) > 0 {
		size = max(s.sizes[s.next%len(s.sizes)], 1)
		s.next++
	}
	end := min(s.pos+size, len(s.records))
	batch := Batch{Begin: s.pos, Records: s.records[s.pos:end]}
	s.pos = end
	return batch, nil
}

// Collect drains src into a single record slice. It is meant for small
// streams and tests; the detection pipeline never buffers a whole stream.
func Collect(ctx context.Context, src Source) ([]Record, error) {
	var out []Record
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, batch.Records...)
	}
}

// CheckDimension verifies that every vector in records has dim entries.
// A dim of zero adopts the first vector's length. It returns the resolved
// dimension.
func CheckDimension(dim int, records []Record) (int, error) {
	for _, rec := range records {
		if len(rec.Vector) == 0 {
			return dim, faults.Wrap(faults.ErrConfiguration, "features", "dimension", fmt.Sprintf("frame %d has an empty feature vector", rec.Index), nil)
		}
		if dim == 0 {
			dim = len(rec.Vector)
			continue
		}
		if len(rec.Vector) != dim {
			return dim, faults.Wrap(faults.ErrConfiguration, "features", "dimension",
				fmt.Sprintf("frame %d has %d values, stream dimension is %d", rec.Index, len(rec.Vector), dim), nil)
		}
	}
	return dim, nil
}

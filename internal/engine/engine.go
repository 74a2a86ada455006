package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/metric"
)

// Point is the distance between the frame at Frame and the frame one sample
// rate later.
type Point struct {
	Frame    int     `json:"frame"`
	Distance float64 `json:"distance"`
}

// Sequence is the ordered distance output of one lane.
type Sequence []Point

// Values returns the distances without frame indices.
func (s Sequence) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Distance
	}
	return out
}

// Frames returns the left frame index of every point.
func (s Sequence) Frames() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Frame
	}
	return out
}

// Option customizes an Engine.
type Option func(*Engine)

// WithParallelLanes fans each batch out to at most n lanes concurrently.
// n <= 1 keeps lanes sequential.
func WithParallelLanes(n int) Option {
	return func(e *Engine) {
		e.parallel = n
	}
}

// Engine holds the per-rate lanes for one feature stream.
type Engine struct {
	stream   string
	metric   metric.Metric
	lanes    []*lane
	parallel int

	dim       int
	nextBegin int
	lastFrame int
	batches   int
}

// New builds an engine for stream. Rates are sorted ascending and
// deduplicated; a non-positive rate is a configuration error.
func New(stream string, rates []int, m metric.Metric, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "engine", "new", "metric is required", nil)
	}
	if len(rates) == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "engine", "new", "at least one sample rate is required", nil)
	}
	sorted := slices.Clone(rates)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted[0] <= 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "engine", "new", fmt.Sprintf("sample rate %d must be positive", sorted[0]), nil)
	}

	e := &Engine{stream: stream, metric: m, lastFrame: -1}
	for _, rate := range sorted {
		e.lanes = append(e.lanes, &lane{rate: rate})
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Stream returns the stream name the engine was built for.
func (e *Engine) Stream() string { return e.stream }

// Rates returns the lane rates in ascending order.
func (e *Engine) Rates() []int {
	rates := make([]int, len(e.lanes))
	for i, l := range e.lanes {
		rates[i] = l.rate
	}
	return rates
}

// Positions returns the number of records consumed so far.
func (e *Engine) Positions() int { return e.nextBegin }

// Batches returns the number of batches consumed so far.
func (e *Engine) Batches() int { return e.batches }

// Dimension returns the stream's feature dimension, or 0 before the first record.
func (e *Engine) Dimension() int { return e.dim }

// Process consumes the next batch. The batch must start exactly where the
// previous one ended and continue the frame index order; otherwise the engine
// is left untouched and an ordering error is returned. Lane failures are
// recorded per lane and reported by Err.
func (e *Engine) Process(batch features.Batch) error {
	if batch.Begin != e.nextBegin {
		return faults.Wrap(faults.ErrOrdering, "engine", "process",
			fmt.Sprintf("stream %s: batch begins at position %d, expected %d", e.stream, batch.Begin, e.nextBegin), nil)
	}
	if batch.Len() == 0 {
		return nil
	}
	last := e.lastFrame
	for _, rec := range batch.Records {
		if rec.Index <= last {
			return faults.Wrap(faults.ErrOrdering, "engine", "process",
				fmt.Sprintf("stream %s: frame %d does not follow frame %d", e.stream, rec.Index, last), nil)
		}
		last = rec.Index
	}
	dim, err := features.CheckDimension(e.dim, batch.Records)
	if err != nil {
		return fmt.Errorf("stream %s: %w", e.stream, err)
	}

	if e.parallel > 1 && len(e.lanes) > 1 {
		var g errgroup.Group
		g.SetLimit(e.parallel)
		for _, l := range e.lanes {
			if l.err != nil {
				continue
			}
			g.Go(func() error {
				l.advance(batch, e.metric)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, l := range e.lanes {
			if l.err == nil {
				l.advance(batch, e.metric)
			}
		}
	}

	e.dim = dim
	e.nextBegin = batch.End()
	e.lastFrame = last
	e.batches++
	return nil
}

// Run drains src into the engine. Context cancellation is checked between
// batches, so a cancelled run leaves the sequences computed so far intact.
func (e *Engine) Run(ctx context.Context, src features.Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return e.Err()
		}
		if err != nil {
			return err
		}
		if err := e.Process(batch); err != nil {
			return err
		}
	}
}

// Sequence returns the distance sequence for rate, or nil for an unknown rate.
func (e *Engine) Sequence(rate int) Sequence {
	if l := e.lane(rate); l != nil {
		return l.seq
	}
	return nil
}

// Sequences returns every lane's sequence keyed by rate.
func (e *Engine) Sequences() map[int]Sequence {
	out := make(map[int]Sequence, len(e.lanes))
	for _, l := range e.lanes {
		out[l.rate] = l.seq
	}
	return out
}

// Cursor returns the next left position of the lane for rate, or -1.
func (e *Engine) Cursor(rate int) int {
	if l := e.lane(rate); l != nil {
		return l.next
	}
	return -1
}

// LaneErr returns the failure recorded for rate, if any.
func (e *Engine) LaneErr(rate int) error {
	if l := e.lane(rate); l != nil {
		return l.err
	}
	return nil
}

// Err joins every lane failure.
func (e *Engine) Err() error {
	var errs []error
	for _, l := range e.lanes {
		if l.err != nil {
			errs = append(errs, l.err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) lane(rate int) *lane {
	for _, l := range e.lanes {
		if l.rate == rate {
			return l
		}
	}
	return nil
}

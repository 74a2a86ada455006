package engine

import (
	"fmt"

	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/metric"
)

// LaneError reports the failure of a single rate lane.
type LaneError struct {
	Rate int
	Err  error
}

func (e *LaneError) Error() string {
	return fmt.Sprintf("rate %d: %v", e.Rate, e.Err)
}

func (e *LaneError) Unwrap() error { return e.Err }

// Is marks every lane failure as faults.ErrLane.
func (e *LaneError) Is(target error) bool { return target == faults.ErrLane }

// lane is the state machine for one sample rate: the next left position and
// an owned copy of the vector at that position once it has left the batch.
type lane struct {
	rate int
	next int

	cache      features.Vector
	cachePos   int
	cacheFrame int
	hasCache   bool

	seq Sequence
	err error
}

func (l *lane) advance(batch features.Batch, m metric.Metric) {
	begin, end := batch.Begin, batch.End()
	for l.next+l.rate < end {
		var left features.Vector
		var leftFrame int
		if l.next >= begin {
			rec := batch.Records[l.next-begin]
			left, leftFrame = rec.Vector, rec.Index
		} else {
			if !l.hasCache || l.cachePos != l.next {
				l.fail(faults.Wrap(faults.ErrOrdering, "engine", "lane",
					fmt.Sprintf("no carried-over vector for position %d", l.next), nil))
				return
			}
			left, leftFrame = l.cache, l.cacheFrame
		}
		right := batch.Records[l.next+l.rate-begin]
		distance, err := m.Calculate(left, right.Vector)
		if err != nil {
			l.fail(err)
			return
		}
		l.seq = append(l.seq, Point{Frame: leftFrame, Distance: distance})
		l.next += l.rate
	}

	// The next left frame is about to leave with this batch.
	if l.next >= begin && l.next < end {
		rec := batch.Records[l.next-begin]
		l.cache = rec.Vector.Clone()
		l.cachePos = l.next
		l.cacheFrame = rec.Index
		l.hasCache = true
	}
}

func (l *lane) fail(err error) {
	l.err = &LaneError{Rate: l.rate, Err: err}
}

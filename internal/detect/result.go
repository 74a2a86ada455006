package detect

import (
	"errors"
	"time"

	"shotscan/internal/engine"
	"shotscan/internal/merge"
)

// StreamResult is the outcome for one feature stream.
type StreamResult struct {
	Stream     string                  `json:"stream"`
	Frames     int                     `json:"frames"`
	Dimension  int                     `json:"dimension"`
	Sequences  map[int]engine.Sequence `json:"-"`
	Candidates map[int][]int           `json:"candidates"`
	Merged     merge.Result            `json:"merged"`
	LaneErrors map[int]string          `json:"lane_errors,omitempty"`
	Error      string                  `json:"error,omitempty"`

	err error
}

// Err returns the stream-level failure, if any.
func (r StreamResult) Err() error { return r.err }

// Boundaries returns the merged frame indices.
func (r StreamResult) Boundaries() []int { return r.Merged.Frames() }

// VideoResult collects every stream of one video.
type VideoResult struct {
	RunID    string         `json:"run_id"`
	Video    string         `json:"video"`
	Metric   string         `json:"metric"`
	Rates    []int          `json:"rates"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Streams  []StreamResult `json:"streams"`
	Error    string         `json:"error,omitempty"`

	err error
}

// Err joins the video-level failure with every stream failure.
func (r VideoResult) Err() error {
	errs := []error{r.err}
	for _, s := range r.Streams {
		errs = append(errs, s.err)
	}
	return errors.Join(errs...)
}

// Duration reports how long the video took.
func (r VideoResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

package detect

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shotscan/internal/candidate"
	"shotscan/internal/engine"
	"shotscan/internal/faults"
	"shotscan/internal/features"
	"shotscan/internal/logging"
	"shotscan/internal/merge"
	"shotscan/internal/metric"
)

// Detector runs the pipeline with a fixed set of options.
type Detector struct {
	opts   Options
	metric metric.Metric
	logger *slog.Logger
	runID  string
}

// New validates opts and resolves the metric. Each Detector gets its own run id.
func New(opts Options, logger *slog.Logger) (*Detector, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	m, err := metric.Lookup(opts.Metric)
	if err != nil {
		return nil, err
	}
	opts.Rates = slices.Clone(opts.Rates)
	slices.Sort(opts.Rates)
	opts.Rates = slices.Compact(opts.Rates)
	return &Detector{
		opts:   opts,
		metric: m,
		logger: logging.NewComponentLogger(logger, "detect"),
		runID:  uuid.NewString(),
	}, nil
}

// RunID identifies every log line and report produced by this detector.
func (d *Detector) RunID() string { return d.runID }

// Rates returns the normalized sample rates.
func (d *Detector) Rates() []int { return slices.Clone(d.opts.Rates) }

// Distances runs only the engine stage over src and returns the engine so the
// caller can read every lane. Lane failures are returned joined.
func (d *Detector) Distances(ctx context.Context, stream string, src features.Source) (*engine.Engine, error) {
	eng, err := engine.New(stream, d.opts.Rates, d.metric, engine.WithParallelLanes(d.opts.ParallelLanes))
	if err != nil {
		return nil, err
	}
	return eng, eng.Run(ctx, src)
}

// Stream runs the pipeline over one feature stream.
func (d *Detector) Stream(ctx context.Context, stream string, src features.Source) StreamResult {
	logger := logging.WithContext(logging.WithStream(ctx, stream), d.logger)
	res := StreamResult{Stream: stream, Candidates: map[int][]int{}}

	eng, err := d.Distances(ctx, stream, src)
	if eng != nil {
		res.Frames = eng.Positions()
		res.Dimension = eng.Dimension()
		res.Sequences = eng.Sequences()
	}
	if faults.Fatal(err) {
		res.err = err
		res.Error = err.Error()
		logging.ErrorWithContext(logger, "stream failed", "stream_failed",
			logging.Error(err),
			slog.String("error_kind", faults.Kind(err)),
			slog.String(logging.FieldErrorHint, "check the stored features for this stream"))
		return res
	}

	byRate := make(map[int][]int, len(d.opts.Rates))
	for _, rate := range d.opts.Rates {
		if lerr := eng.LaneErr(rate); lerr != nil {
			if res.LaneErrors == nil {
				res.LaneErrors = map[int]string{}
			}
			res.LaneErrors[rate] = lerr.Error()
			logging.WarnWithContext(logger, "rate lane failed", "lane_failed",
				slog.Int(logging.FieldRate, rate),
				logging.Error(lerr),
				slog.String(logging.FieldImpact, "rate excluded from the merged boundaries"))
			continue
		}
		cands, ferr := candidate.Filter(eng.Sequence(rate), d.opts.Policy)
		if ferr != nil {
			res.err = ferr
			res.Error = ferr.Error()
			return res
		}
		res.Candidates[rate] = cands
		byRate[rate] = cands
		logger.Debug("rate filtered",
			slog.Int(logging.FieldRate, rate),
			slog.Int("points", len(eng.Sequence(rate))),
			slog.Int("candidates", len(cands)))
	}

	merged, merr := merge.MergeByRate(byRate, d.opts.MinSpacing)
	if merr != nil {
		res.err = merr
		res.Error = merr.Error()
		return res
	}
	res.Merged = merged
	logger.Info("stream boundaries selected",
		slog.Int("frames", res.Frames),
		slog.Int("boundaries", len(merged.Entries)),
		slog.Int("rejected", merged.Rejected))
	return res
}

// Video runs every requested stream of video. An empty streams list selects
// all streams stored for the video.
func (d *Detector) Video(ctx context.Context, cat Catalog, video string, streams []string) VideoResult {
	ctx = logging.WithVideo(logging.WithRunID(ctx, d.runID), video)
	logger := logging.WithContext(ctx, d.logger)
	res := VideoResult{
		RunID:   d.runID,
		Video:   video,
		Metric:  d.metric.Name(),
		Rates:   d.Rates(),
		Started: time.Now().UTC(),
	}

	if len(streams) == 0 {
		names, err := cat.StreamNames(ctx, video)
		if err != nil {
			res.fail(err)
			return res
		}
		streams = names
	}
	if len(streams) == 0 {
		res.fail(faults.Wrap(faults.ErrSource, "detect", "video", fmt.Sprintf("no feature streams stored for %s", video), nil))
		return res
	}

	res.Streams = make([]StreamResult, len(streams))
	var g errgroup.Group
	g.SetLimit(max(d.opts.ParallelStreams, 1))
	for i, stream := range streams {
		g.Go(func() error {
			res.Streams[i] = d.Stream(ctx, stream, cat.Open(video, stream, d.opts.BatchSize))
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("video processed", slog.Int("streams", len(streams)))
	res.Finished = time.Now().UTC()
	return res
}

// Videos processes each video in turn. A failing video is logged and the run
// continues with the next one.
func (d *Detector) Videos(ctx context.Context, cat Catalog, videos []string, streams []string) []VideoResult {
	out := make([]VideoResult, 0, len(videos))
	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			break
		}
		res := d.Video(ctx, cat, video, streams)
		if err := res.Err(); err != nil {
			logging.WarnWithContext(d.logger, "video failed", "video_failed",
				slog.String(logging.FieldVideo, video),
				slog.String(logging.FieldRunID, d.runID),
				logging.Error(err),
				slog.String(logging.FieldImpact, "video skipped, continuing with the list"))
		}
		out = append(out, res)
	}
	return out
}

func (r *VideoResult) fail(err error) {
	r.err = err
	r.Error = err.Error()
	r.Finished = time.Now().UTC()
}

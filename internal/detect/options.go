package detect

import (
	"fmt"
	"slices"

	"shotscan/internal/candidate"
	"shotscan/internal/config"
	"shotscan/internal/faults"
)

// Options configures a Detector.
type Options struct {
	Rates           []int
	Metric          string
	Policy          candidate.Policy
	MinSpacing      int
	BatchSize       int
	ParallelLanes   int
	ParallelStreams int
}

// OptionsFromConfig maps the detection and engine sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Rates:           slices.Clone(cfg.Detection.SampleRates),
		Metric:          cfg.Detection.Metric,
		Policy:          cfg.Policy(),
		MinSpacing:      cfg.Detection.MinMergeSpacing,
		BatchSize:       cfg.Engine.BatchSize,
		ParallelLanes:   cfg.Engine.ParallelLanes,
		ParallelStreams: cfg.Engine.ParallelStreams,
	}
}

func (o Options) validate() error {
	if len(o.Rates) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "detect", "options", "at least one sample rate is required", nil)
	}
	if err := o.Policy.Validate(); err != nil {
		return err
	}
	if o.MinSpacing <= 0 {
		return faults.Wrap(faults.ErrConfiguration, "detect", "options",
			fmt.Sprintf("minimum merge spacing %d must be positive", o.MinSpacing), nil)
	}
	return nil
}

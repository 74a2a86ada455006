package config

import (
	"errors"
	"fmt"

	"shotscan/internal/faults"
	"shotscan/internal/metric"
)

// Validate ensures the configuration is usable. Every failure is tagged as a
// configuration error.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateDetection,
		c.validateEngine,
		c.validateStore,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", faults.ErrConfiguration, err)
		}
	}
	return nil
}

func (c *Config) validateDetection() error {
	if len(c.Detection.SampleRates) == 0 {
		return errors.New("detection.sample_rates must list at least one rate")
	}
	for _, rate := range c.Detection.SampleRates {
		if rate <= 0 {
			return fmt.Errorf("detection.sample_rates: rate %d must be positive", rate)
		}
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if c.Detection.MinMergeSpacing <= 0 {
		return errors.New("detection.min_merge_spacing must be positive")
	}
	if _, err := metric.Lookup(c.Detection.Metric); err != nil {
		return fmt.Errorf("detection.metric: %w", err)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.BatchSize <= 0 {
		return errors.New("engine.batch_size must be positive")
	}
	if c.Engine.ParallelLanes < 0 {
		return errors.New("engine.parallel_lanes must be zero or positive")
	}
	if c.Engine.ParallelStreams < 0 {
		return errors.New("engine.parallel_streams must be zero or positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Compression {
	case "zstd", "none":
		return nil
	default:
		return fmt.Errorf("store.compression: unsupported value %q (use zstd or none)", c.Store.Compression)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

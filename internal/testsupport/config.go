package testsupport

import (
	"path/filepath"
	"testing"

	"shotscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Store.Path = filepath.Join(base, "data", "features.db")
	cfgVal.Engine.BatchSize = 8

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithRates overrides the detection sample rates.
func WithRates(rates ...int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Detection.SampleRates = rates
	}
}

// WithMetric overrides the distance metric tag.
func WithMetric(tag string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Detection.Metric = tag
	}
}

// WithCompression overrides the feature store blob compression.
func WithCompression(compression string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Compression = compression
	}
}

// WithConfig applies an arbitrary mutation.
func WithConfig(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

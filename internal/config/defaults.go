package config

import (
	"shotscan/internal/candidate"
	"shotscan/internal/metric"
)

const (
	defaultConfigPath      = "~/.config/shotscan/config.toml"
	defaultDataDir         = "~/.local/share/shotscan"
	defaultLogDir          = "~/.local/share/shotscan/logs"
	defaultOutputDir       = "~/shotscan"
	defaultStoreFile       = "features.db"
	defaultCompression     = "zstd"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultMinMergeSpacing = 5
	defaultBatchSize       = 64
	defaultParallelStreams = 2
)

var defaultSampleRates = []int{1, 2, 4}

// Default returns a Config populated with repository defaults.
func Default() Config {
	policy := candidate.DefaultPolicy()
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
		},
		Detection: Detection{
			SampleRates:     append([]int(nil), defaultSampleRates...),
			WindowHalfWidth: policy.HalfWidth,
			Sensitivity:     policy.Sensitivity,
			SpikeRatio:      policy.SpikeRatio,
			SpikeFloor:      policy.SpikeFloor,
			MinMergeSpacing: defaultMinMergeSpacing,
			Metric:          metric.Default,
		},
		Engine: Engine{
			BatchSize:       defaultBatchSize,
			ParallelStreams: defaultParallelStreams,
		},
		Store: Store{
			Compression: defaultCompression,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetection()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetection() {
	if value, ok := os.LookupEnv("SHOTSCAN_METRIC"); ok && strings.TrimSpace(value) != "" {
		c.Detection.Metric = value
	}
	c.Detection.Metric = strings.ToLower(strings.TrimSpace(c.Detection.Metric))
	if c.Detection.Metric == "" {
		c.Detection.Metric = Default().Detection.Metric
	}
	if len(c.Detection.SampleRates) == 0 {
		c.Detection.SampleRates = append([]int(nil), defaultSampleRates...)
	}
	rates := slices.Clone(c.Detection.SampleRates)
	slices.Sort(rates)
	c.Detection.SampleRates = slices.Compact(rates)
}

func (c *Config) normalizeStore() error {
	var err error
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.DataDir, defaultStoreFile)
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	c.Store.Compression = strings.ToLower(strings.TrimSpace(c.Store.Compression))
	if c.Store.Compression == "" {
		c.Store.Compression = defaultCompression
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("SHOTSCAN_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Package config loads, normalizes, and validates shotscan configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SHOTSCAN_METRIC. The Config type centralizes the detection parameters, the
// feature store location, and logging settings so the CLI can resolve them in
// one pass.
//
// Sample rates are always normalized into ascending order: the merge stage
// gives priority to lower rates, so the order is part of the result.
package config

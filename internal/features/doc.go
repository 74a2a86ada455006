// Package features holds the frame feature types consumed by the detection
// core and the sources that deliver them in batches.
//
// A Source hands out contiguous, non-overlapping Batches in stream order and
// returns io.EOF once the stream is exhausted. Implementations exist for
// in-memory slices (tests and small tools) and for the text dumps produced by
// the feature-extraction tooling; the SQLite-backed source lives in
// featurestore.
package features

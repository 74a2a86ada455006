// Package logging assembles the structured slog loggers used by shotscan.
//
// It owns the console and JSON handlers, level parsing, and output routing,
// and exposes context helpers so detection code can tag log lines with the
// video, stream, and run identifiers without threading them through every
// call. NewNop is provided for tests and for wiring that cannot fail.
package logging

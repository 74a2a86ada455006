// Package report writes detection results to disk: per-rate distance dumps,
// merged boundary lists, and a JSON run summary.
package report

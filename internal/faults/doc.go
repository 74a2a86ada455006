// Package faults defines the error markers shared by the detection pipeline.
//
// Every failure that crosses a package boundary is tagged with one of the
// sentinel markers so callers can decide how far it propagates: configuration
// errors abort the affected stream before any output is produced, ordering
// errors abort the stream when a batch is out of sequence, and source/store
// errors report problems at the external boundaries. A failure inside a single
// rate lane is additionally tagged with ErrLane and only stops that lane. Degenerate numeric input is never an error; the filter recovers
// from it locally.
package faults

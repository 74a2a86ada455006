// Package engine computes multi-rate distance sequences over a feature stream
// delivered in bounded batches.
//
// For every configured sample rate r the engine keeps one lane: a cursor over
// stream positions and a single carried-over feature vector. Each batch is
// scanned once per lane, comparing the record at the cursor with the record r
// positions later, so memory stays at one batch plus one vector per lane no
// matter how large r grows relative to the batch size. The cached vector is
// always a copy; the batch buffer may be reused by the caller as soon as
// Process returns.
//
// Lanes share nothing but the read-only batch and may run concurrently. A
// lane failure stops that lane only; batch ordering and dimension violations
// stop the whole stream.
package engine

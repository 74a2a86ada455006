// Package merge reconciles per-rate candidate lists into one list.
//
// Lists are merged in ascending sample-rate order. The lowest rate is accepted
// verbatim; every later candidate is admitted only into a gap that leaves at
// least the minimum spacing on both sides, so lower rates always win
// conflicts.
package merge

// Package candidate turns a distance sequence into candidate boundary frames
// using adaptive local and global statistics.
//
// Each point with at least HalfWidth-1 neighbours on both sides is compared
// against a threshold derived from the centred window of 2*HalfWidth-1 points
// and the mean of the whole sequence. Short or degenerate input yields no
// candidates rather than an error.
package candidate

// Package metric implements the distance functions used to compare frame
// feature vectors.
//
// The set of metrics is closed: each variant is registered under a tag in
// this package and selected through Lookup at configuration time. An unknown
// tag is a configuration error and callers abort the run rather than fall
// back to a default.
package metric

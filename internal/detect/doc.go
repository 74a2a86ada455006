// Package detect runs the full boundary detection pipeline for stored videos.
//
// For each feature stream of a video it drives one distance engine over all
// configured sample rates, filters every rate's distance sequence into
// candidate frames, and merges the per-rate lists into the final boundary
// list. Streams run concurrently; a failing stream or lane is reported in the
// result without stopping its siblings.
package detect

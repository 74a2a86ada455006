// Package featurestore persists per-frame feature vectors in SQLite.
//
// Records are keyed by (video, stream, frame). Vectors are stored as little
// endian float32 blobs, optionally zstd compressed. Writers take an advisory
// file lock next to the database so two imports cannot interleave; readers
// do not lock. Source exposes a stored stream as a features.Source that pages
// through the table in frame order.
package featurestore

package testsupport

import (
	"math/rand/v2"

	"shotscan/internal/features"
)

// Shots builds a stream made of flat shots. Each entry in lengths is the
// number of frames in one shot; every shot gets its own one-hot direction
// in a dim-wide vector so the cosine distance between shots is 1 and within a
// shot is 0. Frames are indexed from zero.
func Shots(dim int, lengths ...int) []features.Record {
	var out []features.Record
	frame := 0
	for shot, n := range lengths {
		for range n {
			v := make(features.Vector, dim)
			v[shot%dim] = 1
			out = append(out, features.Record{Index: frame, Vector: v})
			frame++
		}
	}
	return out
}

// Random builds n records of dimension dim with values in [0, 1), seeded so
// the result is reproducible.
func Random(seed uint64, n, dim int) []features.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]features.Record, n)
	for i := range out {
		v := make(features.Vector, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		out[i] = features.Record{Index: i, Vector: v}
	}
	return out
}

// Constant builds n identical records.
func Constant(n int, value ...float32) []features.Record {
	out := make([]features.Record, n)
	for i := range out {
		out[i] = features.Record{Index: i, Vector: append(features.Vector(nil), value...)}
	}
	return out
}

package candidate

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"shotscan/internal/engine"
)

// Filter returns the frames of seq whose distance stands out from the local
// window. The result is strictly increasing and a subsequence of seq's frames.
func Filter(seq engine.Sequence, p Policy) ([]int, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := p.HalfWidth
	n := len(seq)
	if n < p.Span() {
		return []int{}, nil
	}

	values := seq.Values()
	globalMean := stat.Mean(values, nil)
	var legacy prefixWindow
	if p.Legacy {
		legacy = prefixWindow{halfWidth: w, prefix: values[:w-1], sum: floats.Sum(values[:w-1])}
	}

	out := []int{}
	for c := w - 1; c+w-1 < n; c++ {
		var localMean, deviation float64
		if p.Legacy {
			localMean, deviation = legacy.grow(values, c+w-1)
		} else {
			var variance float64
			localMean, variance = stat.MeanVariance(values[c-w+1:c+w], nil)
			deviation = math.Sqrt(max(variance, 0))
		}
		if p.evaluate(values, c, localMean, deviation, globalMean) {
			out = append(out, seq[c].Frame)
		}
	}
	return out, nil
}

// evaluate applies the threshold and the spike override to the point at c.
// A non-positive mean makes the logarithm undefined, so the window yields
// no candidate.
func (p Policy) evaluate(values []float64, c int, localMean, deviation, globalMean float64) bool {
	if !(localMean > 0) || !(globalMean > 0) {
		return false
	}
	threshold := localMean + p.Sensitivity*deviation*(1+math.Log(globalMean/localMean))
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return false
	}
	d := values[c]
	if d > threshold {
		return true
	}
	spike := d > p.SpikeRatio*values[c-1] || d > p.SpikeRatio*values[c+1]
	return spike && d > p.SpikeFloor*globalMean
}

// prefixWindow reproduces the first release's statistics: the mean grows
// from the start of the sequence and the deviation comes from the trailing
// element only.
type prefixWindow struct {
	halfWidth int
	prefix    []float64
	sum       float64
}

// grow extends the prefix to the trailing edge and returns the prefix mean
// and the trailing-element deviation.
func (w *prefixWindow) grow(values []float64, trailing int) (float64, float64) {
	for len(w.prefix) <= trailing {
		w.sum += values[len(w.prefix)]
		w.prefix = values[:len(w.prefix)+1]
	}
	mean := w.sum / float64(len(w.prefix))
	d := values[trailing] - mean
	return mean, math.Sqrt(d * d / float64(2*w.halfWidth-2))
}

package metric

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"shotscan/internal/faults"
	"shotscan/internal/features"
)

// Registered metric tags.
const (
	Cosine           = "cosine"
	CosineSimilarity = "cosine_similarity"
	Euclidean        = "euclidean"
)

// Default is the tag used when configuration leaves the metric unset.
const Default = Cosine

// Metric computes a scalar dissimilarity between two equal-length vectors.
type Metric interface {
	Name() string
	Calculate(a, b features.Vector) (float64, error)
}

var registry = map[string]Metric{
	Cosine:           cosineDistance{},
	CosineSimilarity: cosineSimilarity{},
	Euclidean:        euclideanDistance{},
}

// Lookup resolves a metric tag. Tags are case-insensitive, so the legacy
// "Cosine" spelling resolves to the cosine distance.
func Lookup(tag string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(tag))
	if key == "" {
		key = Default
	}
	m, ok := registry[key]
	if !ok {
		return nil, faults.Wrap(faults.ErrConfiguration, "metric", "lookup",
			fmt.Sprintf("unknown metric %q (known: %s)", tag, strings.Join(Tags(), ", ")), nil)
	}
	return m, nil
}

// Tags lists the registered metric tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

type cosineDistance struct{}

func (cosineDistance) Name() string { return Cosine }

// Calculate returns 1 - cos(a, b). Zero-norm input is treated as maximally
// dissimilar.
func (cosineDistance) Calculate(a, b features.Vector) (float64, error) {
	sim, ok, err := cosine(a, b)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	return 1 - sim, nil
}

type cosineSimilarity struct{}

func (cosineSimilarity) Name() string { return CosineSimilarity }

// Calculate returns the raw cosine similarity; larger means more alike.
func (cosineSimilarity) Calculate(a, b features.Vector) (float64, error) {
	sim, ok, err := cosine(a, b)
	if err != nil || !ok {
		return 0, err
	}
	return sim, nil
}

type euclideanDistance struct{}

func (euclideanDistance) Name() string { return Euclidean }

func (euclideanDistance) Calculate(a, b features.Vector) (float64, error) {
	x, y, err := widen(a, b)
	if err != nil {
		return 0, err
	}
	return floats.Distance(x, y, 2), nil
}

// cosine reports false when either vector has zero norm.
func cosine(a, b features.Vector) (float64, bool, error) {
	x, y, err := widen(a, b)
	if err != nil {
		return 0, false, err
	}
	normA := floats.Norm(x, 2)
	normB := floats.Norm(y, 2)
	if normA == 0 || normB == 0 {
		return 0, false, nil
	}
	sim := floats.Dot(x, y) / (normA * normB)
	// Rounding can push identical vectors just past 1.
	return math.Max(-1, math.Min(1, sim)), true, nil
}

func widen(a, b features.Vector) ([]float64, []float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, nil, faults.Wrap(faults.ErrConfiguration, "metric", "calculate",
			fmt.Sprintf("vector lengths %d and %d must match and be non-zero", len(a), len(b)), nil)
	}
	x := make([]float64, len(a))
	y := make([]float64, len(b))
	for i := range a {
		x[i] = float64(a[i])
		y[i] = float64(b[i])
	}
	return x, y, nil
}

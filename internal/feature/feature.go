package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Range is the distribution range declared by a feature. A Max of +Inf means that the upper bound is estimated
// from the computed values as mean + 3 standard deviations.
type Range struct {
	Min float64
	Max float64
}

// number of standard deviations above the mean used as upper bound of open ranges
const deviationFactor = 3.0

// Definition is a named computation producing one scalar per point of a cloud
type Definition interface {
	Name() string
	Range() Range
	Compute(workers int) ([]float64, error)
}

// Feature holds the raw and normalized values of a computed Definition. Normalized values always lie in [0, 1].
type Feature struct {
	name       string
	declared   Range
	values     []float64
	normalized []float64
	lower      float64
	upper      float64
}

func newFeature(name string, declared Range) *Feature {
	return &Feature{
		name:     name,
		declared: declared,
	}
}

func (f *Feature) Name() string {
	return f.name
}

func (f *Feature) Range() Range {
	return f.declared
}

// Returns the raw value of the i-th point
func (f *Feature) Value(i int) float64 {
	return f.values[i]
}

// Returns the normalized value of the i-th point
func (f *Feature) Normalized(i int) float64 {
	return f.normalized[i]
}

func (f *Feature) Values() []float64 {
	return f.values
}

func (f *Feature) NormalizedValues() []float64 {
	return f.normalized
}

// Returns the bounds mapped to 0 and 1 by the normalization
func (f *Feature) NormalizationBounds() (float64, float64) {
	return f.lower, f.upper
}

// stores the raw values and computes their normalization
func (f *Feature) setValues(values []float64) {
	f.values = values
	f.normalized, f.lower, f.upper = normalize(values, f.declared)
}

// Maps values to [0, 1] with (v - min) / (max - min), clamped. min is the declared minimum, max the declared
// maximum when finite or mean + 3 standard deviations of the values otherwise. Non finite values are replaced
// by the declared minimum before normalizing. A collapsed range maps every value to 0.5.
func normalize(values []float64, declared Range) ([]float64, float64, float64) {
	lower := declared.Min
	if math.IsNaN(lower) || math.IsInf(lower, 0) {
		lower = 0
	}

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = lower
		}
	}

	upper := declared.Max
	if math.IsNaN(upper) || math.IsInf(upper, 0) {
		upper = lower
		if len(values) > 0 {
			mean, std := stat.PopMeanStdDev(values, nil)
			upper = mean + deviationFactor*std
		}
	}

	normalized := make([]float64, len(values))
	if !(upper > lower) {
		for i := range normalized {
			normalized[i] = 0.5
		}
		return normalized, lower, upper
	}

	span := upper - lower
	for i, v := range values {
		normalized[i] = math.Max(0, math.Min(1, (v-lower)/span))
	}

	return normalized, lower, upper
}

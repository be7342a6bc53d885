package feature

import (
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/eigen"
)

const VerticalityName = "verticality"

// Verticality is 1 - |nz| where n is the local normal: 0 on horizontal surfaces, 1 on walls
type Verticality struct {
	analysis *eigen.LocalEigenAnalysis
}

func NewVerticality(analysis *eigen.LocalEigenAnalysis) *Verticality {
	return &Verticality{analysis: analysis}
}

func (v *Verticality) Name() string {
	return VerticalityName
}

func (v *Verticality) Range() Range {
	return Range{Min: 0, Max: 1}
}

func (v *Verticality) Compute(workers int) ([]float64, error) {
	values := make([]float64, v.analysis.Len())
	for i := range values {
		values[i] = 1 - math.Abs(v.analysis.Normal(i)[2])
	}
	return values, nil
}

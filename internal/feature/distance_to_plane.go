package feature

import (
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/eigen"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

const DistanceToPlaneName = "distance_to_plane"

// a neighborhood whose smallest eigenvalue is below this fraction of the largest one is numerically planar
const planarityTolerance = 1e-9

// DistanceToPlane is the distance of a point to the plane fitted on its neighborhood: the plane through the
// neighborhood centroid, orthogonal to the local normal.
type DistanceToPlane struct {
	points   []data.Point
	analysis *eigen.LocalEigenAnalysis
}

func NewDistanceToPlane(points []data.Point, analysis *eigen.LocalEigenAnalysis) *DistanceToPlane {
	return &DistanceToPlane{
		points:   points,
		analysis: analysis,
	}
}

func (d *DistanceToPlane) Name() string {
	return DistanceToPlaneName
}

func (d *DistanceToPlane) Range() Range {
	return Range{Min: 0, Max: math.Inf(1)}
}

func (d *DistanceToPlane) Compute(workers int) ([]float64, error) {
	values := make([]float64, len(d.points))
	err := worker.Run(len(d.points), workers, func(unit *worker.WorkUnit) error {
		for i := unit.Begin; i < unit.End; i++ {
			values[i] = d.distance(i)
		}
		return nil
	})
	return values, err
}

func (d *DistanceToPlane) distance(i int) float64 {
	a := d.analysis.At(i)
	if a.Values[0] <= planarityTolerance*a.Values[2] {
		return 0
	}

	p := d.points[i]
	n := a.Vectors[0]
	c := a.Centroid
	return math.Abs((p.X-c[0])*n[0] + (p.Y-c[1])*n[1] + (p.Z-c[2])*n[2])
}

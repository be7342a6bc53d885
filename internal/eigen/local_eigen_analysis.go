package eigen

import (
	"sync/atomic"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/spatial"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
)

// Analysis is the principal axis decomposition of the neighborhood of a point. Values are sorted in ascending
// order and are never negative, Vectors[k] is the unit eigenvector of Values[k]; Vectors[0] approximates the
// normal of the local surface.
type Analysis struct {
	Values   [3]float64
	Vectors  [3][3]float64
	Centroid [3]float64
}

// canonical frame used for neighborhoods whose covariance carries no direction
var canonicalVectors = [3][3]float64{
	{0, 0, 1},
	{1, 0, 0},
	{0, 1, 0},
}

// LocalEigenAnalysis holds the Analysis of every point of a cloud. It is immutable once created.
type LocalEigenAnalysis struct {
	analyses   []Analysis
	degenerate int64
}

// Computes the local eigen analysis of every point over the neighbors yielded by the query. The point itself
// is always part of its neighborhood. Points are processed in parallel by the given number of workers.
func Create(points []data.Point, query spatial.NeighborQuery, workers int) (*LocalEigenAnalysis, error) {
	analysis := &LocalEigenAnalysis{
		analyses: make([]Analysis, len(points)),
	}

	var degenerate atomic.Int64
	err := worker.Run(len(points), workers, func(unit *worker.WorkUnit) error {
		solver := newSolver()
		for i := unit.Begin; i < unit.End; i++ {
			a, ok := solver.analyze(points, i, query.Neighbors(i))
			if !ok {
				degenerate.Add(1)
			}
			analysis.analyses[i] = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	analysis.degenerate = degenerate.Load()
	if analysis.degenerate > 0 {
		glog.Warningf("%d of %d points have a degenerate neighborhood, canonical frame used", analysis.degenerate, len(points))
	}

	return analysis, nil
}

func (a *LocalEigenAnalysis) Len() int {
	return len(a.analyses)
}

func (a *LocalEigenAnalysis) At(i int) *Analysis {
	return &a.analyses[i]
}

// Returns the unit normal of the i-th point, the eigenvector of the smallest eigenvalue
func (a *LocalEigenAnalysis) Normal(i int) [3]float64 {
	return a.analyses[i].Vectors[0]
}

func (a *LocalEigenAnalysis) Values(i int) [3]float64 {
	return a.analyses[i].Values
}

func (a *LocalEigenAnalysis) Centroid(i int) [3]float64 {
	return a.analyses[i].Centroid
}

// Returns the number of points whose neighborhood fell back to the canonical frame
func (a *LocalEigenAnalysis) DegenerateCount() int64 {
	return a.degenerate
}

// solver keeps the matrices reused across the points processed by one worker
type solver struct {
	covariance *mat.SymDense
	eig        mat.EigenSym
	vectors    *mat.Dense
	values     []float64
}

func newSolver() *solver {
	return &solver{
		covariance: mat.NewSymDense(3, nil),
		vectors:    mat.NewDense(3, 3, nil),
		values:     make([]float64, 3),
	}
}

// computes the analysis of the i-th point, returns false when the canonical frame had to be used
func (s *solver) analyze(points []data.Point, i int, neighbors []int) (Analysis, bool) {
	if len(neighbors) == 0 {
		neighbors = []int{i}
	}

	var centroid [3]float64
	for _, j := range neighbors {
		centroid[0] += points[j].X
		centroid[1] += points[j].Y
		centroid[2] += points[j].Z
	}
	n := float64(len(neighbors))
	for d := range centroid {
		centroid[d] /= n
	}

	var cov [3][3]float64
	for _, j := range neighbors {
		offset := [3]float64{points[j].X - centroid[0], points[j].Y - centroid[1], points[j].Z - centroid[2]}
		for r := 0; r < 3; r++ {
			for c := r; c < 3; c++ {
				cov[r][c] += offset[r] * offset[c]
			}
		}
	}

	result := Analysis{Centroid: centroid, Vectors: canonicalVectors}
	if len(neighbors) < 2 || cov[0][0]+cov[1][1]+cov[2][2] == 0 {
		return result, false
	}

	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			s.covariance.SetSym(r, c, cov[r][c]/n)
		}
	}
	if ok := s.eig.Factorize(s.covariance, true); !ok {
		return result, false
	}

	s.eig.Values(s.values)
	s.eig.VectorsTo(s.vectors)
	for k := 0; k < 3; k++ {
		// round-off can produce tiny negative values on flat or linear neighborhoods
		if s.values[k] > 0 {
			result.Values[k] = s.values[k]
		}
		for d := 0; d < 3; d++ {
			result.Vectors[k][d] = s.vectors.At(d, k)
		}
	}

	return result, true
}

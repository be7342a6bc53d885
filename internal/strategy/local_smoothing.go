package strategy

import (
	"github.com/ecopia-map/cloud_classifier/internal/spatial"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

// LocalSmoothing assigns every point the label with the highest sum of scores over its neighborhood, the point
// itself included. A point without neighbors keeps its own best label.
type LocalSmoothing struct {
	Query   spatial.NeighborQuery
	Workers int
}

func NewLocalSmoothing(query spatial.NeighborQuery, workers int) *LocalSmoothing {
	return &LocalSmoothing{
		Query:   query,
		Workers: workers,
	}
}

func (s *LocalSmoothing) Name() string {
	return "local_smoothing"
}

func (s *LocalSmoothing) Classify(scorer Scorer) ([]int, error) {
	matrix, err := computeScores(scorer, s.Workers)
	if err != nil {
		return nil, err
	}

	labels := NewLabelIndexArray(scorer.NumberOfPoints())
	err = worker.Run(len(labels), s.Workers, func(unit *worker.WorkUnit) error {
		sum := make([]float64, matrix.numberOfLabels)
		for i := unit.Begin; i < unit.End; i++ {
			copy(sum, matrix.row(i))
			for _, j := range s.Query.Neighbors(i) {
				if j == i {
					continue
				}
				for l, score := range matrix.row(j) {
					sum[l] += score
				}
			}
			labels[i] = argMax(sum)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return labels, nil
}

package strategy

import (
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

// Raw assigns every point its best scoring label, independently of its neighbors
type Raw struct {
	Workers int
}

func NewRaw(workers int) *Raw {
	return &Raw{Workers: workers}
}

func (r *Raw) Name() string {
	return "raw"
}

func (r *Raw) Classify(scorer Scorer) ([]int, error) {
	labels := NewLabelIndexArray(scorer.NumberOfPoints())

	err := worker.Run(len(labels), r.Workers, func(unit *worker.WorkUnit) error {
		scores := make([]float64, scorer.NumberOfLabels())
		for i := unit.Begin; i < unit.End; i++ {
			labels[i] = argMax(scorer.Scores(i, scores))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return labels, nil
}

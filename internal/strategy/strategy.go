package strategy

import (
	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

// Scorer gives the score of every label on every point. Implementations must be safe for concurrent reads.
type Scorer interface {
	NumberOfLabels() int
	NumberOfPoints() int
	Scores(i int, dst []float64) []float64
}

// Strategy turns the scores of a Scorer in one label index per point
type Strategy interface {
	Name() string
	Classify(scorer Scorer) ([]int, error)
}

// Returns an array of n unassigned label indices
func NewLabelIndexArray(n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = label.Unassigned
	}
	return labels
}

// scoreMatrix is the dense row major table of the scores of every label on every point
type scoreMatrix struct {
	numberOfLabels int
	values         []float64
}

func computeScores(scorer Scorer, workers int) (*scoreMatrix, error) {
	n, l := scorer.NumberOfPoints(), scorer.NumberOfLabels()
	matrix := &scoreMatrix{
		numberOfLabels: l,
		values:         make([]float64, n*l),
	}

	err := worker.Run(n, workers, func(unit *worker.WorkUnit) error {
		for i := unit.Begin; i < unit.End; i++ {
			scorer.Scores(i, matrix.row(i))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matrix, nil
}

func (m *scoreMatrix) row(i int) []float64 {
	return m.values[i*m.numberOfLabels : (i+1)*m.numberOfLabels]
}

// Returns the index of the highest value, the first one winning ties
func argMax(scores []float64) int {
	best := label.Unassigned
	for l, score := range scores {
		if best == label.Unassigned || score > scores[best] {
			best = l
		}
	}
	return best
}

package strategy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomProblem(rng *rand.Rand, n, labels int, penalty float64) *pottsProblem {
	problem := &pottsProblem{
		numberOfNodes:  n,
		numberOfLabels: labels,
		unary:          make([]float64, n*labels),
		penalty:        penalty,
	}
	for i := range problem.unary {
		problem.unary[i] = rng.Float64()*2 - 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < 0.5 {
				problem.edges = append(problem.edges, [2]int{i, j})
			}
		}
	}
	return problem
}

// enumerates every labeling of the problem and returns the lowest energy
func bruteForceMinimum(problem *pottsProblem) float64 {
	labels := make([]int, problem.numberOfNodes)
	best := math.Inf(1)
	var visit func(i int)
	visit = func(i int) {
		if i == len(labels) {
			best = math.Min(best, problem.energy(labels))
			return
		}
		for l := 0; l < problem.numberOfLabels; l++ {
			labels[i] = l
			visit(i + 1)
		}
	}
	visit(0)
	return best
}

func TestExpand_IsOptimalMove(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 50; trial++ {
		problem := randomProblem(rng, 6, 3, rng.Float64())
		labels := make([]int, problem.numberOfNodes)
		for i := range labels {
			labels[i] = rng.Intn(problem.numberOfLabels)
		}

		for alpha := 0; alpha < problem.numberOfLabels; alpha++ {
			out := make([]int, len(labels))
			problem.expand(labels, alpha, out)

			// every node either kept its label or switched to alpha
			for i := range out {
				assert.True(t, out[i] == labels[i] || out[i] == alpha)
			}

			best := math.Inf(1)
			move := make([]int, len(labels))
			for mask := 0; mask < 1<<len(labels); mask++ {
				for i := range move {
					move[i] = labels[i]
					if mask&(1<<i) != 0 {
						move[i] = alpha
					}
				}
				best = math.Min(best, problem.energy(move))
			}
			require.InDelta(t, best, problem.energy(out), 1e-9, "trial %d alpha %d", trial, alpha)
		}
	}
}

func TestAlphaExpansion_WithinFactorTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 30; trial++ {
		problem := randomProblem(rng, 7, 3, rng.Float64()*0.8)
		labels := make([]int, problem.numberOfNodes)
		initial := problem.energy(labels)

		energy, cycles := problem.alphaExpansion(labels, 20)

		assert.InDelta(t, problem.energy(labels), energy, 1e-12)
		assert.LessOrEqual(t, energy, initial)
		assert.LessOrEqual(t, cycles, 20)

		// unary costs are shifted to be non negative for the bound to apply
		shift := 0.0
		for _, u := range problem.unary {
			shift = math.Min(shift, u)
		}
		optimum := bruteForceMinimum(problem)
		n := float64(problem.numberOfNodes)
		assert.LessOrEqual(t, energy-n*shift, 2*(optimum-n*shift)+1e-9)
	}
}

func TestAlphaExpansion_IterationBound(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	problem := randomProblem(rng, 6, 4, 0.5)
	labels := make([]int, problem.numberOfNodes)

	_, cycles := problem.alphaExpansion(labels, 1)
	assert.Equal(t, 1, cycles)
}

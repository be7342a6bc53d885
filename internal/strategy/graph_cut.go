package strategy

import (
	"fmt"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/spatial"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
	"github.com/golang/glog"
)

const (
	DefaultGraphCutNeighbors     = 12
	DefaultGraphCutSmoothness    = 0.2
	DefaultGraphCutMaxIterations = 10
)

// GraphCut jointly labels the points by minimizing the energy sum_i -score(i, l_i) + sum_(i,j) smoothness *
// [l_i != l_j] over the symmetric k nearest neighbors graph. The energy is minimized by alpha expansion, each move
// being solved exactly by a minimum cut. The points are split in Subdivisions planimetric tiles and every
// connected component of a tile is solved on its own; edges crossing tiles are ignored.
//
// The result is a local minimum. When MaxIterations cycles are reached the best labeling found so far is
// returned.
type GraphCut struct {
	Points        []data.Point
	Query         spatial.NeighborQuery
	Smoothness    float64
	Subdivisions  int
	MaxIterations int
	Workers       int
}

// Builds a graph cut strategy. query must yield the k nearest neighbors of a point, the point itself excluded.
func NewGraphCut(points []data.Point, query spatial.NeighborQuery, smoothness float64, subdivisions int, maxIterations int, workers int) *GraphCut {
	return &GraphCut{
		Points:        points,
		Query:         query,
		Smoothness:    smoothness,
		Subdivisions:  subdivisions,
		MaxIterations: maxIterations,
		Workers:       workers,
	}
}

func (g *GraphCut) Name() string {
	return "graph_cut"
}

func (g *GraphCut) Classify(scorer Scorer) ([]int, error) {
	n := scorer.NumberOfPoints()
	if len(g.Points) != n {
		return nil, fmt.Errorf("graph cut: %d points for %d scored points", len(g.Points), n)
	}

	matrix, err := computeScores(scorer, g.Workers)
	if err != nil {
		return nil, err
	}

	labels := NewLabelIndexArray(n)
	for i := range labels {
		labels[i] = argMax(matrix.row(i))
	}

	// without coupling the raw labeling is optimal
	if g.Smoothness <= 0 || matrix.numberOfLabels < 2 || n < 2 {
		return labels, nil
	}

	adjacency, err := g.buildAdjacency(n)
	if err != nil {
		return nil, err
	}

	tileOf, tiles := planimetricTiles(g.Points, g.Subdivisions)
	glog.Infof("graph cut: %d points, %d tiles, smoothness %v", n, len(tiles), g.Smoothness)

	maxIterations := g.MaxIterations
	if maxIterations < 1 {
		maxIterations = DefaultGraphCutMaxIterations
	}

	// one tile per unit, tiles own disjoint points
	err = worker.RunChunked(len(tiles), g.Workers, 1, func(unit *worker.WorkUnit) error {
		for t := unit.Begin; t < unit.End; t++ {
			components := tileComponents(tiles[t], tileOf, adjacency)
			cycles := 0
			for _, component := range components {
				if len(component) < 2 {
					continue
				}
				problem := g.buildProblem(component, matrix, adjacency, tileOf)
				local := make([]int, len(component))
				for k, i := range component {
					local[k] = labels[i]
				}
				_, c := problem.alphaExpansion(local, maxIterations)
				if c > cycles {
					cycles = c
				}
				for k, i := range component {
					labels[i] = local[k]
				}
			}
			if glog.V(2) {
				glog.Infof("graph cut tile %d: %d points, %d components, %d cycles", t, len(tiles[t]), len(components), cycles)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return labels, nil
}

// builds the symmetric k nearest neighbors graph as sorted adjacency lists
func (g *GraphCut) buildAdjacency(n int) ([][]int, error) {
	knn := make([][]int, n)
	err := worker.Run(n, g.Workers, func(unit *worker.WorkUnit) error {
		for i := unit.Begin; i < unit.End; i++ {
			knn[i] = g.Query.Neighbors(i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	adjacency := make([][]int, n)
	for i, neighbors := range knn {
		for _, j := range neighbors {
			if j == i || j < 0 || j >= n {
				continue
			}
			adjacency[i] = append(adjacency[i], j)
			adjacency[j] = append(adjacency[j], i)
		}
	}

	err = worker.Run(n, g.Workers, func(unit *worker.WorkUnit) error {
		for i := unit.Begin; i < unit.End; i++ {
			adjacency[i] = sortedUnique(adjacency[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return adjacency, nil
}

func sortedUnique(values []int) []int {
	if len(values) < 2 {
		return values
	}
	sort.Ints(values)
	unique := values[:1]
	for _, v := range values[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}
	return unique
}

// builds the energy of a connected component, nodes being numbered by their rank in the component
func (g *GraphCut) buildProblem(component []int, matrix *scoreMatrix, adjacency [][]int, tileOf []int) *pottsProblem {
	numberOfLabels := matrix.numberOfLabels
	local := make(map[int]int, len(component))
	for k, i := range component {
		local[i] = k
	}

	problem := &pottsProblem{
		numberOfNodes:  len(component),
		numberOfLabels: numberOfLabels,
		unary:          make([]float64, len(component)*numberOfLabels),
		penalty:        g.Smoothness,
	}
	for k, i := range component {
		for l, score := range matrix.row(i) {
			problem.unary[k*numberOfLabels+l] = -score
		}
		for _, j := range adjacency[i] {
			if j <= i || tileOf[j] != tileOf[i] {
				continue
			}
			problem.edges = append(problem.edges, [2]int{k, local[j]})
		}
	}

	return problem
}

package strategy

import "math"

// pottsProblem is a multi-label energy over a small graph: unary[i*labels+l] is the cost of giving label l to
// node i, and every edge whose ends get different labels costs penalty.
type pottsProblem struct {
	numberOfNodes  int
	numberOfLabels int
	unary          []float64
	edges          [][2]int
	penalty        float64
}

func (p *pottsProblem) energy(labels []int) float64 {
	e := 0.0
	for i, l := range labels {
		e += p.unary[i*p.numberOfLabels+l]
	}
	for _, edge := range p.edges {
		if labels[edge[0]] != labels[edge[1]] {
			e += p.penalty
		}
	}
	return e
}

// a move is kept only if it lowers the energy by more than this fraction of its magnitude
const relativeImprovement = 1e-12

func isLower(candidate, current float64) bool {
	return candidate < current-relativeImprovement*math.Max(1, math.Abs(current))
}

// Minimizes the energy by alpha expansion starting from labels, which is updated in place. Every cycle tries to
// expand each label in turn, a move being accepted only when it lowers the energy. Stops after a cycle without
// improvement or after maxIterations cycles. Returns the final energy and the number of cycles run.
func (p *pottsProblem) alphaExpansion(labels []int, maxIterations int) (float64, int) {
	current := p.energy(labels)
	candidate := make([]int, len(labels))

	cycles := 0
	for cycles < maxIterations {
		cycles++
		improved := false
		for alpha := 0; alpha < p.numberOfLabels; alpha++ {
			p.expand(labels, alpha, candidate)
			if e := p.energy(candidate); isLower(e, current) {
				copy(labels, candidate)
				current = e
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	return current, cycles
}

// Solves exactly the binary problem of letting each node either keep its label or switch to alpha, and writes
// the resulting labeling in out. Nodes in the sink side of the minimum cut switch to alpha.
func (p *pottsProblem) expand(labels []int, alpha int, out []int) {
	n := p.numberOfNodes
	source, sink := n, n+1

	// cost of keeping the current label (x = 0) and of switching to alpha (x = 1)
	keep := make([]float64, n)
	switchTo := make([]float64, n)
	for i, l := range labels {
		keep[i] = p.unary[i*p.numberOfLabels+l]
		switchTo[i] = p.unary[i*p.numberOfLabels+alpha]
	}

	network := newFlowNetwork(n+2, 2*n+len(p.edges))
	for _, edge := range p.edges {
		i, j := edge[0], edge[1]
		li, lj := labels[i], labels[j]

		a := p.pairwise(li, lj)
		b := p.pairwise(li, alpha)
		c := p.pairwise(alpha, lj)
		// E(x_i, x_j) = A + (C - A) x_i + (D - C) x_j + (B + C - A - D)(1 - x_i) x_j with D = 0
		switchTo[i] += c - a
		switchTo[j] -= c
		if w := b + c - a; w > 0 {
			network.addEdge(i, j, w, 0)
		}
	}

	for i := 0; i < n; i++ {
		// a source arc is cut when the node switches, a sink arc when it keeps its label
		if d := switchTo[i] - keep[i]; d > 0 {
			network.addEdge(source, i, d, 0)
		} else if d < 0 {
			network.addEdge(i, sink, -d, 0)
		}
	}

	network.maxFlow(source, sink)
	switched := network.sinkSide(sink)
	for i, l := range labels {
		if switched[i] {
			out[i] = alpha
		} else {
			out[i] = l
		}
	}
}

func (p *pottsProblem) pairwise(a, b int) float64 {
	if a == b {
		return 0
	}
	return p.penalty
}

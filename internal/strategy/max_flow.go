package strategy

import "math"

// capacities at or below this value are considered saturated
const flowEpsilon = 1e-12

// flowNetwork is a directed graph with real capacities solved with Dinic's algorithm. Edges are stored in pairs,
// edge e and e^1 being the two directions of the same arc.
type flowNetwork struct {
	head     []int
	next     []int
	to       []int
	residual []float64
	level    []int
	iter     []int
	queue    []int
	path     []int
}

func newFlowNetwork(numberOfNodes int, edgeHint int) *flowNetwork {
	head := make([]int, numberOfNodes)
	for i := range head {
		head[i] = -1
	}
	return &flowNetwork{
		head:     head,
		next:     make([]int, 0, 2*edgeHint),
		to:       make([]int, 0, 2*edgeHint),
		residual: make([]float64, 0, 2*edgeHint),
		level:    make([]int, numberOfNodes),
		iter:     make([]int, numberOfNodes),
		queue:    make([]int, 0, numberOfNodes),
	}
}

func (g *flowNetwork) numberOfNodes() int {
	return len(g.head)
}

// adds the arc u -> v with capacity forward and the arc v -> u with capacity backward
func (g *flowNetwork) addEdge(u, v int, forward, backward float64) {
	g.to = append(g.to, v, u)
	g.residual = append(g.residual, forward, backward)
	g.next = append(g.next, g.head[u], g.head[v])
	g.head[u] = len(g.to) - 2
	g.head[v] = len(g.to) - 1
}

// Computes the maximum flow from s to t, leaving the residual capacities in the network
func (g *flowNetwork) maxFlow(s, t int) float64 {
	flow := 0.0
	for g.buildLevels(s, t) {
		copy(g.iter, g.head)
		for {
			f := g.augment(s, t)
			if f <= flowEpsilon {
				break
			}
			flow += f
		}
	}
	return flow
}

// breadth first labelling of the nodes reachable from s through unsaturated arcs, returns true if t is reached
func (g *flowNetwork) buildLevels(s, t int) bool {
	for i := range g.level {
		g.level[i] = -1
	}
	g.level[s] = 0
	g.queue = append(g.queue[:0], s)
	for head := 0; head < len(g.queue); head++ {
		u := g.queue[head]
		for e := g.head[u]; e != -1; e = g.next[e] {
			v := g.to[e]
			if g.level[v] < 0 && g.residual[e] > flowEpsilon {
				g.level[v] = g.level[u] + 1
				g.queue = append(g.queue, v)
			}
		}
	}
	return g.level[t] >= 0
}

// pushes flow along one shortest augmenting path and returns the amount pushed, 0 when the level graph is blocked
func (g *flowNetwork) augment(s, t int) float64 {
	g.path = g.path[:0]
	u := s
	for {
		if u == t {
			bottleneck := math.Inf(1)
			for _, e := range g.path {
				bottleneck = math.Min(bottleneck, g.residual[e])
			}
			for _, e := range g.path {
				g.residual[e] -= bottleneck
				g.residual[e^1] += bottleneck
			}
			return bottleneck
		}

		advanced := false
		for ; g.iter[u] != -1; g.iter[u] = g.next[g.iter[u]] {
			e := g.iter[u]
			v := g.to[e]
			if g.residual[e] > flowEpsilon && g.level[v] == g.level[u]+1 {
				g.path = append(g.path, e)
				u = v
				advanced = true
				break
			}
		}
		if advanced {
			continue
		}

		// dead end, retreat to the previous node and skip the arc leading here
		if u == s {
			return 0
		}
		g.level[u] = -1
		e := g.path[len(g.path)-1]
		g.path = g.path[:len(g.path)-1]
		u = g.to[e^1]
		g.iter[u] = g.next[g.iter[u]]
	}
}

// Returns, after maxFlow, which nodes can still reach t through unsaturated arcs. These nodes form the sink side
// of the minimum cut with the fewest nodes.
func (g *flowNetwork) sinkSide(t int) []bool {
	reach := make([]bool, g.numberOfNodes())
	reach[t] = true
	g.queue = append(g.queue[:0], t)
	for head := 0; head < len(g.queue); head++ {
		v := g.queue[head]
		for e := g.head[v]; e != -1; e = g.next[e] {
			u := g.to[e]
			// e^1 is the arc u -> v
			if !reach[u] && g.residual[e^1] > flowEpsilon {
				reach[u] = true
				g.queue = append(g.queue, u)
			}
		}
	}
	return reach
}

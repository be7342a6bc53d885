package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxFlow_Textbook(t *testing.T) {
	network := newFlowNetwork(6, 9)
	for _, arc := range []struct {
		u, v int
		c    float64
	}{
		{0, 1, 16}, {0, 2, 13}, {1, 3, 12}, {2, 1, 4}, {2, 4, 14},
		{3, 2, 9}, {3, 5, 20}, {4, 3, 7}, {4, 5, 4},
	} {
		network.addEdge(arc.u, arc.v, arc.c, 0)
	}

	assert.InDelta(t, 23.0, network.maxFlow(0, 5), 1e-9)
	assert.Equal(t, []bool{false, false, false, true, false, true}, network.sinkSide(5))
}

func TestMaxFlow_Bidirectional(t *testing.T) {
	// s - a = b - t, with a two way arc between a and b
	network := newFlowNetwork(4, 3)
	network.addEdge(0, 1, 2.5, 0)
	network.addEdge(1, 2, 1.25, 1.25)
	network.addEdge(2, 3, 4, 0)

	assert.InDelta(t, 1.25, network.maxFlow(0, 3), 1e-12)
	assert.Equal(t, []bool{false, false, true, true}, network.sinkSide(3))
}

func TestMaxFlow_Disconnected(t *testing.T) {
	network := newFlowNetwork(3, 1)
	network.addEdge(0, 1, 1, 0)

	assert.Equal(t, 0.0, network.maxFlow(0, 2))
	assert.Equal(t, []bool{false, false, true}, network.sinkSide(2))
}

package strategy

import (
	"math"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Splits the horizontal extent of the points in at least subdivisions tiles of equal size, and returns the tile
// of every point together with the points of every tile in ascending order. Empty tiles are dropped.
func planimetricTiles(points []data.Point, subdivisions int) ([]int, [][]int) {
	if subdivisions < 1 {
		subdivisions = 1
	}
	columns := int(math.Ceil(math.Sqrt(float64(subdivisions))))
	rows := (subdivisions + columns - 1) / columns

	box := data.NewPointCloud(points, false).BoundingBox()
	tileWidth := box.Width() / float64(columns)
	tileLength := box.Length() / float64(rows)

	tileIndex := func(value, origin, size float64, count int) int {
		if !(size > 0) {
			return 0
		}
		index := int(math.Floor((value - origin) / size))
		if index < 0 {
			return 0
		}
		if index >= count {
			return count - 1
		}
		return index
	}

	raw := make([]int, len(points))
	members := make([][]int, columns*rows)
	for i, p := range points {
		col := tileIndex(p.X, box.Xmin, tileWidth, columns)
		row := tileIndex(p.Y, box.Ymin, tileLength, rows)
		raw[i] = row*columns + col
		members[raw[i]] = append(members[raw[i]], i)
	}

	// renumber the non empty tiles
	renumber := make([]int, len(members))
	tiles := make([][]int, 0, len(members))
	for t, m := range members {
		renumber[t] = len(tiles)
		if len(m) > 0 {
			tiles = append(tiles, m)
		}
	}
	tileOf := make([]int, len(points))
	for i, t := range raw {
		tileOf[i] = renumber[t]
	}

	return tileOf, tiles
}

// Returns the connected components of the subgraph induced by the members of a tile, each component sorted by
// ascending point index, components ordered by their first point
func tileComponents(members []int, tileOf []int, adjacency [][]int) [][]int {
	if len(members) == 0 {
		return nil
	}
	tile := tileOf[members[0]]

	g := simple.NewUndirectedGraph()
	for _, i := range members {
		g.AddNode(simple.Node(i))
	}
	for _, i := range members {
		for _, j := range adjacency[i] {
			if j > i && tileOf[j] == tile {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}

	nodeComponents := topo.ConnectedComponents(g)
	components := make([][]int, len(nodeComponents))
	for c, nodes := range nodeComponents {
		component := make([]int, len(nodes))
		for k, node := range nodes {
			component[k] = int(node.ID())
		}
		sort.Ints(component)
		components[c] = component
	}
	sort.Slice(components, func(a, b int) bool {
		return components[a][0] < components[b][0]
	})

	return components
}

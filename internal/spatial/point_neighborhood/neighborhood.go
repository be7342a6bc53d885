package point_neighborhood

import (
	"math"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/geometry"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighborhood answers k nearest neighbors and sphere queries over a point cloud. Results are ordered by
// ascending euclidean distance, equal distances being ordered by ascending point index, so every query is
// deterministic. The index is read only once built and can be shared between goroutines.
type Neighborhood struct {
	points      []data.Point
	tree        *kdtree.Tree
	boundingBox *geometry.BoundingBox
}

// Builds the kd-tree of the given points
func NewNeighborhood(points []data.Point) *Neighborhood {
	cloud := data.NewPointCloud(points, false)
	neighborhood := &Neighborhood{
		points:      points,
		boundingBox: cloud.BoundingBox(),
	}
	if len(points) == 0 {
		return neighborhood
	}

	kdp := make(kdPoints, len(points))
	for i, p := range points {
		kdp[i] = kdPoint{index: i, coord: [3]float64{p.X, p.Y, p.Z}}
	}
	// the tree reorders the slice it is built from
	neighborhood.tree = kdtree.New(kdp, false)

	return neighborhood
}

func (n *Neighborhood) Len() int {
	return len(n.points)
}

func (n *Neighborhood) GetBoundingBox() *geometry.BoundingBox {
	return n.boundingBox
}

// Returns the k nearest neighbors of the i-th point, the point itself included
func (n *Neighborhood) KNearest(i int, k int) []int {
	if !n.isValidIndex(i) {
		return []int{}
	}
	return n.kNearest(n.kdPointOf(i), k)
}

// Returns the k nearest neighbors of the i-th point, the point itself excluded
func (n *Neighborhood) KNearestExcludingSelf(i int, k int) []int {
	if !n.isValidIndex(i) || k <= 0 {
		return []int{}
	}
	return dropSelf(n.kNearest(n.kdPointOf(i), k+1), i, k)
}

// Returns the points at distance lower or equal to radius from the i-th point, the point itself included
func (n *Neighborhood) Sphere(i int, radius float64) []int {
	if !n.isValidIndex(i) {
		return []int{}
	}
	return n.sphere(n.kdPointOf(i), radius)
}

// Returns the points at distance lower or equal to radius from the i-th point, the point itself excluded
func (n *Neighborhood) SphereExcludingSelf(i int, radius float64) []int {
	if !n.isValidIndex(i) {
		return []int{}
	}
	result := n.sphere(n.kdPointOf(i), radius)
	return dropSelf(result, i, len(result))
}

// Returns the k points closest to the given position. Positions outside the bounds of the indexed cloud yield
// an empty result.
func (n *Neighborhood) KNearestTo(x, y, z float64, k int) []int {
	if n.tree == nil || !n.boundingBox.Contains(x, y, z) {
		return []int{}
	}
	return n.kNearest(kdPoint{index: -1, coord: [3]float64{x, y, z}}, k)
}

// Returns the points at distance lower or equal to radius from the given position. Positions outside the bounds
// of the indexed cloud yield an empty result.
func (n *Neighborhood) SphereAround(x, y, z float64, radius float64) []int {
	if n.tree == nil || !n.boundingBox.Contains(x, y, z) {
		return []int{}
	}
	return n.sphere(kdPoint{index: -1, coord: [3]float64{x, y, z}}, radius)
}

func (n *Neighborhood) isValidIndex(i int) bool {
	return n.tree != nil && i >= 0 && i < len(n.points)
}

func (n *Neighborhood) kdPointOf(i int) kdPoint {
	p := n.points[i]
	return kdPoint{index: i, coord: [3]float64{p.X, p.Y, p.Z}}
}

type neighbor struct {
	index int
	dist  float64
}

func (n *Neighborhood) kNearest(q kdPoint, k int) []int {
	if k <= 0 {
		return []int{}
	}

	// the first pass only finds the distance of the k-th neighbor, the second pass collects every point
	// within that distance so that ties are resolved on the point index rather than on the tree layout
	nKeeper := kdtree.NewNKeeper(k)
	n.tree.NearestSet(nKeeper, q)
	kthDist := math.Inf(-1)
	for _, c := range nKeeper.Heap {
		if c.Comparable != nil && c.Dist > kthDist {
			kthDist = c.Dist
		}
	}
	if math.IsInf(kthDist, -1) {
		return []int{}
	}

	neighbors := n.collect(q, kthDist)
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	return indicesOf(neighbors)
}

func (n *Neighborhood) sphere(q kdPoint, radius float64) []int {
	if !(radius >= 0) {
		return []int{}
	}
	return indicesOf(n.collect(q, radius*radius))
}

// gathers the points whose squared distance from q is lower or equal to maxDist, sorted by distance and index
func (n *Neighborhood) collect(q kdPoint, maxDist float64) []neighbor {
	keeper := kdtree.NewDistKeeper(maxDist)
	n.tree.NearestSet(keeper, q)

	neighbors := make([]neighbor, 0, len(keeper.Heap))
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		neighbors = append(neighbors, neighbor{index: c.Comparable.(kdPoint).index, dist: c.Dist})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].index < neighbors[b].index
	})

	return neighbors
}

func indicesOf(neighbors []neighbor) []int {
	indices := make([]int, len(neighbors))
	for i, nb := range neighbors {
		indices[i] = nb.index
	}
	return indices
}

// removes i from the ordered neighbor list, or its last element when i is not in the list, and truncates it to
// at most limit elements
func dropSelf(neighbors []int, i int, limit int) []int {
	result := make([]int, 0, len(neighbors))
	found := false
	for _, j := range neighbors {
		if j == i && !found {
			found = true
			continue
		}
		result = append(result, j)
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// KNeighborQuery yields the K nearest neighbors of a point
type KNeighborQuery struct {
	Neighborhood *Neighborhood
	K            int
	ExcludeSelf  bool
}

func (q KNeighborQuery) Neighbors(i int) []int {
	if q.ExcludeSelf {
		return q.Neighborhood.KNearestExcludingSelf(i, q.K)
	}
	return q.Neighborhood.KNearest(i, q.K)
}

// SphereNeighborQuery yields the neighbors of a point within Radius
type SphereNeighborQuery struct {
	Neighborhood *Neighborhood
	Radius       float64
	ExcludeSelf  bool
}

func (q SphereNeighborQuery) Neighbors(i int) []int {
	if q.ExcludeSelf {
		return q.Neighborhood.SphereExcludingSelf(i, q.Radius)
	}
	return q.Neighborhood.Sphere(i, q.Radius)
}

// Builds a query returning the k nearest neighbors of each point
func (n *Neighborhood) KNeighborQuery(k int, excludeSelf bool) KNeighborQuery {
	return KNeighborQuery{Neighborhood: n, K: k, ExcludeSelf: excludeSelf}
}

// Builds a query returning the neighbors of each point within radius
func (n *Neighborhood) SphereNeighborQuery(radius float64, excludeSelf bool) SphereNeighborQuery {
	return SphereNeighborQuery{Neighborhood: n, Radius: radius, ExcludeSelf: excludeSelf}
}

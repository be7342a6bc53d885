package point_neighborhood

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/spatial"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var _ spatial.INeighborhood = (*Neighborhood)(nil)
var _ spatial.NeighborQuery = KNeighborQuery{}
var _ spatial.NeighborQuery = SphereNeighborQuery{}

func crossPoints() []data.Point {
	return []data.Point{
		data.NewPoint(0, 0, 0, 0, 0, 0),
		data.NewPoint(1, 0, 0, 0, 0, 0),
		data.NewPoint(-1, 0, 0, 0, 0, 0),
		data.NewPoint(0, 1, 0, 0, 0, 0),
		data.NewPoint(0, -1, 0, 0, 0, 0),
		data.NewPoint(2, 0, 0, 0, 0, 0),
	}
}

func bruteForce(points []data.Point, q data.Point, k int) []int {
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		da := points[indices[a]].SquaredDistance(q)
		db := points[indices[b]].SquaredDistance(q)
		if da != db {
			return da < db
		}
		return indices[a] < indices[b]
	})
	if k < len(indices) {
		indices = indices[:k]
	}
	return indices
}

func TestKNearest_TiesBrokenByIndex(t *testing.T) {
	n := NewNeighborhood(crossPoints())

	assert.Equal(t, []int{0, 1, 2}, n.KNearest(0, 3))
	assert.Equal(t, []int{0, 1, 2, 3}, n.KNearest(0, 4))
	assert.Equal(t, []int{1, 2}, n.KNearestExcludingSelf(0, 2))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, n.KNearest(0, 100))
	assert.Empty(t, n.KNearest(0, 0))
}

func TestKNearest_Duplicates(t *testing.T) {
	points := make([]data.Point, 5)
	for i := range points {
		points[i] = data.NewPoint(1, 1, 1, 0, 0, 0)
	}
	n := NewNeighborhood(points)

	assert.Equal(t, []int{0, 1}, n.KNearest(3, 2))
	assert.Equal(t, []int{1, 2}, n.KNearestExcludingSelf(0, 2))
	assert.Equal(t, []int{0, 1}, n.KNearestExcludingSelf(4, 2))
}

func TestSphere(t *testing.T) {
	n := NewNeighborhood(crossPoints())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, n.Sphere(0, 1))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, n.Sphere(0, 1.5))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, n.Sphere(0, 2))
	assert.Equal(t, []int{0}, n.Sphere(0, 0))
	assert.Empty(t, n.SphereExcludingSelf(5, 0.5))
	assert.Equal(t, []int{1, 0, 5}, n.Sphere(1, 1))
	assert.Empty(t, n.Sphere(0, -1))
}

func TestQueriesOutsideBounds(t *testing.T) {
	n := NewNeighborhood(crossPoints())

	assert.Empty(t, n.KNearestTo(10, 10, 10, 3))
	assert.Empty(t, n.SphereAround(10, 10, 10, 100))
	assert.Empty(t, n.KNearest(-1, 3))
	assert.Empty(t, n.KNearest(6, 3))
	assert.Empty(t, n.Sphere(42, 1))
	assert.Equal(t, []int{0, 1, 3}, n.KNearestTo(0.4, 0.1, 0, 3))
}

func TestEmptyNeighborhood(t *testing.T) {
	n := NewNeighborhood(nil)

	assert.Equal(t, 0, n.Len())
	assert.Empty(t, n.KNearest(0, 3))
	assert.Empty(t, n.KNearestTo(0, 0, 0, 3))
	assert.Empty(t, n.SphereAround(0, 0, 0, 1))
}

func TestKNearest_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]data.Point, 600)
	for i := range points {
		// coordinates on a coarse lattice produce many equal distances
		points[i] = data.NewPoint(float64(rng.Intn(10)), float64(rng.Intn(10)), float64(rng.Intn(4)), 0, 0, 0)
	}
	n := NewNeighborhood(points)

	for i := 0; i < len(points); i += 37 {
		for _, k := range []int{1, 6, 12} {
			want := bruteForce(points, points[i], k)
			if diff := cmp.Diff(want, n.KNearest(i, k)); diff != "" {
				t.Fatalf("k nearest of %d (k=%d) mismatch (-want +got):\n%s", i, k, diff)
			}
		}
	}
}

func TestNeighborQueries(t *testing.T) {
	n := NewNeighborhood(crossPoints())

	assert.Equal(t, []int{0, 1, 2}, n.KNeighborQuery(3, false).Neighbors(0))
	assert.Equal(t, []int{1, 2, 3}, n.KNeighborQuery(3, true).Neighbors(0))
	assert.Equal(t, []int{1, 2, 3, 4}, n.SphereNeighborQuery(1, true).Neighbors(0))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, n.SphereNeighborQuery(1, false).Neighbors(0))
}

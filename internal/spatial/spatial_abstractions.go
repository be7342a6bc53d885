package spatial

import (
	"github.com/ecopia-map/cloud_classifier/internal/geometry"
)

// NeighborQuery yields the neighbors of a point of the indexed cloud, ordered by ascending distance
type NeighborQuery interface {
	Neighbors(i int) []int
}

// INeighborhood is a read-only 3D neighborhood index built once over a point cloud
type INeighborhood interface {
	KNearest(i int, k int) []int
	Sphere(i int, radius float64) []int
	KNearestTo(x, y, z float64, k int) []int
	SphereAround(x, y, z float64, radius float64) []int
	Len() int
	GetBoundingBox() *geometry.BoundingBox
}

// NeighborQueryFunc adapts a plain function to the NeighborQuery interface
type NeighborQueryFunc func(i int) []int

func (f NeighborQueryFunc) Neighbors(i int) []int {
	return f(i)
}

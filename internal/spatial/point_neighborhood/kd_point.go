package point_neighborhood

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdPoint is a point of the cloud as stored in the kd-tree, tagged with its index in the cloud
type kdPoint struct {
	index int
	coord [3]float64
}

// Compare returns the signed distance of p from the plane passing through c and perpendicular to the
// dimension d
func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.coord[d] - q.coord[d]
}

func (p kdPoint) Dims() int {
	return 3
}

// Distance returns the squared euclidean distance between p and c
func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	dx := p.coord[0] - q.coord[0]
	dy := p.coord[1] - q.coord[1]
	dz := p.coord[2] - q.coord[2]
	return dx*dx + dy*dy + dz*dz
}

type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p kdPoints) Len() int                              { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int                { return kdPlane{kdPoints: p, Dim: d}.Pivot() }
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// kdPlane allows a kdPoints list to be partitioned along one dimension
type kdPlane struct {
	kdtree.Dim
	kdPoints
}

// number of random samples used to estimate the median when building the tree
const medianSamples = 100

func (p kdPlane) Less(i, j int) bool {
	return p.kdPoints[i].coord[p.Dim] < p.kdPoints[j].coord[p.Dim]
}
func (p kdPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfRandoms(p, medianSamples))
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}

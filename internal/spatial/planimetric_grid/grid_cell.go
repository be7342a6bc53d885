package planimetric_grid

import "math"

// CellIndex identifies a grid cell by its column (x axis) and row (y axis)
type CellIndex struct {
	Col int
	Row int
}

// Models a cell of the planimetric grid. A cell keeps the indices of the points falling in its footprint and
// the min and max height of those points.
type GridCell struct {
	index  CellIndex
	points []int
	minZ   float64
	maxZ   float64
}

func newGridCell(index CellIndex) *GridCell {
	return &GridCell{
		index: index,
		minZ:  math.Inf(1),
		maxZ:  math.Inf(-1),
	}
}

// stores the point index and updates the cached height range
func (c *GridCell) addPoint(i int, z float64) {
	c.points = append(c.points, i)
	c.minZ = math.Min(c.minZ, z)
	c.maxZ = math.Max(c.maxZ, z)
}

func (c *GridCell) Index() CellIndex {
	return c.index
}

// Returns the indices of the points stored in the cell, in ascending order
func (c *GridCell) Points() []int {
	return c.points
}

func (c *GridCell) NumberOfPoints() int {
	return len(c.points)
}

func (c *GridCell) MinZ() float64 {
	return c.minZ
}

func (c *GridCell) MaxZ() float64 {
	return c.maxZ
}

package planimetric_grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/geometry"
)

var ErrInvalidCellSize = errors.New("grid cell size must be a positive finite number")

// Grid buckets the points of a cloud in square cells of the horizontal plane. The grid covers the footprint
// of the bounding box it is built with; cell (0, 0) has its lower left corner on (Xmin, Ymin).
// A Grid is read only once built and can be shared between goroutines.
type Grid struct {
	points      []data.Point
	boundingBox *geometry.BoundingBox
	cellSize    float64
	columns     int
	rows        int
	cells       map[CellIndex]*GridCell
	pointCells  []CellIndex
	nonEmpty    []CellIndex
}

// Builds the grid of the given points. Points outside the bounding box footprint are stored in the closest
// border cell.
func NewGrid(points []data.Point, boundingBox *geometry.BoundingBox, cellSize float64) (*Grid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}

	grid := &Grid{
		points:      points,
		boundingBox: boundingBox,
		cellSize:    cellSize,
		columns:     getDimensionIndex(boundingBox.Xmax, boundingBox.Xmin, cellSize) + 1,
		rows:        getDimensionIndex(boundingBox.Ymax, boundingBox.Ymin, cellSize) + 1,
		cells:       make(map[CellIndex]*GridCell),
		pointCells:  make([]CellIndex, len(points)),
	}

	for i, p := range points {
		index := grid.clampIndex(grid.cellIndexOf(p.X, p.Y))
		cell := grid.cells[index]
		if cell == nil {
			cell = newGridCell(index)
			grid.cells[index] = cell
		}
		cell.addPoint(i, p.Z)
		grid.pointCells[i] = index
	}

	grid.nonEmpty = make([]CellIndex, 0, len(grid.cells))
	for index := range grid.cells {
		grid.nonEmpty = append(grid.nonEmpty, index)
	}
	sort.Slice(grid.nonEmpty, func(a, b int) bool {
		return lessRowMajor(grid.nonEmpty[a], grid.nonEmpty[b])
	})

	return grid, nil
}

// returns the index of the cell along one axis
func getDimensionIndex(value float64, origin float64, cellSize float64) int {
	return int(math.Floor((value - origin) / cellSize))
}

func lessRowMajor(a, b CellIndex) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func (g *Grid) cellIndexOf(x, y float64) CellIndex {
	return CellIndex{
		Col: getDimensionIndex(x, g.boundingBox.Xmin, g.cellSize),
		Row: getDimensionIndex(y, g.boundingBox.Ymin, g.cellSize),
	}
}

func (g *Grid) clampIndex(index CellIndex) CellIndex {
	return CellIndex{
		Col: clamp(index.Col, 0, g.columns-1),
		Row: clamp(index.Row, 0, g.rows-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) Columns() int {
	return g.columns
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) GetBoundingBox() *geometry.BoundingBox {
	return g.boundingBox
}

func (g *Grid) Points() []data.Point {
	return g.points
}

// Returns true if the index lies in the grid extent
func (g *Grid) Contains(index CellIndex) bool {
	return index.Col >= 0 && index.Col < g.columns && index.Row >= 0 && index.Row < g.rows
}

// Returns the cell with the given index, or nil if no point falls in it
func (g *Grid) Cell(index CellIndex) *GridCell {
	return g.cells[index]
}

// Returns the index of the cell the i-th point was stored in
func (g *Grid) CellOf(i int) CellIndex {
	return g.pointCells[i]
}

// Returns the index of the cell containing the given horizontal position, and false if the position falls
// outside the grid extent
func (g *Grid) CellAt(x, y float64) (CellIndex, bool) {
	index := g.cellIndexOf(x, y)
	return index, g.Contains(index)
}

// Returns the indices of the cells holding at least one point, in row major order
func (g *Grid) NonEmptyCells() []CellIndex {
	return g.nonEmpty
}

func (g *Grid) NumberOfCells() int {
	return len(g.cells)
}

// Returns the horizontal coordinates of the center of the cell
func (g *Grid) CellCenter(index CellIndex) (float64, float64) {
	return g.boundingBox.Xmin + (float64(index.Col)+0.5)*g.cellSize,
		g.boundingBox.Ymin + (float64(index.Row)+0.5)*g.cellSize
}

// Returns the footprint of the cell as xmin, xmax, ymin, ymax
func (g *Grid) CellFootprint(index CellIndex) (float64, float64, float64, float64) {
	x0 := g.boundingBox.Xmin + float64(index.Col)*g.cellSize
	y0 := g.boundingBox.Ymin + float64(index.Row)*g.cellSize
	return x0, x0 + g.cellSize, y0, y0 + g.cellSize
}

// Returns true if the cell footprint intersects the horizontal disk, boundary included
func (g *Grid) IntersectsDisk(index CellIndex, x, y, radius float64) bool {
	xmin, xmax, ymin, ymax := g.CellFootprint(index)
	dx := math.Max(0, math.Max(xmin-x, x-xmax))
	dy := math.Max(0, math.Max(ymin-y, y-ymax))
	return dx*dx+dy*dy <= radius*radius
}

// Returns exactly the cells of the grid extent whose footprint intersects the horizontal disk of the given
// radius around (x, y), in row major order. Empty cells are included.
func (g *Grid) CellsInDisk(x, y, radius float64) []CellIndex {
	if !(radius >= 0) || math.IsInf(radius, 1) {
		return nil
	}

	// the candidate window is widened by one cell so that rounding on the window bounds never drops a cell,
	// the exact footprint test decides
	lo := g.cellIndexOf(x-radius, y-radius)
	hi := g.cellIndexOf(x+radius, y+radius)
	colFrom, colTo := clamp(lo.Col-1, 0, g.columns-1), clamp(hi.Col+1, 0, g.columns-1)
	rowFrom, rowTo := clamp(lo.Row-1, 0, g.rows-1), clamp(hi.Row+1, 0, g.rows-1)
	if lo.Col-1 > g.columns-1 || hi.Col+1 < 0 || lo.Row-1 > g.rows-1 || hi.Row+1 < 0 {
		return nil
	}

	cells := make([]CellIndex, 0)
	for row := rowFrom; row <= rowTo; row++ {
		for col := colFrom; col <= colTo; col++ {
			index := CellIndex{Col: col, Row: row}
			if g.IntersectsDisk(index, x, y, radius) {
				cells = append(cells, index)
			}
		}
	}

	return cells
}

// Returns the indices of the points whose horizontal distance to (x, y) is at most radius, in ascending order.
// Candidates are gathered from the cells intersecting the disk.
func (g *Grid) PointsInDisk(x, y, radius float64) []int {
	result := make([]int, 0)
	r2 := radius * radius
	for _, index := range g.CellsInDisk(x, y, radius) {
		cell := g.cells[index]
		if cell == nil {
			continue
		}
		for _, i := range cell.points {
			dx := g.points[i].X - x
			dy := g.points[i].Y - y
			if dx*dx+dy*dy <= r2 {
				result = append(result, i)
			}
		}
	}
	sort.Ints(result)

	return result
}

// DiskSpan is the run of cells of one grid row, relative to a reference cell, that intersect a disk centered on
// the reference cell center: columns from -HalfWidth to +HalfWidth at row offset DRow.
type DiskSpan struct {
	DRow      int
	HalfWidth int
}

// Returns the row spans of the cells intersecting the disk of the given radius centered on any cell center.
// The spans only depend on the radius and the cell size, so they are shared by every cell of the grid.
func (g *Grid) DiskSpans(radius float64) []DiskSpan {
	if !(radius >= 0) || math.IsInf(radius, 1) {
		return nil
	}

	r2 := radius * radius
	gap := func(d int) float64 {
		return math.Max(0, float64(absInt(d))*g.cellSize-g.cellSize/2)
	}

	maxOffset := 0
	for gap(maxOffset+1)*gap(maxOffset+1) <= r2 {
		maxOffset++
	}

	spans := make([]DiskSpan, 0, 2*maxOffset+1)
	for dr := -maxOffset; dr <= maxOffset; dr++ {
		gy := gap(dr)
		rest := r2 - gy*gy
		halfWidth := 0
		for gap(halfWidth+1)*gap(halfWidth+1) <= rest {
			halfWidth++
		}
		spans = append(spans, DiskSpan{DRow: dr, HalfWidth: halfWidth})
	}

	return spans
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

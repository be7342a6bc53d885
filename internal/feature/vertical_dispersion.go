package feature

import (
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/spatial/planimetric_grid"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

const VerticalDispersionName = "vertical_dispersion"

// VerticalDispersion measures how the points of a vertical column are spread over height layers. The column of
// a grid cell gathers the points within a horizontal disk of the given radius around the cell center; its
// vertical extent is cut in layers as high as a grid cell and the value is (occupied layers - 1) /
// (layers - 1). A column of a single layer has dispersion 0. Every point of a cell gets the value of the cell.
type VerticalDispersion struct {
	grid   *planimetric_grid.Grid
	radius float64
}

func NewVerticalDispersion(grid *planimetric_grid.Grid, radius float64) *VerticalDispersion {
	return &VerticalDispersion{
		grid:   grid,
		radius: radius,
	}
}

func (v *VerticalDispersion) Name() string {
	return VerticalDispersionName
}

func (v *VerticalDispersion) Range() Range {
	return Range{Min: 0, Max: 1}
}

func (v *VerticalDispersion) Compute(workers int) ([]float64, error) {
	values := make([]float64, len(v.grid.Points()))
	cells := v.grid.NonEmptyCells()

	err := worker.Run(len(cells), workers, func(unit *worker.WorkUnit) error {
		for c := unit.Begin; c < unit.End; c++ {
			dispersion := v.cellDispersion(cells[c])
			for _, i := range v.grid.Cell(cells[c]).Points() {
				values[i] = dispersion
			}
		}
		return nil
	})

	return values, err
}

func (v *VerticalDispersion) cellDispersion(index planimetric_grid.CellIndex) float64 {
	x, y := v.grid.CellCenter(index)
	column := v.grid.PointsInDisk(x, y, v.radius)
	if len(column) < 2 {
		return 0
	}

	points := v.grid.Points()
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, i := range column {
		minZ = math.Min(minZ, points[i].Z)
		maxZ = math.Max(maxZ, points[i].Z)
	}

	layerHeight := v.grid.CellSize()
	layers := int(math.Floor((maxZ-minZ)/layerHeight)) + 1
	if layers < 2 {
		return 0
	}

	occupied := make([]bool, layers)
	count := 0
	for _, i := range column {
		layer := int(math.Floor((points[i].Z - minZ) / layerHeight))
		if layer >= layers {
			layer = layers - 1
		}
		if !occupied[layer] {
			occupied[layer] = true
			count++
		}
	}

	return float64(count-1) / float64(layers-1)
}

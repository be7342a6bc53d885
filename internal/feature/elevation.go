package feature

import (
	"math"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/spatial/planimetric_grid"
	"github.com/ecopia-map/cloud_classifier/internal/worker"
)

const ElevationName = "elevation"

// Elevation is the height of a point above a coarse terrain model. The terrain height of a grid cell is the
// lowest point among all the cells intersecting the horizontal disk of radius radiusDTM centered on the cell.
type Elevation struct {
	grid      *planimetric_grid.Grid
	radiusDTM float64
}

func NewElevation(grid *planimetric_grid.Grid, radiusDTM float64) *Elevation {
	return &Elevation{
		grid:      grid,
		radiusDTM: radiusDTM,
	}
}

func (e *Elevation) Name() string {
	return ElevationName
}

func (e *Elevation) Range() Range {
	return Range{Min: 0, Max: math.Inf(1)}
}

func (e *Elevation) Compute(workers int) ([]float64, error) {
	dtm, err := e.TerrainModel(workers)
	if err != nil {
		return nil, err
	}

	points := e.grid.Points()
	columns := e.grid.Columns()
	values := make([]float64, len(points))
	err = worker.Run(len(points), workers, func(unit *worker.WorkUnit) error {
		for i := unit.Begin; i < unit.End; i++ {
			cell := e.grid.CellOf(i)
			values[i] = points[i].Z - dtm[cell.Row*columns+cell.Col]
		}
		return nil
	})

	return values, err
}

// Computes the terrain height of every grid cell as a row major raster. Cells farther than radiusDTM from any
// point are +Inf.
func (e *Elevation) TerrainModel(workers int) ([]float64, error) {
	columns, rows := e.grid.Columns(), e.grid.Rows()

	// lowest point of every cell
	minZ := make([]float64, columns*rows)
	for i := range minZ {
		minZ[i] = math.Inf(1)
	}
	for _, index := range e.grid.NonEmptyCells() {
		minZ[index.Row*columns+index.Col] = e.grid.Cell(index).MinZ()
	}

	dtm := make([]float64, columns*rows)
	for i := range dtm {
		dtm[i] = math.Inf(1)
	}

	// the disk is a union of horizontal runs of cells; runs sharing the same half width are served by one
	// sliding minimum of the raster rows
	spans := e.grid.DiskSpans(e.radiusDTM)
	byHalfWidth := make(map[int][]int)
	for _, span := range spans {
		byHalfWidth[span.HalfWidth] = append(byHalfWidth[span.HalfWidth], span.DRow)
	}
	halfWidths := make([]int, 0, len(byHalfWidth))
	for h := range byHalfWidth {
		halfWidths = append(halfWidths, h)
	}
	sort.Ints(halfWidths)

	runMin := make([]float64, columns*rows)
	for _, h := range halfWidths {
		err := worker.Run(rows, workers, func(unit *worker.WorkUnit) error {
			for row := unit.Begin; row < unit.End; row++ {
				slidingMinimum(minZ[row*columns:(row+1)*columns], runMin[row*columns:(row+1)*columns], h)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		dRows := byHalfWidth[h]
		err = worker.Run(rows, workers, func(unit *worker.WorkUnit) error {
			for row := unit.Begin; row < unit.End; row++ {
				for _, dr := range dRows {
					source := row + dr
					if source < 0 || source >= rows {
						continue
					}
					for col := 0; col < columns; col++ {
						if v := runMin[source*columns+col]; v < dtm[row*columns+col] {
							dtm[row*columns+col] = v
						}
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dtm, nil
}

// writes in out[c] the minimum of in[c-h .. c+h], clipped to the slice bounds
func slidingMinimum(in []float64, out []float64, h int) {
	n := len(in)
	// indices of the candidates for the minimum, increasing values
	deque := make([]int, 0, 2*h+2)
	next := 0
	for c := 0; c < n; c++ {
		for ; next < n && next <= c+h; next++ {
			for len(deque) > 0 && in[deque[len(deque)-1]] >= in[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < c-h {
			deque = deque[1:]
		}
		out[c] = in[deque[0]]
	}
}

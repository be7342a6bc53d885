package data

import (
	"errors"
	"fmt"
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/geometry"
)

var ErrNonFiniteCoordinate = errors.New("non finite coordinate")

// PointCloud is the ordered sequence of points read from a source. The index of a point in Points is its
// identity for the whole classification pipeline and never changes once the cloud is built.
type PointCloud struct {
	Points   []Point
	HasColor bool
}

func NewPointCloud(points []Point, hasColor bool) *PointCloud {
	return &PointCloud{
		Points:   points,
		HasColor: hasColor,
	}
}

func (pc *PointCloud) Len() int {
	return len(pc.Points)
}

// Computes the axis aligned bounding box of the cloud. An empty cloud yields a zero sized box at the origin.
func (pc *PointCloud) BoundingBox() *geometry.BoundingBox {
	if len(pc.Points) == 0 {
		return geometry.NewBoundingBox(0, 0, 0, 0, 0, 0)
	}

	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, p := range pc.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		minZ = math.Min(minZ, p.Z)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
		maxZ = math.Max(maxZ, p.Z)
	}

	return geometry.NewBoundingBox(minX, maxX, minY, maxY, minZ, maxZ)
}

// Returns an error wrapping ErrNonFiniteCoordinate naming the first point with a NaN or infinite coordinate
func (pc *PointCloud) CheckFinite() error {
	for i, p := range pc.Points {
		if !p.IsFinite() {
			return fmt.Errorf("point %d (%v %v %v): %w", i, p.X, p.Y, p.Z, ErrNonFiniteCoordinate)
		}
	}
	return nil
}

package converters

import (
	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/geometry"
)

// CoordinateConverter moves a cloud into the working reference frame of the classification and back
type CoordinateConverter interface {
	// Converts in place the points of the cloud to the working frame
	ConvertToLocal(cloud *data.PointCloud) error
	// Converts in place the points of the cloud back to the frame they had before ConvertToLocal
	ConvertToSource(cloud *data.PointCloud) error
	// Returns the bounding box the cloud had in its source frame, nil before ConvertToLocal
	GetSourceBoundingBox() *geometry.BoundingBox
}

// ElevationCorrector adjusts the elevation of a point given its planimetric position
type ElevationCorrector interface {
	CorrectElevation(x, y, z float64) float64
}

// Applies the elevation corrector to every point of the cloud
func CorrectCloudElevation(corrector ElevationCorrector, cloud *data.PointCloud) {
	for i := range cloud.Points {
		p := &cloud.Points[i]
		p.Z = corrector.CorrectElevation(p.X, p.Y, p.Z)
	}
}

package local_origin_converter

import (
	"errors"

	"github.com/ecopia-map/cloud_classifier/internal/converters"
	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/geometry"
)

var ErrNotConverted = errors.New("cloud has not been converted to the local frame")

// LocalOriginConverter translates a cloud so that its bounding box minimum becomes the origin. Projected
// coordinates carry large offsets that cost precision in the covariance sums, local ones do not.
type LocalOriginConverter struct {
	origin     [3]float64
	sourceBbox *geometry.BoundingBox
}

func NewLocalOriginConverter() converters.CoordinateConverter {
	return &LocalOriginConverter{}
}

func (c *LocalOriginConverter) ConvertToLocal(cloud *data.PointCloud) error {
	bbox := cloud.BoundingBox()
	c.sourceBbox = bbox
	c.origin = [3]float64{bbox.Xmin, bbox.Ymin, bbox.Zmin}

	c.translate(cloud, -1)
	return nil
}

func (c *LocalOriginConverter) ConvertToSource(cloud *data.PointCloud) error {
	if c.sourceBbox == nil {
		return ErrNotConverted
	}

	c.translate(cloud, 1)
	return nil
}

func (c *LocalOriginConverter) GetSourceBoundingBox() *geometry.BoundingBox {
	return c.sourceBbox
}

// Returns the source frame coordinates of the local origin
func (c *LocalOriginConverter) Origin() (x, y, z float64) {
	return c.origin[0], c.origin[1], c.origin[2]
}

func (c *LocalOriginConverter) translate(cloud *data.PointCloud, sign float64) {
	for i := range cloud.Points {
		p := &cloud.Points[i]
		p.X += sign * c.origin[0]
		p.Y += sign * c.origin[1]
		p.Z += sign * c.origin[2]
	}
}

package io

import (
	"fmt"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/label"
)

// Colors given to labels defined without one, cycled by label index
var fallbackPalette = []label.Color{
	{R: 31, G: 119, B: 180},
	{R: 255, G: 127, B: 14},
	{R: 44, G: 160, B: 44},
	{R: 214, G: 39, B: 40},
	{R: 148, G: 103, B: 189},
	{R: 140, G: 86, B: 75},
	{R: 227, G: 119, B: 194},
	{R: 127, G: 127, B: 127},
}

// LabelColorizer paints every point with the color of its label. Unassigned points are black.
type LabelColorizer struct {
	labels *label.LabelSet
}

func NewLabelColorizer(labels *label.LabelSet) *LabelColorizer {
	return &LabelColorizer{
		labels: labels,
	}
}

// Returns the display color of the label at the given index
func (c *LabelColorizer) ColorOf(labelIndex int) label.Color {
	if labelIndex < 0 || labelIndex >= c.labels.Len() {
		return label.Color{}
	}
	if color := c.labels.At(labelIndex).Color(); color != nil {
		return *color
	}
	return fallbackPalette[labelIndex%len(fallbackPalette)]
}

// Returns a copy of the points of the cloud colored by label. The coordinates are kept.
func (c *LabelColorizer) Colorize(cloud *data.PointCloud, labelIndices []int) ([]data.Point, error) {
	if len(labelIndices) != cloud.Len() {
		return nil, fmt.Errorf("got %d labels for %d points", len(labelIndices), cloud.Len())
	}

	points := make([]data.Point, cloud.Len())
	for i, p := range cloud.Points {
		color := c.ColorOf(labelIndices[i])
		points[i] = data.NewPoint(p.X, p.Y, p.Z, color.R, color.G, color.B)
	}
	return points, nil
}

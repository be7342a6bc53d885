package algorithm_manager

import (
	"github.com/ecopia-map/cloud_classifier/internal/converters"
	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/io"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/point_neighborhood"
	"github.com/ecopia-map/cloud_classifier/internal/strategy"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	GetStrategyAlgorithm(points []data.Point, neighborhood *point_neighborhood.Neighborhood) (strategy.Strategy, error)
	GetPointWriter() io.PointWriter
}

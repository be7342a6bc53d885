package std_algorithm_manager

import (
	"fmt"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/converters"
	"github.com/ecopia-map/cloud_classifier/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cloud_classifier/internal/converters/local_origin_converter"
	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/io"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/point_neighborhood"
	"github.com/ecopia-map/cloud_classifier/internal/strategy"
	"github.com/ecopia-map/cloud_classifier/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options *classification.ClassifierOptions
}

func NewAlgorithmManager(opts *classification.ClassifierOptions) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		options: opts,
	}
}

func (m *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return offset_elevation_corrector.NewOffsetElevationCorrector(m.options.ZOffset)
}

func (m *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return local_origin_converter.NewLocalOriginConverter()
}

func (m *StandardAlgorithmManager) GetStrategyAlgorithm(points []data.Point, neighborhood *point_neighborhood.Neighborhood) (strategy.Strategy, error) {
	switch m.options.Strategy {
	case classification.Raw:
		return strategy.NewRaw(m.options.Workers), nil
	case classification.LocalSmoothing:
		query := neighborhood.SphereNeighborQuery(m.options.RadiusNeighbors, false)
		return strategy.NewLocalSmoothing(query, m.options.Workers), nil
	case classification.GraphCut:
		query := neighborhood.KNeighborQuery(m.options.GraphCut.Neighbors, true)
		subdivisions := m.options.GraphCut.Subdivisions
		if subdivisions == 0 {
			subdivisions = classification.DefaultGraphCutSubdivisions
		}
		return strategy.NewGraphCut(
			points,
			query,
			m.options.GraphCut.Smoothness,
			subdivisions,
			m.options.GraphCut.MaxIterations,
			m.options.Workers,
		), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", classification.ErrInvalidOptions, string(m.options.Strategy))
}

func (m *StandardAlgorithmManager) GetPointWriter() io.PointWriter {
	return io.NewPlyWriter("generated by cloud_classifier", "strategy "+m.options.Strategy.String())
}

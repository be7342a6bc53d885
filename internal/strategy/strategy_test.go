package strategy

import (
	"math/rand"
	"testing"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/spatial"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/point_neighborhood"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrixScorer serves scores from a fixed table
type matrixScorer struct {
	scores [][]float64
}

func (m *matrixScorer) NumberOfLabels() int {
	if len(m.scores) == 0 {
		return 0
	}
	return len(m.scores[0])
}

func (m *matrixScorer) NumberOfPoints() int {
	return len(m.scores)
}

func (m *matrixScorer) Scores(i int, dst []float64) []float64 {
	return append(dst[:0], m.scores[i]...)
}

func linePoints(n int) []data.Point {
	points := make([]data.Point, n)
	for i := range points {
		points[i] = data.NewPoint(float64(i), 0, 0, 0, 0, 0)
	}
	return points
}

func randomScorer(seed int64, n, labels int) *matrixScorer {
	rng := rand.New(rand.NewSource(seed))
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, labels)
		for l := range scores[i] {
			scores[i][l] = rng.Float64()
		}
	}
	return &matrixScorer{scores: scores}
}

func TestRaw(t *testing.T) {
	scorer := &matrixScorer{scores: [][]float64{
		{0.1, 0.9, 0.3},
		{0.5, 0.5, 0.1},
		{-1, -2, -0.5},
		{0, 0, 0},
	}}

	labels, err := NewRaw(2).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2, 0}, labels)
}

func TestRaw_Empty(t *testing.T) {
	labels, err := NewRaw(2).Classify(&matrixScorer{})
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestRaw_NoLabels(t *testing.T) {
	scorer := &matrixScorer{scores: [][]float64{{}, {}}}
	labels, err := NewRaw(1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{label.Unassigned, label.Unassigned}, labels)
}

func TestLocalSmoothing_WithoutNeighborsMatchesRaw(t *testing.T) {
	scorer := randomScorer(3, 200, 3)
	raw, err := NewRaw(4).Classify(scorer)
	require.NoError(t, err)

	points := make([]data.Point, 200)
	rng := rand.New(rand.NewSource(4))
	for i := range points {
		points[i] = data.NewPoint(rng.Float64()*50, rng.Float64()*50, rng.Float64()*50, 0, 0, 0)
	}
	neighborhood := point_neighborhood.NewNeighborhood(points)

	queries := map[string]spatial.NeighborQuery{
		"radius zero":    neighborhood.SphereNeighborQuery(0, false),
		"self excluded":  neighborhood.SphereNeighborQuery(0, true),
		"no neighbors":   spatial.NeighborQueryFunc(func(int) []int { return nil }),
		"only the point": spatial.NeighborQueryFunc(func(i int) []int { return []int{i} }),
	}
	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			smoothed, err := NewLocalSmoothing(query, 3).Classify(scorer)
			require.NoError(t, err)
			if diff := cmp.Diff(raw, smoothed); diff != "" {
				t.Errorf("smoothing without neighbors differs from raw (-raw +smoothed):\n%s", diff)
			}
		})
	}
}

func TestLocalSmoothing_RemovesOutlier(t *testing.T) {
	scorer := &matrixScorer{scores: [][]float64{
		{1, 0}, {1, 0}, {0.4, 0.6}, {1, 0}, {1, 0},
	}}
	neighborhood := point_neighborhood.NewNeighborhood(linePoints(5))

	raw, err := NewRaw(1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 0, 0}, raw)

	smoothed, err := NewLocalSmoothing(neighborhood.SphereNeighborQuery(1, false), 1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, smoothed)
}

func TestGraphCut_ZeroSmoothnessMatchesRaw(t *testing.T) {
	scorer := randomScorer(5, 150, 3)
	points := linePoints(150)
	neighborhood := point_neighborhood.NewNeighborhood(points)

	raw, err := NewRaw(2).Classify(scorer)
	require.NoError(t, err)

	cut, err := NewGraphCut(points, neighborhood.KNeighborQuery(12, true), 0, 4, 10, 2).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, raw, cut)
}

func TestGraphCut_TinySmoothnessMatchesRaw(t *testing.T) {
	scorer := &matrixScorer{scores: [][]float64{
		{1, 0}, {0, 1}, {1, 0}, {0, 1},
	}}
	points := linePoints(4)
	neighborhood := point_neighborhood.NewNeighborhood(points)

	cut, err := NewGraphCut(points, neighborhood.KNeighborQuery(2, true), 0.01, 1, 10, 1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, cut)
}

func TestGraphCut_RemovesOutlier(t *testing.T) {
	scorer := &matrixScorer{scores: [][]float64{
		{1, 0}, {1, 0}, {1, 0}, {0.4, 0.6}, {1, 0}, {1, 0}, {1, 0},
	}}
	points := linePoints(7)
	neighborhood := point_neighborhood.NewNeighborhood(points)

	cut, err := NewGraphCut(points, neighborhood.KNeighborQuery(2, true), 0.5, 1, 10, 1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, cut)
}

func TestGraphCut_Idempotent(t *testing.T) {
	scorer := randomScorer(8, 400, 3)
	rng := rand.New(rand.NewSource(9))
	points := make([]data.Point, 400)
	for i := range points {
		points[i] = data.NewPoint(rng.Float64()*20, rng.Float64()*20, rng.Float64()*2, 0, 0, 0)
	}
	neighborhood := point_neighborhood.NewNeighborhood(points)
	strategy := NewGraphCut(points, neighborhood.KNeighborQuery(12, true), 0.2, 4, 10, 4)

	first, err := strategy.Classify(scorer)
	require.NoError(t, err)
	second, err := strategy.Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	sequential, err := NewGraphCut(points, neighborhood.KNeighborQuery(12, true), 0.2, 4, 10, 1).Classify(scorer)
	require.NoError(t, err)
	assert.Equal(t, first, sequential)
}

func TestGraphCut_PointCountMismatch(t *testing.T) {
	scorer := randomScorer(1, 3, 2)
	_, err := NewGraphCut(linePoints(2), spatial.NeighborQueryFunc(func(int) []int { return nil }), 0.2, 1, 10, 1).Classify(scorer)
	assert.Error(t, err)
}

func TestPlanimetricTiles(t *testing.T) {
	points := []data.Point{
		data.NewPoint(0, 0, 0, 0, 0, 0),
		data.NewPoint(10, 0, 0, 0, 0, 0),
		data.NewPoint(0, 10, 0, 0, 0, 0),
		data.NewPoint(10, 10, 0, 0, 0, 0),
		data.NewPoint(1, 1, 0, 0, 0, 0),
	}

	tileOf, tiles := planimetricTiles(points, 4)
	assert.Equal(t, []int{0, 1, 2, 3, 0}, tileOf)
	assert.Equal(t, [][]int{{0, 4}, {1}, {2}, {3}}, tiles)

	tileOf, tiles = planimetricTiles(points, 1)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, tileOf)
	assert.Len(t, tiles, 1)
}

func TestTileComponents(t *testing.T) {
	adjacency := [][]int{{1}, {0}, {3}, {2}, {}}
	tileOf := []int{0, 0, 0, 0, 0}

	components := tileComponents([]int{0, 1, 2, 3, 4}, tileOf, adjacency)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, components)

	// an edge leaving the tile is ignored
	tileOf = []int{0, 1, 0, 0, 0}
	components = tileComponents([]int{0, 2, 3, 4}, tileOf, adjacency)
	assert.Equal(t, [][]int{{0}, {2, 3}, {4}}, components)
}

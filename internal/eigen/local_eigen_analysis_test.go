package eigen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/point_neighborhood"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func create(t *testing.T, points []data.Point, k int, workers int) *LocalEigenAnalysis {
	t.Helper()
	neighborhood := point_neighborhood.NewNeighborhood(points)
	analysis, err := Create(points, neighborhood.KNeighborQuery(k, false), workers)
	require.NoError(t, err)
	require.Equal(t, len(points), analysis.Len())
	return analysis
}

func assertOrthonormal(t *testing.T, a *Analysis) {
	t.Helper()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			assert.InDelta(t, want, dot(a.Vectors[r], a.Vectors[c]), 1e-9)
		}
	}
}

func TestCreate_RandomCloud(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	points := make([]data.Point, 300)
	for i := range points {
		points[i] = data.NewPoint(rng.Float64()*5, rng.Float64()*5, rng.Float64()*5, 0, 0, 0)
	}
	analysis := create(t, points, 6, 4)

	for i := 0; i < analysis.Len(); i++ {
		a := analysis.At(i)
		assert.GreaterOrEqual(t, a.Values[0], 0.0)
		assert.LessOrEqual(t, a.Values[0], a.Values[1])
		assert.LessOrEqual(t, a.Values[1], a.Values[2])
		assertOrthonormal(t, a)
	}
}

func TestCreate_PlaneNormal(t *testing.T) {
	points := make([]data.Point, 0, 100)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			points = append(points, data.NewPoint(float64(x)*0.3, float64(y)*0.3, 2, 0, 0, 0))
		}
	}
	analysis := create(t, points, 6, 2)

	for i := 0; i < analysis.Len(); i++ {
		assert.InDelta(t, 1.0, math.Abs(analysis.Normal(i)[2]), tolerance)
		assert.InDelta(t, 0.0, analysis.Values(i)[0], tolerance)
		assert.InDelta(t, 2.0, analysis.Centroid(i)[2], tolerance)
	}
	assert.Equal(t, int64(0), analysis.DegenerateCount())
}

func TestCreate_CollinearNeighborhood(t *testing.T) {
	points := make([]data.Point, 20)
	for i := range points {
		points[i] = data.NewPoint(float64(i), 0, 0, 0, 0, 0)
	}
	analysis := create(t, points, 6, 1)

	for i := 0; i < analysis.Len(); i++ {
		a := analysis.At(i)
		assert.InDelta(t, 0.0, a.Values[0], tolerance)
		assert.InDelta(t, 0.0, a.Values[1], tolerance)
		assert.Greater(t, a.Values[2], 0.0)
		assert.InDelta(t, 1.0, math.Abs(a.Vectors[2][0]), tolerance)
		assertOrthonormal(t, a)
	}
}

func TestCreate_DegenerateNeighborhoods(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		analysis := create(t, []data.Point{data.NewPoint(1, 2, 3, 0, 0, 0)}, 6, 1)

		a := analysis.At(0)
		assert.Equal(t, [3]float64{}, a.Values)
		assert.Equal(t, canonicalVectors, a.Vectors)
		assert.Equal(t, [3]float64{1, 2, 3}, a.Centroid)
		assert.Equal(t, int64(1), analysis.DegenerateCount())
	})

	t.Run("duplicate points", func(t *testing.T) {
		points := make([]data.Point, 8)
		for i := range points {
			points[i] = data.NewPoint(4, 4, 4, 0, 0, 0)
		}
		analysis := create(t, points, 6, 2)

		for i := 0; i < analysis.Len(); i++ {
			assert.Equal(t, [3]float64{0, 0, 1}, analysis.Normal(i))
			assert.Equal(t, [3]float64{}, analysis.Values(i))
		}
		assert.Equal(t, int64(8), analysis.DegenerateCount())
	})

	t.Run("empty cloud", func(t *testing.T) {
		analysis := create(t, nil, 6, 2)
		assert.Equal(t, 0, analysis.Len())
	})
}

func TestCreate_DeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	points := make([]data.Point, 500)
	for i := range points {
		points[i] = data.NewPoint(rng.Float64()*10, rng.Float64()*10, rng.Float64(), 0, 0, 0)
	}

	sequential := create(t, points, 6, 1)
	parallel := create(t, points, 6, 8)

	if diff := cmp.Diff(sequential.analyses, parallel.analyses); diff != "" {
		t.Errorf("parallel analysis differs from sequential (-seq +par):\n%s", diff)
	}
}

package classification

import (
	"errors"
	"math"
	"testing"

	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, Raw, ParseStrategy("raw"))
	assert.Equal(t, LocalSmoothing, ParseStrategy(" local-smoothing "))
	assert.Equal(t, LocalSmoothing, ParseStrategy("SMOOTHING"))
	assert.Equal(t, GraphCut, ParseStrategy("graph_cut"))
	assert.Equal(t, GraphCut, ParseStrategy("GraphCut"))
	assert.Equal(t, Strategy(""), ParseStrategy("random"))
}

func TestDefaultOptionsAreValid(t *testing.T) {
	opt := DefaultOptions()
	assert.NoError(t, opt.Validate())
	assert.Equal(t, LocalSmoothing, opt.Strategy)
	assert.Equal(t, DefaultGraphCutSubdivisions, opt.GraphCut.Subdivisions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(opt *ClassifierOptions)
	}{
		{"zero grid resolution", func(opt *ClassifierOptions) { opt.GridResolution = 0 }},
		{"infinite grid resolution", func(opt *ClassifierOptions) { opt.GridResolution = math.Inf(1) }},
		{"no eigen neighbors", func(opt *ClassifierOptions) { opt.EigenNeighbors = 0 }},
		{"negative neighbor radius", func(opt *ClassifierOptions) { opt.RadiusNeighbors = -1 }},
		{"nan terrain radius", func(opt *ClassifierOptions) { opt.RadiusDTM = math.NaN() }},
		{"negative workers", func(opt *ClassifierOptions) { opt.Workers = -2 }},
		{"infinite z offset", func(opt *ClassifierOptions) { opt.ZOffset = math.Inf(-1) }},
		{"unknown strategy", func(opt *ClassifierOptions) { opt.Strategy = "RANDOM" }},
		{"graph cut without neighbors", func(opt *ClassifierOptions) { opt.GraphCut.Neighbors = 0 }},
		{"negative smoothness", func(opt *ClassifierOptions) { opt.GraphCut.Smoothness = -0.1 }},
		{"negative subdivisions", func(opt *ClassifierOptions) { opt.GraphCut.Subdivisions = -1 }},
		{"no iterations", func(opt *ClassifierOptions) { opt.GraphCut.MaxIterations = 0 }},
		{"no labels", func(opt *ClassifierOptions) { opt.Labels = nil }},
		{"empty label name", func(opt *ClassifierOptions) { opt.Labels[1].Name = "" }},
		{"duplicated label", func(opt *ClassifierOptions) { opt.Labels[2].Name = opt.Labels[0].Name }},
		{"nan weight", func(opt *ClassifierOptions) { opt.Weights["elevation"] = math.NaN() }},
		{"effect on unknown label", func(opt *ClassifierOptions) { opt.Effects[0].Label = "water" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := DefaultOptions()
			tt.modify(opt)
			err := opt.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
		})
	}
}

func TestGraphCutParametersIgnoredByOtherStrategies(t *testing.T) {
	opt := DefaultOptions()
	opt.Strategy = LocalSmoothing
	opt.GraphCut = GraphCutOptions{}
	assert.NoError(t, opt.Validate())
}

func TestCopyIsDeep(t *testing.T) {
	opt := DefaultOptions()
	cp := opt.Copy()
	assert.Equal(t, opt, cp)

	cp.Labels[0].Color.R = 1
	cp.Labels[1].Name = "trees"
	cp.Weights["elevation"] = 0
	cp.Effects[0].Label = "roof"

	assert.Equal(t, &label.Color{R: 245, G: 180, B: 0}, opt.Labels[0].Color)
	assert.Equal(t, "vegetation", opt.Labels[1].Name)
	assert.Equal(t, 14.7, opt.Weights["elevation"])
	assert.Equal(t, "ground", opt.Effects[0].Label)
}

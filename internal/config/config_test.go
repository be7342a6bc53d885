package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/weighted_classifier"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadClassificationConfig(t *testing.T) {
	path := writeConfig(t, "classification.json", `{
  "grid_resolution": 0.5,
  "eigen_neighbors": 8,
  "strategy": "local_smoothing",
  "graph_cut": {"smoothness": 0.4},
  "labels": [{"name": "ground", "color": [1, 2, 3], "standard_index": 2}, {"name": "building"}],
  "weights": {"elevation": 2.5},
  "effects": {"building": {"elevation": "FAVORING"}}
}`)

	cfg, err := LoadClassificationConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.GridResolution)
	assert.Equal(t, 0.5, *cfg.GridResolution)
	require.NotNil(t, cfg.EigenNeighbors)
	assert.Equal(t, 8, *cfg.EigenNeighbors)
	require.NotNil(t, cfg.GraphCut)
	assert.Nil(t, cfg.GraphCut.Neighbors)
	assert.Len(t, cfg.Labels, 2)

	// getters fall back to defaults for unset fields
	assert.Equal(t, 0.5, cfg.GetGridResolution())
	assert.Equal(t, 1.7, cfg.GetRadiusNeighbors())
	assert.Equal(t, 15.0, cfg.GetRadiusDTM())
	assert.Equal(t, 0, cfg.GetWorkers())
}

func TestLoadClassificationConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{"wrong extension", "config.yaml", `{}`, "must have .json extension"},
		{"invalid json", "config.json", `{"grid_resolution": `, "failed to parse config JSON"},
		{"negative resolution", "config.json", `{"grid_resolution": -1}`, "grid_resolution must be positive"},
		{"unknown strategy", "config.json", `{"strategy": "random"}`, "unknown strategy"},
		{"unknown effect", "config.json", `{"effects": {"ground": {"elevation": "maybe"}}}`, "unknown effect"},
		{"duplicated label", "config.json", `{"labels": [{"name": "a"}, {"name": "a"}]}`, "defined twice"},
		{"effect on unknown label", "config.json", `{"labels": [{"name": "a"}], "effects": {"b": {"elevation": "favoring"}}}`, "unknown label"},
		{"zero iterations", "config.json", `{"graph_cut": {"max_iterations": 0}}`, "max_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := LoadClassificationConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadClassificationConfigMissingFile(t *testing.T) {
	_, err := LoadClassificationConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")
}

func TestLoadClassificationConfigTooLarge(t *testing.T) {
	path := writeConfig(t, "large.json", `{"labels": [`+strings.Repeat(" ", 1024*1024)+`]}`)
	_, err := LoadClassificationConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestDefaultConfigMatchesDefaultOptions(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	opt := classification.DefaultOptions()
	opt.Labels = nil
	opt.Weights = nil
	opt.Effects = nil
	require.NoError(t, cfg.ApplyTo(opt))
	require.NoError(t, opt.Validate())

	expected := classification.DefaultOptions()
	expected.Recenter = true

	assert.Equal(t, expected.GridResolution, opt.GridResolution)
	assert.Equal(t, expected.EigenNeighbors, opt.EigenNeighbors)
	assert.Equal(t, expected.RadiusNeighbors, opt.RadiusNeighbors)
	assert.Equal(t, expected.RadiusDTM, opt.RadiusDTM)
	assert.Equal(t, expected.Strategy, opt.Strategy)
	assert.Equal(t, expected.GraphCut, opt.GraphCut)
	assert.Equal(t, expected.Recenter, opt.Recenter)

	if diff := cmp.Diff(expected.Labels, opt.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expected.Weights, opt.Weights); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}

	// effects come out sorted by label then feature
	effects := make(map[[2]string]weighted_classifier.Effect, len(expected.Effects))
	for _, e := range expected.Effects {
		effects[[2]string{e.Label, e.Feature}] = e.Effect
	}
	require.Len(t, opt.Effects, len(expected.Effects))
	for i, e := range opt.Effects {
		assert.Equal(t, effects[[2]string{e.Label, e.Feature}], e.Effect, "%s/%s", e.Label, e.Feature)
		if i > 0 {
			prev := opt.Effects[i-1]
			assert.True(t, prev.Label < e.Label || (prev.Label == e.Label && prev.Feature < e.Feature))
		}
	}
}

func TestApplyToKeepsUnsetValues(t *testing.T) {
	opt := classification.DefaultOptions()
	opt.Input = "cloud.ply"
	before := opt.Copy()

	require.NoError(t, EmptyClassificationConfig().ApplyTo(opt))
	if diff := cmp.Diff(before, opt); diff != "" {
		t.Errorf("options changed (-want +got):\n%s", diff)
	}
}

func TestApplyToOverrides(t *testing.T) {
	resolution := 1.0
	strategy := "raw"
	standardIndex := 9
	cfg := &ClassificationConfig{
		GridResolution: &resolution,
		Strategy:       &strategy,
		Labels: []LabelConfig{
			{Name: "water", Color: &[3]uint8{0, 0, 255}, StandardIndex: &standardIndex},
			{Name: "other"},
		},
		Weights: map[string]float64{"elevation": 3},
		Effects: map[string]map[string]string{"water": {"elevation": "penalizing"}},
	}

	opt := classification.DefaultOptions()
	require.NoError(t, cfg.ApplyTo(opt))

	assert.Equal(t, 1.0, opt.GridResolution)
	assert.Equal(t, classification.Raw, opt.Strategy)
	assert.Equal(t, []classification.LabelOptions{
		{Name: "water", Color: &label.Color{R: 0, G: 0, B: 255}, StandardIndex: 9},
		{Name: "other", StandardIndex: label.NoStandardIndex},
	}, opt.Labels)
	assert.Equal(t, map[string]float64{"elevation": 3}, opt.Weights)
	assert.Equal(t, []classification.EffectOptions{
		{Label: "water", Feature: "elevation", Effect: weighted_classifier.Penalizing},
	}, opt.Effects)
}

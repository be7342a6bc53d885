package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/weighted_classifier"
)

// DefaultConfigPath is the path to the reference classification configuration.
const DefaultConfigPath = "config/classification.defaults.json"

// ClassificationConfig is the JSON representation of the classification parameters. Fields omitted from the
// file keep the value of the options the config is applied to.
type ClassificationConfig struct {
	// Feature params
	GridResolution  *float64 `json:"grid_resolution,omitempty"`
	EigenNeighbors  *int     `json:"eigen_neighbors,omitempty"`
	RadiusNeighbors *float64 `json:"radius_neighbors,omitempty"`
	RadiusDTM       *float64 `json:"radius_dtm,omitempty"`
	ColorFeatures   *bool    `json:"color_features,omitempty"`

	// Input params
	ZOffset  *float64 `json:"z_offset,omitempty"`
	Recenter *bool    `json:"recenter,omitempty"`

	// Classifier params
	Labels  []LabelConfig                `json:"labels,omitempty"`
	Weights map[string]float64           `json:"weights,omitempty"`
	Effects map[string]map[string]string `json:"effects,omitempty"` // label -> feature -> effect

	// Strategy params
	Strategy *string         `json:"strategy,omitempty"`
	GraphCut *GraphCutConfig `json:"graph_cut,omitempty"`
	Workers  *int            `json:"workers,omitempty"`
}

type LabelConfig struct {
	Name          string    `json:"name"`
	Color         *[3]uint8 `json:"color,omitempty"`
	StandardIndex *int      `json:"standard_index,omitempty"`
}

type GraphCutConfig struct {
	Neighbors     *int     `json:"neighbors,omitempty"`
	Smoothness    *float64 `json:"smoothness,omitempty"`
	Subdivisions  *int     `json:"subdivisions,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
}

// EmptyClassificationConfig returns a config with every field unset.
func EmptyClassificationConfig() *ClassificationConfig {
	return &ClassificationConfig{}
}

// LoadClassificationConfig loads a ClassificationConfig from a JSON file.
// The file must have a .json extension and be smaller than 1MB.
func LoadClassificationConfig(path string) (*ClassificationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyClassificationConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory or one of its parents.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ClassificationConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadClassificationConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *ClassificationConfig) Validate() error {
	if c.GridResolution != nil && !(*c.GridResolution > 0) {
		return fmt.Errorf("grid_resolution must be positive, got %v", *c.GridResolution)
	}
	if c.EigenNeighbors != nil && *c.EigenNeighbors < 1 {
		return fmt.Errorf("eigen_neighbors must be at least 1, got %d", *c.EigenNeighbors)
	}
	if c.RadiusNeighbors != nil && !(*c.RadiusNeighbors >= 0) {
		return fmt.Errorf("radius_neighbors must be non-negative, got %v", *c.RadiusNeighbors)
	}
	if c.RadiusDTM != nil && !(*c.RadiusDTM >= 0) {
		return fmt.Errorf("radius_dtm must be non-negative, got %v", *c.RadiusDTM)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	if c.Strategy != nil && classification.ParseStrategy(*c.Strategy) == "" {
		return fmt.Errorf("unknown strategy %q", *c.Strategy)
	}

	if c.GraphCut != nil {
		if c.GraphCut.Neighbors != nil && *c.GraphCut.Neighbors < 1 {
			return fmt.Errorf("graph_cut.neighbors must be at least 1, got %d", *c.GraphCut.Neighbors)
		}
		if c.GraphCut.Smoothness != nil && !(*c.GraphCut.Smoothness >= 0) {
			return fmt.Errorf("graph_cut.smoothness must be non-negative, got %v", *c.GraphCut.Smoothness)
		}
		if c.GraphCut.Subdivisions != nil && *c.GraphCut.Subdivisions < 0 {
			return fmt.Errorf("graph_cut.subdivisions must be non-negative, got %d", *c.GraphCut.Subdivisions)
		}
		if c.GraphCut.MaxIterations != nil && *c.GraphCut.MaxIterations < 1 {
			return fmt.Errorf("graph_cut.max_iterations must be at least 1, got %d", *c.GraphCut.MaxIterations)
		}
	}

	names := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if l.Name == "" {
			return fmt.Errorf("label names must not be empty")
		}
		if names[l.Name] {
			return fmt.Errorf("label %q defined twice", l.Name)
		}
		names[l.Name] = true
	}

	for name, weight := range c.Weights {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("weight of %q must be finite, got %v", name, weight)
		}
	}

	for labelName, effects := range c.Effects {
		if len(c.Labels) > 0 && !names[labelName] {
			return fmt.Errorf("effects reference unknown label %q", labelName)
		}
		for featureName, effect := range effects {
			if _, err := weighted_classifier.ParseEffect(effect); err != nil {
				return fmt.Errorf("effect of %q on %q: %w", featureName, labelName, err)
			}
		}
	}

	return nil
}

// ApplyTo overrides the options with every value set in the config.
// Labels, weights and effects given in the config replace the ones of the options.
func (c *ClassificationConfig) ApplyTo(opt *classification.ClassifierOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.GridResolution != nil {
		opt.GridResolution = *c.GridResolution
	}
	if c.EigenNeighbors != nil {
		opt.EigenNeighbors = *c.EigenNeighbors
	}
	if c.RadiusNeighbors != nil {
		opt.RadiusNeighbors = *c.RadiusNeighbors
	}
	if c.RadiusDTM != nil {
		opt.RadiusDTM = *c.RadiusDTM
	}
	if c.ColorFeatures != nil {
		opt.ColorFeatures = *c.ColorFeatures
	}
	if c.ZOffset != nil {
		opt.ZOffset = *c.ZOffset
	}
	if c.Recenter != nil {
		opt.Recenter = *c.Recenter
	}
	if c.Workers != nil {
		opt.Workers = *c.Workers
	}
	if c.Strategy != nil {
		opt.Strategy = classification.ParseStrategy(*c.Strategy)
	}

	if c.GraphCut != nil {
		if c.GraphCut.Neighbors != nil {
			opt.GraphCut.Neighbors = *c.GraphCut.Neighbors
		}
		if c.GraphCut.Smoothness != nil {
			opt.GraphCut.Smoothness = *c.GraphCut.Smoothness
		}
		if c.GraphCut.Subdivisions != nil {
			opt.GraphCut.Subdivisions = *c.GraphCut.Subdivisions
		}
		if c.GraphCut.MaxIterations != nil {
			opt.GraphCut.MaxIterations = *c.GraphCut.MaxIterations
		}
	}

	if len(c.Labels) > 0 {
		opt.Labels = make([]classification.LabelOptions, len(c.Labels))
		for i, l := range c.Labels {
			opt.Labels[i] = classification.LabelOptions{
				Name:          l.Name,
				StandardIndex: label.NoStandardIndex,
			}
			if l.Color != nil {
				opt.Labels[i].Color = &label.Color{R: l.Color[0], G: l.Color[1], B: l.Color[2]}
			}
			if l.StandardIndex != nil {
				opt.Labels[i].StandardIndex = *l.StandardIndex
			}
		}
	}

	if len(c.Weights) > 0 {
		opt.Weights = make(map[string]float64, len(c.Weights))
		for name, weight := range c.Weights {
			opt.Weights[name] = weight
		}
	}

	if len(c.Effects) > 0 {
		opt.Effects = opt.Effects[:0:0]
		labelNames := make([]string, 0, len(c.Effects))
		for labelName := range c.Effects {
			labelNames = append(labelNames, labelName)
		}
		sort.Strings(labelNames)
		for _, labelName := range labelNames {
			featureNames := make([]string, 0, len(c.Effects[labelName]))
			for featureName := range c.Effects[labelName] {
				featureNames = append(featureNames, featureName)
			}
			sort.Strings(featureNames)
			for _, featureName := range featureNames {
				effect, _ := weighted_classifier.ParseEffect(c.Effects[labelName][featureName])
				opt.Effects = append(opt.Effects, classification.EffectOptions{
					Label:   labelName,
					Feature: featureName,
					Effect:  effect,
				})
			}
		}
	}

	return nil
}

// GetGridResolution returns the grid_resolution value or the default.
func (c *ClassificationConfig) GetGridResolution() float64 {
	if c.GridResolution == nil {
		return 0.34 // default
	}
	return *c.GridResolution
}

// GetRadiusNeighbors returns the radius_neighbors value or the default.
func (c *ClassificationConfig) GetRadiusNeighbors() float64 {
	if c.RadiusNeighbors == nil {
		return 1.7 // default
	}
	return *c.RadiusNeighbors
}

// GetRadiusDTM returns the radius_dtm value or the default.
func (c *ClassificationConfig) GetRadiusDTM() float64 {
	if c.RadiusDTM == nil {
		return 15.0 // default
	}
	return *c.RadiusDTM
}

// GetWorkers returns the workers value or the default.
func (c *ClassificationConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0 // default, one per CPU
	}
	return *c.Workers
}

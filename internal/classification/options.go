package classification

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/weighted_classifier"
)

var ErrInvalidOptions = errors.New("invalid classification options")

type Strategy string

const (
	// Every point gets its best scoring label independently of its neighbors
	Raw Strategy = "RAW"

	// Scores are summed over a sphere of radius RadiusNeighbors around each point before picking the best label
	LocalSmoothing Strategy = "LOCAL_SMOOTHING"

	// Labels are optimized jointly over the k nearest neighbors graph, trading scores against label changes
	// between neighbors
	GraphCut Strategy = "GRAPH_CUT"
)

func (s Strategy) String() string {
	return string(s)
}

func ParseStrategy(value string) Strategy {
	normalizedValue := strings.ReplaceAll(strings.Trim(strings.ToUpper(value), " "), "-", "_")
	switch normalizedValue {
	case "RAW":
		return Raw
	case "LOCAL_SMOOTHING", "SMOOTHING":
		return LocalSmoothing
	case "GRAPH_CUT", "GRAPHCUT":
		return GraphCut
	}
	return ""
}

// LabelOptions defines a label of the classification
type LabelOptions struct {
	Name          string
	Color         *label.Color
	StandardIndex int
}

// EffectOptions defines the effect of a feature on a label
type EffectOptions struct {
	Label   string
	Feature string
	Effect  weighted_classifier.Effect
}

// Tiles of the graph cut partition when none is configured. The partition changes the labels, so it never
// follows the number of CPUs.
const DefaultGraphCutSubdivisions = 4

type GraphCutOptions struct {
	Neighbors     int     // number of nearest neighbors linked to each point
	Smoothness    float64 // penalty paid by every pair of neighbors with different labels
	Subdivisions  int     // number of planimetric tiles solved independently, 0 means DefaultGraphCutSubdivisions
	MaxIterations int     // maximum number of alpha expansion cycles
}

// Contains the options needed for the classification pipeline
type ClassifierOptions struct {
	Input            string             // Input point cloud file/folder
	Output           string             // Output PLY file, or folder when FolderProcessing is set
	ZOffset          float64            // Z Offset in meters to apply to points after reading
	Recenter         bool               // Moves the cloud origin to its bounding box minimum before processing
	FolderProcessing bool               // Enables the processing of all point cloud files in folder
	Recursive        bool               // Recursive lookup of point cloud files in subfolders
	GridResolution   float64            // Size of the planimetric grid cells
	EigenNeighbors   int                // Number of neighbors of the local eigen analysis
	RadiusNeighbors  float64            // Radius of the vertical dispersion columns and of the local smoothing
	RadiusDTM        float64            // Radius of the terrain estimation of the elevation feature
	ColorFeatures    bool               // Adds the HSV color channels to the features when the cloud has colors
	Labels           []LabelOptions     // Labels in priority order, ties go to the first one
	Weights          map[string]float64 // Weight of each feature by name, missing features keep weight 1
	Effects          []EffectOptions    // Effects of features on labels, missing pairs are neutral
	Strategy         Strategy           // Classification strategy to use
	GraphCut         GraphCutOptions    // Graph cut parameters
	Workers          int                // Number of worker goroutines, 0 means one per CPU
	ReportPath       string             // Optional JSON classification report
}

// Returns the options of the reference ground / vegetation / roof classification
func DefaultOptions() *ClassifierOptions {
	return &ClassifierOptions{
		Input:           "data/b9.ply",
		Output:          "classification.ply",
		GridResolution:  0.34,
		EigenNeighbors:  6,
		RadiusNeighbors: 1.7,
		RadiusDTM:       15.0,
		Labels: []LabelOptions{
			{Name: "ground", Color: &label.Color{R: 245, G: 180, B: 0}, StandardIndex: 2},
			{Name: "vegetation", Color: &label.Color{R: 0, G: 255, B: 27}, StandardIndex: 3},
			{Name: "roof", Color: &label.Color{R: 255, G: 0, B: 170}, StandardIndex: 6},
		},
		Weights: map[string]float64{
			"distance_to_plane":   6.75e-2,
			"vertical_dispersion": 5.45e-1,
			"elevation":           1.47e1,
		},
		Effects: []EffectOptions{
			{Label: "ground", Feature: "distance_to_plane", Effect: weighted_classifier.Neutral},
			{Label: "ground", Feature: "vertical_dispersion", Effect: weighted_classifier.Neutral},
			{Label: "ground", Feature: "elevation", Effect: weighted_classifier.Penalizing},
			{Label: "vegetation", Feature: "distance_to_plane", Effect: weighted_classifier.Favoring},
			{Label: "vegetation", Feature: "vertical_dispersion", Effect: weighted_classifier.Favoring},
			{Label: "vegetation", Feature: "elevation", Effect: weighted_classifier.Neutral},
			{Label: "roof", Feature: "distance_to_plane", Effect: weighted_classifier.Neutral},
			{Label: "roof", Feature: "vertical_dispersion", Effect: weighted_classifier.Neutral},
			{Label: "roof", Feature: "elevation", Effect: weighted_classifier.Favoring},
		},
		Strategy: LocalSmoothing,
		GraphCut: GraphCutOptions{
			Neighbors:     12,
			Smoothness:    0.2,
			Subdivisions:  DefaultGraphCutSubdivisions,
			MaxIterations: 10,
		},
		Workers: 0,
	}
}

func (opt *ClassifierOptions) Copy() *ClassifierOptions {
	newOpt := *opt

	newOpt.Labels = make([]LabelOptions, len(opt.Labels))
	for i, l := range opt.Labels {
		newOpt.Labels[i] = l
		if l.Color != nil {
			color := *l.Color
			newOpt.Labels[i].Color = &color
		}
	}

	newOpt.Weights = make(map[string]float64, len(opt.Weights))
	for name, weight := range opt.Weights {
		newOpt.Weights[name] = weight
	}

	newOpt.Effects = append([]EffectOptions(nil), opt.Effects...)

	return &newOpt
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

// Checks the options before any classification work
func (opt *ClassifierOptions) Validate() error {
	if !isPositive(opt.GridResolution) {
		return invalid("grid resolution must be positive, got %v", opt.GridResolution)
	}
	if opt.EigenNeighbors < 1 {
		return invalid("eigen analysis needs at least 1 neighbor, got %d", opt.EigenNeighbors)
	}
	if !(opt.RadiusNeighbors >= 0) || math.IsInf(opt.RadiusNeighbors, 1) {
		return invalid("neighbor radius must be non-negative, got %v", opt.RadiusNeighbors)
	}
	if !(opt.RadiusDTM >= 0) || math.IsInf(opt.RadiusDTM, 1) {
		return invalid("terrain radius must be non-negative, got %v", opt.RadiusDTM)
	}
	if opt.Workers < 0 {
		return invalid("workers must be non-negative, got %d", opt.Workers)
	}
	if math.IsNaN(opt.ZOffset) || math.IsInf(opt.ZOffset, 0) {
		return invalid("z offset must be finite, got %v", opt.ZOffset)
	}

	switch opt.Strategy {
	case Raw, LocalSmoothing:
	case GraphCut:
		if opt.GraphCut.Neighbors < 1 {
			return invalid("graph cut needs at least 1 neighbor, got %d", opt.GraphCut.Neighbors)
		}
		if !(opt.GraphCut.Smoothness >= 0) || math.IsInf(opt.GraphCut.Smoothness, 1) {
			return invalid("graph cut smoothness must be non-negative, got %v", opt.GraphCut.Smoothness)
		}
		if opt.GraphCut.Subdivisions < 0 {
			return invalid("graph cut subdivisions must be non-negative, got %d", opt.GraphCut.Subdivisions)
		}
		if opt.GraphCut.MaxIterations < 1 {
			return invalid("graph cut needs at least 1 iteration, got %d", opt.GraphCut.MaxIterations)
		}
	default:
		return invalid("unknown strategy %q", string(opt.Strategy))
	}

	if len(opt.Labels) == 0 {
		return invalid("at least one label is required")
	}
	names := make(map[string]bool, len(opt.Labels))
	for _, l := range opt.Labels {
		if l.Name == "" {
			return invalid("label names must not be empty")
		}
		if names[l.Name] {
			return invalid("label %s defined twice", l.Name)
		}
		names[l.Name] = true
	}

	for name, weight := range opt.Weights {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return invalid("weight of %s must be finite, got %v", name, weight)
		}
	}
	for _, e := range opt.Effects {
		if !names[e.Label] {
			return invalid("effect on unknown label %s", e.Label)
		}
	}

	return nil
}

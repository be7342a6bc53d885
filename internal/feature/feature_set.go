package feature

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrDuplicateFeature    = errors.New("feature already defined")
	ErrFeatureSizeMismatch = errors.New("feature values do not match the number of points")
)

// FeatureSet owns the features computed over a cloud. The index returned by Add identifies the feature for the
// lifetime of the set. Add is not safe for concurrent use; between BeginParallelAdditions and
// EndParallelAdditions the computations themselves run concurrently.
type FeatureSet struct {
	numberOfPoints int
	workers        int
	features       []*Feature
	byName         map[string]int
	group          *errgroup.Group
}

// Builds an empty set for a cloud of numberOfPoints points. workers is handed to every feature computation.
func NewFeatureSet(numberOfPoints int, workers int) *FeatureSet {
	return &FeatureSet{
		numberOfPoints: numberOfPoints,
		workers:        workers,
		byName:         make(map[string]int),
	}
}

// Starts deferring the computation of added features to concurrent goroutines
func (fs *FeatureSet) BeginParallelAdditions() {
	if fs.group == nil {
		fs.group = new(errgroup.Group)
	}
}

// Waits for every feature added since BeginParallelAdditions and returns the first computation error. After a
// failure the set must not be used for classification.
func (fs *FeatureSet) EndParallelAdditions() error {
	if fs.group == nil {
		return nil
	}
	err := fs.group.Wait()
	fs.group = nil
	return err
}

// Adds a feature and returns its index. Outside parallel additions the feature is computed before returning.
func (fs *FeatureSet) Add(definition Definition) (int, error) {
	name := definition.Name()
	if _, ok := fs.byName[name]; ok {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateFeature, name)
	}

	f := newFeature(name, definition.Range())
	index := len(fs.features)

	if fs.group != nil {
		fs.features = append(fs.features, f)
		fs.byName[name] = index
		fs.group.Go(func() error {
			return fs.compute(f, definition)
		})
		return index, nil
	}

	if err := fs.compute(f, definition); err != nil {
		return -1, err
	}
	fs.features = append(fs.features, f)
	fs.byName[name] = index

	return index, nil
}

func (fs *FeatureSet) compute(f *Feature, definition Definition) error {
	values, err := definition.Compute(fs.workers)
	if err != nil {
		return fmt.Errorf("computing feature %s: %w", f.name, err)
	}
	if len(values) != fs.numberOfPoints {
		return fmt.Errorf("%w: %s has %d values for %d points", ErrFeatureSizeMismatch, f.name, len(values), fs.numberOfPoints)
	}
	f.setValues(values)
	return nil
}

// Returns the number of features in the set
func (fs *FeatureSet) Len() int {
	return len(fs.features)
}

func (fs *FeatureSet) NumberOfPoints() int {
	return fs.numberOfPoints
}

func (fs *FeatureSet) Feature(index int) *Feature {
	return fs.features[index]
}

func (fs *FeatureSet) Features() []*Feature {
	return fs.features
}

// Returns the index of the feature with the given name
func (fs *FeatureSet) Index(name string) (int, error) {
	index, ok := fs.byName[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return index, nil
}

// Returns the normalized value of feature f at the i-th point
func (fs *FeatureSet) Normalized(f int, i int) float64 {
	return fs.features[f].normalized[i]
}

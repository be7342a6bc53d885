package weighted_classifier

import (
	"fmt"
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/feature"
	"github.com/ecopia-map/cloud_classifier/internal/label"
)

// Classifier scores every label of a LabelSet on every point from the normalized values of a FeatureSet.
// The score of label l on point i is the sum over features f of weight(f) * sign(effect(l, f)) * value(f, i).
// Weights default to 1 and effects to Neutral. Configuration must not change while a strategy is running.
type Classifier struct {
	labels           *label.LabelSet
	features         *feature.FeatureSet
	numberOfLabels   int
	numberOfFeatures int
	weights          []float64
	effects          []Effect
	coefficients     []float64
}

// Builds a classifier over the current labels and features. Labels and features added afterwards are ignored.
func NewClassifier(labels *label.LabelSet, features *feature.FeatureSet) *Classifier {
	numberOfLabels, numberOfFeatures := labels.Len(), features.Len()
	c := &Classifier{
		labels:           labels,
		features:         features,
		numberOfLabels:   numberOfLabels,
		numberOfFeatures: numberOfFeatures,
		weights:          make([]float64, numberOfFeatures),
		effects:          make([]Effect, numberOfLabels*numberOfFeatures),
		coefficients:     make([]float64, numberOfLabels*numberOfFeatures),
	}
	for f := range c.weights {
		c.weights[f] = 1
	}
	return c
}

func (c *Classifier) Labels() *label.LabelSet {
	return c.labels
}

func (c *Classifier) Features() *feature.FeatureSet {
	return c.features
}

func (c *Classifier) NumberOfLabels() int {
	return c.numberOfLabels
}

func (c *Classifier) NumberOfPoints() int {
	return c.features.NumberOfPoints()
}

func (c *Classifier) checkFeature(f int) error {
	if f < 0 || f >= c.numberOfFeatures {
		return fmt.Errorf("%w: index %d", feature.ErrUnknownFeature, f)
	}
	return nil
}

func (c *Classifier) checkLabel(l int) error {
	if l < 0 || l >= c.numberOfLabels {
		return fmt.Errorf("%w: index %d", label.ErrUnknownLabel, l)
	}
	return nil
}

func (c *Classifier) Weight(f int) float64 {
	return c.weights[f]
}

func (c *Classifier) Effect(l int, f int) Effect {
	return c.effects[l*c.numberOfFeatures+f]
}

// Sets the weight of feature f
func (c *Classifier) SetWeight(f int, weight float64) error {
	if err := c.checkFeature(f); err != nil {
		return err
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("weight of feature %s must be finite, got %v", c.features.Feature(f).Name(), weight)
	}

	c.weights[f] = weight
	for l := 0; l < c.numberOfLabels; l++ {
		c.updateCoefficient(l, f)
	}
	return nil
}

// Sets the effect of feature f on label l
func (c *Classifier) SetEffect(l int, f int, effect Effect) error {
	if err := c.checkLabel(l); err != nil {
		return err
	}
	if err := c.checkFeature(f); err != nil {
		return err
	}
	if !effect.isValid() {
		return fmt.Errorf("invalid effect %v", effect)
	}

	c.effects[l*c.numberOfFeatures+f] = effect
	c.updateCoefficient(l, f)
	return nil
}

func (c *Classifier) SetWeightByName(featureName string, weight float64) error {
	f, err := c.features.Index(featureName)
	if err != nil {
		return err
	}
	return c.SetWeight(f, weight)
}

func (c *Classifier) SetEffectByName(labelName string, featureName string, effect Effect) error {
	l, err := c.labels.Index(labelName)
	if err != nil {
		return err
	}
	f, err := c.features.Index(featureName)
	if err != nil {
		return err
	}
	return c.SetEffect(l, f, effect)
}

func (c *Classifier) updateCoefficient(l int, f int) {
	index := l*c.numberOfFeatures + f
	c.coefficients[index] = c.weights[f] * c.effects[index].Sign()
}

// Returns the score of label l on the i-th point
func (c *Classifier) Score(i int, l int) float64 {
	coefficients := c.coefficients[l*c.numberOfFeatures : (l+1)*c.numberOfFeatures]

	score := 0.0
	for f, coefficient := range coefficients {
		if coefficient != 0 {
			score += coefficient * c.features.Normalized(f, i)
		}
	}
	return score
}

// Writes the score of every label on the i-th point in dst, which is grown when too short, and returns it
func (c *Classifier) Scores(i int, dst []float64) []float64 {
	if cap(dst) < c.numberOfLabels {
		dst = make([]float64, c.numberOfLabels)
	}
	dst = dst[:c.numberOfLabels]
	for l := range dst {
		dst[l] = c.Score(i, l)
	}
	return dst
}

// Returns the label with the highest score on the i-th point, the first added label winning ties.
// Returns label.Unassigned when the classifier has no label.
func (c *Classifier) BestLabel(i int) int {
	best := label.Unassigned
	bestScore := math.Inf(-1)
	for l := 0; l < c.numberOfLabels; l++ {
		if score := c.Score(i, l); best == label.Unassigned || score > bestScore {
			best = l
			bestScore = score
		}
	}
	return best
}

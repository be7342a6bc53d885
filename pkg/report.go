package pkg

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/weighted_classifier"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type LabelSummary struct {
	Name          string          `json:"name"`
	StandardIndex int             `json:"standard_index"`
	Count         int             `json:"count"`
	Percentage    decimal.Decimal `json:"percentage"`
}

type FeatureSummary struct {
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
	Min    float64         `json:"min"`
	Max    float64         `json:"max"`
}

type StageTiming struct {
	Stage   string          `json:"stage"`
	Seconds decimal.Decimal `json:"seconds"`
}

// ClassificationReport summarizes the classification of one point cloud
type ClassificationReport struct {
	Input          string           `json:"input"`
	Output         string           `json:"output"`
	Strategy       string           `json:"strategy"`
	NumberOfPoints int              `json:"number_of_points"`
	Labels         []LabelSummary   `json:"labels"`
	Unassigned     int              `json:"unassigned"`
	Features       []FeatureSummary `json:"features"`
	Stages         []StageTiming    `json:"stages"`
}

// Returns the share of count over total as a percentage rounded to 2 decimal places
func Percentage(count int, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).Mul(hundred).DivRound(decimal.NewFromInt(int64(total)), 2)
}

// Counts the points of every label. Indices outside the label set are counted as unassigned.
func NewClassificationReport(labels *label.LabelSet, labelIndices []int) *ClassificationReport {
	counts := make([]int, labels.Len())
	unassigned := 0
	for _, l := range labelIndices {
		if l < 0 || l >= len(counts) {
			unassigned++
			continue
		}
		counts[l]++
	}

	report := &ClassificationReport{
		NumberOfPoints: len(labelIndices),
		Labels:         make([]LabelSummary, labels.Len()),
		Unassigned:     unassigned,
	}
	for l := range counts {
		report.Labels[l] = LabelSummary{
			Name:          labels.At(l).Name(),
			StandardIndex: labels.At(l).StandardIndex(),
			Count:         counts[l],
			Percentage:    Percentage(counts[l], len(labelIndices)),
		}
	}
	return report
}

func (r *ClassificationReport) AddFeatures(classifier *weighted_classifier.Classifier) {
	features := classifier.Features()
	for f, ft := range features.Features() {
		lo, hi := ft.NormalizationBounds()
		r.Features = append(r.Features, FeatureSummary{
			Name:   ft.Name(),
			Weight: decimal.NewFromFloat(classifier.Weight(f)),
			Min:    lo,
			Max:    hi,
		})
	}
}

func (r *ClassificationReport) AddStage(stage string, elapsed time.Duration) {
	r.Stages = append(r.Stages, StageTiming{
		Stage:   stage,
		Seconds: secondsOf(elapsed),
	})
}

// Returns the one line per label summary printed at the end of a run
func (r *ClassificationReport) Lines() []string {
	lines := make([]string, 0, len(r.Labels)+1)
	for _, l := range r.Labels {
		lines = append(lines, fmt.Sprintf("%s: %d points (%s%%)", l.Name, l.Count, l.Percentage.StringFixed(2)))
	}
	if r.Unassigned > 0 {
		lines = append(lines, fmt.Sprintf("unassigned: %d points (%s%%)", r.Unassigned, Percentage(r.Unassigned, r.NumberOfPoints).StringFixed(2)))
	}
	return lines
}

func WriteReports(path string, reports []*ClassificationReport) error {
	content, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("cannot write report %s: %w", path, err)
	}
	return nil
}

func secondsOf(elapsed time.Duration) decimal.Decimal {
	return decimal.NewFromFloat(elapsed.Seconds()).Round(3)
}

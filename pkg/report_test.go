package pkg

import (
	"testing"
	"time"

	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, "33.33", Percentage(1, 3).String())
	assert.Equal(t, "66.67", Percentage(2, 3).String())
	assert.Equal(t, "100", Percentage(7, 7).String())
	assert.Equal(t, "0", Percentage(0, 0).String())
}

func TestNewClassificationReport(t *testing.T) {
	labels := label.NewLabelSet()
	_, err := labels.AddWithAttributes("ground", nil, 2)
	require.NoError(t, err)
	_, err = labels.Add("roof")
	require.NoError(t, err)

	report := NewClassificationReport(labels, []int{0, 0, 1, label.Unassigned, 0, 1})
	assert.Equal(t, 6, report.NumberOfPoints)
	assert.Equal(t, 1, report.Unassigned)
	assert.Equal(t, []LabelSummary{
		{Name: "ground", StandardIndex: 2, Count: 3, Percentage: Percentage(3, 6)},
		{Name: "roof", StandardIndex: label.NoStandardIndex, Count: 2, Percentage: Percentage(2, 6)},
	}, report.Labels)

	assert.Equal(t, []string{
		"ground: 3 points (50.00%)",
		"roof: 2 points (33.33%)",
		"unassigned: 1 points (16.67%)",
	}, report.Lines())

	report.AddStage("reading", 1500*time.Millisecond)
	require.Len(t, report.Stages, 1)
	assert.Equal(t, "1.5", report.Stages[0].Seconds.String())
}

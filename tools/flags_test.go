package tools

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlagsForClassifierDefaults(t *testing.T) {
	flags := ParseFlagsForClassifier(nil)

	assert.Equal(t, "", *flags.Input)
	assert.Equal(t, "classification.ply", *flags.Output)
	assert.Equal(t, 0.34, *flags.GridResolution)
	assert.Equal(t, 6, *flags.EigenNeighbors)
	assert.Equal(t, "LOCAL_SMOOTHING", *flags.Strategy)
	assert.Empty(t, flags.Args)
	assert.False(t, flags.IsSet("output"))
}

func TestParseFlagsForClassifierShorthands(t *testing.T) {
	flags := ParseFlagsForClassifier([]string{"-o", "out.ply", "-k", "9", "--smoothness", "0.5", "-f", "data/scan.ply"})

	assert.Equal(t, "out.ply", *flags.Output)
	assert.Equal(t, 9, *flags.EigenNeighbors)
	assert.Equal(t, 0.5, *flags.Smoothness)
	assert.True(t, *flags.FolderProcessing)
	assert.Equal(t, []string{"data/scan.ply"}, flags.Args)

	assert.True(t, flags.IsSet("output"))
	assert.True(t, flags.IsSet("eigen-neighbors"))
	assert.True(t, flags.IsSet("smoothness"))
	assert.True(t, flags.IsSet("folder"))
	assert.False(t, flags.IsSet("input"))
	assert.False(t, flags.IsSet("workers"))
}

func TestPrintDefaults(t *testing.T) {
	flags := ParseFlagsForClassifier(nil)
	var buffer bytes.Buffer
	flags.PrintDefaults(&buffer)
	assert.Contains(t, buffer.String(), "-grid-resolution")
	assert.Contains(t, buffer.String(), "shorthand for eigen-neighbors")
}

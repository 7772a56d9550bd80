package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 11.6, Mean([]float64{10, 12, 11, 13, 12}))
	assert.Equal(t, 5.0, Mean([]float64{5}))
	assert.Equal(t, 0.0, Mean(nil))
}

// Population standard deviation divides by N, not N-1.
func TestStdDevIsPopulation(t *testing.T) {
	assert.InDelta(t, 1.0198, StdDev([]float64{10, 12, 11, 13, 12}), 0.0001)
	assert.Equal(t, 0.0, StdDev([]float64{7, 7, 7}))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestZScore(t *testing.T) {
	assert.Equal(t, 2.0, ZScore(120, 100, 10))
	assert.Equal(t, -1.5, ZScore(85, 100, 10))
	// Zero variance disables the comparison entirely.
	assert.Equal(t, 0.0, ZScore(1e9, 100, 0))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, -62.5, PercentChange(3000, 8000))
	assert.Equal(t, 25.0, PercentChange(125, 100))
	// Zero mean disables the comparison.
	assert.Equal(t, 0.0, PercentChange(500, 0))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.02, Round(1.0198039, 2))
	assert.Equal(t, 0.333, Round(1.0/3.0, 3))
	assert.Equal(t, -62.5, Round(-62.5, 1))
	assert.Equal(t, 14.3, Round(100.0/7.0, 1))
}

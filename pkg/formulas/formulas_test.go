package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCumulativeReturn(t *testing.T) {
	assert.InDelta(t, 0.1025, CumulativeReturn([]float64{0.05, 0.05}), 1e-12)
	assert.InDelta(t, 0.05, CumulativeReturn([]float64{0.05}), 1e-12)
	assert.Equal(t, 0.0, CumulativeReturn(nil))
}

func TestCumulativeReturn_NegativeReturns(t *testing.T) {
	// 1.1 * 0.9 - 1 = -0.01
	assert.InDelta(t, -0.01, CumulativeReturn([]float64{0.10, -0.10}), 1e-12)
}

func TestAnnualizedVolatility(t *testing.T) {
	// Sample std dev of {0.01, 0.03} is sqrt(0.0002).
	got := AnnualizedVolatility([]float64{0.01, 0.03}, 12)
	assert.InDelta(t, math.Sqrt(0.0002)*math.Sqrt(12), got, 1e-12)
}

func TestAnnualizedVolatility_TooFewValues(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.05}, 12))
	assert.Equal(t, 0.0, AnnualizedVolatility(nil, 12))
}

func TestSharpeRatio(t *testing.T) {
	got, ok := SharpeRatio(0.10, 0.20, 0.02)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, got, 1e-12)
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	got, ok := SharpeRatio(0.10, 0, 0.02)
	assert.False(t, ok)
	assert.Equal(t, 0.0, got)
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 0.02, Mean([]float64{0.01, 0.03}), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
}

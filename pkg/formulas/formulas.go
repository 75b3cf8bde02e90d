// Package formulas provides the statistical primitives behind the rolling
// metrics: compounded returns, annualized volatility and the Sharpe ratio.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// CumulativeReturn compounds periodic returns: prod(1 + r) - 1.
func CumulativeReturn(returns []float64) float64 {
	compounded := 1.0
	for _, r := range returns {
		compounded *= 1 + r
	}
	return compounded - 1
}

// AnnualizedVolatility scales the sample standard deviation of periodic
// returns by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(periodsPerYear)
}

// SharpeRatio computes (annualReturn - riskFreeRate) / annualVolatility.
// Returns false when volatility is zero, so a zero denominator never leaks
// Inf or NaN to callers.
func SharpeRatio(annualReturn, annualVolatility, riskFreeRate float64) (float64, bool) {
	if annualVolatility == 0 {
		return 0, false
	}
	return (annualReturn - riskFreeRate) / annualVolatility, true
}

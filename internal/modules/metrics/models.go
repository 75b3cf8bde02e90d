// Package metrics implements the period aggregator and the rolling
// statistics engine over (period × group) matrices.
package metrics

import (
	"fmt"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/scoring"
)

// Kind identifies a rolling statistic.
type Kind string

const (
	KindReturn     Kind = "return"     // Rolling compounded return
	KindVolatility Kind = "volatility" // Annualized rolling volatility
	KindSharpe     Kind = "sharpe"     // Rolling Sharpe ratio
)

// Bucket selects the period granularity for aggregation.
type Bucket string

const (
	BucketDay   Bucket = "day"   // Distinct trade dates present in the input
	BucketMonth Bucket = "month" // Calendar months
)

// Config holds per-request metric parameters. It is passed explicitly into
// every computation so differently-configured requests cannot interfere.
type Config struct {
	Window       int     // Trailing window size in periods
	RiskFreeRate float64 // Annual risk-free rate used by the Sharpe ratio
}

// Validate rejects parameter values that indicate a programmer error.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("rolling window must be positive, got %d", c.Window)
	}
	return nil
}

// periodsPerYear annualizes per-period volatility, assuming monthly periods.
const periodsPerYear = 12

// Set bundles everything computed for one analysis request.
type Set struct {
	PeriodReturns *domain.Matrix      `json:"period_returns"` // Aggregated raw returns
	RollingReturn *domain.Matrix      `json:"rolling_return"`
	Volatility    *domain.Matrix      `json:"volatility"`
	Sharpe        *domain.Matrix      `json:"sharpe"`
	Scores        *domain.Matrix      `json:"scores"`
	Diagnostics   scoring.Diagnostics `json:"diagnostics"`
}

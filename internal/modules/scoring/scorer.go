// Package scoring produces the 0-100 composite score per (period, group)
// from the three rolling statistic matrices.
package scoring

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
)

// Component weights and penalty rules. Tunable without touching the
// algorithm itself.
const (
	// Weighting: risk-adjusted return matters most, then absolute return,
	// then risk level.
	WeightReturn     = 0.3
	WeightVolatility = 0.2
	WeightSharpe     = 0.5

	// Volatility in the top quartile of the group's historical range is
	// penalized on top of the inverse normalization.
	HighVolThresholdQuantile = 0.75
	HighVolPenalty           = 0.7

	// A negative raw Sharpe halves the normalized Sharpe sub-score.
	NegativeSharpePenalty = 0.5

	scoreScale = 100.0
)

// Inputs are the three same-shaped rolling statistic matrices.
type Inputs struct {
	Returns    *domain.Matrix
	Volatility *domain.Matrix
	Sharpe     *domain.Matrix
}

// CellFailure records one suppressed per-cell scoring failure.
type CellFailure struct {
	Period string `json:"period"`
	Group  string `json:"group"`
	Reason string `json:"reason"`
}

// Diagnostics summarizes suppressed failures so silently zeroed cells stay
// observable.
type Diagnostics struct {
	CellFailures int           `json:"cell_failures"`
	Failures     []CellFailure `json:"failures,omitempty"`
}

// columnRange is a group's historical min/max for one statistic.
type columnRange struct {
	min, max float64
	valid    bool
}

// Scorer computes composite scores.
type Scorer struct {
	log zerolog.Logger
}

// NewScorer creates a new composite scorer.
func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{log: log.With().Str("component", "scorer").Logger()}
}

// Score computes the composite score matrix over the given groups. A cell is
// scored only where all three inputs are present; any unexpected failure in
// one cell zeroes that cell, is recorded in the diagnostics, and leaves the
// rest of the matrix untouched.
//
// Normalization uses each group's min/max over its entire column, matching
// the upstream behavior of normalizing early periods against the full
// observed history of the dataset at hand.
func (s *Scorer) Score(in Inputs, groups []string) (*domain.Matrix, Diagnostics) {
	scores := domain.NewMatrixLike(in.Returns)
	var diag Diagnostics

	for _, group := range groups {
		retRange := historyRange(in.Returns.Column(group))
		volRange := historyRange(in.Volatility.Column(group))
		sharpeRange := historyRange(in.Sharpe.Column(group))

		for i := 0; i < in.Returns.Rows(); i++ {
			ret := in.Returns.At(i, group)
			vol := in.Volatility.At(i, group)
			sharpe := in.Sharpe.At(i, group)

			// Score only where all three statistics exist.
			if !ret.Valid || !vol.Valid || !sharpe.Valid {
				continue
			}

			cell, err := scoreCell(ret.Value, vol.Value, sharpe.Value, retRange, volRange, sharpeRange)
			if err != nil {
				diag.CellFailures++
				diag.Failures = append(diag.Failures, CellFailure{
					Period: in.Returns.Period(i).Format(domain.DateFormat),
					Group:  group,
					Reason: err.Error(),
				})
				s.log.Error().Err(err).
					Str("group", group).
					Str("period", in.Returns.Period(i).Format(domain.DateFormat)).
					Msg("Cell scoring failed, defaulting to 0")
				cell = 0
			}

			// Shapes are identical by construction, Set cannot fail here.
			_ = scores.Set(i, group, domain.Present(cell))
		}
	}

	return scores, diag
}

// scoreCell computes one composite score. Recovers from panics so a single
// bad cell never aborts the whole matrix.
func scoreCell(ret, vol, sharpe float64, retRange, volRange, sharpeRange columnRange) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("panic while scoring: %v", r)
		}
	}()

	if !isFinite(ret) || !isFinite(vol) || !isFinite(sharpe) {
		return 0, fmt.Errorf("non-finite input (return=%v volatility=%v sharpe=%v)", ret, vol, sharpe)
	}

	// Return: higher is better.
	retScore := normalize(ret, retRange)

	// Volatility: lower is better, so invert; penalize the top quartile of
	// the group's historical volatility range.
	volScore := 0.0
	if volRange.valid && volRange.max > volRange.min {
		volScore = scoreScale * (1 - (vol-volRange.min)/(volRange.max-volRange.min))
		if vol > volRange.min+HighVolThresholdQuantile*(volRange.max-volRange.min) {
			volScore *= HighVolPenalty
		}
	}

	// Sharpe: higher is better; negative raw values are penalized after
	// normalization.
	sharpeScore := normalize(sharpe, sharpeRange)
	if sharpe < 0 {
		sharpeScore *= NegativeSharpePenalty
	}

	composite := WeightReturn*retScore + WeightVolatility*volScore + WeightSharpe*sharpeScore
	if !isFinite(composite) {
		return 0, fmt.Errorf("non-finite composite score")
	}
	return composite, nil
}

// normalize maps v onto 0-100 via min-max over the group's history. A
// degenerate range (max == min, or no history) scores 0.
func normalize(v float64, r columnRange) float64 {
	if !r.valid || r.max <= r.min {
		return 0
	}
	return scoreScale * (v - r.min) / (r.max - r.min)
}

// historyRange finds the min/max of the valid cells in a column.
func historyRange(col []domain.Cell) columnRange {
	var r columnRange
	for _, c := range col {
		if !c.Valid || !isFinite(c.Value) {
			continue
		}
		if !r.valid {
			r.min, r.max, r.valid = c.Value, c.Value, true
			continue
		}
		if c.Value < r.min {
			r.min = c.Value
		}
		if c.Value > r.max {
			r.max = c.Value
		}
	}
	return r
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrove/capscope/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func months(n int) []time.Time {
	out := make([]time.Time, n)
	base := day("2024-01-31")
	for i := range out {
		out[i] = base.AddDate(0, i, 0)
	}
	return out
}

// buildInputs creates same-shaped matrices for one group from parallel value
// slices; NaN in a slice marks the cell absent.
func buildInputs(group string, rets, vols, sharpes []float64) Inputs {
	periods := months(len(rets))
	fill := func(values []float64) *domain.Matrix {
		m := domain.NewMatrix(periods, []string{group})
		for i, v := range values {
			if !math.IsNaN(v) {
				_ = m.Set(i, group, domain.Present(v))
			}
		}
		return m
	}
	return Inputs{Returns: fill(rets), Volatility: fill(vols), Sharpe: fill(sharpes)}
}

var nan = math.NaN()

func TestScore_BoundsAndCompleteness(t *testing.T) {
	in := buildInputs("Mid Cap",
		[]float64{0.01, 0.05, 0.09, -0.02},
		[]float64{0.10, 0.30, 0.20, 0.15},
		[]float64{-0.5, 1.5, 0.8, 0.1},
	)

	scores, diag := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})
	assert.Zero(t, diag.CellFailures)

	for i := 0; i < scores.Rows(); i++ {
		c := scores.At(i, "Mid Cap")
		require.True(t, c.Valid, "row %d should be scored", i)
		assert.GreaterOrEqual(t, c.Value, 0.0)
		assert.LessOrEqual(t, c.Value, 100.0)
	}
}

func TestScore_AbsentInputLeavesCellAbsent(t *testing.T) {
	in := buildInputs("Mid Cap",
		[]float64{0.01, 0.05},
		[]float64{nan, 0.30}, // volatility missing in row 0
		[]float64{0.2, 1.5},
	)

	scores, diag := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})
	assert.Zero(t, diag.CellFailures)
	assert.False(t, scores.At(0, "Mid Cap").Valid, "missing volatility must leave the score absent, not zero")
	assert.True(t, scores.At(1, "Mid Cap").Valid)
}

func TestScore_ReturnNormalizationEndpoints(t *testing.T) {
	// Fixed volatility and sharpe isolate the return sub-score.
	in := buildInputs("Mid Cap",
		[]float64{0.01, 0.09, 0.05},
		[]float64{0.20, 0.20, 0.20},
		[]float64{1.0, 1.0, 1.0},
	)

	scores, _ := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	lo := scores.At(0, "Mid Cap")
	hi := scores.At(1, "Mid Cap")
	require.True(t, lo.Valid)
	require.True(t, hi.Valid)

	// Return at historical min normalizes to 0, at max to 100; the 30%
	// return weight is the only difference between the two cells.
	assert.InDelta(t, WeightReturn*100, hi.Value-lo.Value, 1e-9)
}

func TestScore_ReturnSubScoreMonotonicity(t *testing.T) {
	vols := []float64{0.20, 0.20, 0.20, 0.20}
	sharpes := []float64{1.0, 1.0, 1.0, 1.0}

	in := buildInputs("Mid Cap", []float64{0.01, 0.03, 0.06, 0.09}, vols, sharpes)
	scores, _ := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	prev := scores.At(0, "Mid Cap").Value
	for i := 1; i < 4; i++ {
		cur := scores.At(i, "Mid Cap").Value
		assert.GreaterOrEqual(t, cur, prev, "higher raw return must never lower the score, row %d", i)
		prev = cur
	}
}

func TestScore_NegativeSharpePenaltyAppliedAfterNormalization(t *testing.T) {
	// Historical sharpe range [-0.5, 1.5]: the -0.5 cell normalizes to
	// exactly 0, so the x0.5 penalty must be inert at the boundary.
	in := buildInputs("Mid Cap",
		[]float64{0.05, 0.05},
		[]float64{0.20, 0.20},
		[]float64{-0.5, 1.5},
	)

	scores, _ := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	low := scores.At(0, "Mid Cap")
	high := scores.At(1, "Mid Cap")
	require.True(t, low.Valid)
	require.True(t, high.Valid)

	// Return and volatility ranges are degenerate (sub-score 0), so the
	// composite is the weighted sharpe sub-score alone.
	assert.InDelta(t, 0.0, low.Value, 1e-9)
	assert.InDelta(t, WeightSharpe*100, high.Value, 1e-9)
}

func TestScore_NegativeSharpePenaltyHalvesPositiveSubScore(t *testing.T) {
	// -0.25 normalizes to 12.5 over [-0.5, 1.5]; the penalty halves it.
	in := buildInputs("Mid Cap",
		[]float64{0.05, 0.05, 0.05},
		[]float64{0.20, 0.20, 0.20},
		[]float64{-0.5, -0.25, 1.5},
	)

	scores, _ := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	mid := scores.At(1, "Mid Cap")
	require.True(t, mid.Valid)
	assert.InDelta(t, WeightSharpe*12.5*NegativeSharpePenalty, mid.Value, 1e-9)
}

func TestScore_HighVolatilityPenalty(t *testing.T) {
	// Volatility range [0.10, 0.30]: threshold at 0.10+0.75*0.20 = 0.25.
	// 0.28 is above it: inverse score 100*(1-0.9)=10, penalized to 7.
	in := buildInputs("Mid Cap",
		[]float64{0.05, 0.05, 0.05},
		[]float64{0.10, 0.28, 0.30},
		[]float64{1.0, 1.0, 1.0},
	)

	scores, _ := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	penalized := scores.At(1, "Mid Cap")
	require.True(t, penalized.Valid)
	assert.InDelta(t, WeightVolatility*10*HighVolPenalty, penalized.Value, 1e-9)
}

func TestScore_DegenerateRangeScoresZero(t *testing.T) {
	// All columns constant: every min-max range collapses, all sub-scores 0.
	in := buildInputs("Mid Cap",
		[]float64{0.05, 0.05},
		[]float64{0.20, 0.20},
		[]float64{1.0, 1.0},
	)

	scores, diag := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})
	assert.Zero(t, diag.CellFailures)

	for i := 0; i < 2; i++ {
		c := scores.At(i, "Mid Cap")
		require.True(t, c.Valid)
		assert.Equal(t, 0.0, c.Value)
	}
}

func TestScore_CellFailureZeroesCellAndCountsDiagnostic(t *testing.T) {
	in := buildInputs("Mid Cap",
		[]float64{0.01, 0.09},
		[]float64{0.10, 0.30},
		[]float64{0.5, 1.5},
	)
	// Inject a present-but-broken cell: Inf sharpe must be caught per cell.
	require.NoError(t, in.Sharpe.Set(0, "Mid Cap", domain.Present(math.Inf(1))))

	scores, diag := NewScorer(zerolog.Nop()).Score(in, []string{"Mid Cap"})

	broken := scores.At(0, "Mid Cap")
	require.True(t, broken.Valid)
	assert.Equal(t, 0.0, broken.Value, "failed cell defaults to 0")

	healthy := scores.At(1, "Mid Cap")
	assert.True(t, healthy.Valid, "failure in one cell must not abort the rest")

	require.Equal(t, 1, diag.CellFailures)
	assert.Equal(t, "Mid Cap", diag.Failures[0].Group)
	assert.Equal(t, "2024-01-31", diag.Failures[0].Period)
}

func TestScore_MultipleGroupsIndependentRanges(t *testing.T) {
	periods := months(2)
	groups := []string{"Smallest Cap", "Largest Cap"}

	fill := func(values map[string][]float64) *domain.Matrix {
		m := domain.NewMatrix(periods, groups)
		for g, vs := range values {
			for i, v := range vs {
				_ = m.Set(i, g, domain.Present(v))
			}
		}
		return m
	}

	in := Inputs{
		Returns:    fill(map[string][]float64{"Smallest Cap": {0.01, 0.02}, "Largest Cap": {0.50, 0.90}}),
		Volatility: fill(map[string][]float64{"Smallest Cap": {0.1, 0.2}, "Largest Cap": {0.1, 0.2}}),
		Sharpe:     fill(map[string][]float64{"Smallest Cap": {0.5, 1.0}, "Largest Cap": {0.5, 1.0}}),
	}

	scores, _ := NewScorer(zerolog.Nop()).Score(in, groups)

	// Each group normalizes against its own history: both groups' second
	// period carries the max return of its own column, so the return
	// sub-score difference is identical despite very different raw scales.
	smallDelta := scores.At(1, "Smallest Cap").Value - scores.At(0, "Smallest Cap").Value
	largeDelta := scores.At(1, "Largest Cap").Value - scores.At(0, "Largest Cap").Value
	assert.InDelta(t, smallDelta, largeDelta, 1e-9)
}

package metrics

import (
	"fmt"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/pkg/formulas"
)

// RollingMetric computes one rolling statistic over the aggregated matrix.
// An invalid window or unknown kind is a programmer error and returns an
// error; degenerate data conditions never do.
func RollingMetric(m *domain.Matrix, kind Kind, cfg Config) (*domain.Matrix, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case KindReturn:
		return rollingReturn(m, cfg.Window), nil
	case KindVolatility:
		return rollingVolatility(m, cfg.Window), nil
	case KindSharpe:
		ret := rollingReturn(m, cfg.Window)
		vol := rollingVolatility(m, cfg.Window)
		return sharpeFrom(ret, vol, cfg.RiskFreeRate), nil
	default:
		return nil, fmt.Errorf("unknown metric kind %q", kind)
	}
}

// rollingReturn compounds returns over the trailing window: prod(1+v) - 1
// over the valid values in rows [max(0, i-W+1) .. i]. Short early windows
// still compute from whatever exists (minimum one value) so the series is
// continuous from the first period; a window with no data at all stays
// absent so "no data" never reads as "0% return".
func rollingReturn(m *domain.Matrix, window int) *domain.Matrix {
	out := domain.NewMatrixLike(m)

	for _, g := range m.Groups() {
		col := m.Column(g)
		for i := range col {
			values := validWindowValues(col, i, window)
			if len(values) == 0 {
				continue
			}
			_ = out.Set(i, g, domain.Present(formulas.CumulativeReturn(values)))
		}
	}
	return out
}

// rollingVolatility is the sample standard deviation of the valid window
// values, annualized by sqrt(12). A single value has no standard deviation,
// so cells with fewer than two valid points stay absent. This asymmetry with
// rollingReturn (min 1 vs min 2) is intentional: the return series starts at
// period one while volatility legitimately starts later.
func rollingVolatility(m *domain.Matrix, window int) *domain.Matrix {
	out := domain.NewMatrixLike(m)

	for _, g := range m.Groups() {
		col := m.Column(g)
		for i := range col {
			values := validWindowValues(col, i, window)
			if len(values) < 2 {
				continue
			}
			_ = out.Set(i, g, domain.Present(formulas.AnnualizedVolatility(values, periodsPerYear)))
		}
	}
	return out
}

// sharpeFrom derives the rolling Sharpe ratio elementwise:
// (return - riskFreeRate) / volatility. Cells where either input is absent,
// or where volatility is exactly zero, stay absent; a zero denominator must
// never leak Inf or NaN downstream.
func sharpeFrom(ret, vol *domain.Matrix, riskFreeRate float64) *domain.Matrix {
	out := domain.NewMatrixLike(ret)

	for _, g := range ret.Groups() {
		for i := 0; i < ret.Rows(); i++ {
			r := ret.At(i, g)
			v := vol.At(i, g)
			if !r.Valid || !v.Valid {
				continue
			}
			s, ok := formulas.SharpeRatio(r.Value, v.Value, riskFreeRate)
			if !ok {
				continue
			}
			_ = out.Set(i, g, domain.Present(s))
		}
	}
	return out
}

// validWindowValues collects the valid values in the trailing sub-window of
// col ending at row i.
func validWindowValues(col []domain.Cell, i, window int) []float64 {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}

	values := make([]float64, 0, window)
	for _, c := range col[lo : i+1] {
		if c.Valid {
			values = append(values, c.Value)
		}
	}
	return values
}

package metrics

import (
	"sort"
	"time"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/pkg/formulas"
)

// Aggregate pivots observations into a (period × group) matrix of mean
// returns. Only the requested groups become columns, in the order given;
// rows are the distinct periods where at least one requested group has data,
// sorted ascending. Cells without observations stay absent.
//
// The result is independent of input row order: cell values are sorted
// before averaging so no permutation of the input changes the summation
// order.
func Aggregate(obs []domain.Observation, groups []string, bucket Bucket) *domain.Matrix {
	requested := make(map[string]bool, len(groups))
	for _, g := range groups {
		requested[g] = true
	}

	type cellKey struct {
		period int64
		group  string
	}

	cells := make(map[cellKey][]float64)
	periodSet := make(map[int64]time.Time)

	for _, o := range obs {
		if !requested[o.GroupName] {
			continue
		}
		p := bucketPeriod(o.Date, bucket)
		k := p.Unix()
		periodSet[k] = p
		cells[cellKey{period: k, group: o.GroupName}] = append(cells[cellKey{period: k, group: o.GroupName}], o.Return)
	}

	periods := make([]time.Time, 0, len(periodSet))
	for _, p := range periodSet {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	m := domain.NewMatrix(periods, groups)
	for i, p := range periods {
		for _, g := range groups {
			values := cells[cellKey{period: p.Unix(), group: g}]
			if len(values) == 0 {
				continue
			}
			sort.Float64s(values)
			_ = m.Set(i, g, domain.Present(formulas.Mean(values)))
		}
	}
	return m
}

// bucketPeriod truncates a date to its period. Month buckets collapse to the
// first day of the month.
func bucketPeriod(t time.Time, bucket Bucket) time.Time {
	y, mo, d := t.Date()
	if bucket == BucketMonth {
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

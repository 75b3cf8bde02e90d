// Package services contains application-level orchestration shared by the
// HTTP handlers.
package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/modules/metrics"
	"github.com/quantrove/capscope/internal/modules/snapshots"
	"github.com/quantrove/capscope/internal/utils"
)

// Request describes one analysis: which groups, which date window, which
// metric parameters.
type Request struct {
	Groups       []string
	Start        *time.Time
	End          *time.Time
	Preset       historical.Preset // Used when explicit bounds are not given
	Bucket       metrics.Bucket
	Window       int
	RiskFreeRate float64
}

// CacheKey is a stable identity for the request, used by the snapshot cache.
func (r Request) CacheKey() string {
	groups := make([]string, len(r.Groups))
	copy(groups, r.Groups)
	sort.Strings(groups)

	var b strings.Builder
	fmt.Fprintf(&b, "groups=%s", strings.Join(groups, ","))
	fmt.Fprintf(&b, "&bucket=%s&window=%d&rf=%g", r.Bucket, r.Window, r.RiskFreeRate)
	if r.Start != nil && r.End != nil {
		fmt.Fprintf(&b, "&start=%s&end=%s", r.Start.Format(domain.DateFormat), r.End.Format(domain.DateFormat))
	} else if r.Preset != "" {
		fmt.Fprintf(&b, "&preset=%s", r.Preset)
	}
	return b.String()
}

// AnalysisService runs full analysis requests: load, filter, compute, cache.
type AnalysisService struct {
	historical *historical.Service
	metrics    *metrics.Service
	cache      *snapshots.Cache
	log        zerolog.Logger
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(
	historicalSvc *historical.Service,
	metricsSvc *metrics.Service,
	cache *snapshots.Cache,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		historical: historicalSvc,
		metrics:    metricsSvc,
		cache:      cache,
		log:        log.With().Str("service", "analysis").Logger(),
	}
}

// Run computes the full metric payload for a request, consulting the
// snapshot cache first. Returns domain.ErrNoData when no observations exist.
func (s *AnalysisService) Run(req Request) (snapshots.Payload, error) {
	key := req.CacheKey()
	if payload, ok := s.cache.Get(key); ok {
		s.log.Debug().Str("key", key).Msg("Snapshot cache hit")
		return payload, nil
	}

	set, err := s.compute(req)
	if err != nil {
		return snapshots.Payload{}, err
	}

	payload := snapshots.FromSet(set)
	if err := s.cache.Put(key, payload); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache snapshot")
	}
	return payload, nil
}

// MatrixFor computes one statistic matrix for chart rendering. The score
// matrix is addressed by the pseudo-kind "score".
func (s *AnalysisService) MatrixFor(req Request, kind string) (*domain.Matrix, error) {
	set, err := s.compute(req)
	if err != nil {
		return nil, err
	}

	switch kind {
	case string(metrics.KindReturn):
		return set.RollingReturn, nil
	case string(metrics.KindVolatility):
		return set.Volatility, nil
	case string(metrics.KindSharpe):
		return set.Sharpe, nil
	case "period-return":
		return set.PeriodReturns, nil
	case "score":
		return set.Scores, nil
	default:
		return nil, fmt.Errorf("unknown metric kind %q", kind)
	}
}

func (s *AnalysisService) compute(req Request) (*metrics.Set, error) {
	defer utils.OperationTimer("analysis_compute", s.log)()

	obs, err := s.historical.Observations()
	if err != nil {
		return nil, err
	}

	start, end := req.Start, req.End
	if start == nil || end == nil {
		start, end = historical.ResolvePreset(obs, req.Preset)
	}
	filtered := historical.FilterByDateRange(obs, start, end, s.log)

	return s.metrics.ComputeAll(filtered, req.Groups, req.Bucket, metrics.Config{
		Window:       req.Window,
		RiskFreeRate: req.RiskFreeRate,
	})
}

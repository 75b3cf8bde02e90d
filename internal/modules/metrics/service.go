package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/scoring"
)

// Service computes full metric sets for analysis requests. It holds no
// per-request state; concurrent requests with different configs are safe.
type Service struct {
	scorer *scoring.Scorer
	log    zerolog.Logger
}

// NewService creates a new metrics service.
func NewService(scorer *scoring.Scorer, log zerolog.Logger) *Service {
	return &Service{
		scorer: scorer,
		log:    log.With().Str("service", "metrics").Logger(),
	}
}

// ComputeAll aggregates the observations and computes every rolling
// statistic plus the composite score. Rolling return and volatility are
// independent and run concurrently over the shared read-only matrix; Sharpe
// and the scorer join on both. Returns domain.ErrNoData when aggregation
// yields no periods.
func (s *Service) ComputeAll(obs []domain.Observation, groups []string, bucket Bucket, cfg Config) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	aggregated := Aggregate(obs, groups, bucket)
	if aggregated.Rows() == 0 {
		return nil, domain.ErrNoData
	}

	var (
		wg  sync.WaitGroup
		ret *domain.Matrix
		vol *domain.Matrix
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ret = rollingReturn(aggregated, cfg.Window)
	}()
	go func() {
		defer wg.Done()
		vol = rollingVolatility(aggregated, cfg.Window)
	}()
	wg.Wait()

	sharpe := sharpeFrom(ret, vol, cfg.RiskFreeRate)

	scores, diag := s.scorer.Score(scoring.Inputs{
		Returns:    ret,
		Volatility: vol,
		Sharpe:     sharpe,
	}, groups)

	if diag.CellFailures > 0 {
		s.log.Warn().Int("cell_failures", diag.CellFailures).Msg("Composite scoring suppressed cell failures")
	}

	s.log.Info().
		Int("observations", len(obs)).
		Int("periods", aggregated.Rows()).
		Int("groups", len(groups)).
		Int("window", cfg.Window).
		Dur("elapsed", time.Since(start)).
		Msg("Metric set computed")

	return &Set{
		PeriodReturns: aggregated,
		RollingReturn: ret,
		Volatility:    vol,
		Sharpe:        sharpe,
		Scores:        scores,
		Diagnostics:   diag,
	}, nil
}

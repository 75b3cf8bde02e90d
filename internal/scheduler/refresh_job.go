package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/modules/snapshots"
)

// RefreshJob re-ingests the group CSV files and invalidates cached metric
// snapshots, so new upstream data shows up without a restart.
type RefreshJob struct {
	historical *historical.Service
	cache      *snapshots.Cache
	log        zerolog.Logger
}

// NewRefreshJob creates the dataset refresh job.
func NewRefreshJob(historicalSvc *historical.Service, cache *snapshots.Cache, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		historical: historicalSvc,
		cache:      cache,
		log:        log.With().Str("job", "dataset-refresh").Logger(),
	}
}

// Name implements Job.
func (j *RefreshJob) Name() string {
	return "dataset-refresh"
}

// Run implements Job.
func (j *RefreshJob) Run() error {
	if err := j.historical.Refresh(); err != nil {
		return err
	}

	// A new dataset invalidates every cached result.
	if err := j.cache.Clear(); err != nil {
		j.log.Warn().Err(err).Msg("Failed to clear snapshot cache after refresh")
	}
	return nil
}

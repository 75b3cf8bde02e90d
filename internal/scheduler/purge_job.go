package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/modules/snapshots"
)

// PurgeJob evicts expired snapshot cache entries so cache.db does not grow
// between dataset refreshes.
type PurgeJob struct {
	cache *snapshots.Cache
	log   zerolog.Logger
}

// NewPurgeJob creates the snapshot cache purge job.
func NewPurgeJob(cache *snapshots.Cache, log zerolog.Logger) *PurgeJob {
	return &PurgeJob{
		cache: cache,
		log:   log.With().Str("job", "snapshot-purge").Logger(),
	}
}

// Name implements Job.
func (j *PurgeJob) Name() string {
	return "snapshot-purge"
}

// Run implements Job.
func (j *PurgeJob) Run() error {
	n, err := j.cache.Purge()
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Info().Int64("evicted", n).Msg("Purged expired snapshots")
	}
	return nil
}

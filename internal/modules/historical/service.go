package historical

import (
	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
)

// Service coordinates CSV ingestion and the observation store.
type Service struct {
	loader *Loader
	repo   *Repository
	log    zerolog.Logger
}

// NewService creates a new historical data service.
func NewService(loader *Loader, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		loader: loader,
		repo:   repo,
		log:    log.With().Str("service", "historical").Logger(),
	}
}

// Refresh re-ingests all group CSV files into the store. Called at startup
// and by the scheduled refresh job.
func (s *Service) Refresh() error {
	obs, err := s.loader.LoadAll()
	if err != nil {
		return err
	}
	return s.repo.ReplaceAll(obs)
}

// Observations returns the stored dataset, or ErrNoData when the store is
// empty.
func (s *Service) Observations() ([]domain.Observation, error) {
	obs, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, ErrNoData
	}
	return obs, nil
}

// Count returns the number of stored observations.
func (s *Service) Count() (int, error) {
	return s.repo.Count()
}

package historical

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quantrove/capscope/internal/domain"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, zerolog.Nop())
	require.NoError(t, repo.Migrate())
	return repo
}

func TestRepository_ReplaceAllAndGetAll(t *testing.T) {
	repo := setupRepo(t)

	obs := []domain.Observation{
		{Symbol: "600519.SH", Date: day("2024-01-31"), GroupID: 1, GroupName: "Smallest Cap", Return: 0.05, AvgMarketCap: 20.00},
		{Symbol: "600000.SH", Date: day("2024-02-29"), GroupID: 2, GroupName: "Small Cap", Return: -0.01, AvgMarketCap: 57.50},
	}
	require.NoError(t, repo.ReplaceAll(obs))

	got, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, obs, got)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRepository_ReplaceAllSwapsDataset(t *testing.T) {
	repo := setupRepo(t)

	first := []domain.Observation{
		{Date: day("2024-01-31"), GroupID: 1, GroupName: "Smallest Cap", Return: 0.05, AvgMarketCap: 20.00},
	}
	require.NoError(t, repo.ReplaceAll(first))

	second := []domain.Observation{
		{Date: day("2024-02-29"), GroupID: 3, GroupName: "Mid Cap", Return: 0.02, AvgMarketCap: 180.00},
	}
	require.NoError(t, repo.ReplaceAll(second))

	got, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestService_ObservationsEmptyStore(t *testing.T) {
	repo := setupRepo(t)
	svc := NewService(NewLoader(t.TempDir(), day("2025-12-31"), zerolog.Nop()), repo, zerolog.Nop())

	_, err := svc.Observations()
	assert.ErrorIs(t, err, ErrNoData)
}

package snapshots

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/metrics"
	"github.com/quantrove/capscope/internal/modules/scoring"
)

func setupCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := NewCache(db, ttl, zerolog.Nop())
	require.NoError(t, c.Migrate())
	return c
}

func samplePayload(t *testing.T) Payload {
	t.Helper()
	periods := []time.Time{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)}
	m := domain.NewMatrix(periods, []string{"Mid Cap", "Large Cap"})
	require.NoError(t, m.Set(0, "Mid Cap", domain.Present(0.05)))

	set := &metrics.Set{
		PeriodReturns: m,
		RollingReturn: m,
		Volatility:    m,
		Sharpe:        m,
		Scores:        m,
		Diagnostics:   scoring.Diagnostics{CellFailures: 1, Failures: []scoring.CellFailure{{Period: "2024-01-31", Group: "Mid Cap", Reason: "x"}}},
	}
	return FromSet(set)
}

func TestCache_PutGet(t *testing.T) {
	c := setupCache(t, time.Hour)
	p := samplePayload(t)

	require.NoError(t, c.Put("groups=all&window=12", p))

	got, ok := c.Get("groups=all&window=12")
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Diagnostics, got.Diagnostics)

	require.Len(t, got.Scores, 1)
	require.NotNil(t, got.Scores[0].Values["Mid Cap"])
	assert.Equal(t, 0.05, *got.Scores[0].Values["Mid Cap"])
	assert.Nil(t, got.Scores[0].Values["Large Cap"], "absent cells survive the round trip as nulls")
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := setupCache(t, time.Hour)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	c := setupCache(t, -time.Second) // everything is already expired

	require.NoError(t, c.Put("k", samplePayload(t)))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := setupCache(t, time.Hour)
	require.NoError(t, c.Put("k", samplePayload(t)))

	require.NoError(t, c.Clear())
	_, ok := c.Get("k")
	assert.False(t, ok)
}

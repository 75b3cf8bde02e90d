// Package snapshots caches computed metric sets in cache.db so repeated
// dashboard requests with identical parameters skip recomputation. Snapshots
// are derived data: the cache is ephemeral and safe to delete.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/metrics"
	"github.com/quantrove/capscope/internal/modules/scoring"
)

// Payload is the serializable form of a computed metric set, stored
// row-major with absent cells as nulls.
type Payload struct {
	ID            string              `json:"id" msgpack:"id"`
	PeriodReturns []domain.TableRow   `json:"period_returns" msgpack:"period_returns"`
	RollingReturn []domain.TableRow   `json:"rolling_return" msgpack:"rolling_return"`
	Volatility    []domain.TableRow   `json:"volatility" msgpack:"volatility"`
	Sharpe        []domain.TableRow   `json:"sharpe" msgpack:"sharpe"`
	Scores        []domain.TableRow   `json:"scores" msgpack:"scores"`
	Diagnostics   scoring.Diagnostics `json:"diagnostics" msgpack:"diagnostics"`
}

// FromSet flattens a metric set into its cacheable payload.
func FromSet(set *metrics.Set) Payload {
	return Payload{
		ID:            uuid.NewString(),
		PeriodReturns: set.PeriodReturns.Table(),
		RollingReturn: set.RollingReturn.Table(),
		Volatility:    set.Volatility.Table(),
		Sharpe:        set.Sharpe.Table(),
		Scores:        set.Scores.Table(),
		Diagnostics:   set.Diagnostics,
	}
}

// Cache stores msgpack-encoded payloads keyed by request parameters.
type Cache struct {
	cacheDB *sql.DB
	ttl     time.Duration
	log     zerolog.Logger
}

// NewCache creates a snapshot cache with the given entry lifetime.
func NewCache(cacheDB *sql.DB, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		cacheDB: cacheDB,
		ttl:     ttl,
		log:     log.With().Str("component", "snapshot-cache").Logger(),
	}
}

// Migrate creates the snapshots table if needed.
func (c *Cache) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		cache_key  TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);`
	if _, err := c.cacheDB.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate snapshots table: %w", err)
	}
	return nil
}

// Get returns the cached payload for key, if present and not expired. Cache
// problems are logged and reported as a miss; the cache must never take an
// analysis request down.
func (c *Cache) Get(key string) (Payload, bool) {
	var (
		blob      []byte
		createdAt int64
	)
	err := c.cacheDB.QueryRow(
		"SELECT payload, created_at FROM snapshots WHERE cache_key = ?", key,
	).Scan(&blob, &createdAt)
	if err == sql.ErrNoRows {
		return Payload{}, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Snapshot lookup failed, treating as miss")
		return Payload{}, false
	}

	if time.Since(time.Unix(createdAt, 0)) > c.ttl {
		if _, err := c.cacheDB.Exec("DELETE FROM snapshots WHERE cache_key = ?", key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to evict expired snapshot")
		}
		return Payload{}, false
	}

	var p Payload
	if err := msgpack.Unmarshal(blob, &p); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Snapshot decode failed, treating as miss")
		return Payload{}, false
	}
	return p, true
}

// Put stores a payload under key, replacing any previous entry.
func (c *Cache) Put(key string, p Payload) error {
	blob, err := msgpack.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = c.cacheDB.Exec(
		"INSERT OR REPLACE INTO snapshots (cache_key, payload, created_at) VALUES (?, ?, ?)",
		key, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Purge removes all expired entries. Run hourly by the purge job.
func (c *Cache) Purge() (int64, error) {
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.cacheDB.Exec("DELETE FROM snapshots WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear drops every entry, used after a dataset refresh invalidates all
// cached results.
func (c *Cache) Clear() error {
	if _, err := c.cacheDB.Exec("DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

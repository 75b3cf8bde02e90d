package historical

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
)

// observationColumns avoids SELECT * so schema additions don't break scans.
const observationColumns = `symbol, trade_date, group_id, group_name, monthly_return, avg_market_cap`

// Repository persists observations in data.db.
type Repository struct {
	dataDB *sql.DB
	log    zerolog.Logger
}

// NewRepository creates a new observation repository.
func NewRepository(dataDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		dataDB: dataDB,
		log:    log.With().Str("repo", "observations").Logger(),
	}
}

// Migrate creates the observations table if needed.
func (r *Repository) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol         TEXT NOT NULL DEFAULT '',
		trade_date     TEXT NOT NULL,
		group_id       INTEGER NOT NULL,
		group_name     TEXT NOT NULL,
		monthly_return REAL NOT NULL,
		avg_market_cap REAL NOT NULL,
		created_at     TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_observations_date ON observations(trade_date);
	CREATE INDEX IF NOT EXISTS idx_observations_group ON observations(group_id);`

	if _, err := r.dataDB.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate observations table: %w", err)
	}
	return nil
}

// ReplaceAll swaps the stored dataset for the given observations in one
// transaction, so readers never see a half-ingested dataset.
func (r *Repository) ReplaceAll(obs []domain.Observation) error {
	tx, err := r.dataDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM observations"); err != nil {
		return fmt.Errorf("failed to clear observations: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO observations
		(symbol, trade_date, group_id, group_name, monthly_return, avg_market_cap)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		_, err := stmt.Exec(
			o.Symbol,
			o.Date.Format(domain.DateFormat),
			o.GroupID,
			o.GroupName,
			o.Return,
			o.AvgMarketCap,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit observations: %w", err)
	}

	r.log.Info().Int("count", len(obs)).Msg("Observation dataset replaced")
	return nil
}

// GetAll returns every stored observation ordered by date then group.
func (r *Repository) GetAll() ([]domain.Observation, error) {
	query := "SELECT " + observationColumns + " FROM observations ORDER BY trade_date, group_id"

	rows, err := r.dataDB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	return r.scanObservations(rows)
}

// Count returns the number of stored observations.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.dataDB.QueryRow("SELECT COUNT(*) FROM observations").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}

func (r *Repository) scanObservations(rows *sql.Rows) ([]domain.Observation, error) {
	var out []domain.Observation
	for rows.Next() {
		var (
			o       domain.Observation
			dateStr string
		)
		if err := rows.Scan(&o.Symbol, &dateStr, &o.GroupID, &o.GroupName, &o.Return, &o.AvgMarketCap); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			// Stored dates are written by us; a bad one is logged and dropped.
			r.log.Warn().Str("trade_date", dateStr).Msg("Dropping observation with invalid stored date")
			continue
		}
		o.Date = date
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading observation rows: %w", err)
	}
	return out, nil
}

// Package historical handles ingestion, storage and date-range filtering of
// group observation data. Data acquisition itself happens upstream; this
// package starts at the per-group CSV files it produces.
package historical

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/universe"
	"github.com/quantrove/capscope/internal/utils"
)

// ErrNoData is returned when ingestion yields no valid observations at all.
var ErrNoData = domain.ErrNoData

// CSV columns. groupFilePattern matches the files written by the upstream
// grouping pipeline (group_1_data.csv .. group_5_data.csv).
const (
	groupFilePattern = "group_%d_data.csv"

	columnSymbol = "ts_code"
	columnDate   = "trade_date"
	columnReturn = "monthly_return"
)

// Loader reads per-group CSV files into domain observations.
type Loader struct {
	dataDir string
	maxDate time.Time // Observations after this date are discarded
	log     zerolog.Logger
}

// NewLoader creates a new group CSV loader.
func NewLoader(dataDir string, maxDate time.Time, log zerolog.Logger) *Loader {
	return &Loader{
		dataDir: dataDir,
		maxDate: maxDate,
		log:     log.With().Str("component", "loader").Logger(),
	}
}

// LoadAll reads every group file that exists. A missing or broken group file
// is logged and skipped so the remaining groups still load. Returns ErrNoData
// when nothing valid was read.
func (l *Loader) LoadAll() ([]domain.Observation, error) {
	defer utils.OperationTimer("csv_ingest", l.log)()

	var all []domain.Observation

	for _, group := range universe.All() {
		path := filepath.Join(l.dataDir, fmt.Sprintf(groupFilePattern, group.ID))

		obs, err := l.loadGroupFile(path, group)
		if err != nil {
			l.log.Error().Err(err).Int("group", group.ID).Str("path", path).
				Msg("Failed to load group file, skipping")
			continue
		}

		l.log.Info().Int("group", group.ID).Int("rows", len(obs)).Msg("Loaded group data")
		all = append(all, obs...)
	}

	if len(all) == 0 {
		return nil, ErrNoData
	}
	return all, nil
}

// loadGroupFile reads one group CSV. Rows with unparseable dates are dropped
// with a warning; a missing return column degrades to 0.0 rather than
// failing the file.
func (l *Loader) loadGroupFile(path string, group universe.Group) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open group file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Column counts vary across dataset versions

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	dateIdx, hasDate := cols[columnDate]
	if !hasDate {
		return nil, fmt.Errorf("group file has no %s column", columnDate)
	}

	returnIdx, hasReturn := cols[columnReturn]
	if !hasReturn {
		l.log.Warn().Int("group", group.ID).Str("column", columnReturn).
			Msg("Missing return column, defaulting values to 0.0")
	}
	symbolIdx, hasSymbol := cols[columnSymbol]

	var (
		obs         []domain.Observation
		droppedDate int
		droppedMax  int
	)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn().Err(err).Int("group", group.ID).Int("line", line).Msg("Skipping malformed row")
			continue
		}

		date, err := parseTradeDate(field(record, dateIdx))
		if err != nil {
			droppedDate++
			continue
		}
		if date.After(l.maxDate) {
			droppedMax++
			continue
		}

		ret := 0.0
		if hasReturn {
			if v, err := strconv.ParseFloat(field(record, returnIdx), 64); err == nil {
				ret = v
			}
		}

		symbol := ""
		if hasSymbol {
			symbol = field(record, symbolIdx)
		}

		obs = append(obs, domain.Observation{
			Symbol:       symbol,
			Date:         date,
			GroupID:      group.ID,
			GroupName:    group.Name,
			Return:       ret,
			AvgMarketCap: group.AvgMarketCap,
		})
	}

	if droppedDate > 0 {
		l.log.Warn().Int("group", group.ID).Int("rows", droppedDate).
			Msg("Dropped rows with unparseable dates")
	}
	if droppedMax > 0 {
		l.log.Warn().Int("group", group.ID).Int("rows", droppedMax).
			Str("max_date", l.maxDate.Format(domain.DateFormat)).
			Msg("Dropped rows beyond maximum allowed date")
	}

	return obs, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// parseTradeDate accepts the two formats seen in the dataset: compact
// YYYYMMDD and ISO YYYY-MM-DD. Time-of-day is never significant.
func parseTradeDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(domain.DateFormat, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

package historical

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
)

// FilterByDateRange restricts observations to the inclusive [start, end]
// calendar-day window. A nil bound returns the input unchanged. When the
// window matches nothing, the actual available range is logged and the
// unfiltered input is returned so downstream analysis keeps running.
func FilterByDateRange(obs []domain.Observation, start, end *time.Time, log zerolog.Logger) []domain.Observation {
	if start == nil || end == nil {
		log.Debug().Msg("No date range specified, returning full dataset")
		return obs
	}
	if len(obs) == 0 {
		log.Warn().Msg("Empty dataset passed to date filter")
		return obs
	}

	startDay := truncateToDay(*start)
	endDay := truncateToDay(*end)

	filtered := make([]domain.Observation, 0, len(obs))
	for _, o := range obs {
		d := truncateToDay(o.Date)
		if !d.Before(startDay) && !d.After(endDay) {
			filtered = append(filtered, o)
		}
	}

	if len(filtered) == 0 {
		min, max := dateBounds(obs)
		log.Warn().
			Str("requested_start", startDay.Format(domain.DateFormat)).
			Str("requested_end", endDay.Format(domain.DateFormat)).
			Str("available_min", min.Format(domain.DateFormat)).
			Str("available_max", max.Format(domain.DateFormat)).
			Msg("Date range matched no observations, falling back to full dataset")
		return obs
	}

	return filtered
}

// Preset is a quick time-range selection resolved against the dataset.
type Preset string

const (
	PresetAll    Preset = "all"
	PresetOneYr  Preset = "1y"
	PresetThree  Preset = "3y"
	PresetFiveYr Preset = "5y"
)

// presetDays mirrors the quick-select ranges offered in the UI.
var presetDays = map[Preset]int{
	PresetOneYr:  365,
	PresetThree:  1095,
	PresetFiveYr: 1825,
}

// ResolvePreset translates a preset into concrete bounds against the
// dataset's actual date range. PresetAll (and unknown presets) yield nil
// bounds, meaning no filtering.
func ResolvePreset(obs []domain.Observation, preset Preset) (start, end *time.Time) {
	days, ok := presetDays[preset]
	if !ok || len(obs) == 0 {
		return nil, nil
	}

	min, max := dateBounds(obs)
	from := max.AddDate(0, 0, -days)
	if from.Before(min) {
		from = min
	}
	return &from, &max
}

func dateBounds(obs []domain.Observation) (min, max time.Time) {
	min, max = obs[0].Date, obs[0].Date
	for _, o := range obs[1:] {
		if o.Date.Before(min) {
			min = o.Date
		}
		if o.Date.After(max) {
			max = o.Date
		}
	}
	return min, max
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

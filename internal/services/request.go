package services

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/modules/metrics"
	"github.com/quantrove/capscope/internal/modules/universe"
	"github.com/quantrove/capscope/internal/utils"
)

// Defaults supplies configured fallbacks for optional request parameters.
type Defaults struct {
	Window       int
	RiskFreeRate float64
}

// RequestFromQuery builds an analysis request from URL query parameters:
//
//	groups  comma-separated display names (default: all groups)
//	window  rolling window in periods
//	rf      annual risk-free rate
//	start   inclusive start date (YYYY-MM-DD), requires end
//	end     inclusive end date (YYYY-MM-DD), requires start
//	preset  all|1y|3y|5y, used when start/end are absent
//	bucket  day|month (default: day)
func RequestFromQuery(q url.Values, d Defaults) (Request, error) {
	req := Request{
		Groups:       universe.Names(),
		Preset:       historical.PresetAll,
		Bucket:       metrics.BucketDay,
		Window:       d.Window,
		RiskFreeRate: d.RiskFreeRate,
	}

	if raw := q.Get("groups"); raw != "" {
		groups := utils.ParseCSV(raw)
		if len(groups) == 0 {
			return Request{}, fmt.Errorf("no group names in %q", raw)
		}
		for _, name := range groups {
			if _, ok := universe.ByName(name); !ok {
				return Request{}, fmt.Errorf("unknown group %q", name)
			}
		}
		req.Groups = groups
	}

	if raw := q.Get("window"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil || w <= 0 {
			return Request{}, fmt.Errorf("invalid window %q", raw)
		}
		req.Window = w
	}

	if raw := q.Get("rf"); raw != "" {
		rf, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Request{}, fmt.Errorf("invalid risk-free rate %q", raw)
		}
		req.RiskFreeRate = rf
	}

	if raw := q.Get("bucket"); raw != "" {
		switch metrics.Bucket(raw) {
		case metrics.BucketDay, metrics.BucketMonth:
			req.Bucket = metrics.Bucket(raw)
		default:
			return Request{}, fmt.Errorf("invalid bucket %q (day or month)", raw)
		}
	}

	startRaw, endRaw := q.Get("start"), q.Get("end")
	if (startRaw == "") != (endRaw == "") {
		return Request{}, fmt.Errorf("start and end must be given together")
	}
	if startRaw != "" {
		start, err := time.Parse(domain.DateFormat, startRaw)
		if err != nil {
			return Request{}, fmt.Errorf("invalid start date %q", startRaw)
		}
		end, err := time.Parse(domain.DateFormat, endRaw)
		if err != nil {
			return Request{}, fmt.Errorf("invalid end date %q", endRaw)
		}
		if end.Before(start) {
			return Request{}, fmt.Errorf("end date before start date")
		}
		req.Start, req.End = &start, &end
	} else if raw := q.Get("preset"); raw != "" {
		req.Preset = historical.Preset(raw)
	}

	return req, nil
}

// Package domain contains the core data model for CapScope.
// The domain layer is pure: no database, HTTP, or chart dependencies.
package domain

import (
	"errors"
	"time"
)

// DateFormat is the canonical day-resolution format used throughout the app.
const DateFormat = "2006-01-02"

// ErrNoData signals that no valid observations are available for a request.
// It is an expected condition surfaced to callers, never a crash.
var ErrNoData = errors.New("no valid observations available")

// Observation is one security's measurement at one trade date.
type Observation struct {
	Symbol       string    `json:"symbol"`         // Security identifier (e.g. "600519.SH")
	Date         time.Time `json:"date"`           // Trade date, day resolution
	GroupID      int       `json:"group_id"`       // Market-cap quintile, 1..5
	GroupName    string    `json:"group_name"`     // Display name from the group registry
	Return       float64   `json:"return"`         // Fractional period return (0.03 = +3%)
	AvgMarketCap float64   `json:"avg_market_cap"` // Representative group market cap, informational
}

// Cell is one matrix value. Valid distinguishes a computed value (including
// zero) from "no data for this period/group".
type Cell struct {
	Value float64
	Valid bool
}

// Present returns a valid cell holding v.
func Present(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// Absent returns the empty cell.
func Absent() Cell {
	return Cell{}
}

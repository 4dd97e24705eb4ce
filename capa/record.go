// Package capa loads and queries corrective-and-preventive-action (CAPA)
// records from tab-separated export files. Field values arrive in whatever
// shape the exporting quality system produced, so the package normalizes
// statuses and dates into a canonical form at load time.
package capa

import (
	"strings"
	"time"
)

// Canonical status values a record can carry after normalization.
const (
	StatusOpen       = "OPEN"
	StatusClosed     = "CLOSED"
	StatusInProgress = "IN_PROGRESS"
	StatusPending    = "PENDING"
	StatusCancelled  = "CANCELLED"
)

// Record is a single CAPA entry.
type Record struct {
	ID         string `json:"capa_id"`
	Title      string `json:"title"`
	Region     string `json:"region"`
	Status     string `json:"status"`
	Date       string `json:"date"` // Normalized to YYYY-MM-DD where parseable
	Priority   string `json:"priority"`
	AssignedTo string `json:"assigned_to"`
}

// OpenedAt parses the record date. The bool is false when the date did not
// normalize to YYYY-MM-DD.
func (r Record) OpenedAt() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsOpen reports whether the record counts as unresolved. In progress and
// pending records are treated as open for reporting purposes.
func (r Record) IsOpen() bool {
	switch r.Status {
	case StatusOpen, StatusInProgress, StatusPending:
		return true
	default:
		return false
	}
}

// NormalizeStatus maps free-form status text onto the canonical set. Unknown
// values default to OPEN so that questionable records surface in reports
// rather than silently disappearing.
func NormalizeStatus(s string) string {
	up := strings.ToUpper(strings.TrimSpace(s))

	switch up {
	case StatusOpen, StatusClosed, StatusInProgress, StatusPending, StatusCancelled:
		return up
	}

	switch {
	case strings.Contains(up, "PROGRESS"), strings.Contains(up, "WORKING"):
		return StatusInProgress
	case strings.Contains(up, "COMPLETE"), strings.Contains(up, "DONE"):
		return StatusClosed
	default:
		return StatusOpen
	}
}

// dateLayouts lists the formats seen in exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
}

// NormalizeDate converts a date string into YYYY-MM-DD. Values that match no
// known layout are returned trimmed but otherwise unchanged.
func NormalizeDate(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/cityscope/api/internal/models"
)

// OverallArea is the sentinel area value meaning "no area filtering".
const OverallArea = "Overall"

// Range is an inclusive [Start, End] date window.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. A zero Start or End
// leaves that side unbounded.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// FilterRange returns the records whose date falls inside the window.
func FilterRange(records []models.HistoricalRecord, rng Range) []models.HistoricalRecord {
	out := make([]models.HistoricalRecord, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterSeverity returns the records matching the severity category.
func FilterSeverity(records []models.HistoricalRecord, cat models.SeverityCategory) []models.HistoricalRecord {
	out := make([]models.HistoricalRecord, 0, len(records))
	for _, r := range records {
		if r.Severity == cat {
			out = append(out, r)
		}
	}
	return out
}

// FilterArea returns the records matching the area name. The OverallArea
// sentinel (case-insensitive) and the empty string disable filtering.
func FilterArea(records []models.HistoricalRecord, area string) []models.HistoricalRecord {
	if area == "" || strings.EqualFold(area, OverallArea) {
		return records
	}
	out := make([]models.HistoricalRecord, 0, len(records))
	for _, r := range records {
		if r.AreaName == area {
			out = append(out, r)
		}
	}
	return out
}

// monthStart truncates a timestamp to the first instant of its calendar month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// monthEnd returns the last calendar day of t's month. Month buckets are
// labeled at month end, matching the historical convention of the persisted
// chart data.
func monthEnd(t time.Time) time.Time {
	return monthStart(t).AddDate(0, 1, -1)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median returns the middle value of the input, averaging the two central
// values for even-length input. The input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

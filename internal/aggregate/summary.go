package aggregate

import (
	"time"

	"github.com/cityscope/api/internal/models"
)

// ZipSummary holds the most recent reporting month's aggregate statistics for
// one ZIP code. Found is false when the dataset has no records for the ZIP,
// in which case every other field is zero.
type ZipSummary struct {
	Zip                string                          `json:"zip"`
	Found              bool                            `json:"found"`
	PrecinctArea       string                          `json:"precinctArea,omitempty"`
	LatestDate         time.Time                       `json:"latestDate,omitzero"`
	LatestMonth        time.Time                       `json:"latestMonth,omitzero"`
	AverageRent        *float64                        `json:"averageRent"`
	CrimeCounts        map[models.SeverityCategory]int `json:"crimeCounts,omitempty"`
	AverageDangerRatio *float64                        `json:"averageDangerRatio"`
}

// SummarizeZip computes the latest-month summary for a ZIP code over the
// given records. Callers wanting a date-restricted summary pass a
// pre-filtered slice (see FilterRange).
//
// The latest month is the calendar month of the maximum date among the ZIP's
// records; averages are taken over non-null values within that month, and
// crime counts always report all three severity categories, zero-filled.
// The precinct area comes from the maximum-date record, first occurring on
// ties.
func SummarizeZip(records []models.HistoricalRecord, zip string) ZipSummary {
	summary := ZipSummary{Zip: zip}

	var selected []models.HistoricalRecord
	for _, r := range records {
		if r.HasZip(zip) {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return summary
	}

	latest := selected[0]
	for _, r := range selected[1:] {
		if r.Date.After(latest.Date) {
			latest = r
		}
	}
	summary.Found = true
	summary.PrecinctArea = latest.PrecinctArea
	summary.LatestDate = latest.Date
	summary.LatestMonth = monthStart(latest.Date)

	var rents, ratios []float64
	counts := map[models.SeverityCategory]int{
		models.SeverityFelony:      0,
		models.SeverityMisdemeanor: 0,
		models.SeverityViolation:   0,
	}
	for _, r := range selected {
		if r.Date.Before(summary.LatestMonth) {
			continue
		}
		counts[r.Severity] += r.Count
		if r.MedianRent != nil {
			rents = append(rents, *r.MedianRent)
		}
		if r.DangerRatio != nil {
			ratios = append(ratios, *r.DangerRatio)
		}
	}
	summary.CrimeCounts = counts
	if len(rents) > 0 {
		avg := mean(rents)
		summary.AverageRent = &avg
	}
	if len(ratios) > 0 {
		avg := mean(ratios)
		summary.AverageDangerRatio = &avg
	}
	return summary
}

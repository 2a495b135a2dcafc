package models

import (
	"fmt"
	"strings"
	"time"
)

// SeverityCategory classifies an offense by legal severity.
type SeverityCategory string

const (
	SeverityFelony      SeverityCategory = "FELONY"
	SeverityMisdemeanor SeverityCategory = "MISDEMEANOR"
	SeverityViolation   SeverityCategory = "VIOLATION"
)

// SeverityCategories lists all categories in display order. Aggregates report
// all three even when a category has no incidents.
var SeverityCategories = []SeverityCategory{
	SeverityFelony,
	SeverityMisdemeanor,
	SeverityViolation,
}

// Severity weights used by the danger ratio derivation.
const (
	WeightFelony      = 3
	WeightMisdemeanor = 2
	WeightViolation   = 1
)

// Weight returns the severity weight for the category, or 0 for an unknown one.
func (s SeverityCategory) Weight() int {
	switch s {
	case SeverityFelony:
		return WeightFelony
	case SeverityMisdemeanor:
		return WeightMisdemeanor
	case SeverityViolation:
		return WeightViolation
	default:
		return 0
	}
}

// ParseSeverity normalizes a raw dataset value into a SeverityCategory.
func ParseSeverity(raw string) (SeverityCategory, error) {
	switch SeverityCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case SeverityFelony:
		return SeverityFelony, nil
	case SeverityMisdemeanor:
		return SeverityMisdemeanor, nil
	case SeverityViolation:
		return SeverityViolation, nil
	default:
		return "", fmt.Errorf("unknown severity category %q", raw)
	}
}

// HistoricalRecord is one precinct-month row of the rent/crime dataset.
// Records are immutable once loaded; the aggregation layer only derives
// views over them. Nullable numeric fields use pointers to distinguish
// missing values from zeros.
type HistoricalRecord struct {
	Date         time.Time        `json:"date"`
	Severity     SeverityCategory `json:"severity"`
	Count        int              `json:"count"`
	PrecinctCode string           `json:"precinctCode"`
	PrecinctArea string           `json:"precinctArea"`
	AreaName     string           `json:"areaName"`
	Borough      string           `json:"borough"`
	AreaType     string           `json:"areaType,omitempty"`
	Neighborhood string           `json:"neighborhood,omitempty"`
	MedianRent   *float64         `json:"medianRent,omitempty"`
	DangerRatio  *float64         `json:"dangerRatio,omitempty"`
	ZipCodes     []string         `json:"zipCodes"`
}

// HasZip reports whether the record's precinct covers the given ZIP code.
func (r *HistoricalRecord) HasZip(zip string) bool {
	for _, z := range r.ZipCodes {
		if z == zip {
			return true
		}
	}
	return false
}

package dataset

import (
	"sort"
	"time"

	"github.com/cityscope/api/internal/models"
)

// Store is the read-only in-memory dataset loaded once at process start.
// It is safe for concurrent use because it is never mutated after
// construction. An empty store places the service in a degraded mode:
// summaries and charts answer with explicit no-data results.
type Store struct {
	records   []models.HistoricalRecord
	minDate   time.Time
	maxDate   time.Time
	areaNames []string
}

// NewStore builds a store over the loaded records.
func NewStore(records []models.HistoricalRecord) *Store {
	s := &Store{records: records}
	areas := make(map[string]bool)
	for i, r := range records {
		if i == 0 || r.Date.Before(s.minDate) {
			s.minDate = r.Date
		}
		if i == 0 || r.Date.After(s.maxDate) {
			s.maxDate = r.Date
		}
		if r.AreaName != "" {
			areas[r.AreaName] = true
		}
	}
	s.areaNames = make([]string, 0, len(areas))
	for a := range areas {
		s.areaNames = append(s.areaNames, a)
	}
	sort.Strings(s.areaNames)
	return s
}

// Records returns the underlying record slice. Callers must treat it as
// read-only.
func (s *Store) Records() []models.HistoricalRecord {
	return s.records
}

// Empty reports whether the dataset failed to load or holds no rows.
func (s *Store) Empty() bool {
	return len(s.records) == 0
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// DateBounds returns the minimum and maximum record dates. Both are zero for
// an empty store.
func (s *Store) DateBounds() (min, max time.Time) {
	return s.minDate, s.maxDate
}

// AreaNames returns the distinct area names, sorted.
func (s *Store) AreaNames() []string {
	return s.areaNames
}

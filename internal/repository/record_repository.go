package repository

import (
	"context"
	"fmt"

	"github.com/cityscope/api/internal/database"
	"github.com/cityscope/api/internal/models"
)

// RecordRepository defines the interface for historical record access when
// the dataset source is postgres. The dataset is loaded once at startup and
// then served from memory, so the repository only needs bulk retrieval.
type RecordRepository interface {
	// LoadAll returns every historical record, ordered by date then precinct.
	// Returns an empty slice when the table is empty (not an error).
	LoadAll(ctx context.Context) ([]models.HistoricalRecord, error)
}

// recordRepository is the concrete implementation of RecordRepository.
type recordRepository struct {
	db *database.Database
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *database.Database) RecordRepository {
	return &recordRepository{
		db: db,
	}
}

// LoadAll streams the full rent_crime_monthly table into memory. Severity
// values that do not match the fixed vocabulary are skipped rather than
// failing the load, matching the CSV ingestion contract.
func (r *recordRepository) LoadAll(ctx context.Context) ([]models.HistoricalRecord, error) {
	query := `
		SELECT
			date,
			law_cat_cd,
			count,
			addr_pct_cd,
			precinct_area,
			area_name,
			borough,
			area_type,
			neighborhood,
			median_rent,
			danger_ratio,
			zip_codes
		FROM rent_crime_monthly
		ORDER BY date, addr_pct_cd
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical records: %w", err)
	}
	defer rows.Close()

	var records []models.HistoricalRecord

	for rows.Next() {
		var rec models.HistoricalRecord
		var severity string

		err := rows.Scan(
			&rec.Date,
			&severity,
			&rec.Count,
			&rec.PrecinctCode,
			&rec.PrecinctArea,
			&rec.AreaName,
			&rec.Borough,
			&rec.AreaType,
			&rec.Neighborhood,
			&rec.MedianRent,
			&rec.DangerRatio,
			&rec.ZipCodes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan historical record row: %w", err)
		}

		parsed, err := models.ParseSeverity(severity)
		if err != nil {
			continue
		}
		rec.Severity = parsed
		rec.Date = rec.Date.UTC()
		if rec.ZipCodes == nil {
			rec.ZipCodes = []string{}
		}

		records = append(records, rec)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical record rows: %w", err)
	}

	// Return empty slice if the table is empty (not an error)
	if records == nil {
		records = []models.HistoricalRecord{}
	}

	return records, nil
}

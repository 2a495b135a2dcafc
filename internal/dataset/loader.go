// Package dataset loads the historical rent/crime dataset and serves it as
// an immutable in-memory store for the lifetime of the process.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cityscope/api/internal/models"
)

// Dataset column names as they appear in the CSV header.
const (
	colPrecinctCode = "addr_pct_cd"
	colDate         = "date"
	colSeverity     = "law_cat_cd"
	colCount        = "count"
	colPrecinctArea = "precinct_area"
	colAreaName     = "areaName"
	colBorough      = "Borough"
	colAreaType     = "areaType"
	colMedianRent   = "median_rent"
	colNeighborhood = "Neighborhood"
	colZipCodes     = "ZIP Codes"
	colDangerRatio  = "danger_ratio"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadStats reports what happened during ingestion.
type LoadStats struct {
	Loaded  int
	Skipped int
}

// LoadCSVFile opens and parses a dataset file. See LoadCSV.
func LoadCSVFile(path string) ([]models.HistoricalRecord, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV parses the tabular dataset from r. The first row must be a header;
// columns are resolved by name so column order does not matter. Rows with an
// unparseable date, severity, or count are skipped and counted rather than
// failing ingestion; a malformed ZIP-codes cell degrades to an empty list.
func LoadCSV(r io.Reader) ([]models.HistoricalRecord, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to read dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colDate, colSeverity, colCount} {
		if _, ok := cols[required]; !ok {
			return nil, LoadStats{}, fmt.Errorf("dataset header missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.HistoricalRecord
	var stats LoadStats
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read dataset row: %w", err)
		}

		date, err := parseDate(field(row, colDate))
		if err != nil {
			stats.Skipped++
			continue
		}
		severity, err := models.ParseSeverity(field(row, colSeverity))
		if err != nil {
			stats.Skipped++
			continue
		}
		count, err := parseCount(field(row, colCount))
		if err != nil || count < 0 {
			stats.Skipped++
			continue
		}

		records = append(records, models.HistoricalRecord{
			Date:         date,
			Severity:     severity,
			Count:        count,
			PrecinctCode: field(row, colPrecinctCode),
			PrecinctArea: field(row, colPrecinctArea),
			AreaName:     field(row, colAreaName),
			Borough:      field(row, colBorough),
			AreaType:     field(row, colAreaType),
			Neighborhood: field(row, colNeighborhood),
			MedianRent:   parseOptionalFloat(field(row, colMedianRent)),
			DangerRatio:  parseOptionalFloat(field(row, colDangerRatio)),
			ZipCodes:     ParseZipList(field(row, colZipCodes)),
		})
		stats.Loaded++
	}
	return records, stats, nil
}

// ParseZipList parses the serialized ZIP-code list column, which holds a
// Python-style list literal such as ['10001', '10002'] or [10001, 10002].
// Anything malformed degrades to an empty list; ingestion never fails on
// this column.
func ParseZipList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return []string{}
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return []string{}
	}

	zips := make([]string, 0, 4)
	for _, part := range strings.Split(inner, ",") {
		z := strings.Trim(strings.TrimSpace(part), `'"`)
		if z != "" {
			zips = append(zips, z)
		}
	}
	return zips
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// parseCount accepts both integer and float renderings of the count column
// (exported dataframes often serialize integers as "12.0").
func parseCount(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

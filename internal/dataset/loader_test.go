package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityscope/api/internal/models"
)

const sampleHeader = `addr_pct_cd,date,law_cat_cd,count,precinct_area,areaName,Borough,areaType,median_rent,Neighborhood,ZIP Codes,danger_ratio`

func TestLoadCSV(t *testing.T) {
	input := sampleHeader + "\n" +
		`14,2024-06-01,FELONY,12,Midtown South,Midtown,Manhattan,precinct,3100,Chelsea,"['10001', '10018']",0.0116` + "\n" +
		`73,2024-06-01,MISDEMEANOR,7.0,Brownsville,Brownsville,Brooklyn,precinct,,Brownsville,"[11212]",` + "\n"

	records, stats, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 2, Skipped: 0}, stats)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, models.SeverityFelony, first.Severity)
	assert.Equal(t, 12, first.Count)
	assert.Equal(t, "14", first.PrecinctCode)
	assert.Equal(t, "Midtown South", first.PrecinctArea)
	assert.Equal(t, "Midtown", first.AreaName)
	assert.Equal(t, "Manhattan", first.Borough)
	assert.Equal(t, "Chelsea", first.Neighborhood)
	require.NotNil(t, first.MedianRent)
	assert.Equal(t, 3100.0, *first.MedianRent)
	require.NotNil(t, first.DangerRatio)
	assert.Equal(t, 0.0116, *first.DangerRatio)
	assert.Equal(t, []string{"10001", "10018"}, first.ZipCodes)

	second := records[1]
	// Float-rendered count and missing optionals.
	assert.Equal(t, 7, second.Count)
	assert.Nil(t, second.MedianRent)
	assert.Nil(t, second.DangerRatio)
	assert.Equal(t, []string{"11212"}, second.ZipCodes)
}

func TestLoadCSV_SkipsBadRows(t *testing.T) {
	input := sampleHeader + "\n" +
		`14,not-a-date,FELONY,12,,,,,,,,` + "\n" +
		`14,2024-06-01,ARSON,12,,,,,,,,` + "\n" +
		`14,2024-06-01,FELONY,many,,,,,,,,` + "\n" +
		`14,2024-06-01,FELONY,-3,,,,,,,,` + "\n" +
		`14,2024-06-01,FELONY,3,,,,,,,,` + "\n"

	records, stats, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 1, Skipped: 4}, stats)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Count)
}

func TestLoadCSV_ColumnOrderIndependent(t *testing.T) {
	input := "date,count,law_cat_cd\n" +
		"2024-06-01,5,VIOLATION\n"

	records, _, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SeverityViolation, records[0].Severity)
	assert.Equal(t, 5, records[0].Count)
	assert.Empty(t, records[0].ZipCodes)
}

func TestLoadCSV_MissingRequiredColumn(t *testing.T) {
	input := "date,count\n2024-06-01,5\n"

	_, _, err := LoadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "law_cat_cd")
}

func TestLoadCSV_DatetimeDates(t *testing.T) {
	input := "date,law_cat_cd,count\n" +
		"2024-06-01 00:00:00,FELONY,1\n"

	records, _, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestParseZipList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "quoted list",
			input:    `['10001', '10002']`,
			expected: []string{"10001", "10002"},
		},
		{
			name:     "double quoted list",
			input:    `["10001", "10002"]`,
			expected: []string{"10001", "10002"},
		},
		{
			name:     "unquoted list",
			input:    `[10001, 10002]`,
			expected: []string{"10001", "10002"},
		},
		{
			name:     "single element",
			input:    `['10001']`,
			expected: []string{"10001"},
		},
		{
			name:     "empty list",
			input:    `[]`,
			expected: []string{},
		},
		{
			name:     "empty string",
			input:    ``,
			expected: []string{},
		},
		{
			name:     "missing brackets",
			input:    `10001, 10002`,
			expected: []string{},
		},
		{
			name:     "garbage",
			input:    `nan`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseZipList(tt.input))
		})
	}
}

func TestStore(t *testing.T) {
	records := []models.HistoricalRecord{
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Severity: models.SeverityFelony, AreaName: "Midtown"},
		{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Severity: models.SeverityViolation, AreaName: "Brownsville"},
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Severity: models.SeverityFelony, AreaName: "Midtown"},
	}

	store := NewStore(records)

	assert.False(t, store.Empty())
	assert.Equal(t, 3, store.Len())

	min, max := store.DateBounds()
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), max)

	assert.Equal(t, []string{"Brownsville", "Midtown"}, store.AreaNames())
}

func TestStore_Empty(t *testing.T) {
	store := NewStore(nil)

	assert.True(t, store.Empty())
	assert.Equal(t, 0, store.Len())

	min, max := store.DateBounds()
	assert.True(t, min.IsZero())
	assert.True(t, max.IsZero())
	assert.Empty(t, store.AreaNames())
}

package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityscope/api/internal/models"
)

func chartRecords() []models.HistoricalRecord {
	return []models.HistoricalRecord{
		{
			Date:         day(2024, time.May, 1),
			Severity:     models.SeverityFelony,
			Count:        4,
			PrecinctArea: "Midtown South",
			AreaName:     "Midtown",
			Borough:      "Manhattan",
			MedianRent:   fp(3000),
			DangerRatio:  fp(0.004),
			ZipCodes:     []string{"10001"},
		},
		{
			Date:         day(2024, time.May, 1),
			Severity:     models.SeverityFelony,
			Count:        6,
			PrecinctArea: "Brownsville",
			AreaName:     "Brownsville",
			Borough:      "Brooklyn",
			MedianRent:   fp(2000),
			DangerRatio:  fp(0.009),
			ZipCodes:     []string{"11212"},
		},
		{
			Date:         day(2024, time.June, 1),
			Severity:     models.SeverityFelony,
			Count:        2,
			PrecinctArea: "Midtown South",
			AreaName:     "Midtown",
			Borough:      "Manhattan",
			MedianRent:   fp(3100),
			DangerRatio:  fp(0.002),
			ZipCodes:     []string{"10001"},
		},
		{
			Date:         day(2024, time.June, 1),
			Severity:     models.SeverityMisdemeanor,
			Count:        5,
			PrecinctArea: "Brownsville",
			AreaName:     "Brownsville",
			Borough:      "Brooklyn",
			MedianRent:   nil,
			DangerRatio:  nil,
			ZipCodes:     []string{"11212"},
		},
	}
}

func TestMonthlyCrimeTrend(t *testing.T) {
	t.Run("buckets by month end", func(t *testing.T) {
		series := MonthlyCrimeTrend(chartRecords(), Range{}, models.SeverityFelony)

		assert.False(t, series.NoData)
		require.Len(t, series.Points, 2)
		assert.Equal(t, day(2024, time.May, 31), series.Points[0].Month)
		assert.Equal(t, 10.0, series.Points[0].Value)
		assert.Equal(t, day(2024, time.June, 30), series.Points[1].Month)
		assert.Equal(t, 2.0, series.Points[1].Value)
	})

	t.Run("honors date window", func(t *testing.T) {
		rng := Range{Start: day(2024, time.June, 1)}
		series := MonthlyCrimeTrend(chartRecords(), rng, models.SeverityFelony)

		require.Len(t, series.Points, 1)
		assert.Equal(t, day(2024, time.June, 30), series.Points[0].Month)
	})

	t.Run("no matching severity reports NoData", func(t *testing.T) {
		series := MonthlyCrimeTrend(chartRecords(), Range{}, models.SeverityViolation)
		assert.True(t, series.NoData)
		assert.Empty(t, series.Points)
	})

	t.Run("pure over its input", func(t *testing.T) {
		records := chartRecords()
		first := MonthlyCrimeTrend(records, Range{}, models.SeverityFelony)
		second := MonthlyCrimeTrend(records, Range{}, models.SeverityFelony)
		assert.Equal(t, first, second)
	})
}

func TestCrimeByPrecinct(t *testing.T) {
	series := CrimeByPrecinct(chartRecords(), Range{}, models.SeverityFelony)

	assert.False(t, series.NoData)
	require.Len(t, series.Entries, 2)
	// Descending by total count.
	assert.Equal(t, RankedEntry{Key: "Brownsville", Value: 6}, series.Entries[0])
	assert.Equal(t, RankedEntry{Key: "Midtown South", Value: 6}, series.Entries[1])
}

func TestCrimeByPrecinct_TruncatesToTopN(t *testing.T) {
	var records []models.HistoricalRecord
	for i := 0; i < TopPrecinctsByCrime+10; i++ {
		records = append(records, models.HistoricalRecord{
			Date:         day(2024, time.June, 1),
			Severity:     models.SeverityFelony,
			Count:        i + 1,
			PrecinctArea: string(rune('A' + i)),
		})
	}

	series := CrimeByPrecinct(records, Range{}, models.SeverityFelony)
	assert.Len(t, series.Entries, TopPrecinctsByCrime)
	// Highest counts retained, descending.
	assert.Equal(t, float64(TopPrecinctsByCrime+10), series.Entries[0].Value)
}

func TestCrimeRentScatter(t *testing.T) {
	table := CrimeRentScatter(chartRecords(), Range{}, models.SeverityMisdemeanor)

	assert.False(t, table.NoData)
	require.Len(t, table.Points, 1)
	point := table.Points[0]
	assert.Equal(t, "Brownsville", point.PrecinctArea)
	assert.Equal(t, "Brooklyn", point.Borough)
	assert.Equal(t, 5, point.Count)
	// Null rent survives as nil so the chart can drop or mark it.
	assert.Nil(t, point.MedianRent)
}

func TestRentByBorough(t *testing.T) {
	t.Run("keeps only non-null rents", func(t *testing.T) {
		table := RentByBorough(chartRecords(), Range{})

		assert.False(t, table.NoData)
		require.Len(t, table.Rows, 3)
		for _, row := range table.Rows {
			assert.NotEmpty(t, row.Borough)
			assert.Greater(t, row.MedianRent, 0.0)
		}
	})

	t.Run("all-null rents report NoData", func(t *testing.T) {
		records := []models.HistoricalRecord{
			{Date: day(2024, time.June, 1), Severity: models.SeverityFelony, Borough: "Queens"},
		}
		table := RentByBorough(records, Range{})
		assert.True(t, table.NoData)
	})
}

func TestDangerHeatmap(t *testing.T) {
	table := DangerHeatmap(chartRecords(), Range{})

	assert.False(t, table.NoData)
	// Areas ranked by mean danger ratio, highest first.
	require.Len(t, table.Areas, 2)
	assert.Equal(t, "Brownsville", table.Areas[0])
	assert.Equal(t, "Midtown South", table.Areas[1])

	// Cells labeled at month start, sorted by area then month.
	require.Len(t, table.Cells, 3)
	assert.Equal(t, HeatmapCell{Area: "Brownsville", Month: day(2024, time.May, 1), Value: 0.009}, table.Cells[0])
	assert.Equal(t, HeatmapCell{Area: "Midtown South", Month: day(2024, time.May, 1), Value: 0.004}, table.Cells[1])
	assert.Equal(t, HeatmapCell{Area: "Midtown South", Month: day(2024, time.June, 1), Value: 0.002}, table.Cells[2])
}

func TestDangerHeatmap_AveragesWithinCell(t *testing.T) {
	records := []models.HistoricalRecord{
		{Date: day(2024, time.June, 1), Severity: models.SeverityFelony, PrecinctArea: "Chelsea", DangerRatio: fp(0.002)},
		{Date: day(2024, time.June, 15), Severity: models.SeverityViolation, PrecinctArea: "Chelsea", DangerRatio: fp(0.004)},
	}

	table := DangerHeatmap(records, Range{})
	require.Len(t, table.Cells, 1)
	assert.InDelta(t, 0.003, table.Cells[0].Value, 1e-12)
}

func TestDangerByPrecinct(t *testing.T) {
	series := DangerByPrecinct(chartRecords(), Range{})

	assert.False(t, series.NoData)
	require.Len(t, series.Entries, 2)
	assert.Equal(t, "Brownsville", series.Entries[0].Key)
	assert.InDelta(t, 0.009, series.Entries[0].Value, 1e-12)
	assert.Equal(t, "Midtown South", series.Entries[1].Key)
	assert.InDelta(t, 0.003, series.Entries[1].Value, 1e-12)
}

func TestRentTrend(t *testing.T) {
	t.Run("monthly median over all areas", func(t *testing.T) {
		series := RentTrend(chartRecords(), Range{}, OverallArea)

		require.Len(t, series.Points, 2)
		assert.Equal(t, day(2024, time.May, 31), series.Points[0].Month)
		assert.InDelta(t, 2500, series.Points[0].Value, 1e-9)
		assert.Equal(t, day(2024, time.June, 30), series.Points[1].Month)
		assert.InDelta(t, 3100, series.Points[1].Value, 1e-9)
	})

	t.Run("restricted to one area", func(t *testing.T) {
		series := RentTrend(chartRecords(), Range{}, "Midtown")

		require.Len(t, series.Points, 2)
		assert.InDelta(t, 3000, series.Points[0].Value, 1e-9)
		assert.InDelta(t, 3100, series.Points[1].Value, 1e-9)
	})

	t.Run("overall sentinel is case-insensitive", func(t *testing.T) {
		all := RentTrend(chartRecords(), Range{}, "overall")
		assert.Equal(t, RentTrend(chartRecords(), Range{}, OverallArea), all)
	})

	t.Run("unknown area reports NoData", func(t *testing.T) {
		series := RentTrend(chartRecords(), Range{}, "Atlantis")
		assert.True(t, series.NoData)
	})
}

func TestDangerTrend(t *testing.T) {
	series := DangerTrend(chartRecords(), Range{}, OverallArea)

	require.Len(t, series.Points, 2)
	assert.Equal(t, day(2024, time.May, 31), series.Points[0].Month)
	assert.InDelta(t, 0.0065, series.Points[0].Value, 1e-12)
	assert.Equal(t, day(2024, time.June, 30), series.Points[1].Month)
	assert.InDelta(t, 0.002, series.Points[1].Value, 1e-12)
}

func TestCleanZip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"10001", "10001"},
		{" 10001 ", "10001"},
		{"10001.0", "10001"},
		{"7093", "07093"},
		{"1", "00001"},
		{"ZIP 10001", "10001"},
		{"N/A", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanZip(tt.input))
		})
	}
}

func TestLatestRentByZip(t *testing.T) {
	records := []models.HistoricalRecord{
		{
			Date:       day(2024, time.May, 1),
			Severity:   models.SeverityFelony,
			MedianRent: fp(3000),
			ZipCodes:   []string{"10001", "10018"},
		},
		{
			Date:       day(2024, time.June, 1),
			Severity:   models.SeverityFelony,
			MedianRent: fp(3100),
			ZipCodes:   []string{"10001"},
		},
		{
			Date:       day(2024, time.June, 1),
			Severity:   models.SeverityViolation,
			MedianRent: nil,
			ZipCodes:   []string{"11212"},
		},
	}

	table := LatestRentByZip(records, Range{})

	assert.False(t, table.NoData)
	require.Len(t, table.Entries, 2)
	// Sorted by ZIP; the newer June rent wins for 10001 while 10018 keeps its
	// May value. 11212 only ever appears with a null rent and is dropped.
	assert.Equal(t, ZipRent{Zip: "10001", Date: day(2024, time.June, 1), MedianRent: 3100}, table.Entries[0])
	assert.Equal(t, ZipRent{Zip: "10018", Date: day(2024, time.May, 1), MedianRent: 3000}, table.Entries[1])
}

func TestLatestRentByZip_NoUsableRows(t *testing.T) {
	records := []models.HistoricalRecord{
		{Date: day(2024, time.June, 1), Severity: models.SeverityFelony, MedianRent: nil, ZipCodes: []string{"10001"}},
		{Date: day(2024, time.June, 1), Severity: models.SeverityFelony, MedianRent: fp(2000), ZipCodes: []string{"N/A"}},
	}

	table := LatestRentByZip(records, Range{})
	assert.True(t, table.NoData)
}

func TestRangeContains(t *testing.T) {
	rng := Range{Start: day(2024, time.May, 1), End: day(2024, time.June, 30)}

	assert.True(t, rng.Contains(day(2024, time.May, 1)))
	assert.True(t, rng.Contains(day(2024, time.June, 30)))
	assert.False(t, rng.Contains(day(2024, time.April, 30)))
	assert.False(t, rng.Contains(day(2024, time.July, 1)))

	open := Range{}
	assert.True(t, open.Contains(day(1990, time.January, 1)))
}

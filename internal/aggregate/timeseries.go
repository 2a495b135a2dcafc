package aggregate

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cityscope/api/internal/models"
)

// Ranked-view truncation limits. Top-N keeps the axes readable; the limits
// match the historical dashboard.
const (
	TopPrecinctsByCrime  = 15
	TopPrecinctsByDanger = 20
	TopHeatmapAreas      = 25
)

// MonthPoint is one month-end-labeled bucket of a monthly series.
type MonthPoint struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// MonthlySeries is a time series bucketed by calendar month. NoData is set
// when filtering left nothing to aggregate; it is distinct from a series of
// zero values and callers must render the two differently.
type MonthlySeries struct {
	NoData bool         `json:"noData"`
	Points []MonthPoint `json:"points"`
}

// RankedEntry is one key of a ranked (bar) view.
type RankedEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// RankedSeries is a descending ranked view truncated to a top-N.
type RankedSeries struct {
	NoData  bool          `json:"noData"`
	Entries []RankedEntry `json:"entries"`
}

// ScatterPoint is one row of the crime-vs-rent scatter table.
type ScatterPoint struct {
	Date         time.Time `json:"date"`
	MedianRent   *float64  `json:"medianRent"`
	Count        int       `json:"count"`
	Borough      string    `json:"borough"`
	PrecinctArea string    `json:"precinctArea"`
}

// ScatterTable is the row-level table behind the crime-vs-rent scatter chart.
type ScatterTable struct {
	NoData bool           `json:"noData"`
	Points []ScatterPoint `json:"points"`
}

// BoxRow is one observation of the rent-by-borough distribution.
type BoxRow struct {
	Borough    string  `json:"borough"`
	MedianRent float64 `json:"medianRent"`
}

// BoxTable is the row-level table behind the rent distribution box plot.
type BoxTable struct {
	NoData bool     `json:"noData"`
	Rows   []BoxRow `json:"rows"`
}

// HeatmapCell is the mean danger ratio for one (precinct area, month) pair.
type HeatmapCell struct {
	Area  string    `json:"area"`
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// Heatmap is the danger-ratio heatmap table. Areas lists the retained
// precinct areas ranked by mean danger ratio, highest first.
type Heatmap struct {
	NoData bool          `json:"noData"`
	Areas  []string      `json:"areas"`
	Cells  []HeatmapCell `json:"cells"`
}

// ZipRent is the latest observed median rent for one ZIP code.
type ZipRent struct {
	Zip        string    `json:"zip"`
	Date       time.Time `json:"date"`
	MedianRent float64   `json:"medianRent"`
}

// ChoroplethTable is the latest-rent-by-ZIP table behind the choropleth map.
type ChoroplethTable struct {
	NoData  bool      `json:"noData"`
	Entries []ZipRent `json:"entries"`
}

// MonthlyCrimeTrend sums incident counts of one severity category by calendar
// month over the date window, sorted by month ascending.
func MonthlyCrimeTrend(records []models.HistoricalRecord, rng Range, cat models.SeverityCategory) MonthlySeries {
	filtered := FilterSeverity(FilterRange(records, rng), cat)
	if len(filtered) == 0 {
		return MonthlySeries{NoData: true}
	}

	sums := make(map[time.Time]float64)
	for _, r := range filtered {
		sums[monthEnd(r.Date)] += float64(r.Count)
	}
	return MonthlySeries{Points: sortedMonthPoints(sums)}
}

// CrimeByPrecinct sums incident counts of one severity category by precinct
// area, descending, truncated to TopPrecinctsByCrime.
func CrimeByPrecinct(records []models.HistoricalRecord, rng Range, cat models.SeverityCategory) RankedSeries {
	filtered := FilterSeverity(FilterRange(records, rng), cat)
	if len(filtered) == 0 {
		return RankedSeries{NoData: true}
	}

	sums := make(map[string]float64)
	for _, r := range filtered {
		sums[r.PrecinctArea] += float64(r.Count)
	}
	return RankedSeries{Entries: topRanked(sums, TopPrecinctsByCrime)}
}

// CrimeRentScatter returns the row-level table for the crime-vs-rent scatter,
// filtered by date window and severity category, in input order.
func CrimeRentScatter(records []models.HistoricalRecord, rng Range, cat models.SeverityCategory) ScatterTable {
	filtered := FilterSeverity(FilterRange(records, rng), cat)
	if len(filtered) == 0 {
		return ScatterTable{NoData: true}
	}

	points := make([]ScatterPoint, 0, len(filtered))
	for _, r := range filtered {
		points = append(points, ScatterPoint{
			Date:         r.Date,
			MedianRent:   r.MedianRent,
			Count:        r.Count,
			Borough:      r.Borough,
			PrecinctArea: r.PrecinctArea,
		})
	}
	return ScatterTable{Points: points}
}

// RentByBorough returns the non-null rent observations per borough over the
// date window, in input order.
func RentByBorough(records []models.HistoricalRecord, rng Range) BoxTable {
	filtered := FilterRange(records, rng)
	if len(filtered) == 0 {
		return BoxTable{NoData: true}
	}

	rows := make([]BoxRow, 0, len(filtered))
	for _, r := range filtered {
		if r.MedianRent == nil {
			continue
		}
		rows = append(rows, BoxRow{Borough: r.Borough, MedianRent: *r.MedianRent})
	}
	if len(rows) == 0 {
		return BoxTable{NoData: true}
	}
	return BoxTable{Rows: rows}
}

// DangerHeatmap averages the danger ratio by (precinct area, month) over the
// date window, keeping only the TopHeatmapAreas areas ranked by the mean of
// their monthly means.
func DangerHeatmap(records []models.HistoricalRecord, rng Range) Heatmap {
	filtered := FilterRange(records, rng)
	if len(filtered) == 0 {
		return Heatmap{NoData: true}
	}

	type cellKey struct {
		area  string
		month time.Time
	}
	byCell := make(map[cellKey][]float64)
	for _, r := range filtered {
		if r.DangerRatio == nil {
			continue
		}
		key := cellKey{area: r.PrecinctArea, month: monthStart(r.Date)}
		byCell[key] = append(byCell[key], *r.DangerRatio)
	}
	if len(byCell) == 0 {
		return Heatmap{NoData: true}
	}

	cellMeans := make(map[cellKey]float64, len(byCell))
	byArea := make(map[string][]float64)
	for key, values := range byCell {
		m := mean(values)
		cellMeans[key] = m
		byArea[key.area] = append(byArea[key.area], m)
	}

	areaRank := make(map[string]float64, len(byArea))
	for area, monthly := range byArea {
		areaRank[area] = mean(monthly)
	}
	ranked := topRanked(areaRank, TopHeatmapAreas)

	keep := make(map[string]bool, len(ranked))
	areas := make([]string, 0, len(ranked))
	for _, e := range ranked {
		keep[e.Key] = true
		areas = append(areas, e.Key)
	}

	cells := make([]HeatmapCell, 0, len(cellMeans))
	for key, value := range cellMeans {
		if !keep[key.area] {
			continue
		}
		cells = append(cells, HeatmapCell{Area: key.area, Month: key.month, Value: value})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Area != cells[j].Area {
			return cells[i].Area < cells[j].Area
		}
		return cells[i].Month.Before(cells[j].Month)
	})
	return Heatmap{Areas: areas, Cells: cells}
}

// DangerByPrecinct averages the danger ratio by precinct area over the date
// window, descending, truncated to TopPrecinctsByDanger. Areas with no
// non-null ratio are excluded.
func DangerByPrecinct(records []models.HistoricalRecord, rng Range) RankedSeries {
	filtered := FilterRange(records, rng)
	if len(filtered) == 0 {
		return RankedSeries{NoData: true}
	}

	byArea := make(map[string][]float64)
	for _, r := range filtered {
		if r.DangerRatio == nil {
			continue
		}
		byArea[r.PrecinctArea] = append(byArea[r.PrecinctArea], *r.DangerRatio)
	}
	if len(byArea) == 0 {
		return RankedSeries{NoData: true}
	}

	means := make(map[string]float64, len(byArea))
	for area, values := range byArea {
		means[area] = mean(values)
	}
	return RankedSeries{Entries: topRanked(means, TopPrecinctsByDanger)}
}

// RentTrend computes the monthly median of non-null rents over the date
// window, optionally restricted to one area name (OverallArea disables the
// restriction), sorted by month ascending.
func RentTrend(records []models.HistoricalRecord, rng Range, area string) MonthlySeries {
	filtered := FilterArea(FilterRange(records, rng), area)
	if len(filtered) == 0 {
		return MonthlySeries{NoData: true}
	}

	byMonth := make(map[time.Time][]float64)
	for _, r := range filtered {
		if r.MedianRent == nil {
			continue
		}
		key := monthEnd(r.Date)
		byMonth[key] = append(byMonth[key], *r.MedianRent)
	}
	if len(byMonth) == 0 {
		return MonthlySeries{NoData: true}
	}

	medians := make(map[time.Time]float64, len(byMonth))
	for month, values := range byMonth {
		medians[month] = median(values)
	}
	return MonthlySeries{Points: sortedMonthPoints(medians)}
}

// DangerTrend computes the monthly mean of non-null danger ratios over the
// date window, optionally restricted to one area name, sorted by month
// ascending.
func DangerTrend(records []models.HistoricalRecord, rng Range, area string) MonthlySeries {
	filtered := FilterArea(FilterRange(records, rng), area)
	if len(filtered) == 0 {
		return MonthlySeries{NoData: true}
	}

	byMonth := make(map[time.Time][]float64)
	for _, r := range filtered {
		if r.DangerRatio == nil {
			continue
		}
		key := monthEnd(r.Date)
		byMonth[key] = append(byMonth[key], *r.DangerRatio)
	}
	if len(byMonth) == 0 {
		return MonthlySeries{NoData: true}
	}

	means := make(map[time.Time]float64, len(byMonth))
	for month, values := range byMonth {
		means[month] = mean(values)
	}
	return MonthlySeries{Points: sortedMonthPoints(means)}
}

var zipDigits = regexp.MustCompile(`\d+`)

// CleanZip extracts the first digit run from a raw ZIP value and left-pads it
// with zeros to five digits. It returns "" when the value carries no digits.
func CleanZip(raw string) string {
	digits := zipDigits.FindString(raw)
	if digits == "" {
		return ""
	}
	if len(digits) < 5 {
		digits = strings.Repeat("0", 5-len(digits)) + digits
	}
	return digits
}

// LatestRentByZip explodes the ZIP-code lists of records in the date window
// and keeps, per cleaned ZIP, the most recent record carrying a non-null
// rent. The earliest-seen record wins a date tie. Entries are sorted by ZIP
// ascending.
func LatestRentByZip(records []models.HistoricalRecord, rng Range) ChoroplethTable {
	filtered := FilterRange(records, rng)
	if len(filtered) == 0 {
		return ChoroplethTable{NoData: true}
	}

	latest := make(map[string]ZipRent)
	for _, r := range filtered {
		if r.MedianRent == nil {
			continue
		}
		for _, rawZip := range r.ZipCodes {
			zip := CleanZip(rawZip)
			if zip == "" {
				continue
			}
			current, ok := latest[zip]
			if !ok || r.Date.After(current.Date) {
				latest[zip] = ZipRent{Zip: zip, Date: r.Date, MedianRent: *r.MedianRent}
			}
		}
	}
	if len(latest) == 0 {
		return ChoroplethTable{NoData: true}
	}

	entries := make([]ZipRent, 0, len(latest))
	for _, e := range latest {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Zip < entries[j].Zip })
	return ChoroplethTable{Entries: entries}
}

// sortedMonthPoints flattens a month->value map into points sorted by month
// ascending.
func sortedMonthPoints(byMonth map[time.Time]float64) []MonthPoint {
	points := make([]MonthPoint, 0, len(byMonth))
	for month, value := range byMonth {
		points = append(points, MonthPoint{Month: month, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}

// topRanked flattens a key->value map into entries sorted by value
// descending (key ascending on ties) and truncated to n.
func topRanked(values map[string]float64, n int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(values))
	for key, value := range values {
		entries = append(entries, RankedEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

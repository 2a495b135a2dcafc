package services

import (
	"time"

	"github.com/cityscope/api/internal/aggregate"
	"github.com/cityscope/api/internal/dataset"
	"github.com/cityscope/api/internal/logger"
	"github.com/cityscope/api/internal/models"
)

// ChartFilter carries the shared chart parameters. Zero Start/End leave the
// date window unbounded on that side; Area defaults to the Overall sentinel.
type ChartFilter struct {
	Start    time.Time
	End      time.Time
	Category models.SeverityCategory
	Area     string
}

// Meta describes the dataset for the dashboard's filter controls.
type Meta struct {
	MinDate         time.Time                 `json:"minDate,omitzero"`
	MaxDate         time.Time                 `json:"maxDate,omitzero"`
	RecordCount     int                       `json:"recordCount"`
	AreaNames       []string                  `json:"areaNames"`
	Severities      []models.SeverityCategory `json:"severities"`
	PlaceCategories []PlaceCategoryInfo       `json:"placeCategories"`
}

// PlaceCategoryInfo is one entry of the place-category vocabulary with its
// marker color.
type PlaceCategoryInfo struct {
	Category models.PlaceCategory `json:"category"`
	Color    string               `json:"color"`
}

// ChartsService produces the chart tables behind the EDA dashboard. When the
// dataset is in degraded mode every table reports NoData; chart requests
// never fail outright.
type ChartsService interface {
	MonthlyTrend(f ChartFilter) aggregate.MonthlySeries
	CrimeByPrecinct(f ChartFilter) aggregate.RankedSeries
	CrimeRentScatter(f ChartFilter) aggregate.ScatterTable
	RentByBorough(f ChartFilter) aggregate.BoxTable
	DangerHeatmap(f ChartFilter) aggregate.Heatmap
	DangerByPrecinct(f ChartFilter) aggregate.RankedSeries
	RentTrend(f ChartFilter) aggregate.MonthlySeries
	DangerTrend(f ChartFilter) aggregate.MonthlySeries
	RentChoropleth(f ChartFilter) aggregate.ChoroplethTable
	Meta() Meta
}

// chartsService is the concrete implementation of ChartsService.
type chartsService struct {
	data *dataset.Store
	log  *logger.Logger
}

// NewChartsService creates a new instance of ChartsService.
func NewChartsService(data *dataset.Store, log *logger.Logger) ChartsService {
	return &chartsService{
		data: data,
		log:  log,
	}
}

func (s *chartsService) window(f ChartFilter) aggregate.Range {
	return aggregate.Range{Start: f.Start, End: f.End}
}

func (s *chartsService) MonthlyTrend(f ChartFilter) aggregate.MonthlySeries {
	return aggregate.MonthlyCrimeTrend(s.data.Records(), s.window(f), f.Category)
}

func (s *chartsService) CrimeByPrecinct(f ChartFilter) aggregate.RankedSeries {
	return aggregate.CrimeByPrecinct(s.data.Records(), s.window(f), f.Category)
}

func (s *chartsService) CrimeRentScatter(f ChartFilter) aggregate.ScatterTable {
	return aggregate.CrimeRentScatter(s.data.Records(), s.window(f), f.Category)
}

func (s *chartsService) RentByBorough(f ChartFilter) aggregate.BoxTable {
	return aggregate.RentByBorough(s.data.Records(), s.window(f))
}

func (s *chartsService) DangerHeatmap(f ChartFilter) aggregate.Heatmap {
	return aggregate.DangerHeatmap(s.data.Records(), s.window(f))
}

func (s *chartsService) DangerByPrecinct(f ChartFilter) aggregate.RankedSeries {
	return aggregate.DangerByPrecinct(s.data.Records(), s.window(f))
}

func (s *chartsService) RentTrend(f ChartFilter) aggregate.MonthlySeries {
	return aggregate.RentTrend(s.data.Records(), s.window(f), f.Area)
}

func (s *chartsService) DangerTrend(f ChartFilter) aggregate.MonthlySeries {
	return aggregate.DangerTrend(s.data.Records(), s.window(f), f.Area)
}

func (s *chartsService) RentChoropleth(f ChartFilter) aggregate.ChoroplethTable {
	return aggregate.LatestRentByZip(s.data.Records(), s.window(f))
}

// Meta reports the dataset bounds and vocabularies for filter controls.
func (s *chartsService) Meta() Meta {
	minDate, maxDate := s.data.DateBounds()
	categories := models.PlaceCategories()
	infos := make([]PlaceCategoryInfo, 0, len(categories))
	for _, c := range categories {
		infos = append(infos, PlaceCategoryInfo{Category: c, Color: models.MarkerColor(c)})
	}
	return Meta{
		MinDate:         minDate,
		MaxDate:         maxDate,
		RecordCount:     s.data.Len(),
		AreaNames:       s.data.AreaNames(),
		Severities:      models.SeverityCategories,
		PlaceCategories: infos,
	}
}

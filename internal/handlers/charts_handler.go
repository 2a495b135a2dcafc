package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/cityscope/api/internal/errors"
	"github.com/cityscope/api/internal/models"
	"github.com/cityscope/api/internal/services"
)

const dateLayout = "2006-01-02"

// ChartsHandler serves the chart tables behind the EDA dashboard.
type ChartsHandler struct {
	service services.ChartsService
}

// NewChartsHandler creates a new ChartsHandler instance.
func NewChartsHandler(service services.ChartsService) *ChartsHandler {
	return &ChartsHandler{
		service: service,
	}
}

// ChartQuery represents the shared query parameters for chart endpoints.
// Start and End bound the date window inclusively; a missing bound leaves
// that side open. Area defaults to "Overall" (no area filtering).
type ChartQuery struct {
	Start    string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End      string `form:"end" binding:"omitempty,datetime=2006-01-02"`
	Category string `form:"category" binding:"omitempty,oneof=FELONY MISDEMEANOR VIOLATION"`
	Area     string `form:"area"`
}

// bindFilter parses and validates the shared chart parameters. It writes the
// error response and returns false when the query is invalid.
func (h *ChartsHandler) bindFilter(c *gin.Context, requireCategory bool) (services.ChartFilter, bool) {
	var query ChartQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return services.ChartFilter{}, false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return services.ChartFilter{}, false
	}

	if requireCategory && query.Category == "" {
		apierrors.BadRequest(c, "category is required for this chart", nil)
		return services.ChartFilter{}, false
	}

	filter := services.ChartFilter{
		Category: models.SeverityCategory(query.Category),
		Area:     query.Area,
	}
	if query.Start != "" {
		filter.Start, _ = time.Parse(dateLayout, query.Start)
	}
	if query.End != "" {
		filter.End, _ = time.Parse(dateLayout, query.End)
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		apierrors.BadRequest(c, "end date must not precede start date", nil)
		return services.ChartFilter{}, false
	}
	return filter, true
}

// MonthlyTrend handles GET /api/v1/charts/monthly-trend.
func (h *ChartsHandler) MonthlyTrend(c *gin.Context) {
	filter, ok := h.bindFilter(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.MonthlyTrend(filter))
}

// CrimeByPrecinct handles GET /api/v1/charts/crime-by-precinct.
func (h *ChartsHandler) CrimeByPrecinct(c *gin.Context) {
	filter, ok := h.bindFilter(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.CrimeByPrecinct(filter))
}

// CrimeRentScatter handles GET /api/v1/charts/crime-rent-scatter.
func (h *ChartsHandler) CrimeRentScatter(c *gin.Context) {
	filter, ok := h.bindFilter(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.CrimeRentScatter(filter))
}

// RentByBorough handles GET /api/v1/charts/rent-by-borough.
func (h *ChartsHandler) RentByBorough(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.RentByBorough(filter))
}

// DangerHeatmap handles GET /api/v1/charts/danger-heatmap.
func (h *ChartsHandler) DangerHeatmap(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.DangerHeatmap(filter))
}

// DangerByPrecinct handles GET /api/v1/charts/danger-by-precinct.
func (h *ChartsHandler) DangerByPrecinct(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.DangerByPrecinct(filter))
}

// RentTrend handles GET /api/v1/charts/rent-trend.
func (h *ChartsHandler) RentTrend(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.RentTrend(filter))
}

// DangerTrend handles GET /api/v1/charts/danger-trend.
func (h *ChartsHandler) DangerTrend(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.DangerTrend(filter))
}

// RentChoropleth handles GET /api/v1/charts/rent-choropleth.
func (h *ChartsHandler) RentChoropleth(c *gin.Context) {
	filter, ok := h.bindFilter(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.RentChoropleth(filter))
}

// Meta handles GET /api/v1/meta.
// It reports the dataset bounds and vocabularies backing the dashboard's
// filter controls.
func (h *ChartsHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Meta())
}

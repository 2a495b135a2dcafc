package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/cityscope/api/internal/errors"
	"github.com/cityscope/api/internal/geoclient"
	"github.com/cityscope/api/internal/middleware"
	"github.com/cityscope/api/internal/services"
)

// SearchHandler handles nearby-place search requests.
type SearchHandler struct {
	service services.SearchService
}

// NewSearchHandler creates a new SearchHandler instance.
func NewSearchHandler(service services.SearchService) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// SearchQuery represents the query parameters for the search endpoint.
// Categories accepts either repeated query values or one comma-separated
// value.
type SearchQuery struct {
	Zip           string   `form:"zip" binding:"required,len=5,numeric"`
	BudgetMinutes int      `form:"budget_minutes" binding:"required,min=1,max=240"`
	Categories    []string `form:"categories" binding:"required,min=1"`
}

// Search handles GET /api/v1/search.
// It geocodes the ZIP, filters nearby places by walking-time reachability,
// and attaches the ZIP's latest-month summary. Non-fatal upstream failures
// are reported in the response's warnings, not as an error status.
func (h *SearchHandler) Search(c *gin.Context) {
	log := middleware.GetLogger(c)

	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	if log != nil {
		log.Info("Processing search request", map[string]interface{}{
			"zip":        query.Zip,
			"budget_min": query.BudgetMinutes,
		})
	}

	result, err := h.service.Search(c.Request.Context(), services.SearchRequest{
		Zip:           query.Zip,
		BudgetMinutes: query.BudgetMinutes,
		Categories:    query.Categories,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidZip), errors.Is(err, services.ErrInvalidBudget):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrDataUnavailable):
			dataUnavailable(c)
		case errors.Is(err, geoclient.ErrNoResults):
			apierrors.NotFound(c, "No location found for this ZIP code")
		default:
			// Geocoding transport or upstream status failure aborts the
			// whole search and is surfaced verbatim.
			apierrors.BadGateway(c, err.Error(), err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// dataUnavailable reports the process-wide degraded mode: the historical
// dataset failed to load or is empty.
func dataUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, apierrors.ErrorResponse{
		Error: apierrors.ErrorDetail{
			Code:      "DATA_UNAVAILABLE",
			Message:   "Historical dataset is unavailable; search and charts are degraded",
			RequestID: middleware.GetRequestID(c),
		},
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cityscope/api/internal/aggregate"
	"github.com/cityscope/api/internal/dataset"
	"github.com/cityscope/api/internal/logger"
	"github.com/cityscope/api/internal/models"
)

// Travel budget validation constants (minutes).
const (
	MinTravelBudget = 1
	MaxTravelBudget = 240
)

// maxTravelLookups bounds the parallel distance-matrix fan-out per search.
const maxTravelLookups = 4

// Service-level errors
var (
	ErrInvalidZip      = errors.New("zip code is required")
	ErrInvalidBudget   = fmt.Errorf("travel budget must be between %d and %d minutes", MinTravelBudget, MaxTravelBudget)
	ErrDataUnavailable = errors.New("historical dataset is unavailable")
)

// GeoClient is the geospatial lookup surface the search pipeline depends on.
type GeoClient interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
	FindNearby(ctx context.Context, origin models.Coordinates, category models.PlaceCategory) ([]models.CandidatePlace, error)
	WalkingTime(ctx context.Context, origin, dest models.Coordinates) (float64, error)
}

// SearchRequest is one user-initiated nearby-place search. Categories is the
// raw requested list; unknown names are skipped with a warning rather than
// failing the request.
type SearchRequest struct {
	Zip           string
	BudgetMinutes int
	Categories    []string
}

// SearchResult carries the best-effort outcome of a search: everything that
// succeeded plus a list of non-fatal upstream failures. Warnings accumulate
// into the result value itself, so parallel lookups stay safe.
type SearchResult struct {
	Zip              string                       `json:"zip"`
	Origin           models.Coordinates           `json:"origin"`
	BudgetMinutes    int                          `json:"budgetMinutes"`
	Places           []models.ReachablePlace      `json:"places"`
	CountsByCategory map[models.PlaceCategory]int `json:"countsByCategory"`
	Summary          aggregate.ZipSummary         `json:"summary"`
	Warnings         []string                     `json:"warnings"`
}

// SearchService runs the search pipeline: geocode the ZIP, filter nearby
// places by walking-time reachability, and summarize the ZIP's latest-month
// statistics.
type SearchService interface {
	// Search executes the pipeline. A geocoding failure aborts the request
	// and is returned as an error; nearby-search and travel-time failures
	// are collected into the result's Warnings instead.
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

// searchService is the concrete implementation of SearchService.
type searchService struct {
	geo  GeoClient
	data *dataset.Store
	log  *logger.Logger
}

// NewSearchService creates a new instance of SearchService.
func NewSearchService(geo GeoClient, data *dataset.Store, log *logger.Logger) SearchService {
	return &searchService{
		geo:  geo,
		data: data,
		log:  log,
	}
}

// Search validates the request, geocodes "<zip>, NY, USA", and runs the
// reachability filter for each known requested category. The result is
// best-effort across whatever succeeded.
func (s *searchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if req.Zip == "" {
		return nil, ErrInvalidZip
	}
	if req.BudgetMinutes < MinTravelBudget || req.BudgetMinutes > MaxTravelBudget {
		return nil, ErrInvalidBudget
	}
	if s.data.Empty() {
		return nil, ErrDataUnavailable
	}

	// Repeated query values are rejoined so ParseCategories can normalize
	// and deduplicate them in one place.
	categories, unknown := models.ParseCategories(strings.Join(req.Categories, ","))

	s.log.Info("Running nearby-place search", map[string]interface{}{
		"zip":        req.Zip,
		"budget_min": req.BudgetMinutes,
		"categories": categories,
	})

	origin, err := s.geo.Geocode(ctx, fmt.Sprintf("%s, NY, USA", req.Zip))
	if err != nil {
		s.log.Warn("Geocoding failed, aborting search", map[string]interface{}{
			"zip":   req.Zip,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("geocoding %q failed: %w", req.Zip, err)
	}

	result := &SearchResult{
		Zip:              req.Zip,
		Origin:           *origin,
		BudgetMinutes:    req.BudgetMinutes,
		Places:           []models.ReachablePlace{},
		CountsByCategory: make(map[models.PlaceCategory]int, len(categories)),
		Warnings:         []string{},
	}
	for _, name := range unknown {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown place category %q skipped", name))
	}
	for _, cat := range categories {
		result.CountsByCategory[cat] = 0
	}

	for _, cat := range categories {
		s.collectReachable(ctx, result, *origin, cat, float64(req.BudgetMinutes))
	}
	sortPlaces(result.Places)

	result.Summary = aggregate.SummarizeZip(s.data.Records(), req.Zip)

	s.log.Info("Search completed", map[string]interface{}{
		"zip":      req.Zip,
		"places":   len(result.Places),
		"warnings": len(result.Warnings),
	})
	return result, nil
}

// collectReachable runs nearby search for one category and filters candidates
// by walking time, in parallel with bounded fan-out. Failures for a category
// or a single candidate become warnings, never errors: already-successful
// results are never discarded.
func (s *searchService) collectReachable(ctx context.Context, result *SearchResult, origin models.Coordinates, cat models.PlaceCategory, budget float64) {
	candidates, err := s.geo.FindNearby(ctx, origin, cat)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("nearby search for %q failed: %v", cat, err))
		return
	}
	if len(candidates) == 0 {
		s.log.Debug("No candidates for category", map[string]interface{}{"category": cat})
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxTravelLookups)

	for _, candidate := range candidates {
		candidate := candidate
		g.Go(func() error {
			minutes, err := s.geo.WalkingTime(gctx, origin, candidate.Location)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("walking time for %q (%s) unavailable: %v", candidate.Name, cat, err))
				return nil
			}
			if minutes <= budget {
				result.Places = append(result.Places, models.ReachablePlace{
					CandidatePlace: candidate,
					WalkingMinutes: minutes,
					MarkerColor:    models.MarkerColor(cat),
				})
				result.CountsByCategory[cat]++
			}
			return nil
		})
	}
	// Goroutines never return errors; failures are recorded as warnings.
	_ = g.Wait()
}

// sortPlaces orders reachable places by walking time, then name, so output
// is deterministic regardless of fan-out completion order.
func sortPlaces(places []models.ReachablePlace) {
	sort.Slice(places, func(i, j int) bool {
		if places[i].WalkingMinutes != places[j].WalkingMinutes {
			return places[i].WalkingMinutes < places[j].WalkingMinutes
		}
		return places[i].Name < places[j].Name
	})
}

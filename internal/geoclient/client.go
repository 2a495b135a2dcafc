// Package geoclient wraps the Google Maps geocoding, nearby-search, and
// distance-matrix endpoints behind one client with typed failure modes.
package geoclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/cityscope/api/internal/models"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	// NearbyRadiusMeters is the fixed nearby-search radius.
	NearbyRadiusMeters = 2000

	defaultTimeout      = 8 * time.Second
	defaultRateLimitRPS = 10
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 250 * time.Millisecond
)

// Config configures the client. Zero values fall back to defaults; BaseURL
// and HTTPClient exist so tests can point the client at an httptest server.
type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	MaxAttempts  int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client calls the Google Maps APIs. All calls honor a per-call timeout,
// client-side rate limiting, and bounded retry for transport failures only.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxAttempts  int
	retryBackoff time.Duration
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("geoclient: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = defaultRateLimitRPS
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1),
		maxAttempts:  cfg.MaxAttempts,
		retryBackoff: cfg.RetryBackoff,
	}, nil
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type geometryPayload struct {
	Location *locationPayload `json:"location"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry geometryPayload `json:"geometry"`
	} `json:"results"`
}

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name     string           `json:"name"`
		Geometry *geometryPayload `json:"geometry"`
	} `json:"results"`
}

type distanceResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration *struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Geocode resolves a free-text address to coordinates using the best match.
// It returns ErrNoResults when the upstream matched nothing, a *StatusError
// for any other non-OK status, and a *TransportError when the upstream was
// unreachable after retries.
func (c *Client) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	const op = "geocode"
	params := url.Values{"address": {address}}

	var payload geocodeResponse
	if err := c.getJSON(ctx, op, "/geocode/json", params, &payload); err != nil {
		return nil, err
	}

	switch {
	case payload.Status == "OK" && len(payload.Results) > 0:
		loc := payload.Results[0].Geometry.Location
		if loc == nil || loc.Lat == nil || loc.Lng == nil {
			return nil, fmt.Errorf("%w: best match has no coordinates", ErrNoResults)
		}
		return &models.Coordinates{Lat: *loc.Lat, Lng: *loc.Lng}, nil
	case payload.Status == "ZERO_RESULTS" || payload.Status == "OK":
		return nil, fmt.Errorf("%w for address %q", ErrNoResults, address)
	default:
		return nil, &StatusError{Op: op, Status: payload.Status, Message: payload.ErrorMessage}
	}
}

// FindNearby searches for places of one category within NearbyRadiusMeters of
// the origin. A ZERO_RESULTS answer yields an empty slice and no error.
// Candidates without usable coordinates are dropped.
func (c *Client) FindNearby(ctx context.Context, origin models.Coordinates, category models.PlaceCategory) ([]models.CandidatePlace, error) {
	const op = "nearby search"
	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		"radius":   {fmt.Sprintf("%d", NearbyRadiusMeters)},
		"type":     {string(category)},
	}

	var payload nearbyResponse
	if err := c.getJSON(ctx, op, "/place/nearbysearch/json", params, &payload); err != nil {
		return nil, err
	}

	if payload.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if payload.Status != "OK" {
		return nil, &StatusError{Op: op, Status: payload.Status, Message: payload.ErrorMessage}
	}

	places := make([]models.CandidatePlace, 0, len(payload.Results))
	for _, result := range payload.Results {
		if result.Geometry == nil || result.Geometry.Location == nil ||
			result.Geometry.Location.Lat == nil || result.Geometry.Location.Lng == nil {
			continue
		}
		places = append(places, models.CandidatePlace{
			Name: result.Name,
			Location: models.Coordinates{
				Lat: *result.Geometry.Location.Lat,
				Lng: *result.Geometry.Location.Lng,
			},
			Category: category,
		})
	}
	return places, nil
}

// WalkingTime returns the walking duration in minutes between origin and
// destination. Both the top-level status and the element status must be OK;
// anything else is a *StatusError for this destination only.
func (c *Client) WalkingTime(ctx context.Context, origin, dest models.Coordinates) (float64, error) {
	const op = "distance matrix"
	params := url.Values{
		"origins":      {fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		"destinations": {fmt.Sprintf("%f,%f", dest.Lat, dest.Lng)},
		"mode":         {"walking"},
	}

	var payload distanceResponse
	if err := c.getJSON(ctx, op, "/distancematrix/json", params, &payload); err != nil {
		return 0, err
	}

	if payload.Status != "OK" {
		return 0, &StatusError{Op: op, Status: payload.Status, Message: payload.ErrorMessage}
	}
	if len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return 0, &StatusError{Op: op, Status: "EMPTY_RESPONSE", Message: "no rows in distance matrix response"}
	}
	element := payload.Rows[0].Elements[0]
	if element.Status != "OK" || element.Duration == nil {
		return 0, &StatusError{Op: op, Status: element.Status, Message: "walking time unavailable for destination"}
	}
	return element.Duration.Value / 60, nil
}

// getJSON performs one rate-limited GET against the API, retrying transport
// failures up to maxAttempts with a fixed backoff. Status failures are never
// retried.
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &TransportError{Op: op, Err: ctx.Err()}
			case <-time.After(c.retryBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("%s: failed to build request: %w", op, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &TransportError{Op: op, Err: err}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &TransportError{Op: op, Err: err}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Op: op, Status: http.StatusText(resp.StatusCode), HTTPCode: resp.StatusCode}
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &StatusError{Op: op, Status: "INVALID_RESPONSE", Message: err.Error()}
		}
		return nil
	}
	return lastErr
}

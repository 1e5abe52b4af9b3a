package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

	// phillyBBox bounds results to the city limits (minLon,minLat,maxLon,maxLat).
	phillyBBox = "-75.2803,39.8670,-74.9558,40.1379"

	// phillyProximity biases ranking toward City Hall.
	phillyProximity = "-75.1636,39.9526"
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client scoped to Philadelphia.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ForwardGeocode resolves a police block location such as
// "1500 BLOCK N 52ND ST" to the center of that block.
func (c *Client) ForwardGeocode(ctx context.Context, location, city, state string) (domain.GeocodingResult, error) {
	query := searchText(location, city, state)
	if query == "" {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return domain.GeocodingResult{}, nil
	}

	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"country":      {"us"},
		"types":        {"address,street"},
		"bbox":         {phillyBBox},
		"proximity":    {phillyProximity},
	}
	u := fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(query), params.Encode())

	result, err := c.lookup(ctx, u)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.FormattedAddress == "":
		outcome = "empty"
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	return result, err
}

// searchText turns a block location into free text Mapbox can match.
// "1500 BLOCK N 52ND ST" becomes "1500 N 52ND ST, Philadelphia, PA".
func searchText(location, city, state string) string {
	fields := strings.Fields(strings.ToUpper(location))
	street := fields[:0]
	for _, f := range fields {
		if f != "BLOCK" && f != "BLK" {
			street = append(street, f)
		}
	}
	if len(street) == 0 {
		return ""
	}

	parts := []string{strings.Join(street, " ")}
	for _, p := range []string{city, state} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (c *Client) lookup(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("forward geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var places placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(places.Features) == 0 || len(places.Features[0].Center) != 2 {
		c.logger.Debug("mapbox returned no usable feature")
		return domain.GeocodingResult{}, nil
	}

	best := places.Features[0]
	return domain.GeocodingResult{
		Lon:              best.Center[0],
		Lat:              best.Center[1],
		FormattedAddress: best.PlaceName,
		PlaceName:        best.Text,
		Confidence:       best.Relevance,
	}, nil
}

type placesResponse struct {
	Features []place `json:"features"`
}

type place struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}

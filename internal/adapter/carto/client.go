package carto

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/couchcryptid/shootings-etl/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// Client fetches a dataset from a CARTO SQL API endpoint.
// It implements pipeline.Extractor.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a CARTO SQL API client for one dataset.
func NewClient(baseURL, dataset string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		dataset:    dataset,
		metrics:    metrics,
		logger:     logger,
	}
}

// Extract downloads every row of the dataset, geometry included, as GeoJSON.
func (c *Client) Extract(ctx context.Context) ([]domain.RawIncident, error) {
	params := url.Values{
		"q":      {"SELECT * FROM " + c.dataset},
		"format": {"geojson"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("carto request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read carto response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("carto API error: status %d: %s", resp.StatusCode, body)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("decode carto response: %w", err)
	}

	rows := make([]domain.RawIncident, 0, len(fc.Features))
	for i, f := range fc.Features {
		row, err := mapFeatureToRawIncident(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	c.logger.Info("fetched dataset", "dataset", c.dataset, "rows", len(rows), "bytes", len(body))
	return rows, nil
}

// Package extraction fetches a map's raw player-count series from the
// upstream statistics site.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/metrics"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 8 << 20

// Endpoint names used in logs and metrics
const (
	endpointIsland = "island"
	endpointSeries = "series"
)

// Client retrieves the raw series for a map code.
// Implementations never retry; a failed call returns an *Error.
type Client interface {
	FetchSeries(ctx context.Context, mapCode string) (*models.MapSeries, error)
}

// HTTPClient scrapes the island page for the resource ID and then requests
// the one-month player count graph.
type HTTPClient struct {
	http           *http.Client
	islandTemplate string
	seriesTemplate string
	userAgent      string
	logger         *logging.Logger
}

// NewHTTPClient creates an HTTPClient from the upstream configuration
func NewHTTPClient(cfg config.UpstreamConfig, logger *logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Global()
	}
	return &HTTPClient{
		http:           &http.Client{Timeout: cfg.Timeout},
		islandTemplate: cfg.IslandURLTemplate,
		seriesTemplate: cfg.SeriesURLTemplate,
		userAgent:      cfg.UserAgent,
		logger:         logger,
	}
}

// FetchSeries runs the two sequential upstream requests for mapCode
func (c *HTTPClient) FetchSeries(ctx context.Context, mapCode string) (*models.MapSeries, error) {
	if err := ValidateMapCode(mapCode); err != nil {
		return nil, err
	}

	islandURL := fmt.Sprintf(c.islandTemplate, url.QueryEscape(mapCode))
	doc, err := c.get(ctx, endpointIsland, islandURL, nil)
	if err != nil {
		return nil, err
	}

	resourceID, ok := ParseResourceID(doc)
	if !ok {
		c.logger.Warn("Resource ID not found in island page",
			"map_code", mapCode,
			"url", islandURL,
			"bytes", len(doc))
		metrics.ObserveUpstream(endpointIsland, KindResourceIDNotFound.String(), 0)
		return nil, &Error{Kind: KindResourceIDNotFound, URL: islandURL}
	}

	current, hasCurrent := ParseCurrentPlayers(doc)

	seriesURL := fmt.Sprintf(c.seriesTemplate, url.QueryEscape(resourceID))
	body, err := c.get(ctx, endpointSeries, seriesURL, http.Header{
		"Accept":  []string{"application/json"},
		"Referer": []string{islandURL},
	})
	if err != nil {
		return nil, err
	}

	series, err := ParseSeries(body)
	if err != nil {
		c.logger.Warn("Malformed series payload",
			"map_code", mapCode,
			"resource_id", resourceID,
			"url", seriesURL,
			"bytes", len(body),
			"error", err)
		metrics.ObserveUpstream(endpointSeries, KindMalformedPayload.String(), 0)
		return nil, &Error{Kind: KindMalformedPayload, URL: seriesURL, Err: err}
	}

	c.logger.Debug("Fetched map series",
		"map_code", mapCode,
		"resource_id", resourceID,
		"points", len(series.Values),
		"current_players", current)

	return &models.MapSeries{
		MapCode:        mapCode,
		ResourceID:     resourceID,
		SourceURL:      islandURL,
		Series:         series,
		CurrentPlayers: current,
		HasCurrent:     hasCurrent,
	}, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint, target string, header http.Header) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, URL: target, Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, KindUpstreamUnavailable.String(), time.Since(start))
		c.logger.Warn("Upstream request failed", "endpoint", endpoint, "url", target, "error", err)
		return nil, &Error{Kind: KindUpstreamUnavailable, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		metrics.ObserveUpstream(endpoint, KindUpstreamUnavailable.String(), time.Since(start))
		c.logger.Warn("Upstream returned non-success status",
			"endpoint", endpoint,
			"url", target,
			"status", resp.StatusCode)
		return nil, &Error{Kind: KindUpstreamUnavailable, StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveUpstream(endpoint, KindUpstreamUnavailable.String(), time.Since(start))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindUpstreamUnavailable, URL: target, Err: err}
		}
		return nil, &Error{Kind: KindUpstreamUnavailable, StatusCode: resp.StatusCode, URL: target,
			Err: fmt.Errorf("read body: %w", err)}
	}

	metrics.ObserveUpstream(endpoint, "ok", time.Since(start))
	return body, nil
}

// String describes the client for startup logs
func (c *HTTPClient) String() string {
	host := c.islandTemplate
	if u, err := url.Parse(strings.Replace(c.islandTemplate, "%s", "x", 1)); err == nil {
		host = u.Host
	}
	return "http(" + host + ")"
}

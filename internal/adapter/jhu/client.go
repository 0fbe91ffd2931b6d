// Package jhu fetches the CSSE COVID-19 CSV files over HTTPS.
package jhu

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-trend-report/internal/config"
	"github.com/couchcryptid/covid-trend-report/internal/domain"
	"github.com/couchcryptid/covid-trend-report/internal/observability"
)

// Client downloads and parses the three source tables. Each fetch retries
// transient failures with exponential backoff before giving up; a run has no
// recovery path beyond that, so the final error is fatal to the caller.
type Client struct {
	httpClient *http.Client
	casesURL   string
	deathsURL  string
	lookupURL  string
	retries    int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a source client from config. The per-request timeout and
// retry count come from FETCH_TIMEOUT and FETCH_RETRIES.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		casesURL:  cfg.CasesURL,
		deathsURL: cfg.DeathsURL,
		lookupURL: cfg.LookupURL,
		retries:   cfg.FetchRetries,
		logger:    logger,
		metrics:   metrics,
	}
}

// FetchCases downloads and parses the confirmed-cases wide table.
func (c *Client) FetchCases(ctx context.Context) (*domain.WideTable, error) {
	records, err := c.fetchCSV(ctx, c.casesURL, "cases")
	if err != nil {
		return nil, err
	}
	table, err := domain.ParseWideCSV(records)
	if err != nil {
		return nil, fmt.Errorf("cases table: %w", err)
	}
	return table, nil
}

// FetchDeaths downloads and parses the deaths wide table.
func (c *Client) FetchDeaths(ctx context.Context) (*domain.WideTable, error) {
	records, err := c.fetchCSV(ctx, c.deathsURL, "deaths")
	if err != nil {
		return nil, err
	}
	table, err := domain.ParseWideCSV(records)
	if err != nil {
		return nil, fmt.Errorf("deaths table: %w", err)
	}
	return table, nil
}

// FetchLookup downloads and parses the location/population lookup table.
func (c *Client) FetchLookup(ctx context.Context) ([]domain.LocationInfo, error) {
	records, err := c.fetchCSV(ctx, c.lookupURL, "lookup")
	if err != nil {
		return nil, err
	}
	locations, err := domain.ParseLookupCSV(records)
	if err != nil {
		return nil, fmt.Errorf("lookup table: %w", err)
	}
	return locations, nil
}

// fetchCSV issues a GET with up to c.retries retries. Backoff starts at
// 200ms, doubles per attempt, and is capped at 5s so a run against a flaky
// mirror fails within seconds rather than hanging.
func (c *Client) fetchCSV(ctx context.Context, url, source string) ([][]string, error) {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying fetch", "source", source, "attempt", attempt, "backoff", backoff, "error", lastErr)
			c.metrics.FetchRetries.Inc()
			if !sleepWithContext(ctx, backoff) {
				return nil, ctx.Err()
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}

		records, err := c.doRequest(ctx, url, source)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", source, c.retries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url, source string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s source returned status %d: %s", source, resp.StatusCode, body)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s CSV: %w", source, err)
	}
	return records, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

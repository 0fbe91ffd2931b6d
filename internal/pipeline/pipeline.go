// Package pipeline orchestrates one report run: fetch, reshape, merge,
// filter, present. Data flows strictly forward; any stage error aborts the
// run and surfaces to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-trend-report/internal/dataset"
	"github.com/couchcryptid/covid-trend-report/internal/domain"
	"github.com/couchcryptid/covid-trend-report/internal/observability"
)

// Fetcher acquires the three source tables.
type Fetcher interface {
	FetchCases(ctx context.Context) (*domain.WideTable, error)
	FetchDeaths(ctx context.Context) (*domain.WideTable, error)
	FetchLookup(ctx context.Context) ([]domain.LocationInfo, error)
}

// Reporter renders the presentation stage from the prepared trends.
type Reporter interface {
	Generate(trends []dataset.CountryTrend) error
}

// Pipeline runs the batch report end to end.
type Pipeline struct {
	fetcher   Fetcher
	reporter  Reporter
	countries []string
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline restricted to the given country allow-list.
func New(f Fetcher, r Reporter, countries []string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		reporter:  r,
		countries: countries,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the run has fetched its source data, or an
// error describing why the run is not yet underway.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("run has not fetched source data yet")
	}
	return nil
}

// Run executes the full pipeline once. There is no partial-result recovery:
// the first error halts the run.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("run started", "countries", p.countries)
	p.metrics.RunInFlight.Set(1)
	defer p.metrics.RunInFlight.Set(0)

	cases, deaths, locations, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	p.ready.Store(true)

	trends, err := p.prepare(cases, deaths, locations)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := p.reporter.Generate(trends); err != nil {
		return fmt.Errorf("report stage: %w", err)
	}
	p.metrics.StageDuration.WithLabelValues("report").Observe(time.Since(start).Seconds())

	p.logger.Info("run complete", "countries_reported", len(trends))
	return nil
}

// fetch acquires the three sources sequentially. The client handles per-file
// retries; a failure here is final.
func (p *Pipeline) fetch(ctx context.Context) (*domain.WideTable, *domain.WideTable, []domain.LocationInfo, error) {
	cases, err := p.fetcher.FetchCases(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch cases: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("cases").Add(float64(len(cases.Rows)))
	p.logger.Info("fetched cases", "rows", len(cases.Rows), "dates", len(cases.Dates))

	deaths, err := p.fetcher.FetchDeaths(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch deaths: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("deaths").Add(float64(len(deaths.Rows)))
	p.logger.Info("fetched deaths", "rows", len(deaths.Rows), "dates", len(deaths.Dates))

	locations, err := p.fetcher.FetchLookup(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch lookup: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("lookup").Add(float64(len(locations)))
	p.logger.Info("fetched lookup", "rows", len(locations))

	return cases, deaths, locations, nil
}

// prepare runs the in-memory tabular stages: reshape both wide tables, merge
// them with the lookup, filter, and build per-country trends.
func (p *Pipeline) prepare(cases, deaths *domain.WideTable, locations []domain.LocationInfo) ([]dataset.CountryTrend, error) {
	start := time.Now()
	longCases, err := dataset.Reshape(cases, dataset.ColCases)
	if err != nil {
		return nil, fmt.Errorf("reshape stage: %w", err)
	}
	longDeaths, err := dataset.Reshape(deaths, dataset.ColDeaths)
	if err != nil {
		return nil, fmt.Errorf("reshape stage: %w", err)
	}
	p.stageDone("reshape", start, longCases.Nrow()+longDeaths.Nrow())

	start = time.Now()
	merged, err := dataset.Merge(longCases, longDeaths, locations, p.logger)
	if err != nil {
		return nil, fmt.Errorf("merge stage: %w", err)
	}
	merged, err = dataset.PerCapita(merged)
	if err != nil {
		return nil, fmt.Errorf("merge stage: %w", err)
	}
	p.stageDone("merge", start, merged.Nrow())

	start = time.Now()
	filtered, err := dataset.Filter(merged, p.countries)
	if err != nil {
		return nil, fmt.Errorf("filter stage: %w", err)
	}
	p.stageDone("filter", start, filtered.Nrow())

	trends, err := dataset.Trends(filtered, p.countries)
	if err != nil {
		return nil, fmt.Errorf("filter stage: %w", err)
	}
	return trends, nil
}

func (p *Pipeline) stageDone(stage string, start time.Time, rows int) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	p.metrics.StageRowsOut.WithLabelValues(stage).Set(float64(rows))
	p.logger.Info("stage complete", "stage", stage, "rows", rows, "duration", time.Since(start))
}

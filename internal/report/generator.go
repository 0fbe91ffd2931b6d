// Package report renders the run's charts and prints its regression
// summaries.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/couchcryptid/covid-trend-report/internal/config"
	"github.com/couchcryptid/covid-trend-report/internal/dataset"
	"github.com/couchcryptid/covid-trend-report/internal/observability"
	"github.com/couchcryptid/covid-trend-report/internal/regression"
)

// Chart file names written into the output directory.
const (
	casesTrendFile = "cases_trend.png"
	populationFile = "population.png"
	perCapitaFile  = "per_capita_trend.png"
)

// Generator renders every chart and regression summary for one run.
type Generator struct {
	outputDir string
	focus     []string
	out       io.Writer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGenerator creates a Generator writing charts to cfg.OutputDir and
// summaries to stdout.
func NewGenerator(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	return &Generator{
		outputDir: cfg.OutputDir,
		focus:     cfg.FocusCountries,
		out:       os.Stdout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Generate produces the shared charts, then a dual-scale chart and an OLS
// summary for each focus country. Chart errors are fatal; a focus country
// absent from the filtered data is skipped with a warning, since that is a
// data condition rather than a rendering failure.
func (g *Generator) Generate(trends []dataset.CountryTrend) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	shared := []struct {
		file   string
		render func([]dataset.CountryTrend, string) error
	}{
		{casesTrendFile, renderCasesTrend},
		{populationFile, renderPopulationBars},
		{perCapitaFile, renderPerCapitaTrend},
	}
	for _, chart := range shared {
		path := filepath.Join(g.outputDir, chart.file)
		if err := chart.render(trends, path); err != nil {
			return err
		}
		g.metrics.ChartsRendered.Inc()
		g.logger.Info("chart rendered", "path", path)
	}

	for _, country := range g.focus {
		trend, ok := findTrend(trends, country)
		if !ok {
			g.logger.Warn("focus country has no data after filtering, skipping", "country", country)
			continue
		}

		path := filepath.Join(g.outputDir, chartFileName(country))
		if err := renderCaseDeathChart(trend, path); err != nil {
			return err
		}
		g.metrics.ChartsRendered.Inc()
		g.logger.Info("chart rendered", "path", path)

		model, err := fitDeathModel(trend)
		if err != nil {
			return fmt.Errorf("regression for %s: %w", country, err)
		}
		g.metrics.RegressionsFit.Inc()
		writeModelSummary(g.out, country, model)
	}

	return nil
}

// fitDeathModel regresses a country's death counts on its case counts and
// the date, expressed as days since the country's first filtered row.
func fitDeathModel(trend dataset.CountryTrend) (*regression.Model, error) {
	days := make([]float64, len(trend.Dates))
	for i, d := range trend.Dates {
		days[i] = d.Sub(trend.Dates[0]).Hours() / 24
	}
	return regression.Fit(trend.Deaths, [][]float64{trend.Cases, days}, []string{"cases", "date"})
}

// writeModelSummary prints one regression's coefficient table.
func writeModelSummary(w io.Writer, country string, model *regression.Model) {
	fmt.Fprintf(w, "\nOLS: deaths ~ cases + date (%s)\n", country)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Term", "Estimate", "Std. Error", "t value", "Pr(>|t|)"})
	for _, term := range model.Terms {
		t.AppendRow(table.Row{
			term.Name,
			fmt.Sprintf("%.6g", term.Coefficient),
			fmt.Sprintf("%.6g", term.StdErr),
			fmt.Sprintf("%.4f", term.TValue),
			formatPValue(term.PValue),
		})
	}
	t.Render()

	fmt.Fprintf(w, "n = %d, df = %d, R-squared = %.4f, residual std. error = %.4g\n",
		model.N, model.DF, model.RSquared, model.ResidualStdErr)
}

func formatPValue(p float64) string {
	if p < 2e-16 {
		return "< 2e-16"
	}
	return fmt.Sprintf("%.4g", p)
}

func findTrend(trends []dataset.CountryTrend, country string) (dataset.CountryTrend, bool) {
	for _, t := range trends {
		if t.Country == country {
			return t, true
		}
	}
	return dataset.CountryTrend{}, false
}

// chartFileName turns a country name into a filesystem-safe chart name,
// e.g. "United Kingdom" -> "united_kingdom_cases_deaths.png".
func chartFileName(country string) string {
	name := strings.ToLower(country)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name + "_cases_deaths.png"
}

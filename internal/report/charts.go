package report

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/covid-trend-report/internal/dataset"
)

// DeathAxisRatio scales the death series when it shares a chart with the
// case series, purely so both curves occupy comparable vertical space. It is
// an arbitrary visual-comparability factor and carries no statistical
// meaning; in particular it is not a case-fatality ratio.
const DeathAxisRatio = 0.025

const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// renderCasesTrend draws one smoothed case-count line per country on a
// shared chart.
func renderCasesTrend(trends []dataset.CountryTrend, path string) error {
	p := newTimePlot("Confirmed cases over time (smoothed)", "Cumulative cases")

	for i, trend := range trends {
		line, err := newDateLine(trend.Dates, movingAverage(trend.Cases, SmoothingWindow))
		if err != nil {
			return fmt.Errorf("cases line for %s: %w", trend.Country, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(trend.Country, line)
	}

	return savePlot(p, path)
}

// renderPerCapitaTrend draws smoothed per-capita case lines. Countries with
// unknown population have an all-NaN series and render as absent rather than
// failing the chart.
func renderPerCapitaTrend(trends []dataset.CountryTrend, path string) error {
	p := newTimePlot("Confirmed cases per capita (smoothed)", "Cases / population")

	for i, trend := range trends {
		smoothed := movingAverage(trend.PerCapita, SmoothingWindow)
		if allNaN(smoothed) {
			continue
		}
		line, err := newDateLine(trend.Dates, smoothed)
		if err != nil {
			return fmt.Errorf("per-capita line for %s: %w", trend.Country, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(trend.Country, line)
	}

	return savePlot(p, path)
}

// renderPopulationBars draws one bar per country with a known population.
func renderPopulationBars(trends []dataset.CountryTrend, path string) error {
	var values plotter.Values
	var names []string
	for _, trend := range trends {
		if math.IsNaN(trend.Population) {
			continue
		}
		values = append(values, trend.Population)
		names = append(names, trend.Country)
	}

	p := plot.New()
	p.Title.Text = "Population by country"
	p.Y.Label.Text = "Population"

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("population bars: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	return savePlot(p, path)
}

// renderCaseDeathChart draws one country's case and death curves together.
// The death curve is divided by DeathAxisRatio so the two series are
// visually comparable on the shared scale.
func renderCaseDeathChart(trend dataset.CountryTrend, path string) error {
	p := newTimePlot(
		fmt.Sprintf("%s: cases and deaths over time", trend.Country),
		"Cumulative cases",
	)

	casesLine, err := newDateLine(trend.Dates, trend.Cases)
	if err != nil {
		return fmt.Errorf("case line for %s: %w", trend.Country, err)
	}
	casesLine.Color = plotutil.Color(0)
	p.Add(casesLine)
	p.Legend.Add("cases", casesLine)

	scaled := make([]float64, len(trend.Deaths))
	for i, d := range trend.Deaths {
		scaled[i] = d / DeathAxisRatio
	}
	deathsLine, err := newDateLine(trend.Dates, scaled)
	if err != nil {
		return fmt.Errorf("death line for %s: %w", trend.Country, err)
	}
	deathsLine.Color = plotutil.Color(1)
	deathsLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(deathsLine)
	p.Legend.Add(fmt.Sprintf("deaths / %g", DeathAxisRatio), deathsLine)

	return savePlot(p, path)
}

func newTimePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Legend.Left = true
	return p
}

// newDateLine builds a line from parallel date/value slices, skipping NaN
// values so missing stretches render as gaps instead of breaking the chart.
func newDateLine(dates []time.Time, values []float64) (*plotter.Line, error) {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(dates[i].Unix()), Y: v})
	}
	return plotter.NewLine(pts)
}

func savePlot(p *plot.Plot, path string) error {
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/covid-trend-report/internal/domain"
)

// CountryTrend is one country's date-sorted series, summed across its
// provinces. Values are NaN where the underlying data is missing: deaths for
// case-only dates, population and per-capita for countries the lookup does
// not cover.
type CountryTrend struct {
	Country    string
	Dates      []time.Time
	Cases      []float64
	Deaths     []float64
	PerCapita  []float64
	Population float64
}

// Trends groups the filtered frame by country and returns one trend per
// allow-listed country that has data, in allow-list order. The input frame's
// row order is irrelevant; rows are re-sorted by date here.
//
// Population per country is the mean over the country's daily rows. Every
// row of a location carries the same population, so the mean only collapses
// the repeated value to one scalar; it is kept as a mean rather than a
// representative-value lookup to preserve that output shape.
func Trends(df dataframe.DataFrame, countries []string) ([]CountryTrend, error) {
	dates := df.Col(ColDate).Records()
	countryCol := df.Col(ColCountry).Records()
	cases := df.Col(ColCases).Float()
	deaths := df.Col(ColDeaths).Float()
	populations := df.Col(ColPopulation).Float()

	type dayTotal struct {
		cases  float64
		deaths float64
		hasDth bool
	}
	byCountry := make(map[string]map[string]*dayTotal)
	popByCountry := make(map[string][]float64)

	for i := range countryCol {
		c := countryCol[i]
		days, ok := byCountry[c]
		if !ok {
			days = make(map[string]*dayTotal)
			byCountry[c] = days
		}
		day, ok := days[dates[i]]
		if !ok {
			day = &dayTotal{}
			days[dates[i]] = day
		}
		day.cases += cases[i]
		if !math.IsNaN(deaths[i]) {
			day.deaths += deaths[i]
			day.hasDth = true
		}
		if !math.IsNaN(populations[i]) {
			popByCountry[c] = append(popByCountry[c], populations[i])
		}
	}

	trends := make([]CountryTrend, 0, len(countries))
	for _, country := range countries {
		days, ok := byCountry[country]
		if !ok {
			continue
		}

		sorted := make([]string, 0, len(days))
		for d := range days {
			sorted = append(sorted, d)
		}
		sort.Strings(sorted)

		trend := CountryTrend{
			Country:    country,
			Dates:      make([]time.Time, 0, len(sorted)),
			Cases:      make([]float64, 0, len(sorted)),
			Deaths:     make([]float64, 0, len(sorted)),
			PerCapita:  make([]float64, 0, len(sorted)),
			Population: countryPopulation(popByCountry[country]),
		}
		for _, d := range sorted {
			parsed, err := time.Parse(domain.DateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("trend for %s: bad date %q: %w", country, d, err)
			}
			day := days[d]
			trend.Dates = append(trend.Dates, parsed)
			trend.Cases = append(trend.Cases, day.cases)
			if day.hasDth {
				trend.Deaths = append(trend.Deaths, day.deaths)
			} else {
				trend.Deaths = append(trend.Deaths, math.NaN())
			}
			trend.PerCapita = append(trend.PerCapita, perCapitaValue(day.cases, trend.Population))
		}
		trends = append(trends, trend)
	}

	return trends, nil
}

func countryPopulation(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func perCapitaValue(cases, population float64) float64 {
	if math.IsNaN(population) || population <= 0 {
		return math.NaN()
	}
	return cases / population
}

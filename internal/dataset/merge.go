package dataset

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/covid-trend-report/internal/domain"
)

// Merge combines the two reshaped tables and the population lookup into one
// frame. Cases and deaths are full-outer-joined on (province, country, date)
// so a date reported by only one source still appears, with NaN for the
// missing metric. Population is then left-joined on (province, country);
// locations absent from the lookup keep NaN population. A CombinedKey column
// is added for display.
//
// When the lookup carries several rows for one (province, country) key, the
// first row wins and the duplicates are logged. Accepting all matches would
// silently multiply observation rows through the join.
func Merge(cases, deaths dataframe.DataFrame, locations []domain.LocationInfo, logger *slog.Logger) (dataframe.DataFrame, error) {
	merged := cases.OuterJoin(deaths, ColProvince, ColCountry, ColDate)
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("outer join cases and deaths: %w", merged.Error())
	}

	lookup := lookupFrame(locations, logger)
	merged = merged.LeftJoin(lookup, ColProvince, ColCountry)
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("left join population: %w", merged.Error())
	}

	provinces := merged.Col(ColProvince).Records()
	countries := merged.Col(ColCountry).Records()
	keys := make([]string, len(provinces))
	for i := range provinces {
		keys[i] = domain.CombinedKey(provinces[i], countries[i])
	}

	merged = merged.Mutate(series.New(keys, series.String, ColCombinedKey))
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("add combined key: %w", merged.Error())
	}
	return merged, nil
}

// PerCapita appends a CasesPerCapita column: cases divided by population,
// NaN whenever the population is unknown or not strictly positive. Division
// never panics; absence propagates instead.
func PerCapita(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	cases := df.Col(ColCases).Float()
	population := df.Col(ColPopulation).Float()

	perCapita := make([]float64, len(cases))
	for i := range cases {
		if math.IsNaN(population[i]) || population[i] <= 0 {
			perCapita[i] = math.NaN()
			continue
		}
		perCapita[i] = cases[i] / population[i]
	}

	out := df.Mutate(series.New(perCapita, series.Float, ColPerCapita))
	if out.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("add per-capita column: %w", out.Error())
	}
	return out, nil
}

// lookupFrame deduplicates the lookup entries and loads them into a frame
// keyed by (province, country).
func lookupFrame(locations []domain.LocationInfo, logger *slog.Logger) dataframe.DataFrame {
	type key struct{ province, country string }

	seen := make(map[key]bool, len(locations))
	duplicates := 0
	provinces := make([]string, 0, len(locations))
	countries := make([]string, 0, len(locations))
	populations := make([]float64, 0, len(locations))

	for _, loc := range locations {
		k := key{loc.Province, loc.Country}
		if seen[k] {
			duplicates++
			continue
		}
		seen[k] = true
		provinces = append(provinces, loc.Province)
		countries = append(countries, loc.Country)
		populations = append(populations, loc.Population)
	}

	if duplicates > 0 {
		logger.Warn("lookup table has duplicate location keys, keeping first match", "duplicates", duplicates)
	}

	return dataframe.New(
		series.New(provinces, series.String, ColProvince),
		series.New(countries, series.String, ColCountry),
		series.New(populations, series.Float, ColPopulation),
	)
}

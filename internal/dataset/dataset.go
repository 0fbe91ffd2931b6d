// Package dataset reshapes, merges, and filters the source tables into the
// long-form frame the report stages consume.
//
// All tabular work happens on gota dataframes. Dates are carried as ISO
// strings (domain.DateLayout) inside frames so join keys and ordering stay
// plain string operations; they are parsed back into time.Time only when
// building typed per-country series. Missing values (a metric absent on one
// side of the outer join, a location without a population match) are NaN.
package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/covid-trend-report/internal/domain"
)

// Frame column names.
const (
	ColProvince    = "Province"
	ColCountry     = "Country"
	ColDate        = "Date"
	ColCases       = "Cases"
	ColDeaths      = "Deaths"
	ColPopulation  = "Population"
	ColCombinedKey = "CombinedKey"
	ColPerCapita   = "CasesPerCapita"
)

// Reshape converts a wide table into long form: one row per (province,
// country, date) with a single value column named valueName. The output has
// exactly len(Rows) x len(Dates) rows.
func Reshape(table *domain.WideTable, valueName string) (dataframe.DataFrame, error) {
	records := make([][]string, 0, len(table.Rows)*len(table.Dates)+1)
	records = append(records, []string{ColProvince, ColCountry, ColDate, valueName})

	for _, row := range table.Rows {
		if len(row.Values) != len(table.Dates) {
			return dataframe.DataFrame{}, fmt.Errorf(
				"reshape %s: row %s has %d values for %d date columns",
				valueName, domain.CombinedKey(row.Province, row.Country), len(row.Values), len(table.Dates))
		}
		for i, date := range table.Dates {
			records = append(records, []string{
				row.Province,
				row.Country,
				date.Format(domain.DateLayout),
				fmt.Sprintf("%d", row.Values[i]),
			})
		}
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			valueName: series.Float,
		}),
	)
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reshape %s: %w", valueName, df.Error())
	}
	return df, nil
}

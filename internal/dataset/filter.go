package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Filter restricts the merged frame to the rows the report covers: case
// count strictly positive (dropping each location's pre-outbreak
// zero-padding, along with death-only rows whose case count is missing),
// then country membership in the allow-list. Matching is exact and
// case-sensitive. Row order after filtering carries no meaning; consumers
// group and sort before any time-series work.
func Filter(df dataframe.DataFrame, countries []string) (dataframe.DataFrame, error) {
	out := df.Filter(dataframe.F{
		Colname:    ColCases,
		Comparator: series.Greater,
		Comparando: 0.0,
	})
	if out.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter positive cases: %w", out.Error())
	}

	out = out.Filter(dataframe.F{
		Colname:    ColCountry,
		Comparator: series.In,
		Comparando: countries,
	})
	if out.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter countries: %w", out.Error())
	}
	return out, nil
}

// Package domain models the Johns Hopkins CSSE COVID-19 time-series data.
//
// # Data Source
//
// The CSSE repository publishes three flat CSV files that this service
// consumes, available under
// https://github.com/CSSEGISandData/COVID-19/tree/master/csse_covid_19_data:
//
//	time_series_covid19_confirmed_global.csv   cumulative confirmed cases
//	time_series_covid19_deaths_global.csv      cumulative deaths
//	UID_ISO_FIPS_LookUp_Table.csv              location identifiers + population
//
// # Wide Layout
//
// The two time-series files are "wide": one row per reporting location and
// one column per calendar date.
//
//	Province/State, Country/Region, Lat, Long, 1/22/20, 1/23/20, ...
//
// Province/State is empty for countries reported as a single unit (e.g. US).
// Lat and Long are carried in the source but discarded here. Date column
// headers use M/D/YY notation and are parsed by [ParseHeaderDate]; a header
// that does not parse as a date is a fatal schema error, never silently
// skipped.
//
// Counts are cumulative and non-negative. The source intends them to be
// monotonically non-decreasing per location over time, but occasional
// downward corrections appear in practice; this package does not enforce
// monotonicity (cmd/validate reports violations as warnings).
//
// # Lookup Layout
//
// The lookup table keys population by (Province_State, Country_Region). Its
// remaining identifier and coordinate columns (UID, iso codes, FIPS, Admin2,
// Lat, Long_, Combined_Key) are discarded. Population may be blank for a few
// locations (cruise ships, territories); a blank parses as unknown, not zero.
//
// # Combined Key
//
// Display rows are identified by a synthetic key, "Province, Country", or
// just "Country" when the province is empty. See [CombinedKey]. The key
// exists for human-readable identification only; joins always use the raw
// (province, country) pair.
package domain

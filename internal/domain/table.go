package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Identity columns expected at the head of each wide time-series CSV, in order.
const (
	ColProvince = "Province/State"
	ColCountry  = "Country/Region"
	colLat      = "Lat"
	colLong     = "Long"
)

// Lookup-table columns this service reads. The remaining identifier and
// coordinate columns are discarded.
const (
	lookupColProvince   = "Province_State"
	lookupColCountry    = "Country_Region"
	lookupColPopulation = "Population"
)

// headerDateLayout matches the M/D/YY date headers of the wide tables,
// e.g. "1/22/20".
const headerDateLayout = "1/2/06"

// DateLayout is the ISO form used for dates everywhere downstream of parsing.
const DateLayout = "2006-01-02"

// WideTable is a parsed time-series CSV: one row per location, one cumulative
// count per entry in Dates.
type WideTable struct {
	Dates []time.Time
	Rows  []WideRow
}

// WideRow is one location's identity plus its per-date cumulative counts.
// len(Values) always equals len(WideTable.Dates).
type WideRow struct {
	Province string
	Country  string
	Values   []int
}

// LocationInfo is one lookup-table entry. Population is NaN when the source
// leaves it blank.
type LocationInfo struct {
	Province   string
	Country    string
	Population float64
}

// HasPopulation reports whether the lookup table carried a population count
// for this location.
func (l LocationInfo) HasPopulation() bool {
	return !math.IsNaN(l.Population)
}

// CombinedKey builds the synthetic display identifier for a location:
// "Province, Country", or just the country when the province is empty.
func CombinedKey(province, country string) string {
	if province == "" {
		return country
	}
	return province + ", " + country
}

// ParseHeaderDate parses a wide-table date column header in M/D/YY form.
func ParseHeaderDate(header string) (time.Time, error) {
	t, err := time.Parse(headerDateLayout, strings.TrimSpace(header))
	if err != nil {
		return time.Time{}, fmt.Errorf("date column %q is not in M/D/YY form: %w", header, err)
	}
	return t, nil
}

// ParseWideCSV converts raw CSV records (header first) into a WideTable.
// The first four columns must be the identity columns in their canonical
// order; every remaining column header must parse as an M/D/YY date.
func ParseWideCSV(records [][]string) (*WideTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV: no header row")
	}

	header := records[0]
	identity := []string{ColProvince, ColCountry, colLat, colLong}
	if len(header) < len(identity)+1 {
		return nil, fmt.Errorf("wide table has %d columns, need identity columns plus at least one date", len(header))
	}
	for i, want := range identity {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("wide table column %d is %q, expected %q", i, header[i], want)
		}
	}

	dates := make([]time.Time, 0, len(header)-len(identity))
	for _, h := range header[len(identity):] {
		d, err := ParseHeaderDate(h)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}

	rows := make([]WideRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), len(header))
		}
		values := make([]int, len(dates))
		for j, field := range rec[len(identity):] {
			v, err := parseCount(field)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", i+1,
					CombinedKey(rec[0], rec[1]), err)
			}
			values[j] = v
		}
		rows = append(rows, WideRow{
			Province: strings.TrimSpace(rec[0]),
			Country:  strings.TrimSpace(rec[1]),
			Values:   values,
		})
	}

	return &WideTable{Dates: dates, Rows: rows}, nil
}

// ParseLookupCSV converts raw lookup CSV records (header first) into location
// entries. Columns are located by name so the source may reorder or add
// columns without breaking parsing.
func ParseLookupCSV(records [][]string) ([]LocationInfo, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty lookup CSV: no header row")
	}

	idx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, want := range []string{lookupColProvince, lookupColCountry, lookupColPopulation} {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("lookup table is missing column %q", want)
		}
	}

	locations := make([]LocationInfo, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("lookup row %d has %d fields, header has %d", i+1, len(rec), len(records[0]))
		}
		pop := math.NaN()
		if s := strings.TrimSpace(rec[idx[lookupColPopulation]]); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("lookup row %d: population %q is not numeric: %w", i+1, s, err)
			}
			pop = v
		}
		locations = append(locations, LocationInfo{
			Province:   strings.TrimSpace(rec[idx[lookupColProvince]]),
			Country:    strings.TrimSpace(rec[idx[lookupColCountry]]),
			Population: pop,
		})
	}

	return locations, nil
}

// parseCount parses a cumulative count cell. Blank cells count as zero; the
// source uses them for dates before a location began reporting.
func parseCount(field string) (int, error) {
	s := strings.TrimSpace(field)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("count %q is not an integer", field)
	}
	if v < 0 {
		return 0, fmt.Errorf("count %q is negative", field)
	}
	return v, nil
}

// Command genfixtures writes small deterministic CSV fixtures in the CSSE
// source layout: a confirmed-cases wide table, a deaths wide table, and a
// population lookup table. The fixtures serve the test suites and offline
// experimentation with cmd/validate.
//
// Usage:
//
//	go run ./cmd/genfixtures -out testdata/fixtures -days 14
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var startDate = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// location is one fixture row. Cumulative counts follow a deterministic
// quadratic ramp offset per location so every series is distinct, monotonic,
// and reproducible.
type location struct {
	province   string
	country    string
	population string // empty means absent from the lookup's population column
	offset     int
}

var locations = []location{
	{province: "", country: "Testland", population: "1000", offset: 0},
	{province: "North", country: "Otherland", population: "400", offset: 2},
	{province: "South", country: "Otherland", population: "600", offset: 3},
	{province: "", country: "Shipland", population: "", offset: 5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for fixture CSVs")
	days := flag.Int("days", 14, "number of date columns to generate")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days < 1 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeWide(filepath.Join(*outDir, "cases.csv"), *days, caseCount); err != nil {
		return err
	}
	if err := writeWide(filepath.Join(*outDir, "deaths.csv"), *days, deathCount); err != nil {
		return err
	}
	if err := writeLookup(filepath.Join(*outDir, "lookup.csv")); err != nil {
		return err
	}

	fmt.Printf("wrote cases.csv, deaths.csv, lookup.csv to %s\n", *outDir)
	return nil
}

// caseCount ramps quadratically after a per-location quiet period, giving
// each series leading zero rows for positive-case filter tests.
func caseCount(loc location, day int) int {
	active := day - loc.offset
	if active < 0 {
		return 0
	}
	return active*active + active
}

// deathCount lags cases and stays roughly two orders of magnitude smaller.
func deathCount(loc location, day int) int {
	return caseCount(loc, day-3) / 50
}

func writeWide(path string, days int, count func(location, int) int) error {
	header := []string{"Province/State", "Country/Region", "Lat", "Long"}
	for d := 0; d < days; d++ {
		header = append(header, startDate.AddDate(0, 0, d).Format("1/2/06"))
	}

	records := [][]string{header}
	for _, loc := range locations {
		row := []string{loc.province, loc.country, "0.0", "0.0"}
		for d := 0; d < days; d++ {
			row = append(row, strconv.Itoa(count(loc, d)))
		}
		records = append(records, row)
	}

	return writeCSV(path, records)
}

func writeLookup(path string) error {
	records := [][]string{
		{"UID", "iso2", "Province_State", "Country_Region", "Lat", "Long_", "Combined_Key", "Population"},
	}
	for i, loc := range locations {
		combined := loc.country
		if loc.province != "" {
			combined = loc.province + ", " + loc.country
		}
		records = append(records, []string{
			strconv.Itoa(i + 1), "XX", loc.province, loc.country, "0.0", "0.0", combined, loc.population,
		})
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

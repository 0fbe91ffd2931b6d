// Command validate performs offline integrity checks on downloaded CSSE CSV
// files before they are fed to a report run: schema and column presence,
// date-header parseability, per-row field counts, cumulative-count
// monotonicity, and lookup coverage of the report's country allow-list.
//
// Monotonicity violations are warnings, not failures: the upstream data
// contains occasional downward corrections and the report tolerates them.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -cases data/cases.csv \
//	  -deaths data/deaths.csv \
//	  -lookup data/lookup.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/covid-trend-report/internal/config"
	"github.com/couchcryptid/covid-trend-report/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	casesPath := flag.String("cases", "", "path to the confirmed-cases wide CSV")
	deathsPath := flag.String("deaths", "", "path to the deaths wide CSV")
	lookupPath := flag.String("lookup", "", "path to the UID/population lookup CSV")
	flag.Parse()

	if *casesPath == "" || *deathsPath == "" || *lookupPath == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "missing required flags: -cases, -deaths, -lookup")
		os.Exit(2)
	}

	phases := []*phase{
		validateWide("cases", *casesPath),
		validateWide("deaths", *deathsPath),
		validateLookup(*lookupPath),
	}

	failed := false
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed = true
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("    error: %s\n", e)
		}
		for _, w := range p.warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func validateWide(name, path string) *phase {
	p := &phase{name: fmt.Sprintf("%s table (%s)", name, path)}

	records, err := readCSV(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	table, err := domain.ParseWideCSV(records)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for _, row := range table.Rows {
		for i := 1; i < len(row.Values); i++ {
			if row.Values[i] < row.Values[i-1] {
				p.warnf("%s: cumulative count drops from %d to %d at %s",
					domain.CombinedKey(row.Province, row.Country),
					row.Values[i-1], row.Values[i],
					table.Dates[i].Format(domain.DateLayout))
				break
			}
		}
	}

	fmt.Printf("  %s: %d locations, %d dates (%s .. %s)\n",
		name, len(table.Rows), len(table.Dates),
		table.Dates[0].Format(domain.DateLayout),
		table.Dates[len(table.Dates)-1].Format(domain.DateLayout))
	return p
}

func validateLookup(path string) *phase {
	p := &phase{name: fmt.Sprintf("lookup table (%s)", path)}

	records, err := readCSV(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	locations, err := domain.ParseLookupCSV(records)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	countries := make(map[string]bool)
	missingPop := 0
	for _, loc := range locations {
		countries[loc.Country] = true
		if !loc.HasPopulation() {
			missingPop++
		}
	}
	if missingPop > 0 {
		p.warnf("%d locations have no population; their per-capita values will be missing", missingPop)
	}

	var uncovered []string
	for _, c := range config.DefaultCountries {
		if !countries[c] {
			uncovered = append(uncovered, c)
		}
	}
	if len(uncovered) > 0 {
		p.errorf("allow-listed countries missing from lookup: %s", strings.Join(uncovered, ", "))
	}

	fmt.Printf("  lookup: %d locations, %d countries\n", len(locations), len(countries))
	return p
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Default source locations: the Johns Hopkins CSSE COVID-19 repository.
const (
	defaultCasesURL  = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_confirmed_global.csv"
	defaultDeathsURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_global.csv"
	defaultLookupURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/UID_ISO_FIPS_LookUp_Table.csv"
)

// DefaultCountries is the fixed allow-list the report is restricted to.
// Matching is exact and case-sensitive against the Country/Region column.
var DefaultCountries = []string{
	"Brazil",
	"Canada",
	"France",
	"Germany",
	"Italy",
	"US",
	"United Kingdom",
}

// DefaultFocusCountries are the countries given individual case/death charts
// and regression summaries.
var DefaultFocusCountries = []string{"US", "Italy"}

// Config holds all report settings, populated from environment variables.
type Config struct {
	CasesURL  string
	DeathsURL string
	LookupURL string

	OutputDir    string
	FetchTimeout time.Duration
	FetchRetries int

	Countries      []string
	FocusCountries []string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. The defaults reproduce a fixed, zero-configuration run
// against the public CSSE data.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchRetries, err := parseInt("FETCH_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CasesURL:  envOrDefault("CASES_URL", defaultCasesURL),
		DeathsURL: envOrDefault("DEATHS_URL", defaultDeathsURL),
		LookupURL: envOrDefault("LOOKUP_URL", defaultLookupURL),

		OutputDir:    envOrDefault("OUTPUT_DIR", "./reports"),
		FetchTimeout: fetchTimeout,
		FetchRetries: fetchRetries,

		Countries:      parseList(envOrDefault("COUNTRIES", strings.Join(DefaultCountries, ","))),
		FocusCountries: parseList(envOrDefault("FOCUS_COUNTRIES", strings.Join(DefaultFocusCountries, ","))),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.CasesURL == "" {
		return nil, errors.New("CASES_URL is required")
	}
	if cfg.DeathsURL == "" {
		return nil, errors.New("DEATHS_URL is required")
	}
	if cfg.LookupURL == "" {
		return nil, errors.New("LOOKUP_URL is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if len(cfg.Countries) == 0 {
		return nil, errors.New("COUNTRIES must list at least one country")
	}
	if len(cfg.FocusCountries) == 0 {
		return nil, errors.New("FOCUS_COUNTRIES must list at least one country")
	}
	for _, c := range cfg.FocusCountries {
		if !slices.Contains(cfg.Countries, c) {
			return nil, fmt.Errorf("focus country %q is not in COUNTRIES", c)
		}
	}

	return cfg, nil
}

// envOrDefault returns the environment variable's value, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// parseList splits a comma-separated list, trimming surrounding whitespace
// and dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

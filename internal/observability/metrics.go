package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a report run.
type Metrics struct {
	RowsFetched  *prometheus.CounterVec // labels: source={cases,deaths,lookup}
	FetchRetries prometheus.Counter
	RunInFlight  prometheus.Gauge

	// Stage metrics, labelled by stage={reshape,merge,filter,report}.
	StageDuration *prometheus.HistogramVec
	StageRowsOut  *prometheus.GaugeVec

	ChartsRendered prometheus.Counter
	RegressionsFit prometheus.Counter
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsFetched,
		m.FetchRetries,
		m.RunInFlight,
		m.StageDuration,
		m.StageRowsOut,
		m.ChartsRendered,
		m.RegressionsFit,
	)

	return m
}

// NewMetricsForTesting creates Metrics with no registration to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_report",
			Name:      "rows_fetched_total",
			Help:      "Rows parsed from each fetched source file.",
		}, []string{"source"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_report",
			Name:      "fetch_retries_total",
			Help:      "Total fetch attempts beyond the first, across all sources.",
		}),
		RunInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_report",
			Name:      "run_in_flight",
			Help:      "1 while a report run is executing, 0 otherwise.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "covid_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		StageRowsOut: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "covid_report",
			Name:      "stage_rows_out",
			Help:      "Rows produced by each pipeline stage in the current run.",
		}, []string{"stage"}),
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_report",
			Name:      "charts_rendered_total",
			Help:      "Chart files written during the run.",
		}),
		RegressionsFit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covid_report",
			Name:      "regressions_fit_total",
			Help:      "Regression models fit during the run.",
		}),
	}
}

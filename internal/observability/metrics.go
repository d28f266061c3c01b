package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// trend pipeline.
type Metrics struct {
	RowsIngested       prometheus.Counter
	SeriesFilled       prometheus.Counter
	ValuesInterpolated prometheus.Counter
	ValuesExtrapolated prometheus.Counter

	SpeciesFitted       prometheus.Counter
	SpeciesSkipped      prometheus.Counter
	UndefinedStatistics prometheus.Counter

	StageDuration   *prometheus.HistogramVec // label: stage
	PipelineRunning prometheus.Gauge
}

const namespace = "trend_etl"

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.SeriesFilled,
		m.ValuesInterpolated,
		m.ValuesExtrapolated,
		m.SpeciesFitted,
		m.SpeciesSkipped,
		m.UndefinedStatistics,
		m.StageDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Observation rows read from the input boundary.",
		}),
		SeriesFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_filled_total",
			Help:      "Per-(site, species) time series processed by the gap filler.",
		}),
		ValuesInterpolated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_interpolated_total",
			Help:      "Interior gaps filled by linear interpolation.",
		}),
		ValuesExtrapolated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_extrapolated_total",
			Help:      "Edge gaps filled by nearest-value hold.",
		}),
		SpeciesFitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "species_fitted_total",
			Help:      "Species with a defined trend slope.",
		}),
		SpeciesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "species_skipped_total",
			Help:      "Species with too little data for a trend fit.",
		}),
		UndefinedStatistics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undefined_statistics_total",
			Help:      "Absent statistics in the final result tables.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of one pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a batch run is active, 0 otherwise.",
		}),
	}
}

// Package pipeline implements the population-trend transformation chain:
// gap-filling, hierarchical aggregation, zero-safe log transforms, trend and
// change-ratio estimation, standardization, rank-correlation testing and
// latitude banding. Every stage is a pure function over immutable tables;
// the Pipeline type only sequences them and adds observability.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/observability"
)

// DatasetLoader reads the validated survey dataset from the input boundary.
type DatasetLoader interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// ResultStore writes the five result tables to the output boundary.
type ResultStore interface {
	Store(ctx context.Context, rs domain.ResultSet) error
}

// Protection selects which sites take part in the analysis.
type Protection string

const (
	ProtectionAll         Protection = ""
	ProtectionProtected   Protection = "protected"
	ProtectionUnprotected Protection = "unprotected"
)

// Options holds the statistical parameters of a run.
type Options struct {
	Window       Window     // reporting window for slopes, ratios and plot tables
	PeriodYears  int        // length of the first/second change-ratio periods
	BaselineYear int        // anchor year of the baseline standardization
	Bands        BandConfig // latitude band geometry
	Protection   Protection // optional site filter
}

// Pipeline runs the load-transform-store batch once per invocation.
type Pipeline struct {
	loader  DatasetLoader
	store   ResultStore
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with the given boundaries and observability.
func New(loader DatasetLoader, store ResultStore, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:  loader,
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the input dataset has been loaded and
// validated, or an error describing why the run is not yet underway.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("input dataset not loaded yet")
	}
	return nil
}

// Run executes one batch: load and validate the dataset, run the statistics
// chain, and hand the result tables to the store. A validation failure
// aborts before any stage runs.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()

	ds, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	p.metrics.RowsIngested.Add(float64(len(ds.Observations)))
	p.ready.Store(true)
	p.logger.Info("dataset loaded",
		"observations", len(ds.Observations),
		"years", ds.Years(),
		"species_traits", len(ds.Reference.Biogeography),
		"site_states", len(ds.Reference.States),
	)

	rs := p.Transform(ds)

	if err := p.store.Store(ctx, rs); err != nil {
		return fmt.Errorf("store results: %w", err)
	}

	p.logger.Info("run complete",
		"duration", time.Since(start),
		"trend_rows", len(rs.Trends),
		"significance_rows", len(rs.Significance),
		"region_biogeography_rows", len(rs.RegionBiogeo),
		"region_taxon_rows", len(rs.RegionTaxon),
		"band_biogeography_rows", len(rs.BandBiogeo),
	)
	return nil
}

// Transform runs the pure statistics chain over a validated dataset. It is
// deterministic apart from the GeneratedAt stamp, which comes from the
// package clock.
func (p *Pipeline) Transform(ds domain.Dataset) domain.ResultSet {
	obs := p.filterProtection(ds.Observations)

	var filled []domain.Observation
	p.timed("gap_fill", func() {
		filled = p.fillGaps(ds.YearStart, ds.YearEnd, obs)
	})

	w := p.opts.Window

	// Population-trend chain: log at observation level under the per-species
	// floor, aggregate site -> cell -> species, then fit. The change ratio
	// reuses the same aggregation of the unlogged counts.
	var trends []domain.TrendResult
	p.timed("trend_estimation", func() {
		logged := aggregateToSpeciesYear(logBySpecies(filled))
		unlogged := aggregateToSpeciesYear(filled)
		trends = p.estimateTrends(logged, unlogged, w, p.opts.PeriodYears, totalNonzero(obs))
	})

	// Site-mean standardization feeds the rank-correlation test.
	var significance []domain.SignificanceResult
	p.timed("significance_testing", func() {
		centered := aggregateToSpeciesYear(siteMeanStandardize(filled))
		significance = p.testSignificance(centered, w)
	})

	// Baseline standardization feeds the three plotting tables.
	var regionBio []domain.RegionBiogeographyRow
	var regionTaxon []domain.RegionTaxonRow
	var bandBio []domain.BandBiogeographyRow
	p.timed("plot_aggregation", func() {
		anchored := baselineStandardize(filled, p.opts.BaselineYear)
		regionBio, regionTaxon, bandBio = p.plotTables(anchored, ds.Reference, w)
	})

	rs := domain.ResultSet{
		Trends:       trends,
		Significance: significance,
		RegionBiogeo: regionBio,
		RegionTaxon:  regionTaxon,
		BandBiogeo:   bandBio,
		GeneratedAt:  clock.Now(),
	}
	p.countUndefined(rs)
	return rs
}

// filterProtection applies the optional site-protection filter.
func (p *Pipeline) filterProtection(obs []domain.Observation) []domain.Observation {
	if p.opts.Protection == ProtectionAll {
		return obs
	}
	want := p.opts.Protection == ProtectionProtected
	out := make([]domain.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Protected == want {
			out = append(out, o)
		}
	}
	return out
}

// countUndefined tallies the absent statistics reaching the final tables.
// Undefined statistics are expected under sparse data; the counter makes a
// sudden jump visible without making any of them fatal.
func (p *Pipeline) countUndefined(rs domain.ResultSet) {
	if p.metrics == nil {
		return
	}
	n := 0
	for _, t := range rs.Trends {
		if !t.Slope.OK {
			n++
		}
		if !t.ChangeRatio.OK {
			n++
		}
	}
	for _, r := range rs.RegionBiogeo {
		if !r.Mean.OK {
			n++
		}
	}
	for _, r := range rs.RegionTaxon {
		if !r.Mean.OK {
			n++
		}
	}
	for _, r := range rs.BandBiogeo {
		if !r.Mean.OK {
			n++
		}
	}
	p.metrics.UndefinedStatistics.Add(float64(n))
}

// timed runs one stage and records its duration.
func (p *Pipeline) timed(stage string, f func()) {
	start := time.Now()
	f()
	d := time.Since(start)
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
	p.logger.Debug("stage complete", "stage", stage, "duration", d)
}

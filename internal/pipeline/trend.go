package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/stats"
)

// Window is the bounded reporting year range the estimators operate on.
type Window struct {
	Start int
	End   int
}

// Contains reports whether year falls inside the window.
func (w Window) Contains(year int) bool {
	return year >= w.Start && year <= w.End
}

type cellYear struct {
	species string
	cell    domain.GridCell
	year    int
}

type speciesYear struct {
	species string
	year    int
}

func cmpCellYear(a, b cellYear) int {
	if c := strings.Compare(a.species, b.species); c != 0 {
		return c
	}
	if c := cmp.Compare(a.cell.Lat, b.cell.Lat); c != 0 {
		return c
	}
	if c := cmp.Compare(a.cell.Lon, b.cell.Lon); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

func cmpSpeciesYear(a, b speciesYear) int {
	if c := strings.Compare(a.species, b.species); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

// aggregateToSpeciesYear runs the two-level spatial aggregation: site counts
// to grid-cell means, grid-cell means to one mean per (species, year).
func aggregateToSpeciesYear(obs []domain.Observation) []Aggregate[speciesYear] {
	cells := MeanBy(obs,
		func(o domain.Observation) cellYear {
			return cellYear{species: o.SpeciesID, cell: o.Cell(), year: o.Year}
		},
		func(o domain.Observation) domain.Float { return o.Count },
		cmpCellYear,
	)
	return MeanBy(cells,
		func(a Aggregate[cellYear]) speciesYear {
			return speciesYear{species: a.Key.species, year: a.Key.year}
		},
		func(a Aggregate[cellYear]) domain.Float { return a.Mean },
		cmpSpeciesYear,
	)
}

// windowed keeps the aggregates whose year falls inside w.
func windowed(aggs []Aggregate[speciesYear], w Window) []Aggregate[speciesYear] {
	out := make([]Aggregate[speciesYear], 0, len(aggs))
	for _, a := range aggs {
		if w.Contains(a.Key.year) {
			out = append(out, a)
		}
	}
	return out
}

// bySpecies partitions species-year aggregates into per-species (year, value)
// maps, keeping only present finite values. Species order is the aggregate
// order, which MeanBy already sorted.
func bySpecies(aggs []Aggregate[speciesYear]) (map[string]map[int]float64, []string) {
	values := make(map[string]map[int]float64)
	order := make([]string, 0)
	for _, a := range aggs {
		v := a.Mean.Finite()
		if !v.OK {
			continue
		}
		sp := a.Key.species
		if _, seen := values[sp]; !seen {
			values[sp] = make(map[int]float64)
			order = append(order, sp)
		}
		values[sp][a.Key.year] = v.V
	}
	return values, order
}

// totalNonzero counts the raw, pre-aggregation nonzero counts per species
// over the whole dataset. It is a data-volume diagnostic, never windowed.
func totalNonzero(obs []domain.Observation) map[string]int {
	totals := make(map[string]int)
	for _, o := range obs {
		if o.Count.OK && o.Count.V != 0 {
			totals[o.SpeciesID]++
		}
	}
	return totals
}

// changeRatio divides the mean unlogged value of the window's last
// periodYears years by that of its first periodYears years. Years between
// the two periods are dropped from the calculation. A zero or undefined
// first-period mean leaves the ratio absent.
func changeRatio(values map[int]float64, w Window, periodYears int) domain.Float {
	var first, second []domain.Float
	for year, v := range values {
		switch {
		case year >= w.Start && year < w.Start+periodYears:
			first = append(first, domain.Some(v))
		case year > w.End-periodYears && year <= w.End:
			second = append(second, domain.Some(v))
		}
	}
	fm, sm := domain.Mean(first), domain.Mean(second)
	if !fm.OK || !sm.OK {
		return domain.Absent
	}
	return domain.Some(sm.V / fm.V).Finite()
}

// estimateTrends produces the population-trend table: one row per species
// with at least one valid logged value in the window. The slope fits the
// logged species-year means; the change ratio uses the unlogged ones.
func (p *Pipeline) estimateTrends(
	logged, unlogged []Aggregate[speciesYear],
	w Window,
	periodYears int,
	totals map[string]int,
) []domain.TrendResult {
	loggedVals, order := bySpecies(windowed(logged, w))
	unloggedVals, _ := bySpecies(windowed(unlogged, w))

	results := make([]domain.TrendResult, 0, len(order))
	for _, sp := range order {
		var xs, ys []float64
		for year, v := range loggedVals[sp] {
			xs = append(xs, float64(year))
			ys = append(ys, v)
		}

		slope := domain.Absent
		if _, beta, ok := stats.Line(xs, ys); ok {
			slope = domain.Some(beta).Finite()
		}
		if p.metrics != nil {
			if slope.OK {
				p.metrics.SpeciesFitted.Inc()
			} else {
				p.metrics.SpeciesSkipped.Inc()
			}
		}

		results = append(results, domain.TrendResult{
			SpeciesID:    sp,
			Slope:        slope,
			ChangeRatio:  changeRatio(unloggedVals[sp], w, periodYears),
			TotalNonzero: totals[sp],
		})
	}
	slices.SortFunc(results, func(a, b domain.TrendResult) int {
		return strings.Compare(a.SpeciesID, b.SpeciesID)
	})
	return results
}

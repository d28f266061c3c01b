package pipeline

import (
	"slices"
	"sort"
	"strings"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/stats"
)

// minCorrelationYears is the sample-size gate: a species needs strictly more
// than this many valid yearly values to be tested at all.
const minCorrelationYears = 5

// significanceLevel maps a two-sided p-value to its marker.
func significanceLevel(p float64) string {
	switch {
	case p <= 0.001:
		return "***"
	case p <= 0.01:
		return "**"
	case p <= 0.05:
		return "*"
	default:
		return ""
	}
}

// direction classifies a marked correlation as "up" or "down"; unmarked
// correlations get no direction regardless of rho's sign.
func direction(level string, rho float64) string {
	if level == "" {
		return ""
	}
	switch {
	case rho > 0:
		return "up"
	case rho < 0:
		return "down"
	default:
		return ""
	}
}

// testSignificance runs the Spearman rank-correlation test of standardized
// value against year, per species, over windowed species-year aggregates.
// Absent and non-finite values are removed before testing; species left with
// five or fewer values are excluded from the output entirely.
func (p *Pipeline) testSignificance(aggs []Aggregate[speciesYear], w Window) []domain.SignificanceResult {
	values, order := bySpecies(windowed(aggs, w))

	results := make([]domain.SignificanceResult, 0, len(order))
	for _, sp := range order {
		if len(values[sp]) <= minCorrelationYears {
			continue
		}
		years := make([]int, 0, len(values[sp]))
		for year := range values[sp] {
			years = append(years, year)
		}
		sort.Ints(years)

		xs := make([]float64, len(years))
		ys := make([]float64, len(years))
		for i, year := range years {
			xs[i] = float64(year)
			ys[i] = values[sp][year]
		}

		rho, pval := stats.Spearman(xs, ys)
		level := significanceLevel(pval)
		results = append(results, domain.SignificanceResult{
			SpeciesID: sp,
			Rho:       rho,
			PValue:    pval,
			Level:     level,
			Direction: direction(level, rho),
		})
	}
	slices.SortFunc(results, func(a, b domain.SignificanceResult) int {
		return strings.Compare(a.SpeciesID, b.SpeciesID)
	})
	return results
}

package pipeline

import (
	"math"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// logSafe converts a non-negative count to its logarithm without producing
// -Inf at zero: a zero value becomes log(floor/2), where floor is the
// minimum nonzero value of the reference group. Zeros in a group without a
// floor stay absent, as does an absent input.
func logSafe(v domain.Float, floor float64, hasFloor bool) domain.Float {
	if !v.OK {
		return domain.Absent
	}
	if v.V == 0 {
		if !hasFloor {
			return domain.Absent
		}
		return domain.Some(math.Log(floor / 2)).Finite()
	}
	return domain.Some(math.Log(v.V)).Finite()
}

// minNonzeroBySpecies returns, per species, the minimum nonzero filled count
// across all of that species' sites and years. Species with no nonzero count
// have no entry.
func minNonzeroBySpecies(obs []domain.Observation) map[string]float64 {
	floors := make(map[string]float64)
	for _, o := range obs {
		if !o.Count.OK || o.Count.V == 0 {
			continue
		}
		if cur, ok := floors[o.SpeciesID]; !ok || o.Count.V < cur {
			floors[o.SpeciesID] = o.Count.V
		}
	}
	return floors
}

// minNonzeroByPair is the (species, site) variant of minNonzeroBySpecies.
// The two variants are computed independently; a floor must never leak
// across reference groups.
func minNonzeroByPair(obs []domain.Observation) map[domain.SeriesKey]float64 {
	floors := make(map[domain.SeriesKey]float64)
	for _, o := range obs {
		if !o.Count.OK || o.Count.V == 0 {
			continue
		}
		k := o.Key()
		if cur, ok := floors[k]; !ok || o.Count.V < cur {
			floors[k] = o.Count.V
		}
	}
	return floors
}

// logBySpecies replaces each observation's count with its zero-safe
// logarithm under the per-species floor. This feeds the population-trend
// chain; the standardization chains use the per-pair variant instead.
func logBySpecies(obs []domain.Observation) []domain.Observation {
	floors := minNonzeroBySpecies(obs)
	out := make([]domain.Observation, len(obs))
	for i, o := range obs {
		floor, ok := floors[o.SpeciesID]
		o.Count = logSafe(o.Count, floor, ok)
		out[i] = o
	}
	return out
}

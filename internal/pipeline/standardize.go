package pipeline

import (
	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// pairIndex groups observation indices by (site, species) pair, preserving
// first-seen order within each pair. Input from fillGaps is already one row
// per pair per year in year order.
func pairIndex(obs []domain.Observation) map[domain.SeriesKey][]int {
	idx := make(map[domain.SeriesKey][]int)
	for i, o := range obs {
		idx[o.Key()] = append(idx[o.Key()], i)
	}
	return idx
}

// siteMeanStandardize centers each (site, species) log-count series on its
// own mean: the zero-safe log (per-pair floor) minus the pair's mean log
// across all years. A constant series standardizes to all zeros.
func siteMeanStandardize(filled []domain.Observation) []domain.Observation {
	floors := minNonzeroByPair(filled)
	out := make([]domain.Observation, len(filled))
	copy(out, filled)

	for key, idxs := range pairIndex(filled) {
		floor, hasFloor := floors[key]
		logs := make([]domain.Float, len(idxs))
		for j, i := range idxs {
			logs[j] = logSafe(filled[i].Count, floor, hasFloor)
		}
		mean := domain.Mean(logs)
		for j, i := range idxs {
			out[i].Count = logs[j].Sub(mean).Finite()
		}
	}
	return out
}

// baselineStandardize anchors each (site, species) log-count series at zero
// in the baseline year: the zero-safe log (independently recomputed per-pair
// floor) of the fully gap-filled series, minus the pair's value at the
// baseline year. A pair with no defined baseline value yields an entirely
// absent standardized series.
func baselineStandardize(filled []domain.Observation, baselineYear int) []domain.Observation {
	floors := minNonzeroByPair(filled)
	out := make([]domain.Observation, len(filled))
	copy(out, filled)

	for key, idxs := range pairIndex(filled) {
		floor, hasFloor := floors[key]
		logs := make([]domain.Float, len(idxs))
		base := domain.Absent
		for j, i := range idxs {
			logs[j] = logSafe(filled[i].Count, floor, hasFloor)
			if filled[i].Year == baselineYear {
				base = logs[j]
			}
		}
		for j, i := range idxs {
			out[i].Count = logs[j].Sub(base).Finite()
		}
	}
	return out
}

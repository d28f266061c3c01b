package pipeline

import (
	"slices"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Aggregate is one group-by-mean output row.
type Aggregate[K comparable] struct {
	Key  K
	Mean domain.Float
	N    int // present values contributing to the mean
}

// MeanBy groups rows by key and computes the absence-aware mean of val for
// each group: absent inputs are ignored, and a group with no present value
// reports an absent mean rather than zero. Output order follows cmp so
// results are deterministic regardless of input order.
//
// This is the one aggregation primitive of the pipeline, reused at every
// hierarchy level: site to grid cell, grid cell to species, and the final
// keyed plot tables.
func MeanBy[R any, K comparable](
	rows []R,
	key func(R) K,
	val func(R) domain.Float,
	cmp func(a, b K) int,
) []Aggregate[K] {
	groups := make(map[K][]domain.Float)
	keys := make([]K, 0)
	for _, r := range rows {
		k := key(r)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], val(r))
	}
	slices.SortFunc(keys, cmp)

	out := make([]Aggregate[K], 0, len(keys))
	for _, k := range keys {
		vals := groups[k]
		n := 0
		for _, v := range vals {
			if v.OK {
				n++
			}
		}
		out = append(out, Aggregate[K]{Key: k, Mean: domain.Mean(vals), N: n})
	}
	return out
}

// Package stats holds the numeric kernels of the trend pipeline: ordinary
// least squares fitting and Spearman rank correlation. Everything here works
// on plain float64 slices of already-valid values; absence handling belongs
// to the caller.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Line fits an ordinary least-squares line y = alpha + beta*x. ok is false
// when fewer than two points are given or x has no variance, in which case
// no line is defined.
func Line(xs, ys []float64) (alpha, beta float64, ok bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, false
	}
	if stat.Variance(xs, nil) == 0 {
		return 0, 0, false
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, 0, false
	}
	return alpha, beta, true
}

// RSquared returns the coefficient of determination for a fitted line.
// Kept for validating fits; the slope alone reaches the output tables.
func RSquared(xs, ys []float64, alpha, beta float64) float64 {
	return stat.RSquared(xs, ys, nil, alpha, beta)
}

// Ranks assigns fractional ranks (1-based), averaging over ties. This is the
// standard tie convention for Spearman correlation: [3, 1, 4, 1] ranks as
// [3, 1.5, 4, 1.5].
func Ranks(vals []float64) []float64 {
	n := len(vals)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && vals[idx[j+1]] == vals[idx[i]] {
			j++
		}
		// Average rank across the tie run [i, j].
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = r
		}
		i = j + 1
	}
	return ranks
}

// Spearman computes the Spearman rank correlation coefficient between xs and
// ys and its two-sided p-value from the t approximation with n-2 degrees of
// freedom. Ties are rank-averaged. With fewer than three points the
// correlation is undefined and (0, 1) is returned.
func Spearman(xs, ys []float64) (rho, p float64) {
	n := len(xs)
	if n < 3 || n != len(ys) {
		return 0, 1
	}

	rho = stat.Correlation(Ranks(xs), Ranks(ys), nil)
	if math.IsNaN(rho) {
		return 0, 1
	}

	// Perfect monotone association: the t statistic diverges.
	if rho >= 1 || rho <= -1 {
		return rho, 0
	}

	df := float64(n - 2)
	t := rho * math.Sqrt(df/(1-rho*rho))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return rho, p
}

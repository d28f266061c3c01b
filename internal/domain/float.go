package domain

import "math"

// Float is an absence-aware float64. The zero value is absent, so a missing
// map entry or an unset struct field reads as absent without special casing.
type Float struct {
	V  float64
	OK bool
}

// Absent is the missing value.
var Absent = Float{}

// Some wraps a known value.
func Some(v float64) Float { return Float{V: v, OK: true} }

// Finite returns f when it holds a finite value, Absent otherwise. Every
// computation path that can produce ±Inf or NaN (zero floors, empty-period
// ratios, degenerate fits) must pass its result through Finite before it
// reaches an output table.
func (f Float) Finite() Float {
	if !f.OK || math.IsInf(f.V, 0) || math.IsNaN(f.V) {
		return Absent
	}
	return f
}

// Sub subtracts o from f, absent when either side is absent.
func (f Float) Sub(o Float) Float {
	if !f.OK || !o.OK {
		return Absent
	}
	return Some(f.V - o.V)
}

// Mean returns the arithmetic mean of the present values, ignoring absent
// ones. A slice with no present values yields Absent, not zero.
func Mean(vals []Float) Float {
	var sum float64
	n := 0
	for _, v := range vals {
		if v.OK {
			sum += v.V
			n++
		}
	}
	if n == 0 {
		return Absent
	}
	return Some(sum / float64(n))
}

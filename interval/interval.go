// The interval package provides closed intervals over the extended reals.
// Every tube value, gate and derivative bound is an Interval.
//
// Intervals are values: every operation returns a new interval. Bounds are
// plain float64 without outward rounding, so results are exact only where
// the floating point operations are exact.
package interval

import (
	"fmt"
	"math"
	"strconv"
)

// [Lo, Hi] over the extended reals.
//
// The empty set is a single canonical value, so intervals can be compared
// with == as long as they were produced by this package.
//
// Useful operations are:
//
// Intersection: [1, 4] & [2, 6] = [2, 4]
//
// Union (hull): [1, 2] | [4, 5] = [1, 5]
//
// Sum: [1, 2] + [0, 1] = [1, 3]
type Interval struct {
	lo, hi float64
}

var empty = Interval{lo: math.Inf(1), hi: math.Inf(-1)}

// Return the interval [lo, hi]. Panics when lo > hi or a bound is NaN.
func New(lo, hi float64) Interval {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		panic(fmt.Sprintf("Invariance: malformed interval [%v, %v]", lo, hi))
	}
	return Interval{lo: lo, hi: hi}
}

// Return the degenerate interval [x, x].
func Point(x float64) Interval {
	return New(x, x)
}

// Return the empty set.
func Empty() Interval {
	return empty
}

// Return (-oo, +oo).
func All() Interval {
	return Interval{lo: math.Inf(-1), hi: math.Inf(1)}
}

// Return the smallest interval containing every x. NaN values widen the
// result to the whole real line.
func Hull(xs ...float64) Interval {
	res := empty
	for _, x := range xs {
		if math.IsNaN(x) {
			return All()
		}
		res = Interval{lo: math.Min(res.lo, x), hi: math.Max(res.hi, x)}
	}
	return res
}

func (i Interval) Lb() float64 {
	return i.lo
}

func (i Interval) Ub() float64 {
	return i.hi
}

func (i Interval) IsEmpty() bool {
	return i.lo > i.hi
}

// Reports whether one of the bounds is infinite. The empty set is bounded.
func (i Interval) IsUnbounded() bool {
	return !i.IsEmpty() && (math.IsInf(i.lo, -1) || math.IsInf(i.hi, 1))
}

func (i Interval) IsBounded() bool {
	return !i.IsUnbounded()
}

func (i Interval) IsDegenerate() bool {
	return i.lo == i.hi
}

// Return hi - lo, 0 for the empty set and +oo for unbounded intervals.
func (i Interval) Diam() float64 {
	switch {
	case i.IsEmpty():
		return 0
	case i.IsUnbounded():
		return math.Inf(1)
	default:
		return i.hi - i.lo
	}
}

// Return the midpoint. Unbounded intervals yield the finite bound, or 0
// for the whole line; the empty set yields NaN.
func (i Interval) Mid() float64 {
	switch {
	case i.IsEmpty():
		return math.NaN()
	case math.IsInf(i.lo, -1) && math.IsInf(i.hi, 1):
		return 0
	case math.IsInf(i.lo, -1):
		return i.hi
	case math.IsInf(i.hi, 1):
		return i.lo
	default:
		return i.lo + (i.hi-i.lo)/2
	}
}

func (i Interval) Contains(x float64) bool {
	return i.lo <= x && x <= i.hi
}

// Reports whether i ⊆ o. The empty set is a subset of everything.
func (i Interval) IsSubset(o Interval) bool {
	return i.IsEmpty() || (o.lo <= i.lo && i.hi <= o.hi)
}

func (i Interval) IsSuperset(o Interval) bool {
	return o.IsSubset(i)
}

// Reports whether i and o share at least one point.
func (i Interval) Intersects(o Interval) bool {
	return !i.Intersect(o).IsEmpty()
}

func (i Interval) Equal(o Interval) bool {
	if i.IsEmpty() || o.IsEmpty() {
		return i.IsEmpty() && o.IsEmpty()
	}
	return i.lo == o.lo && i.hi == o.hi
}

// Return i & o.
func (i Interval) Intersect(o Interval) Interval {
	lo, hi := math.Max(i.lo, o.lo), math.Min(i.hi, o.hi)
	if lo > hi {
		return empty
	}
	return Interval{lo: lo, hi: hi}
}

// Return the hull i | o.
func (i Interval) Union(o Interval) Interval {
	if i.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return i
	}
	return Interval{lo: math.Min(i.lo, o.lo), hi: math.Max(i.hi, o.hi)}
}

func (i Interval) Add(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return empty
	}
	return bounds(i.lo+o.lo, i.hi+o.hi)
}

func (i Interval) Sub(o Interval) Interval {
	return i.Add(o.Neg())
}

func (i Interval) Neg() Interval {
	if i.IsEmpty() {
		return empty
	}
	return Interval{lo: -i.hi, hi: -i.lo}
}

// Return i * o. A zero factor absorbs an infinite one.
func (i Interval) Mul(o Interval) Interval {
	if i.IsEmpty() || o.IsEmpty() {
		return empty
	}
	a, b := mul(i.lo, o.lo), mul(i.lo, o.hi)
	c, d := mul(i.hi, o.lo), mul(i.hi, o.hi)
	return Interval{
		lo: math.Min(math.Min(a, b), math.Min(c, d)),
		hi: math.Max(math.Max(a, b), math.Max(c, d)),
	}
}

// Return k * i.
func (i Interval) Scale(k float64) Interval {
	return i.Mul(Point(k))
}

// Return i + [-rad, rad].
func (i Interval) Inflate(rad float64) Interval {
	return i.Add(New(-rad, rad))
}

func (i Interval) String() string {
	if i.IsEmpty() {
		return "[ empty ]"
	}
	left, right := "[", "]"
	if math.IsInf(i.lo, -1) {
		left = "("
	}
	if math.IsInf(i.hi, 1) {
		right = ")"
	}
	return left + format(i.lo) + ", " + format(i.hi) + right
}

func mul(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a * b
}

// -oo + +oo only happens for the whole line, which stays the whole line.
func bounds(lo, hi float64) Interval {
	if math.IsNaN(lo) {
		lo = math.Inf(-1)
	}
	if math.IsNaN(hi) {
		hi = math.Inf(1)
	}
	return Interval{lo: lo, hi: hi}
}

func format(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "+oo"
	case math.IsInf(x, -1):
		return "-oo"
	default:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
}

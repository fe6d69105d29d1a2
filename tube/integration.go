package tube

import (
	"fmt"
	"math"

	"github.com/teichholz/go-tubes/interval"
)

// Return the primitive of t starting from initial: a tube with the same
// slicing enclosing every antiderivative of every trajectory of t.
func (t *Tube) Primitive(initial interval.Interval) *Tube {
	p := NewLike(t, interval.All())
	sum := initial
	*p.First().in = initial
	for s, ps := t.First(), p.First(); s != nil; s, ps = s.next, ps.next {
		dt := s.domain.Diam()
		ps.codomain = sum.Add(s.codomain.Mul(interval.New(0, dt)))
		sum = sum.Add(s.codomain.Scale(dt))
		*ps.out = sum
	}
	p.Update()
	return p
}

// Return the bounds of the lower and of the upper running integral of t
// from its domain start, over the time interval q.
func (t *Tube) PartialIntegral(q interval.Interval) (lower, upper interval.Interval) {
	if q.IsEmpty() || !q.IsSubset(t.Domain()) {
		panic(fmt.Sprintf("Invariance: integration domain %v outside of tube domain %v", q, t.Domain()))
	}
	t.computePartialPrimitive()

	iLb, iUb := t.root.index(q.Lb()), t.root.index(q.Ub())
	first, last := t.root.sliceAt(iLb), t.root.sliceAt(iUb)
	if last.leaf.pp[0].IsEmpty() || last.leaf.pp[1].IsEmpty() {
		// an empty slice up to q makes every running integral empty
		return interval.Empty(), interval.Empty()
	}
	lower, upper = interval.Empty(), interval.Empty()

	{
		d := first.domain
		prim := interval.Hull(first.leaf.pp[0].Lb(), first.leaf.pp[1].Ub())
		y := first.codomain
		ta1 := q.Lb() - d.Lb()
		ta2 := math.Min(q.Ub(), d.Ub()) - d.Lb()
		tb1 := d.Ub() - q.Lb()
		tb2 := d.Ub() - math.Min(q.Ub(), d.Ub())

		if y.Lb() < 0 {
			lower = lower.Union(interval.Hull(prim.Lb()-y.Lb()*tb2, prim.Lb()-y.Lb()*tb1))
		} else {
			lower = lower.Union(interval.Hull(prim.Lb()+y.Lb()*ta1, prim.Lb()+y.Lb()*ta2))
		}
		if y.Ub() < 0 {
			upper = upper.Union(interval.Hull(prim.Ub()+y.Ub()*ta2, prim.Ub()+y.Ub()*ta1))
		} else {
			upper = upper.Union(interval.Hull(prim.Ub()-y.Ub()*tb1, prim.Ub()-y.Ub()*tb2))
		}
	}

	if iUb-iLb > 1 {
		pp := t.root.primitiveOn(interval.New(first.domain.Ub(), last.domain.Lb()))
		lower = lower.Union(pp[0])
		upper = upper.Union(pp[1])
	}

	if iLb != iUb {
		d := last.domain
		prim := interval.Hull(last.leaf.pp[0].Lb(), last.leaf.pp[1].Ub())
		y := last.codomain
		ta := q.Ub() - d.Lb()
		tb1 := d.Diam()
		tb2 := d.Ub() - q.Ub()

		if y.Lb() < 0 {
			lower = lower.Union(interval.Hull(prim.Lb()-y.Lb()*tb2, prim.Lb()-y.Lb()*tb1))
		} else {
			lower = lower.Union(interval.Hull(prim.Lb(), prim.Lb()+y.Lb()*ta))
		}
		if y.Ub() < 0 {
			upper = upper.Union(interval.Hull(prim.Ub()+y.Ub()*ta, prim.Ub()))
		} else {
			upper = upper.Union(interval.Hull(prim.Ub()-y.Ub()*tb1, prim.Ub()-y.Ub()*tb2))
		}
	}
	return lower, upper
}

// Return an enclosure of the integral of t from its domain start to any
// time of q.
func (t *Tube) Integral(q interval.Interval) interval.Interval {
	lower, upper := t.PartialIntegral(q)
	if lower.IsEmpty() || upper.IsEmpty() {
		return interval.Empty()
	}
	return interval.Hull(lower.Lb(), upper.Ub())
}

// Return the running integral bounds from any time of q1 to any time of q2.
func (t *Tube) PartialIntegralBetween(q1, q2 interval.Interval) (lower, upper interval.Interval) {
	lo1, up1 := t.PartialIntegral(q1)
	lo2, up2 := t.PartialIntegral(q2)
	return lo2.Sub(lo1), up2.Sub(up1)
}

// Return an enclosure of the integral from any time of q1 to any time of q2.
func (t *Tube) IntegralBetween(q1, q2 interval.Interval) interval.Interval {
	lower, upper := t.PartialIntegralBetween(q1, q2)
	if lower.IsEmpty() || upper.IsEmpty() {
		return interval.Empty()
	}
	return interval.Hull(lower.Lb(), upper.Ub())
}

// Rebuild the partial primitive when the root is flagged. The leaf pass is
// a single forward scan; the merge pass unions children bottom-up.
func (t *Tube) computePartialPrimitive() {
	if !t.root.ppStale {
		return
	}
	sum := interval.Point(0)
	for s := t.First(); s != nil; s = s.next {
		dt := s.domain.Diam()
		y := s.codomain
		value := sum.Add(y.Mul(interval.New(0, dt)))
		if value.IsEmpty() {
			s.leaf.pp = [2]interval.Interval{interval.Empty(), interval.Empty()}
		} else {
			s.leaf.pp = [2]interval.Interval{
				interval.Hull(value.Lb(), value.Lb()+math.Abs(y.Lb()*dt)),
				interval.Hull(value.Ub()-math.Abs(y.Ub()*dt), value.Ub()),
			}
		}
		sum = sum.Add(y.Scale(dt))
	}
	t.root.mergePrimitive()
}

func (n *node) mergePrimitive() {
	if !n.isLeaf() {
		fork(n.size, n.first.mergePrimitive, n.second.mergePrimitive)
		n.pp = [2]interval.Interval{
			n.first.pp[0].Union(n.second.pp[0]),
			n.first.pp[1].Union(n.second.pp[1]),
		}
	}
	n.ppStale = false
}

// Partial primitive over the slices covered by the non-degenerate time
// interval q, whose bounds are slice bounds.
func (n *node) primitiveOn(q interval.Interval) [2]interval.Interval {
	inter := n.domain.Intersect(q)
	switch {
	case inter.IsEmpty():
		return [2]interval.Interval{interval.Empty(), interval.Empty()}
	case n.isLeaf() || q.IsUnbounded() || q.IsSuperset(n.domain):
		return n.pp
	}
	a := n.first.domain.Intersect(inter)
	b := n.second.domain.Intersect(inter)
	switch {
	case a.IsEmpty() || a.IsDegenerate():
		return n.second.primitiveOn(b)
	case b.IsEmpty() || b.IsDegenerate():
		return n.first.primitiveOn(a)
	}
	x, y := n.first.primitiveOn(a), n.second.primitiveOn(b)
	return [2]interval.Interval{x[0].Union(y[0]), x[1].Union(y[1])}
}

package tube

import "github.com/teichholz/go-tubes/interval"

// Widen t to the hull of t and o, slice by slice and gate by gate. Panics if
// the slicings differ.
func (t *Tube) UnionWith(o *Tube) {
	mustSameSlicing(t, o)
	o.root.synthesize()
	if t.root.sameShape(o.root) {
		t.root.synthesize()
		t.root.union(o.root)
		t.root.ppStale = true
		return
	}
	for a, b := t.First(), o.First(); a != nil; a, b = a.next, b.next {
		unionSlice(a, b)
	}
	t.Update()
}

// Narrow t to the intersection of t and o, slice by slice and gate by gate.
// Panics if the slicings differ.
func (t *Tube) IntersectWith(o *Tube) {
	mustSameSlicing(t, o)
	if t.root.sameShape(o.root) {
		t.root.intersect(o.root)
	} else {
		for a, b := t.First(), o.First(); a != nil; a, b = a.next, b.next {
			intersectSlice(a, b)
		}
	}
	t.Update()
}

// Pairwise union over two trees of the same shape. The cached aggregates
// are widened in place, which keeps them enclosing without a resynthesis.
func (n *node) union(o *node) {
	if n.isLeaf() {
		unionSlice(n.slice, o.slice)
	} else {
		fork(n.size,
			func() { n.first.union(o.first) },
			func() { n.second.union(o.second) },
		)
	}
	n.codomain = n.codomain.Union(o.codomain)
	if n.isLeaf() {
		n.empty = n.codomain.IsEmpty()
	} else {
		n.empty = n.first.empty || n.second.empty
	}
	n.lo = hull(n.lo, o.lo, false)
	n.hi = hull(n.hi, o.hi, true)
	n.ppStale = true
}

func (n *node) intersect(o *node) {
	if n.isLeaf() {
		intersectSlice(n.slice, o.slice)
		return
	}
	fork(n.size,
		func() { n.first.intersect(o.first) },
		func() { n.second.intersect(o.second) },
	)
}

// Each slice owns its output gate; the first one also owns its input gate.
func unionSlice(a, b *Slice) {
	a.codomain = a.codomain.Union(b.codomain)
	if a.prev == nil {
		*a.in = a.in.Union(*b.in)
	}
	*a.out = a.out.Union(*b.out)
}

func intersectSlice(a, b *Slice) {
	a.codomain = a.codomain.Intersect(b.codomain)
	if a.prev == nil {
		*a.in = a.in.Intersect(*b.in)
	}
	*a.out = a.out.Intersect(*b.out)
}

// Enclosed bounds of a union: the lower envelope of the union is the pointwise
// minimum of both lower envelopes, the upper one the pointwise maximum.
func hull(x, y interval.Interval, upper bool) interval.Interval {
	switch {
	case x.IsEmpty():
		return y
	case y.IsEmpty():
		return x
	case upper:
		return interval.New(max(x.Lb(), y.Lb()), max(x.Ub(), y.Ub()))
	default:
		return interval.New(min(x.Lb(), y.Lb()), min(x.Ub(), y.Ub()))
	}
}

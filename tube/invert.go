package tube

import "github.com/teichholz/go-tubes/interval"

// Return the hull of the times within the search domain at which the tube
// may take a value in y.
func (t *Tube) Invert(y, within interval.Interval) interval.Interval {
	t.root.synthesize()
	return t.root.invert(y, within)
}

// Return every maximal time interval within the search domain at which the
// tube may take a value in y, in time order.
func (t *Tube) InvertAll(y, within interval.Interval) []interval.Interval {
	t.root.synthesize()
	var parts []interval.Interval
	t.root.invertAll(y, within, func(part interval.Interval) {
		if part.IsEmpty() {
			return
		}
		if n := len(parts); n > 0 && parts[n-1].Ub() == part.Lb() {
			parts[n-1] = parts[n-1].Union(part)
			return
		}
		parts = append(parts, part)
	})
	return parts
}

func (n *node) invert(y, within interval.Interval) interval.Interval {
	inter := n.domain.Intersect(within)
	switch {
	case inter.IsEmpty() || !n.codomain.Intersects(y):
		return interval.Empty()
	case n.isLeaf():
		return inter
	}
	return n.first.invert(y, inter).Union(n.second.invert(y, inter))
}

// Report candidate parts to yield in time order. A subtree whose envelope
// bounds may both cross y is bisected; otherwise its whole domain is kept.
func (n *node) invertAll(y, within interval.Interval, yield func(interval.Interval)) {
	inter := n.domain.Intersect(within)
	if inter.IsEmpty() || !n.codomain.Intersects(y) {
		return
	}
	if !n.isLeaf() && (n.lo.Ub() > y.Ub() || n.hi.Lb() < y.Lb()) {
		n.first.invertAll(y, inter, yield)
		n.second.invertAll(y, inter, yield)
		return
	}
	yield(inter)
}

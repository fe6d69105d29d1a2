package tube

import (
	"fmt"

	"github.com/teichholz/go-tubes/interval"
)

// Assign y to every slice.
func (t *Tube) Set(y interval.Interval) {
	for s := t.First(); s != nil; s = s.next {
		s.Set(y)
	}
	t.root.synthesize()
}

// Assign y to the i-th slice.
func (t *Tube) SetSlice(y interval.Interval, i int) {
	t.Slice(i).Set(y)
	t.root.synthesize()
}

// Assign y to the value at time t, creating a gate there if needed.
func (t *Tube) SetAt(y interval.Interval, time float64) {
	t.Sample(time, interval.All())
	t.SetGate(time, y)
}

// Assign y over the time domain, cutting slices at its bounds when no gate
// exists there yet. Slices meeting the domain in a single point keep their
// value. With deferSynthesis, aggregates are left flagged for the next
// query or Update.
func (t *Tube) SetOn(y interval.Interval, domain interval.Interval, deferSynthesis bool) {
	domain = domain.Intersect(t.Domain())
	switch {
	case domain.IsEmpty():
		return
	case domain.IsDegenerate():
		t.SetAt(y, domain.Lb())
		return
	}
	t.Sample(domain.Lb(), interval.All())
	t.Sample(domain.Ub(), interval.All())
	for s := t.SliceAt(domain.Lb()); s != nil && s.domain.Lb() < domain.Ub(); s = s.next {
		if !s.domain.Intersect(domain).IsDegenerate() {
			s.Set(y)
		}
	}
	if !deferSynthesis {
		t.root.synthesize()
	}
}

// Assign the gate at time t. Panics if no slice starts or ends at t.
func (t *Tube) SetGate(time float64, gate interval.Interval) {
	s := t.SliceAt(time)
	switch time {
	case s.domain.Lb():
		s.SetInputGate(gate)
	case s.domain.Ub():
		s.SetOutputGate(gate)
	default:
		panic(fmt.Sprintf("Invariance: no gate at time %v", time))
	}
	t.root.synthesize()
}

// Cut the slice containing t in two at t. Both parts keep its envelope and
// the new gate is that envelope narrowed by gate. Reports whether a slice
// was cut: when a gate already exists at t it is only narrowed by gate.
func (t *Tube) Sample(time float64, gate interval.Interval) bool {
	s := t.SliceAt(time)
	switch time {
	case s.domain.Lb():
		s.SetInputGate(s.in.Intersect(gate))
		return false
	case s.domain.Ub():
		s.SetOutputGate(s.out.Intersect(gate))
		return false
	}
	gate = gate.Intersect(s.codomain)
	next := &Slice{
		domain:   interval.New(time, s.domain.Ub()),
		codomain: s.codomain,
		in:       &gate,
		out:      s.out,
		prev:     s,
		next:     s.next,
	}
	if s.next != nil {
		s.next.prev = next
	}
	s.next = next
	s.out = &gate
	s.domain = interval.New(s.domain.Lb(), time)

	leaf := s.leaf
	leaf.slice = nil
	leaf.first, leaf.second = newLeaf(s), newLeaf(next)
	leaf.first.parent, leaf.second.parent = leaf, leaf
	for n := leaf; n != nil; n = n.parent {
		n.size++
		if !n.isLeaf() {
			n.height = max(n.first.height, n.second.height) + 1
		}
	}
	leaf.invalidate()
	t.rebalanceIfNeeded()
	return true
}

// Cut slices at each time, see Sample. New gates hold the envelope.
func (t *Tube) SampleAll(times ...float64) {
	for _, time := range times {
		t.Sample(time, interval.All())
	}
}

// Merge the two slices sharing the gate at t into one, whose envelope is
// the hull of both. The information carried by the gate is lost: callers
// must have propagated it before.
func (t *Tube) RemoveGate(time float64) {
	b := t.SliceAt(time)
	a := b.prev
	if a == nil || time != b.domain.Lb() {
		panic(fmt.Sprintf("Invariance: no inner gate at time %v", time))
	}
	a.domain = interval.New(a.domain.Lb(), b.domain.Ub())
	a.codomain = a.codomain.Union(b.codomain)
	a.out = b.out
	a.next = b.next
	if b.next != nil {
		b.next.prev = a
	}
	t.rebuild()
}

// Widen every envelope and gate by [-rad, rad]. Envelopes are widened
// before gates so that the gates are not narrowed back.
func (t *Tube) Inflate(rad float64) {
	if rad < 0 {
		panic(fmt.Sprintf("Invariance: negative inflation radius %v", rad))
	}
	for s := t.First(); s != nil; s = s.next {
		s.SetEnvelope(s.codomain.Inflate(rad))
	}
	for s := t.First(); s != nil; s = s.next {
		if s.prev == nil {
			s.SetInputGate(s.in.Inflate(rad))
		}
		s.SetOutputGate(s.out.Inflate(rad))
	}
	t.root.synthesize()
}

func (t *Tube) rebalanceIfNeeded() {
	if !t.root.isBalanced() {
		t.rebuild()
	}
}

// Rebuild a balanced tree over the current slices.
func (t *Tube) rebuild() {
	var slices []*Slice
	for s := t.root.firstSlice(); s != nil; s = s.next {
		slices = append(slices, s)
	}
	t.root = build(slices)
	t.root.synthesize()
}

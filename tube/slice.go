package tube

import (
	"fmt"

	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/polygon"
)

// A Slice is one atomic segment of a tube: an envelope valid inside its time
// domain and two gates holding the values exactly at its bounds.
//
// Adjacent slices share the gate between them: the output gate of a slice is
// the very same value as the input gate of the next one. Neighbour links are
// plain traversal pointers and never own anything.
type Slice struct {
	domain   interval.Interval
	codomain interval.Interval
	in, out  *interval.Interval

	prev, next *Slice
	leaf       *node
}

// Return a detached slice over domain with every value set to value.
func NewSlice(domain, value interval.Interval) *Slice {
	mustValidDomain(domain)
	in, out := value, value
	return &Slice{domain: domain, codomain: value, in: &in, out: &out}
}

func (s *Slice) Domain() interval.Interval {
	return s.domain
}

// Return the envelope of the slice over the interior of its domain.
func (s *Slice) Codomain() interval.Interval {
	return s.codomain
}

func (s *Slice) InputGate() interval.Interval {
	return *s.in
}

func (s *Slice) OutputGate() interval.Interval {
	return *s.out
}

// Return the previous slice, or nil for the first one.
func (s *Slice) Prev() *Slice {
	return s.prev
}

// Return the next slice, or nil for the last one.
func (s *Slice) Next() *Slice {
	return s.next
}

// Assign y to the envelope. Each gate becomes y narrowed by the envelope of
// the neighbour on that side.
func (s *Slice) Set(y interval.Interval) {
	s.codomain = y
	*s.in = y
	if s.prev != nil {
		*s.in = s.in.Intersect(s.prev.codomain)
	}
	*s.out = y
	if s.next != nil {
		*s.out = s.out.Intersect(s.next.codomain)
	}
	s.touchAll()
}

// Assign y to the envelope and narrow both gates with it.
func (s *Slice) SetEnvelope(y interval.Interval) {
	s.codomain = y
	*s.in = s.in.Intersect(y)
	*s.out = s.out.Intersect(y)
	s.touchAll()
}

// Narrow the envelope with v. Reports whether it changed.
func (s *Slice) SetCodomain(v interval.Interval) bool {
	narrowed := s.codomain.Intersect(v)
	if narrowed.Equal(s.codomain) {
		return false
	}
	s.SetEnvelope(narrowed)
	return true
}

// Assign the input gate, narrowed by this envelope and the previous one.
func (s *Slice) SetInputGate(gate interval.Interval) {
	gate = gate.Intersect(s.codomain)
	if s.prev != nil {
		gate = gate.Intersect(s.prev.codomain)
	}
	*s.in = gate
	s.touch()
	if s.prev != nil {
		s.prev.touch()
	}
}

// Assign the output gate, narrowed by this envelope and the next one.
func (s *Slice) SetOutputGate(gate interval.Interval) {
	gate = gate.Intersect(s.codomain)
	if s.next != nil {
		gate = gate.Intersect(s.next.codomain)
	}
	*s.out = gate
	s.touch()
	if s.next != nil {
		s.next.touch()
	}
}

// Widen the envelope and both gates by [-rad, rad].
func (s *Slice) Inflate(rad float64) {
	if rad < 0 {
		panic(fmt.Sprintf("Invariance: negative inflation radius %v", rad))
	}
	s.SetEnvelope(s.codomain.Inflate(rad))
	s.SetInputGate(s.in.Inflate(rad))
	s.SetOutputGate(s.out.Inflate(rad))
}

// Return the value at time t. On a bound the gate is narrowed by the
// envelopes on both of its sides.
func (s *Slice) At(t float64) interval.Interval {
	switch {
	case !s.domain.Contains(t):
		panic(fmt.Sprintf("Invariance: time %v outside of slice domain %v", t, s.domain))
	case t == s.domain.Lb():
		v := s.in.Intersect(s.codomain)
		if s.prev != nil {
			v = v.Intersect(s.prev.codomain)
		}
		return v
	case t == s.domain.Ub():
		v := s.out.Intersect(s.codomain)
		if s.next != nil {
			v = v.Intersect(s.next.codomain)
		}
		return v
	default:
		return s.codomain
	}
}

// Return the ranges of the lower and upper bounds of the slice over t.
// Gates take part only when t reaches them.
func (s *Slice) EnclosedBounds(t interval.Interval) (lo, hi interval.Interval) {
	lo, hi = interval.Empty(), interval.Empty()
	inter := t.Intersect(s.domain)
	if inter.IsEmpty() {
		return
	}
	add := func(x interval.Interval) {
		if !x.IsEmpty() {
			lo = lo.Union(interval.Point(x.Lb()))
			hi = hi.Union(interval.Point(x.Ub()))
		}
	}
	if inter.Contains(s.domain.Lb()) {
		add(*s.in)
	}
	if inter.Contains(s.domain.Ub()) {
		add(*s.out)
	}
	if !inter.IsDegenerate() || (inter.Lb() != s.domain.Lb() && inter.Lb() != s.domain.Ub()) {
		add(s.codomain)
	}
	return
}

// Return duration × thickness, +oo if unbounded and 0 if empty.
func (s *Slice) Volume() float64 {
	if s.codomain.IsEmpty() {
		return 0
	}
	return s.domain.Diam() * s.codomain.Diam()
}

// Return the convex region of (time, value) pairs reachable by a trajectory
// that enters through the input gate, leaves through the output gate and
// has its derivative in v. The envelope does not bound the region. ok is
// false when a gate or v is unbounded, as the region cannot be represented
// then.
func (s *Slice) Polygon(v interval.Interval) (p polygon.Polygon, ok bool) {
	in, out := *s.in, *s.out
	if in.IsUnbounded() || out.IsUnbounded() || v.IsUnbounded() {
		return polygon.Polygon{}, false
	}
	if in.IsEmpty() || out.IsEmpty() || v.IsEmpty() {
		return polygon.Polygon{}, true
	}
	t0, t1 := s.domain.Lb(), s.domain.Ub()
	d := t1 - t0
	p = polygon.New(
		polygon.Point{X: t0, Y: in.Lb()},
		polygon.Point{X: t1, Y: in.Lb() + v.Lb()*d},
		polygon.Point{X: t1, Y: in.Ub() + v.Ub()*d},
		polygon.Point{X: t0, Y: in.Ub()},
	)
	// y >= out.lb - (t1 - t)·v.ub and y <= out.ub - (t1 - t)·v.lb
	p = p.ClipHalfPlane(v.Ub(), -1, v.Ub()*t1-out.Lb())
	return p.ClipHalfPlane(-v.Lb(), 1, out.Ub()-v.Lb()*t1), true
}

// Return the hull of the times within the search domain at which the slice
// may take a value in y. v bounds the derivative and tightens the answer
// through the slice polygon; pass interval.All() when it is unknown.
func (s *Slice) Invert(y, v, within interval.Interval) interval.Interval {
	inter := s.domain.Intersect(within)
	switch {
	case inter.IsEmpty():
		return interval.Empty()
	case inter.Equal(s.domain) && s.codomain.IsSubset(y):
		return s.domain
	case inter.IsDegenerate() && inter.Lb() == s.domain.Lb():
		if y.Intersects(*s.in) {
			return inter
		}
		return interval.Empty()
	case inter.IsDegenerate() && inter.Lb() == s.domain.Ub():
		if y.Intersects(*s.out) {
			return inter
		}
		return interval.Empty()
	}
	if p, ok := s.Polygon(v); ok {
		t, _ := p.ClipBox(inter, y.Intersect(s.codomain)).Bounds()
		return t
	}
	if s.codomain.Intersects(y) {
		return inter
	}
	return interval.Empty()
}

// Reports whether both slices have the same domain, envelope and gates.
func (s *Slice) Equal(o *Slice) bool {
	return s.domain.Equal(o.domain) && s.codomain.Equal(o.codomain) &&
		s.in.Equal(*o.in) && s.out.Equal(*o.out)
}

// Reports whether every value of s lies in o. Both must share a domain.
func (s *Slice) IsSubset(o *Slice) bool {
	mustSameDomain(s.domain, o.domain)
	return s.codomain.IsSubset(o.codomain) && s.in.IsSubset(*o.in) && s.out.IsSubset(*o.out)
}

func (s *Slice) String() string {
	return fmt.Sprintf("Slice %v ↦ (%v) %v (%v)", s.domain, *s.in, s.codomain, *s.out)
}

// Share the gate between a and b: the output gate of a, narrowed by the
// input gate of b, becomes the input gate of b.
func chain(a, b *Slice) {
	if a != nil {
		a.next = b
	}
	if b != nil {
		b.prev = a
	}
	if a != nil && b != nil {
		*a.out = a.out.Intersect(*b.in)
		b.in = a.out
	}
}

// Flag the tree path of the slice for resynthesis.
func (s *Slice) touch() {
	if s.leaf != nil {
		s.leaf.invalidate()
	}
}

// A changed envelope alters the gates seen from both neighbours.
func (s *Slice) touchAll() {
	s.touch()
	if s.prev != nil {
		s.prev.touch()
	}
	if s.next != nil {
		s.next.touch()
	}
}

func mustValidDomain(domain interval.Interval) {
	if domain.IsEmpty() || domain.IsUnbounded() || domain.IsDegenerate() {
		panic(fmt.Sprintf("Invariance: invalid time domain %v", domain))
	}
}

func mustSameDomain(a, b interval.Interval) {
	if !a.Equal(b) {
		panic(fmt.Sprintf("Invariance: time domains %v and %v differ", a, b))
	}
}

// The tube package provides hierarchical interval tubes: guaranteed
// enclosures of an unknown function of time.
//
// A Tube is a binary tree whose leaves are Slices. Every inner node caches
// aggregates of its subtree (envelope, enclosed bounds, partial primitive).
// Mutations only flag the affected tree path; the aggregates are
// recomputed lazily on the next query, or eagerly through Update.
//
// A Tube is not safe for concurrent use. Construction, cloning, full
// resynthesis, union and intersection process the two halves of large
// subtrees on separate goroutines internally.
package tube

import (
	"fmt"
	"math"

	"github.com/teichholz/go-tubes/interval"
)

type Tube struct {
	root *node
}

// Return a tube over domain cut into slices of the given width, every value
// set to value. The last slice ends exactly on the domain upper bound and
// may be shorter than width. A width that is not positive yields a single
// slice.
func New(domain interval.Interval, width float64, value interval.Interval) *Tube {
	mustValidDomain(domain)
	var domains []interval.Interval
	if width <= 0 || width >= domain.Diam() {
		domains = []interval.Interval{domain}
	} else {
		n := int(math.Ceil(domain.Diam()/width - 1e-9))
		domains = make([]interval.Interval, 0, n)
		for i := 0; i < n; i++ {
			lb := domain.Lb() + float64(i)*width
			ub := domain.Lb() + float64(i+1)*width
			if i == n-1 {
				ub = domain.Ub()
			}
			domains = append(domains, interval.New(lb, ub))
		}
	}
	values := make([]interval.Interval, len(domains))
	for i := range values {
		values[i] = value
	}
	return NewFromDomains(domains, values)
}

// Return a tube over contiguous, ordered slice domains with one value per
// slice. Each gate is the intersection of the values on both of its sides.
func NewFromDomains(domains, values []interval.Interval) *Tube {
	if len(domains) == 0 {
		panic("Invariance: a tube needs at least one slice")
	}
	if len(domains) != len(values) {
		panic(fmt.Sprintf("Invariance: %d slice domains for %d values", len(domains), len(values)))
	}
	slices := make([]*Slice, len(domains))
	for i, d := range domains {
		if i > 0 && domains[i-1].Ub() != d.Lb() {
			panic(fmt.Sprintf("Invariance: slice domains %v and %v are not contiguous", domains[i-1], d))
		}
		slices[i] = NewSlice(d, values[i])
		if i > 0 {
			chain(slices[i-1], slices[i])
		}
	}
	t := &Tube{root: build(slices)}
	t.root.synthesize()
	return t
}

// Return a tube enclosing a known function. f is an inclusion function: it
// maps a time interval to an enclosure of the function's values over it.
// Envelopes come from the slice domains, gates from the slice bounds, and
// every value is widened by rad.
func NewFromFunc(domain interval.Interval, width float64, f func(t interval.Interval) interval.Interval, rad float64) *Tube {
	t := New(domain, width, interval.All())
	for s := t.First(); s != nil; s = s.next {
		s.SetEnvelope(f(s.domain).Inflate(rad))
	}
	for s := t.First(); s != nil; s = s.next {
		if s.prev == nil {
			s.SetInputGate(f(interval.Point(s.domain.Lb())).Inflate(rad))
		}
		s.SetOutputGate(f(interval.Point(s.domain.Ub())).Inflate(rad))
	}
	t.root.synthesize()
	return t
}

// Return a tube with the slicing of other and every value set to value.
func NewLike(other *Tube, value interval.Interval) *Tube {
	domains := make([]interval.Interval, 0, other.Size())
	values := make([]interval.Interval, 0, other.Size())
	for s := other.First(); s != nil; s = s.next {
		domains = append(domains, s.domain)
		values = append(values, value)
	}
	return NewFromDomains(domains, values)
}

// Return a deep copy. Cached aggregates are kept.
func (t *Tube) Clone() *Tube {
	var slices []*Slice
	var prev *Slice
	for s := t.First(); s != nil; s = s.next {
		c := &Slice{domain: s.domain, codomain: s.codomain, prev: prev}
		if prev == nil {
			in := *s.in
			c.in = &in
		} else {
			prev.next = c
			c.in = prev.out
		}
		out := *s.out
		c.out = &out
		slices = append(slices, c)
		prev = c
	}
	return &Tube{root: t.root.clone(slices)}
}

func (t *Tube) Domain() interval.Interval {
	return t.root.domain
}

// Return the number of slices.
func (t *Tube) Size() int {
	return t.root.size
}

// Return the i-th slice.
func (t *Tube) Slice(i int) *Slice {
	if i < 0 || i >= t.root.size {
		panic(fmt.Sprintf("Invariance: slice index %d out of range [0, %d)", i, t.root.size))
	}
	return t.root.sliceAt(i)
}

func (t *Tube) First() *Slice {
	return t.root.firstSlice()
}

func (t *Tube) Last() *Slice {
	return t.root.lastSlice()
}

// Return the slices in time order.
func (t *Tube) Slices() []*Slice {
	slices := make([]*Slice, 0, t.root.size)
	t.root.walk(func(s *Slice) { slices = append(slices, s) })
	return slices
}

// Return the index of the slice containing t. A time on a gate maps to the
// later slice; the domain upper bound maps to the last one.
func (t *Tube) Index(time float64) int {
	t.mustContain(time)
	return t.root.index(time)
}

// Return the slice containing t, see Index.
func (t *Tube) SliceAt(time float64) *Slice {
	return t.root.sliceAt(t.Index(time))
}

// Return the envelope of the whole tube, empty as soon as one slice is.
func (t *Tube) Codomain() interval.Interval {
	t.root.synthesize()
	return t.root.envelope()
}

// Return the value at time t. On a gate, the gate is narrowed by the
// envelopes of both adjacent slices.
func (t *Tube) At(time float64) interval.Interval {
	t.mustContain(time)
	return t.root.at(time)
}

// Return an enclosure of the values over the time interval q.
func (t *Tube) Eval(q interval.Interval) interval.Interval {
	inter := t.Domain().Intersect(q)
	switch {
	case inter.IsEmpty():
		return interval.Empty()
	case inter.IsDegenerate():
		return t.At(inter.Lb())
	}
	t.root.synthesize()
	return t.root.eval(inter)
}

// Return the ranges taken by the lower and the upper envelope over q.
func (t *Tube) EnclosedBounds(q interval.Interval) (lo, hi interval.Interval) {
	t.root.synthesize()
	return t.root.enclosedBounds(q)
}

// Return the sum of the slice volumes.
func (t *Tube) Volume() float64 {
	vol := 0.0
	for s := t.First(); s != nil; s = s.next {
		vol += s.Volume()
	}
	return vol
}

// Reports whether some slice is empty, which makes the whole tube
// infeasible.
func (t *Tube) IsEmpty() bool {
	t.root.synthesize()
	return t.root.empty
}

// Return the largest envelope diameter and the index of the first slice
// reaching it.
func (t *Tube) MaxThickness() (thickness float64, index int) {
	i := 0
	for s := t.First(); s != nil; s = s.next {
		if d := s.codomain.Diam(); d > thickness {
			thickness, index = d, i
		}
		i++
	}
	return
}

// Reports whether both tubes share their slicing and all their values.
func (t *Tube) Equal(o *Tube) bool {
	if !SameSlicing(t, o) {
		return false
	}
	for a, b := t.First(), o.First(); a != nil; a, b = a.next, b.next {
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// Reports whether every value of t lies in o. Panics if the slicings differ.
func (t *Tube) IsSubset(o *Tube) bool {
	mustSameSlicing(t, o)
	for a, b := t.First(), o.First(); a != nil; a, b = a.next, b.next {
		if !a.IsSubset(b) {
			return false
		}
	}
	return true
}

// Reports whether a and b have the same domain and the same slice bounds.
func SameSlicing(a, b *Tube) bool {
	if a.Size() != b.Size() || !a.Domain().Equal(b.Domain()) {
		return false
	}
	for x, y := a.First(), b.First(); x != nil; x, y = x.next, y.next {
		if !x.domain.Equal(y.domain) {
			return false
		}
	}
	return true
}

// Recompute every aggregate from the leaves.
func (t *Tube) Update() {
	t.root.invalidateAll()
	t.root.synthesize()
}

// Recompute the aggregates on the path from slice i to the root.
func (t *Tube) UpdateAt(i int) {
	t.Slice(i).leaf.invalidate()
	t.root.synthesize()
}

func (t *Tube) String() string {
	return fmt.Sprintf("Tube %v ↦ %v, %d slices", t.Domain(), t.Codomain(), t.Size())
}

func (t *Tube) mustContain(time float64) {
	if !t.Domain().Contains(time) {
		panic(fmt.Sprintf("Invariance: time %v outside of tube domain %v", time, t.Domain()))
	}
}

func mustSameSlicing(a, b *Tube) {
	if !SameSlicing(a, b) {
		panic(fmt.Sprintf("Invariance: tubes %v and %v do not share their slicing", a.Domain(), b.Domain()))
	}
}

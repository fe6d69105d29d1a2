package tube

import (
	"fmt"

	"github.com/teichholz/go-tubes/interval"
	"golang.org/x/sync/errgroup"
)

const (
	maxDepth = 64
	// Subtrees with fewer slices are processed on the calling goroutine.
	forkThreshold = 512
)

// A node of the tube tree. A leaf holds exactly one slice; any other node
// owns two children whose domains are contiguous and cover its own.
//
// codomain, empty, lo, hi and pp are synthesized from the children and only
// valid while stale is false (pp while the root's ppStale is false).
type node struct {
	domain   interval.Interval
	codomain interval.Interval
	// some slice of the subtree is empty
	empty bool
	// enclosed bounds: ranges of the lower and upper envelope
	lo, hi interval.Interval
	// partial primitive: lower and upper running integral
	pp [2]interval.Interval

	size, height  int
	first, second *node
	parent        *node
	slice         *Slice

	stale   bool
	ppStale bool
}

func newLeaf(s *Slice) *node {
	n := &node{domain: s.domain, size: 1, slice: s, stale: true, ppStale: true}
	s.leaf = n
	return n
}

// Build a balanced tree over slices, which must be chained already. The
// first half holds ⌈n/2⌉ slices.
func build(slices []*Slice) *node {
	if len(slices) == 0 {
		panic("Invariance: a tube needs at least one slice")
	}
	if len(slices) == 1 {
		return newLeaf(slices[0])
	}
	mid := (len(slices) + 1) / 2
	var first, second *node
	fork(len(slices),
		func() { first = build(slices[:mid]) },
		func() { second = build(slices[mid:]) },
	)
	return join(first, second)
}

func join(first, second *node) *node {
	if first.domain.Ub() != second.domain.Lb() {
		panic(fmt.Sprintf("Invariance: domains %v and %v are not contiguous", first.domain, second.domain))
	}
	n := &node{
		domain:  first.domain.Union(second.domain),
		size:    first.size + second.size,
		height:  max(first.height, second.height) + 1,
		first:   first,
		second:  second,
		stale:   true,
		ppStale: true,
	}
	first.parent, second.parent = n, n
	return n
}

// Run a and b, concurrently when the subtree is large enough. Both must
// touch disjoint state.
func fork(size int, a, b func()) {
	if size < forkThreshold {
		a()
		b()
		return
	}
	var g errgroup.Group
	g.Go(func() error { a(); return nil })
	g.Go(func() error { b(); return nil })
	_ = g.Wait()
}

// Deep copy of the subtree over the already cloned slices of its range.
// Cached aggregates are carried over.
func (n *node) clone(slices []*Slice) *node {
	c := &node{
		domain:   n.domain,
		codomain: n.codomain,
		empty:    n.empty,
		lo:       n.lo,
		hi:       n.hi,
		pp:       n.pp,
		size:     n.size,
		height:   n.height,
		stale:    n.stale,
		ppStale:  n.ppStale,
	}
	if n.isLeaf() {
		c.slice = slices[0]
		c.slice.leaf = c
		return c
	}
	fork(n.size,
		func() { c.first = n.first.clone(slices[:n.first.size]) },
		func() { c.second = n.second.clone(slices[n.first.size:]) },
	)
	c.first.parent, c.second.parent = c, c
	return c
}

func (n *node) isLeaf() bool {
	return n.slice != nil
}

// Flag the path from n to the root. The root also drops its primitive.
func (n *node) invalidate() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.stale = true
		if cur.parent == nil {
			cur.ppStale = true
		}
	}
}

// Flag every node of the subtree.
func (n *node) invalidateAll() {
	n.stale = true
	n.ppStale = true
	if !n.isLeaf() {
		n.first.invalidateAll()
		n.second.invalidateAll()
	}
}

// Recompute the aggregates of every stale node, bottom-up. Clean subtrees
// are skipped, so a single flagged path costs one walk down that path.
func (n *node) synthesize() {
	if !n.stale {
		return
	}
	if n.isLeaf() {
		n.codomain = n.slice.codomain
		n.empty = n.codomain.IsEmpty()
		n.lo, n.hi = n.slice.EnclosedBounds(n.domain)
		n.stale = false
		return
	}
	fork(n.size, n.first.synthesize, n.second.synthesize)
	n.codomain = n.first.codomain.Union(n.second.codomain)
	n.empty = n.first.empty || n.second.empty
	n.lo = n.first.lo.Union(n.second.lo)
	n.hi = n.first.hi.Union(n.second.hi)
	n.stale = false
}

// Return the index of the slice containing t. A time on a gate belongs to
// the later slice, except for the upper bound of the whole tree.
func (n *node) index(t float64) int {
	if n.isLeaf() {
		return 0
	}
	if t < n.second.domain.Lb() {
		return n.first.index(t)
	}
	return n.first.size + n.second.index(t)
}

func (n *node) sliceAt(i int) *Slice {
	if n.isLeaf() {
		return n.slice
	}
	if i < n.first.size {
		return n.first.sliceAt(i)
	}
	return n.second.sliceAt(i - n.first.size)
}

func (n *node) firstSlice() *Slice {
	for !n.isLeaf() {
		n = n.first
	}
	return n.slice
}

func (n *node) lastSlice() *Slice {
	for !n.isLeaf() {
		n = n.second
	}
	return n.slice
}

// Value at a single time. n must be synthesized.
func (n *node) at(t float64) interval.Interval {
	return n.sliceAt(n.index(t)).At(t)
}

// Envelope of the whole subtree. An empty slice makes it empty.
func (n *node) envelope() interval.Interval {
	if n.empty {
		return interval.Empty()
	}
	return n.codomain
}

// Envelope over a non-empty query already intersected with n's domain.
func (n *node) eval(t interval.Interval) interval.Interval {
	if n.isLeaf() || t.IsUnbounded() || t.IsSuperset(n.domain) {
		return n.envelope()
	}
	a := n.first.domain.Intersect(t)
	b := n.second.domain.Intersect(t)
	switch {
	case a.IsDegenerate() && b.IsDegenerate():
		// the query is the gate between both children
		return n.first.eval(a).Intersect(n.second.eval(b))
	case a.IsEmpty() || a.IsDegenerate():
		return n.second.eval(b)
	case b.IsEmpty() || b.IsDegenerate():
		return n.first.eval(a)
	}
	x, y := n.first.eval(a), n.second.eval(b)
	if x.IsEmpty() || y.IsEmpty() {
		return interval.Empty()
	}
	return x.Union(y)
}

// Enclosed bounds over t. n must be synthesized.
func (n *node) enclosedBounds(t interval.Interval) (lo, hi interval.Interval) {
	inter := n.domain.Intersect(t)
	switch {
	case inter.IsEmpty():
		return interval.Empty(), interval.Empty()
	case inter.IsDegenerate():
		v := n.at(inter.Lb())
		if v.IsEmpty() {
			return interval.Empty(), interval.Empty()
		}
		return interval.Point(v.Lb()), interval.Point(v.Ub())
	case inter.Equal(n.domain):
		return n.lo, n.hi
	case n.isLeaf():
		return n.slice.EnclosedBounds(inter)
	}
	lo1, hi1 := n.first.enclosedBounds(inter)
	lo2, hi2 := n.second.enclosedBounds(inter)
	return lo1.Union(lo2), hi1.Union(hi2)
}

// Collect the leaves' slices in time order.
func (n *node) walk(callback func(*Slice)) {
	if n.isLeaf() {
		callback(n.slice)
	} else {
		n.first.walk(callback)
		n.second.walk(callback)
	}
}

func (n *node) isBalanced() bool {
	switch {
	case n.isLeaf():
		return true
	case n.height >= len(fibonacci)-2:
		return false
	default:
		return fibonacci[n.height+2] <= n.size
	}
}

func (n *node) sameShape(o *node) bool {
	if n.size != o.size || n.isLeaf() != o.isLeaf() {
		return false
	}
	if n.isLeaf() {
		return true
	}
	return n.first.sameShape(o.first) && n.second.sameShape(o.second)
}

var fibonacci []int

func init() {
	// The balance heuristic compares the number of slices of a subtree with
	// the Fibonacci number of its height.
	first, second := 0, 1
	for c := 0; c < maxDepth+3; c++ {
		next := c
		if c > 1 {
			next = first + second
			first, second = second, next
		}
		fibonacci = append(fibonacci, next)
	}
}

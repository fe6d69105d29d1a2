package ctc

import (
	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/tube"
)

// A Contractor narrows the given domains in place.
type Contractor func(doms ...Domain)

// Run c until no domain shrinks any more or maxIter passes were made. A
// maxIter that is not positive means no limit. Return the number of passes.
func Fixpoint(c Contractor, doms []Domain, maxIter int) int {
	passes := 0
	before := extents(doms)
	for maxIter <= 0 || passes < maxIter {
		c(doms...)
		passes++
		after := extents(doms)
		if !shrunk(before, after) {
			break
		}
		before = after
	}
	return passes
}

// Size of a domain: the number of unbounded components and the summed
// measure of the bounded ones. A volume stays infinite while one slice is
// unbounded, which would hide the progress on the others.
type extent struct {
	unbounded int
	measure   float64
}

func (e *extent) add(y interval.Interval, width float64) {
	switch {
	case y.IsEmpty():
	case y.IsUnbounded():
		e.unbounded++
	default:
		e.measure += width * y.Diam()
	}
}

func (e *extent) addTube(x *tube.Tube) {
	for _, s := range x.Slices() {
		e.add(s.Codomain(), s.Domain().Diam())
	}
}

func extents(doms []Domain) []extent {
	es := make([]extent, len(doms))
	for i, d := range doms {
		es[i] = d.extent()
	}
	return es
}

// Contractors never widen, so a component only leaves the unbounded count
// by becoming bounded.
func shrunk(before, after []extent) bool {
	for i := range before {
		b, a := before[i], after[i]
		if a.unbounded < b.unbounded || (a.unbounded == b.unbounded && a.measure < b.measure) {
			return true
		}
	}
	return false
}

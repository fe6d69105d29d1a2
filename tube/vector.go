package tube

import (
	"fmt"

	"github.com/teichholz/go-tubes/interval"
)

// A Vector holds one tube per dimension. All components share the same
// slicing.
type Vector struct {
	tubes []*Tube
}

// Return n tubes over domain, see New.
func NewVector(n int, domain interval.Interval, width float64, value interval.Interval) *Vector {
	if n <= 0 {
		panic(fmt.Sprintf("Invariance: tube vector dimension %d", n))
	}
	v := &Vector{tubes: make([]*Tube, n)}
	for i := range v.tubes {
		v.tubes[i] = New(domain, width, value)
	}
	return v
}

// Gather existing tubes into a vector. Panics if their slicings differ.
func NewVectorOf(tubes ...*Tube) *Vector {
	if len(tubes) == 0 {
		panic("Invariance: empty tube vector")
	}
	for _, t := range tubes[1:] {
		mustSameSlicing(tubes[0], t)
	}
	return &Vector{tubes: tubes}
}

func (v *Vector) Len() int {
	return len(v.tubes)
}

// Return the i-th component. The tube is shared, not copied.
func (v *Vector) At(i int) *Tube {
	if i < 0 || i >= len(v.tubes) {
		panic(fmt.Sprintf("Invariance: component %d out of range [0, %d)", i, len(v.tubes)))
	}
	return v.tubes[i]
}

func (v *Vector) Domain() interval.Interval {
	return v.tubes[0].Domain()
}

func (v *Vector) Volume() float64 {
	vol := 0.0
	for _, t := range v.tubes {
		vol += t.Volume()
	}
	return vol
}

func (v *Vector) Codomain() interval.Vector {
	res := make(interval.Vector, len(v.tubes))
	for i, t := range v.tubes {
		res[i] = t.Codomain()
	}
	return res
}

// Return the component values at time t.
func (v *Vector) Eval(t interval.Interval) interval.Vector {
	res := make(interval.Vector, len(v.tubes))
	for i, tube := range v.tubes {
		res[i] = tube.Eval(t)
	}
	return res
}

func (v *Vector) Clone() *Vector {
	c := &Vector{tubes: make([]*Tube, len(v.tubes))}
	for i, t := range v.tubes {
		c.tubes[i] = t.Clone()
	}
	return c
}

// Reports whether both vectors have the same dimension and every pair of
// components shares its slicing.
func SameVectorSlicing(a, b *Vector) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.tubes {
		if !SameSlicing(a.tubes[i], b.tubes[i]) {
			return false
		}
	}
	return true
}

package interval

import "strings"

// A Vector is a box: one interval per dimension.
type Vector []Interval

func NewVector(n int, value Interval) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = value
	}
	return v
}

// A box is empty as soon as one of its components is.
func (v Vector) IsEmpty() bool {
	for _, x := range v {
		if x.IsEmpty() {
			return true
		}
	}
	return false
}

func (v Vector) Intersect(o Vector) Vector {
	v.mustMatch(o)
	res := make(Vector, len(v))
	for i := range v {
		res[i] = v[i].Intersect(o[i])
	}
	return res
}

func (v Vector) Union(o Vector) Vector {
	v.mustMatch(o)
	res := make(Vector, len(v))
	for i := range v {
		res[i] = v[i].Union(o[i])
	}
	return res
}

// Return the product of the diameters, 0 for an empty box.
func (v Vector) Volume() float64 {
	if len(v) == 0 || v.IsEmpty() {
		return 0
	}
	vol := 1.0
	for _, x := range v {
		d := x.Diam()
		if d == 0 {
			return 0
		}
		vol *= d
	}
	return vol
}

func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if !v[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, " ; ") + ")"
}

func (v Vector) mustMatch(o Vector) {
	if len(v) != len(o) {
		panic("Invariance: vectors of different dimensions")
	}
}

package tube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teichholz/go-tubes/interval"
)

func TestSliceGatesAreShared(t *testing.T) {
	tube := New(iv(0, 3), 1, iv(-1, 1))
	a, b := tube.Slice(0), tube.Slice(1)
	assert.Same(t, a.Next(), b)
	assert.Same(t, b.Prev(), a)
	assert.Nil(t, a.Prev())
	assert.Nil(t, tube.Last().Next())

	a.SetOutputGate(iv(0, 0.5))
	assert.Equal(t, iv(0, 0.5), b.InputGate())
}

func TestSliceSet(t *testing.T) {
	tube := New(iv(0, 3), 1, iv(0, 10))
	s := tube.Slice(1)
	s.Set(iv(5, 20))
	assert.Equal(t, iv(5, 20), s.Codomain())
	assert.Equal(t, iv(5, 10), s.InputGate())
	assert.Equal(t, iv(5, 10), s.OutputGate())

	s.SetEnvelope(iv(6, 7))
	assert.Equal(t, iv(6, 7), s.InputGate())
	assert.Equal(t, iv(6, 7), s.OutputGate())

	assert.False(t, s.SetCodomain(iv(0, 100)))
	assert.True(t, s.SetCodomain(iv(6.5, 100)))
	assert.Equal(t, iv(6.5, 7), s.Codomain())
}

func TestSliceGateSettersIntersect(t *testing.T) {
	tube := NewFromDomains(
		[]interval.Interval{iv(0, 1), iv(1, 2)},
		[]interval.Interval{iv(0, 4), iv(2, 6)},
	)
	a := tube.First()
	a.SetOutputGate(interval.All())
	assert.Equal(t, iv(2, 4), a.OutputGate())
	a.SetInputGate(iv(-1, 1))
	assert.Equal(t, iv(0, 1), a.InputGate())
}

func TestSliceAt(t *testing.T) {
	tube := NewFromDomains(
		[]interval.Interval{iv(0, 1), iv(1, 2)},
		[]interval.Interval{iv(0, 4), iv(2, 6)},
	)
	a, b := tube.First(), tube.Last()
	assert.Equal(t, iv(0, 4), a.At(0))
	assert.Equal(t, iv(0, 4), a.At(0.5))
	assert.Equal(t, iv(2, 4), a.At(1))
	assert.Equal(t, iv(2, 4), b.At(1))
	assert.Equal(t, iv(2, 6), b.At(2))
	assert.PanicsWithValue(t, "Invariance: time 3 outside of slice domain [1, 2]", func() { b.At(3) })
}

func TestSliceVolume(t *testing.T) {
	s := NewSlice(iv(0, 2), iv(1, 4))
	assert.Equal(t, 6.0, s.Volume())
	s.SetEnvelope(interval.Empty())
	assert.Equal(t, 0.0, s.Volume())
	assert.True(t, math.IsInf(NewSlice(iv(0, 2), interval.All()).Volume(), 1))
}

func TestSliceInflate(t *testing.T) {
	s := NewSlice(iv(0, 1), iv(1, 2))
	s.SetInputGate(pt(1))
	s.Inflate(0.5)
	assert.Equal(t, iv(0.5, 2.5), s.Codomain())
	assert.Equal(t, iv(0.5, 1.5), s.InputGate())
	assert.Equal(t, iv(0.5, 2.5), s.OutputGate())
	assert.Panics(t, func() { s.Inflate(-1) })
}

func TestSliceEnclosedBounds(t *testing.T) {
	s := NewSlice(iv(0, 1), iv(0, 10))
	s.SetInputGate(iv(2, 3))
	s.SetOutputGate(iv(5, 6))

	lo, hi := s.EnclosedBounds(iv(0, 1))
	assertPair(t, iv(0, 5), iv(3, 10), lo, hi)

	lo, hi = s.EnclosedBounds(pt(0))
	assertPair(t, pt(2), pt(3), lo, hi)

	lo, hi = s.EnclosedBounds(pt(1))
	assertPair(t, pt(5), pt(6), lo, hi)

	lo, hi = s.EnclosedBounds(pt(0.5))
	assertPair(t, pt(0), pt(10), lo, hi)

	lo, hi = s.EnclosedBounds(iv(2, 3))
	assert.True(t, lo.IsEmpty())
	assert.True(t, hi.IsEmpty())
}

func TestSliceInvert(t *testing.T) {
	s := NewSlice(iv(0, 1), iv(0, 10))
	s.SetInputGate(iv(2, 3))
	s.SetOutputGate(iv(5, 6))
	all := interval.All()

	tests := []struct {
		name      string
		y, within interval.Interval
		want      interval.Interval
	}{
		{"input gate miss", iv(4, 6), pt(0), interval.Empty()},
		{"input gate hit", iv(2.5, 6), pt(0), pt(0)},
		{"output gate miss", iv(0, 1), pt(1), interval.Empty()},
		{"output gate hit", iv(2.5, 6), pt(1), pt(1)},
		{"interior", iv(2.5, 6), iv(0.2, 0.5), iv(0.2, 0.5)},
		{"outside", iv(11, 12), all, interval.Empty()},
		{"whole slice", iv(-1, 11), all, iv(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertInterval(t, tt.want, s.Invert(tt.y, all, tt.within))
		})
	}
}

func TestSliceInvertWithDerivative(t *testing.T) {
	// a trajectory from [0, 1] at t=0 to [2, 3] at t=2 with slope in [1, 1.5]
	s := NewSlice(iv(0, 2), iv(0, 3))
	s.SetInputGate(iv(0, 1))
	s.SetOutputGate(iv(2, 3))
	got := s.Invert(pt(0.5), pt(1), interval.All())
	assertInterval(t, iv(0, 0.5), got)
}

func TestSlicePolygon(t *testing.T) {
	s := NewSlice(iv(-1, 3), iv(-10, 20))
	s.SetInputGate(iv(-1, 2))
	s.SetOutputGate(iv(-2, 0))

	p, ok := s.Polygon(iv(-1, 1))
	assert.True(t, ok)
	x, y := p.Bounds()
	assertInterval(t, iv(-1, 3), x)
	assertInterval(t, iv(-3.5, 3), y)

	_, ok = s.Polygon(iv(-1, math.Inf(1)))
	assert.False(t, ok)

	p, ok = s.Polygon(interval.Empty())
	assert.True(t, ok)
	assert.True(t, p.IsEmpty())
}

func TestSliceEqualAndSubset(t *testing.T) {
	a := NewSlice(iv(0, 1), iv(0, 2))
	b := NewSlice(iv(0, 1), iv(-1, 3))
	assert.True(t, a.IsSubset(b))
	assert.False(t, b.IsSubset(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewSlice(iv(0, 1), iv(0, 2))))
	assert.Panics(t, func() { a.IsSubset(NewSlice(iv(0, 2), iv(0, 2))) })
}

func TestSliceString(t *testing.T) {
	s := NewSlice(iv(0, 1), iv(0, 2))
	s.SetOutputGate(pt(1))
	assert.Equal(t, "Slice [0, 1] ↦ ([0, 2]) [0, 2] ([1, 1])", s.String())
}

func TestNewSliceRejectsBadDomains(t *testing.T) {
	assert.PanicsWithValue(t, "Invariance: invalid time domain [1, 1]", func() { NewSlice(pt(1), pt(0)) })
	assert.Panics(t, func() { NewSlice(interval.All(), pt(0)) })
	assert.Panics(t, func() { NewSlice(interval.Empty(), pt(0)) })
}

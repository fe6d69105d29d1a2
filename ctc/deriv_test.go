package ctc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/tube"
)

const delta = 1e-9

func iv(lo, hi float64) interval.Interval { return interval.New(lo, hi) }

func pt(x float64) interval.Interval { return interval.Point(x) }

func assertInterval(t *testing.T, want, got interval.Interval, msgAndArgs ...any) {
	t.Helper()
	if want.IsEmpty() || got.IsEmpty() {
		assert.Equal(t, want.IsEmpty(), got.IsEmpty(), msgAndArgs...)
		return
	}
	assert.InDelta(t, want.Lb(), got.Lb(), delta, msgAndArgs...)
	assert.InDelta(t, want.Ub(), got.Ub(), delta, msgAndArgs...)
}

func assertSlice(t *testing.T, s *tube.Slice, in, env, out interval.Interval) {
	t.Helper()
	assertInterval(t, in, s.InputGate(), "input gate")
	assertInterval(t, env, s.Codomain(), "envelope")
	assertInterval(t, out, s.OutputGate(), "output gate")
}

func newSlice(env, in, out interval.Interval) *tube.Slice {
	s := tube.NewSlice(iv(-1, 3), env)
	s.SetInputGate(in)
	s.SetOutputGate(out)
	return s
}

func derivative(v interval.Interval) *tube.Slice {
	return tube.NewSlice(iv(-1, 3), v)
}

func TestContractSlice(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name                     string
		env, in, out             interval.Interval
		v                        interval.Interval
		changed                  bool
		wantIn, wantEnv, wantOut interval.Interval
	}{
		{"polygon", iv(-10, 20), iv(-1, 2), iv(-2, 0), iv(-1, 1), true,
			iv(-1, 2), iv(-3.5, 3), iv(-2, 0)},
		{"constant derivative", iv(-5, 3), iv(-1, 3), iv(-5, 0.5), pt(-1), true,
			iv(-1, 3), iv(-5, 3), iv(-5, -1)},
		{"degenerate gates", iv(-5, 3), iv(1, 3), iv(-4, -3), iv(-1, 1), true,
			pt(1), iv(-3, 1), pt(-3)},
		{"empty derivative", iv(-5, 3), iv(-1, 3), iv(-5, 0.5), interval.Empty(), true,
			interval.Empty(), interval.Empty(), interval.Empty()},
		{"empty output gate", iv(-5, 3), iv(-1, 3), interval.Empty(), iv(-1, 1), true,
			interval.Empty(), interval.Empty(), interval.Empty()},
		{"unbounded slice", interval.All(), interval.All(), interval.All(), iv(0, 1), false,
			interval.All(), interval.All(), interval.All()},
		{"derivative unbounded below", interval.All(), iv(-1, 2), iv(-2, 0), iv(-inf, 1), true,
			iv(-1, 2), iv(-6, 6), iv(-2, 0)},
		{"derivative unbounded above", interval.All(), iv(-1, 2), iv(-2, 0), iv(-1, inf), true,
			iv(-1, 2), iv(-5, 4), iv(-2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newSlice(tt.env, tt.in, tt.out)
			v := derivative(tt.v)
			d := NewDeriv()

			assert.Equal(t, tt.changed, d.ContractSlice(x, v))
			assertSlice(t, x, tt.wantIn, tt.wantEnv, tt.wantOut)
			assert.Equal(t, tt.v, v.Codomain())

			assert.False(t, d.ContractSlice(x, v), "second contraction")
		})
	}
}

func TestContractSliceFast(t *testing.T) {
	x := newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
	v := derivative(iv(-1, 1))
	assert.True(t, NewDeriv(Fast()).ContractSlice(x, v))
	assertSlice(t, x, iv(-1, 2), iv(-5, 4), iv(-2, 0))

	x = newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
	assert.True(t, NewDeriv(Fast(), WithPropagation(Forward)).ContractSlice(x, v))
	assertSlice(t, x, iv(-1, 2), iv(-5, 6), iv(-2, 0))

	x = newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
	assert.True(t, NewDeriv(Fast(), WithPropagation(Backward)).ContractSlice(x, v))
	assertSlice(t, x, iv(-1, 2), iv(-6, 4), iv(-2, 0))
}

func TestOptimalContractsAtLeastAsFast(t *testing.T) {
	for _, v := range []interval.Interval{iv(-1, 1), iv(0.5, 2), pt(-0.5), iv(-3, -1)} {
		optimal := newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
		fast := newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
		NewDeriv().ContractSlice(optimal, derivative(v))
		NewDeriv(Fast()).ContractSlice(fast, derivative(v))
		assert.True(t, optimal.IsSubset(fast), "derivative %v: %v not within %v", v, optimal, fast)
	}
}

func TestContractGates(t *testing.T) {
	x := newSlice(iv(-10, 20), iv(-1, 2), iv(-8, 10))
	v := derivative(iv(-1, 1))
	d := NewDeriv()
	assert.True(t, d.ContractGates(x, v))
	assertSlice(t, x, iv(-1, 2), iv(-10, 20), iv(-5, 6))
	assert.False(t, d.ContractGates(x, v))

	x = newSlice(iv(-10, 20), iv(-1, 2), iv(-8, 10))
	assert.True(t, d.ContractGates(x, derivative(interval.Empty())))
	assert.True(t, x.InputGate().IsEmpty())
	assert.True(t, x.OutputGate().IsEmpty())
}

func TestContractSliceOutsideRestriction(t *testing.T) {
	x := newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
	v := derivative(iv(-1, 1))
	assert.False(t, NewDeriv(WithRestriction(iv(5, 6))).ContractSlice(x, v))
	assertSlice(t, x, iv(-1, 2), iv(-10, 20), iv(-2, 0))

	assert.True(t, NewDeriv(WithRestriction(pt(3))).ContractSlice(x, v))
}

func TestContractSliceDomainMismatchPanics(t *testing.T) {
	x := newSlice(iv(-10, 20), iv(-1, 2), iv(-2, 0))
	v := tube.NewSlice(iv(0, 3), iv(-1, 1))
	assert.PanicsWithValue(t, "Invariance: slice domains [-1, 3] and [0, 3] differ", func() {
		NewDeriv().ContractSlice(x, v)
	})
}

func TestNewDerivRequiresDirection(t *testing.T) {
	assert.Panics(t, func() { NewDeriv(WithPropagation(0)) })
	d := NewDeriv()
	assert.Equal(t, Both, d.Propagation())
	assert.Equal(t, "optimal", d.Mode())
	assert.Equal(t, "fast", NewDeriv(Fast()).Mode())
}

func want(xs ...interval.Interval) []interval.Interval { return xs }

func assertTube(t *testing.T, want []interval.Interval, x *tube.Tube) {
	t.Helper()
	require.Equal(t, len(want), x.Size())
	for i, w := range want {
		assertInterval(t, w, x.Slice(i).Codomain(), "slice %d", i)
	}
}

func TestContractForward(t *testing.T) {
	for _, opts := range [][]Option{
		{WithPropagation(Forward)},
		{WithPropagation(Forward), Fast()},
		{},
	} {
		x := tube.New(iv(0, 6), 1, interval.All())
		x.SetSlice(iv(-1, 1), 0)
		v := tube.New(iv(0, 6), 1, iv(-0.5, 1))

		d := NewDeriv(opts...)
		assert.True(t, d.Contract(x, v))
		assertTube(t, want(iv(-1, 1), iv(-1.5, 2), iv(-2, 3), iv(-2.5, 4), iv(-3, 5), iv(-3.5, 6)), x)
		assert.False(t, d.Contract(x, v))
		assertInterval(t, iv(-3.5, 6), x.Codomain())
	}
}

func TestContractBackward(t *testing.T) {
	for _, opts := range [][]Option{
		{WithPropagation(Backward)},
		{WithPropagation(Backward), Fast()},
		{},
	} {
		x := tube.New(iv(0, 6), 1, interval.All())
		x.SetSlice(iv(-1, 1), 5)
		v := tube.New(iv(0, 6), 1, iv(-1, 0.5))

		d := NewDeriv(opts...)
		assert.True(t, d.Contract(x, v))
		assertTube(t, want(iv(-3.5, 6), iv(-3, 5), iv(-2.5, 4), iv(-2, 3), iv(-1.5, 2), iv(-1, 1)), x)
		assert.False(t, d.Contract(x, v))
	}
}

func TestContractForwardIgnoresLaterBounds(t *testing.T) {
	x := tube.New(iv(0, 6), 1, interval.All())
	x.SetSlice(iv(-1, 1), 5)
	v := tube.New(iv(0, 6), 1, iv(-1, 0.5))
	assert.False(t, NewDeriv(WithPropagation(Forward), Fast()).Contract(x, v))
	assert.True(t, x.Slice(0).Codomain().IsUnbounded())
}

func TestOptimalForwardNarrowsInputGates(t *testing.T) {
	newX := func() *tube.Tube {
		x := tube.New(iv(0, 1), 1, iv(-10, 10))
		x.SetGate(1, pt(0))
		return x
	}
	v := tube.New(iv(0, 1), 1, iv(-1, 1))

	x := newX()
	assert.True(t, NewDeriv(WithPropagation(Forward)).Contract(x, v))
	assertInterval(t, iv(-1, 1), x.First().InputGate())
	assertInterval(t, pt(0), x.First().OutputGate())

	x = newX()
	assert.False(t, NewDeriv(WithPropagation(Forward), Fast()).Contract(x, v))
	assertInterval(t, iv(-10, 10), x.First().InputGate())
}

func TestContractBothWays(t *testing.T) {
	x := tube.New(iv(0, 6), 1, interval.All())
	x.SetSlice(iv(-1, 1), 5)
	x.SetSlice(iv(-1, 1), 0)
	v := tube.New(iv(0, 6), 1, iv(-1, 0.5))
	vBefore := v.Clone()

	d := NewDeriv()
	assert.True(t, d.Contract(x, v))
	assertTube(t, want(iv(-1, 1), iv(-2, 1.5), iv(-7.0/3, 2), iv(-2, 7.0/3), iv(-1.5, 2), iv(-1, 1)), x)
	assert.False(t, d.Contract(x, v))
	assert.True(t, v.Equal(vBefore))
}

func TestContractGatedPath(t *testing.T) {
	x := tube.New(iv(0, 5), 1, interval.All())
	x.SetAt(pt(0), 0)
	x.SetAt(pt(4), 5)
	v := tube.NewFromDomains(
		want(iv(0, 1), iv(1, 2), iv(2, 3), iv(3, 4), iv(4, 5)),
		want(iv(1, 2), iv(0.5, 1.5), iv(0, 0.5), pt(0), iv(-0.5, 0.5)))

	d := NewDeriv()
	assert.True(t, d.Contract(x, v))
	assertTube(t, want(iv(0, 2), iv(1.5, 3.5), iv(3, 4), iv(3.5, 4), iv(3.5, 4.25)), x)
	assertInterval(t, iv(0, 4.25), x.Codomain())
	assertInterval(t, iv(1.5, 2), x.At(1))
	assertInterval(t, iv(3, 3.5), x.At(2))
	assertInterval(t, pt(4), x.At(5))
	assert.False(t, d.Contract(x, v))
}

func TestContractRestriction(t *testing.T) {
	x := tube.New(iv(0, 6), 1, interval.All())
	x.SetSlice(iv(-1, 1), 0)
	v := tube.New(iv(0, 6), 1, iv(-0.5, 1))

	NewDeriv(WithPropagation(Forward), WithRestriction(iv(0, 2))).Contract(x, v)
	assertInterval(t, iv(-1.5, 2), x.Slice(1).Codomain())
	assertInterval(t, iv(-2, 3), x.Slice(2).Codomain())
	assert.True(t, x.Slice(3).Codomain().IsUnbounded())
}

func TestContractEmptiesEverythingAfterAnEmptySlice(t *testing.T) {
	x := tube.New(iv(0, 4), 1, iv(-1, 1))
	v := tube.New(iv(0, 4), 1, iv(-1, 1))
	v.SetSlice(interval.Empty(), 2)

	NewDeriv().Contract(x, v)
	assert.True(t, x.Slice(2).Codomain().IsEmpty())
	assert.True(t, x.Slice(1).OutputGate().IsEmpty())
	assert.True(t, x.IsEmpty())
}

func TestContractKeepsGroundTruth(t *testing.T) {
	truth := func(t float64) float64 { return t * t / 2 }
	x := tube.New(iv(0, 10), 0.1, iv(-100, 100))
	x.SetAt(pt(0), 0)
	v := tube.NewFromFunc(iv(0, 10), 0.1, func(t interval.Interval) interval.Interval { return t }, 0)
	require.True(t, tube.SameSlicing(x, v))

	before := x.Volume()
	assert.True(t, NewDeriv().Contract(x, v))
	assert.Less(t, x.Volume(), before)
	for i := 0; i <= 1000; i++ {
		time := float64(i) / 100
		assert.True(t, x.At(time).Contains(truth(time)), "x(%v) = %v not in %v", time, truth(time), x.At(time))
	}
}

func TestContractRequiresSameSlicing(t *testing.T) {
	x := tube.New(iv(0, 6), 1, interval.All())
	v := tube.New(iv(0, 6), 0.5, interval.All())
	assert.Panics(t, func() { NewDeriv().Contract(x, v) })
}

func TestContractVector(t *testing.T) {
	x := tube.NewVector(2, iv(0, 6), 1, interval.All())
	x.At(0).SetSlice(iv(-1, 1), 0)
	x.At(1).SetSlice(iv(-1, 1), 5)
	v := tube.NewVectorOf(tube.New(iv(0, 6), 1, iv(-0.5, 1)), tube.New(iv(0, 6), 1, iv(-1, 0.5)))

	d := NewDeriv()
	assert.True(t, d.ContractVector(x, v))
	assertInterval(t, iv(-3.5, 6), x.At(0).Slice(5).Codomain())
	assertInterval(t, iv(-3.5, 6), x.At(1).Slice(0).Codomain())
	assert.False(t, d.ContractVector(x, v))

	assert.Panics(t, func() { d.ContractVector(x, tube.NewVector(3, iv(0, 6), 1, interval.All())) })
}

func TestDerivContractor(t *testing.T) {
	x := tube.New(iv(0, 6), 1, interval.All())
	x.SetSlice(iv(-1, 1), 0)
	v := tube.New(iv(0, 6), 1, iv(-0.5, 1))

	c := NewDeriv().Contractor()
	c(Tube(x), Tube(v))
	assertInterval(t, iv(-3.5, 6), x.Codomain())

	xs := tube.NewVectorOf(tube.New(iv(0, 6), 1, interval.All()))
	xs.At(0).SetSlice(iv(-1, 1), 0)
	c(TubeVector(xs), TubeVector(tube.NewVectorOf(v)))
	assertInterval(t, iv(-3.5, 6), xs.At(0).Codomain())

	a := iv(0, 1)
	assert.PanicsWithValue(t,
		"Invariance: derivative contractor expects (tube, tube) or (tube vector, tube vector), got [tube scalar]",
		func() { c(Tube(x), Scalar(&a)) })
	assert.Panics(t, func() { c(Tube(x)) })
}

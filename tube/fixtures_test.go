package tube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teichholz/go-tubes/interval"
)

const delta = 1e-9

func iv(lo, hi float64) interval.Interval {
	return interval.New(lo, hi)
}

func pt(x float64) interval.Interval {
	return interval.Point(x)
}

func assertInterval(t *testing.T, want, got interval.Interval, msgAndArgs ...interface{}) {
	t.Helper()
	if want.IsEmpty() || got.IsEmpty() {
		assert.True(t, want.IsEmpty() && got.IsEmpty(), append([]interface{}{"expected %v, got %v", want, got}, msgAndArgs...)...)
		return
	}
	assert.InDelta(t, want.Lb(), got.Lb(), delta, msgAndArgs...)
	assert.InDelta(t, want.Ub(), got.Ub(), delta, msgAndArgs...)
}

func assertPair(t *testing.T, wantLo, wantHi, gotLo, gotHi interval.Interval, msgAndArgs ...interface{}) {
	t.Helper()
	assertInterval(t, wantLo, gotLo, msgAndArgs...)
	assertInterval(t, wantHi, gotHi, msgAndArgs...)
}

// [0, 46] sliced every 1, one envelope per slice.
func tubeTest1() *Tube {
	values := []interval.Interval{
		iv(4, 8), iv(2, 7), iv(1, 6), iv(-4, 4), iv(-7, -1),
		iv(-9, -5), iv(-10, -6), iv(-11, -7), iv(-10, -6), iv(-9, -4),
		iv(-8, -5), iv(-7, -4), iv(-6, -2), iv(-5, -1), iv(-5, 3),
		iv(-2, 4), iv(0, 6), iv(2, 7), iv(4, 8), iv(6, 9),
		iv(7, 10), iv(8, 11), iv(9, 12), iv(8, 13), iv(7, 12),
		iv(5, 11), iv(3, 10), iv(4, 9), iv(5, 8), iv(4, 7),
		iv(3, 6), iv(3, 5), iv(2, 5), iv(2, 5), iv(1, 5),
		iv(2, 4), iv(1, 4), iv(0, 4), iv(-1, 3), iv(-1, 3),
		iv(-1, 4), iv(0, 5), iv(1, 6), iv(0, 5), iv(-1, 4),
		iv(-1, 3),
	}
	tube := New(iv(0, 46), 1, interval.All())
	for i, v := range values {
		tube.SetSlice(v, i)
	}
	return tube
}

// tubeTest1 with slice 14 narrowed afterwards.
func tubeTest1Updated() *Tube {
	tube := tubeTest1()
	tube.SetSlice(iv(-4, 2), 14)
	return tube
}

// Same values as tubeTest1Updated over slices of width 0.5.
func tubeTest1Half() *Tube {
	ref := tubeTest1Updated()
	tube := New(iv(0, 46), 0.5, interval.All())
	for i := 0; i < 46; i++ {
		tube.SetOn(ref.Slice(i).Codomain(), iv(float64(i), float64(i+1)), true)
	}
	tube.Update()
	return tube
}

func tubeTest3() *Tube {
	return NewFromDomains(
		[]interval.Interval{iv(0, 1), iv(1, 2), iv(2, 3), iv(3, 4), iv(4, 5)},
		[]interval.Interval{iv(1, 3), iv(0, 2), iv(-1, 1), iv(-2, 0), iv(-3, -1)},
	)
}

func tubeTest4(width float64) *Tube {
	tube := New(iv(0, 21), width, interval.All())
	tube.SetOn(iv(1, 2), iv(0, 9), false)
	tube.SetOn(iv(0.5, 1.5), iv(9, 10), false)
	tube.SetOn(iv(-1, 1), iv(10, 11), false)
	tube.SetOn(iv(-1.5, -0.5), iv(11, 12), false)
	tube.SetOn(iv(-1, 1), iv(12, 13), false)
	tube.SetOn(iv(0.5, 1.5), iv(13, 14), false)
	tube.SetOn(iv(1, 2), iv(14, 21), false)
	return tube
}

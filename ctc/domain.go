// The ctc package holds contractors: operators that narrow interval-valued
// domains to enforce a constraint, never widening them.
package ctc

import (
	"fmt"

	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/tube"
)

type Kind int

const (
	KindScalar Kind = iota
	KindVector
	KindTube
	KindTubeVector
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindTube:
		return "tube"
	case KindTubeVector:
		return "tube vector"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Domain is one of the values a contractor may narrow. It refers to the
// caller's value, so a contraction is visible through the original
// variable.
type Domain struct {
	kind   Kind
	scalar *interval.Interval
	vector interval.Vector
	tube   *tube.Tube
	tubes  *tube.Vector
}

func Scalar(i *interval.Interval) Domain {
	return Domain{kind: KindScalar, scalar: i}
}

func Vector(v interval.Vector) Domain {
	return Domain{kind: KindVector, vector: v}
}

func Tube(t *tube.Tube) Domain {
	return Domain{kind: KindTube, tube: t}
}

func TubeVector(v *tube.Vector) Domain {
	return Domain{kind: KindTubeVector, tubes: v}
}

func (d Domain) Kind() Kind {
	return d.kind
}

func (d Domain) Scalar() *interval.Interval {
	d.mustBe(KindScalar)
	return d.scalar
}

func (d Domain) Vector() interval.Vector {
	d.mustBe(KindVector)
	return d.vector
}

func (d Domain) Tube() *tube.Tube {
	d.mustBe(KindTube)
	return d.tube
}

func (d Domain) TubeVector() *tube.Vector {
	d.mustBe(KindTubeVector)
	return d.tubes
}

// Return the diameter of a scalar, or the volume of the other kinds.
func (d Domain) Volume() float64 {
	switch d.kind {
	case KindScalar:
		return d.scalar.Diam()
	case KindVector:
		return d.vector.Volume()
	case KindTube:
		return d.tube.Volume()
	default:
		return d.tubes.Volume()
	}
}

func (d Domain) extent() extent {
	var e extent
	switch d.kind {
	case KindScalar:
		e.add(*d.scalar, 1)
	case KindVector:
		for _, y := range d.vector {
			e.add(y, 1)
		}
	case KindTube:
		e.addTube(d.tube)
	default:
		for i := 0; i < d.tubes.Len(); i++ {
			e.addTube(d.tubes.At(i))
		}
	}
	return e
}

func (d Domain) String() string {
	switch d.kind {
	case KindScalar:
		return d.scalar.String()
	case KindVector:
		return d.vector.String()
	case KindTube:
		return d.tube.String()
	default:
		return fmt.Sprintf("TubeVector(%d) %v", d.tubes.Len(), d.tubes.Domain())
	}
}

func (d Domain) mustBe(k Kind) {
	if d.kind != k {
		panic(fmt.Sprintf("Invariance: %v domain accessed as %v", d.kind, k))
	}
}

func kinds(doms []Domain) []Kind {
	ks := make([]Kind, len(doms))
	for i, d := range doms {
		ks[i] = d.kind
	}
	return ks
}

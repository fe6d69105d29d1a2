package ctc

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/tube"
)

type Propagation uint8

const (
	Forward Propagation = 1 << iota
	Backward
	Both = Forward | Backward
)

func (p Propagation) String() string {
	switch p {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Propagation(%d)", uint8(p))
}

// Deriv contracts a tube x with respect to the constraint x' = v, given a
// tube v enclosing the derivative. v is only read.
//
// In optimal mode the envelope of each slice is narrowed to the range of
// the polygon swept between its gates, which is the tightest enclosure
// obtainable from the gates and the derivative bounds. Slices whose gates
// or derivative are unbounded fall back to the fast mode formulas.
type Deriv struct {
	propagation Propagation
	restriction interval.Interval
	fast        bool
	log         *slog.Logger
}

type Option func(*Deriv)

// Set the directions of the sweeps over the slices. In optimal mode each
// slice still narrows both of its gates from each other, whatever the
// direction: a forward-only contractor may narrow input gates too. Combine
// with Fast to restrict a sweep to its own direction.
func WithPropagation(p Propagation) Option {
	return func(d *Deriv) { d.propagation = p }
}

// Only slices whose domain meets t are contracted.
func WithRestriction(t interval.Interval) Option {
	return func(d *Deriv) { d.restriction = t }
}

func Fast() Option {
	return func(d *Deriv) { d.fast = true }
}

func WithLogger(log *slog.Logger) Option {
	return func(d *Deriv) { d.log = log }
}

func NewDeriv(opts ...Option) *Deriv {
	d := &Deriv{propagation: Both, restriction: interval.All(), log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	if d.propagation&Both == 0 {
		panic(fmt.Sprintf("Invariance: no propagation direction in %v", d.propagation))
	}
	return d
}

func (d *Deriv) Propagation() Propagation {
	return d.propagation
}

func (d *Deriv) Mode() string {
	if d.fast {
		return "fast"
	}
	return "optimal"
}

// Contract x slice by slice, first sweeping forward in time then backward,
// as enabled by the propagation. Reports whether x changed.
func (d *Deriv) Contract(x, v *tube.Tube) bool {
	if !tube.SameSlicing(x, v) {
		panic(fmt.Sprintf("Invariance: tubes %v and %v do not share their slicing", x.Domain(), v.Domain()))
	}
	start := time.Now()
	before := x.Volume()

	changed, emptied := false, 0
	visit := func(xs, vs *tube.Slice, dir Propagation) {
		c, e := d.contractSlice(xs, vs, dir)
		changed = changed || c
		if e {
			emptied++
		}
	}
	if d.propagation&Forward != 0 {
		for xs, vs := x.First(), v.First(); xs != nil; xs, vs = xs.Next(), vs.Next() {
			visit(xs, vs, Forward)
		}
	}
	if d.propagation&Backward != 0 {
		for xs, vs := x.Last(), v.Last(); xs != nil; xs, vs = xs.Prev(), vs.Prev() {
			visit(xs, vs, Backward)
		}
	}

	after := x.Volume()
	if after > before {
		panic(fmt.Sprintf("Invariance: contraction increased the volume from %v to %v", before, after))
	}

	passes := 0
	if d.propagation&Forward != 0 {
		passes++
	}
	if d.propagation&Backward != 0 {
		passes++
	}
	contractionDuration.WithLabelValues(d.Mode()).Observe(time.Since(start).Seconds())
	slicesContracted.WithLabelValues(d.Mode()).Add(float64(passes * x.Size()))
	slicesEmptied.Add(float64(emptied))

	d.log.Debug("derivative contraction",
		"mode", d.Mode(),
		"propagation", d.propagation,
		"slices", x.Size(),
		"changed", changed,
		"emptied", emptied,
		"volume", after,
		"elapsed", time.Since(start))
	return changed
}

// Contract each component of x with the matching component of v.
func (d *Deriv) ContractVector(x, v *tube.Vector) bool {
	if x.Len() != v.Len() {
		panic(fmt.Sprintf("Invariance: tube vectors of sizes %d and %d", x.Len(), v.Len()))
	}
	changed := false
	for i := 0; i < x.Len(); i++ {
		changed = d.Contract(x.At(i), v.At(i)) || changed
	}
	return changed
}

// Contract a single slice. Both directions enabled by the propagation are
// applied. Reports whether x changed.
func (d *Deriv) ContractSlice(x, v *tube.Slice) bool {
	changed, _ := d.contractSlice(x, v, d.propagation)
	return changed
}

// Contract only the gates of x: the output gate with what the input gate
// reaches within the slice, then the input gate with what reaches the
// output gate. Reports whether a gate changed.
func (d *Deriv) ContractGates(x, v *tube.Slice) bool {
	mustSameDomain(x, v)
	if !x.Domain().Intersects(d.restriction) {
		return false
	}
	before := snapshotOf(x)
	d.contractGates(x, v.Codomain())
	return !snapshotOf(x).equal(before)
}

func (d *Deriv) Contractor() Contractor {
	return func(doms ...Domain) {
		switch {
		case len(doms) == 2 && doms[0].Kind() == KindTube && doms[1].Kind() == KindTube:
			d.Contract(doms[0].Tube(), doms[1].Tube())
		case len(doms) == 2 && doms[0].Kind() == KindTubeVector && doms[1].Kind() == KindTubeVector:
			d.ContractVector(doms[0].TubeVector(), doms[1].TubeVector())
		default:
			panic(fmt.Sprintf("Invariance: derivative contractor expects (tube, tube) or (tube vector, tube vector), got %v", kinds(doms)))
		}
	}
}

func (d *Deriv) contractSlice(x, v *tube.Slice, dir Propagation) (changed, emptied bool) {
	mustSameDomain(x, v)
	if !x.Domain().Intersects(d.restriction) {
		return false, false
	}
	before := snapshotOf(x)

	dv := v.Codomain()
	if dv.IsEmpty() || before.in.IsEmpty() || before.out.IsEmpty() || before.env.IsEmpty() {
		x.SetEnvelope(interval.Empty())
	} else if d.fast {
		d.fastStep(x, dv, dir)
	} else {
		d.optimalStep(x, dv)
	}

	after := snapshotOf(x)
	return !after.equal(before), after.env.IsEmpty() && !before.env.IsEmpty()
}

func (d *Deriv) fastStep(x *tube.Slice, dv interval.Interval, dir Propagation) {
	dt := x.Domain().Diam()
	sweep := interval.New(0, dt).Mul(dv)
	if dir&Forward != 0 {
		x.SetEnvelope(x.Codomain().Intersect(x.InputGate().Add(sweep)))
		x.SetOutputGate(x.OutputGate().Intersect(x.InputGate().Add(dv.Scale(dt))))
	}
	if dir&Backward != 0 {
		x.SetEnvelope(x.Codomain().Intersect(x.OutputGate().Sub(sweep)))
		x.SetInputGate(x.InputGate().Intersect(x.OutputGate().Sub(dv.Scale(dt))))
	}
}

func (d *Deriv) optimalStep(x *tube.Slice, dv interval.Interval) {
	d.contractGates(x, dv)
	p, ok := x.Polygon(dv)
	if !ok {
		dt := x.Domain().Diam()
		sweep := interval.New(0, dt).Mul(dv)
		x.SetEnvelope(x.Codomain().Intersect(x.InputGate().Add(sweep)).Intersect(x.OutputGate().Sub(sweep)))
		return
	}
	_, y := p.Bounds()
	x.SetEnvelope(x.Codomain().Intersect(y))
}

func (d *Deriv) contractGates(x *tube.Slice, dv interval.Interval) {
	step := dv.Scale(x.Domain().Diam())
	x.SetOutputGate(x.OutputGate().Intersect(x.InputGate().Add(step)))
	x.SetInputGate(x.InputGate().Intersect(x.OutputGate().Sub(step)))
}

type snapshot struct {
	in, env, out interval.Interval
}

func snapshotOf(s *tube.Slice) snapshot {
	return snapshot{in: s.InputGate(), env: s.Codomain(), out: s.OutputGate()}
}

func (s snapshot) equal(o snapshot) bool {
	return s.in.Equal(o.in) && s.env.Equal(o.env) && s.out.Equal(o.out)
}

func mustSameDomain(x, v *tube.Slice) {
	if !x.Domain().Equal(v.Domain()) {
		panic(fmt.Sprintf("Invariance: slice domains %v and %v differ", x.Domain(), v.Domain()))
	}
}

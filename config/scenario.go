package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/teichholz/go-tubes/ctc"
	"github.com/teichholz/go-tubes/files"
	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/tube"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat   = errors.New("unknown scenario format")
	ErrInvalidScenario = errors.New("invalid scenario")
)

// An interval in a scenario document. A missing bound is unbounded on that
// side, so {} is the whole real line.
type IntervalSpec struct {
	Lo    *float64 `json:"lo,omitempty" toml:"lo" yaml:"lo,omitempty"`
	Hi    *float64 `json:"hi,omitempty" toml:"hi" yaml:"hi,omitempty"`
	Empty bool     `json:"empty,omitempty" toml:"empty" yaml:"empty,omitempty"`
}

func Bounds(lo, hi float64) IntervalSpec {
	return IntervalSpec{Lo: &lo, Hi: &hi}
}

func (s IntervalSpec) Interval() (interval.Interval, error) {
	if s.Empty {
		return interval.Empty(), nil
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if s.Lo != nil {
		lo = *s.Lo
	}
	if s.Hi != nil {
		hi = *s.Hi
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return interval.Interval{}, fmt.Errorf("%w: bounds %v > %v", ErrInvalidScenario, lo, hi)
	}
	return interval.New(lo, hi), nil
}

// A gate constraint x(t) ∈ value.
type GateSpec struct {
	T     float64      `json:"t" toml:"t" yaml:"t"`
	Value IntervalSpec `json:"value" toml:"value" yaml:"value"`
}

// A derivative value over a time domain.
type PieceSpec struct {
	Domain IntervalSpec `json:"domain" toml:"domain" yaml:"domain"`
	Value  IntervalSpec `json:"value" toml:"value" yaml:"value"`
}

// The derivative tube starts at Value everywhere. Slices then assigns one
// value per slice, Pieces assigns values over time domains.
type DerivativeSpec struct {
	Value  IntervalSpec   `json:"value" toml:"value" yaml:"value"`
	Slices []IntervalSpec `json:"slices,omitempty" toml:"slices" yaml:"slices,omitempty"`
	Pieces []PieceSpec    `json:"pieces,omitempty" toml:"pieces" yaml:"pieces,omitempty"`
}

// A Scenario describes a contraction problem: a position tube x with gate
// constraints and a derivative tube v.
type Scenario struct {
	Name        string         `json:"name" toml:"name" yaml:"name"`
	Domain      IntervalSpec   `json:"domain" toml:"domain" yaml:"domain"`
	Width       float64        `json:"width" toml:"width" yaml:"width"`
	Initial     IntervalSpec   `json:"initial" toml:"initial" yaml:"initial"`
	Gates       []GateSpec     `json:"gates,omitempty" toml:"gates" yaml:"gates,omitempty"`
	Derivative  DerivativeSpec `json:"derivative" toml:"derivative" yaml:"derivative"`
	Mode        string         `json:"mode" toml:"mode" yaml:"mode"`
	Propagation string         `json:"propagation" toml:"propagation" yaml:"propagation"`
	Restriction *IntervalSpec  `json:"restriction,omitempty" toml:"restriction" yaml:"restriction,omitempty"`
	MaxIter     int            `json:"maxIter" toml:"max_iter" yaml:"max_iter"`
}

func DefaultScenario() Scenario {
	return Scenario{
		Name:        "scenario",
		Mode:        "optimal",
		Propagation: "both",
		MaxIter:     10,
	}
}

// Read a scenario file. The format follows the file extension.
func Load(path string) (*Scenario, error) {
	data, err := files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return s, nil
}

// Decode a scenario over the defaults. format is a file extension: .json,
// .toml, .yaml or .yml.
func Parse(data []byte, format string) (*Scenario, error) {
	s := DefaultScenario()
	switch strings.ToLower(format) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
	case ".toml":
		if err := decodeTOML(data, &s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeTOML(data []byte, s *Scenario) error {
	var raw Scenario
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown keys %v", ErrInvalidScenario, undecoded)
	}

	if meta.IsDefined("name") {
		s.Name = raw.Name
	}
	if meta.IsDefined("domain") {
		s.Domain = raw.Domain
	}
	if meta.IsDefined("width") {
		s.Width = raw.Width
	}
	if meta.IsDefined("initial") {
		s.Initial = raw.Initial
	}
	if meta.IsDefined("gates") {
		s.Gates = raw.Gates
	}
	if meta.IsDefined("derivative") {
		s.Derivative = raw.Derivative
	}
	if meta.IsDefined("mode") {
		s.Mode = raw.Mode
	}
	if meta.IsDefined("propagation") {
		s.Propagation = raw.Propagation
	}
	if meta.IsDefined("restriction") {
		s.Restriction = raw.Restriction
	}
	if meta.IsDefined("max_iter") {
		s.MaxIter = raw.MaxIter
	}
	return nil
}

// Check everything that does not depend on the slicing.
func (s *Scenario) Validate() error {
	domain, err := s.Domain.Interval()
	if err != nil {
		return fmt.Errorf("domain: %w", err)
	}
	if domain.IsEmpty() || domain.IsUnbounded() || domain.IsDegenerate() {
		return fmt.Errorf("%w: domain %v must be bounded and not degenerate", ErrInvalidScenario, domain)
	}
	if s.Width < 0 || math.IsNaN(s.Width) {
		return fmt.Errorf("%w: negative slice width %v", ErrInvalidScenario, s.Width)
	}
	if _, err := s.Initial.Interval(); err != nil {
		return fmt.Errorf("initial: %w", err)
	}
	for i, g := range s.Gates {
		if !domain.Contains(g.T) {
			return fmt.Errorf("%w: gate %d at %v outside of %v", ErrInvalidScenario, i, g.T, domain)
		}
		if _, err := g.Value.Interval(); err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
	}
	if _, err := s.Derivative.Value.Interval(); err != nil {
		return fmt.Errorf("derivative: %w", err)
	}
	for i, v := range s.Derivative.Slices {
		if _, err := v.Interval(); err != nil {
			return fmt.Errorf("derivative slice %d: %w", i, err)
		}
	}
	for i, p := range s.Derivative.Pieces {
		if _, err := p.Domain.Interval(); err != nil {
			return fmt.Errorf("derivative piece %d: %w", i, err)
		}
		if _, err := p.Value.Interval(); err != nil {
			return fmt.Errorf("derivative piece %d: %w", i, err)
		}
	}
	if s.Restriction != nil {
		if _, err := s.Restriction.Interval(); err != nil {
			return fmt.Errorf("restriction: %w", err)
		}
	}
	if _, err := s.options(); err != nil {
		return err
	}
	return nil
}

// Return the position tube x and the derivative tube v. Both share their
// slicing: a gate inside a slice cuts the slice in both tubes.
func (s *Scenario) Build() (x, v *tube.Tube, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	domain, _ := s.Domain.Interval()
	initial, _ := s.Initial.Interval()
	value, _ := s.Derivative.Value.Interval()

	x = tube.New(domain, s.Width, initial)
	v = tube.New(domain, s.Width, value)
	for _, g := range s.Gates {
		y, _ := g.Value.Interval()
		x.SetAt(y, g.T)
		v.Sample(g.T, interval.All())
	}

	if n := len(s.Derivative.Slices); n > 0 {
		if n != v.Size() {
			return nil, nil, fmt.Errorf("%w: %d derivative slices for %d tube slices", ErrInvalidScenario, n, v.Size())
		}
		for i, spec := range s.Derivative.Slices {
			y, _ := spec.Interval()
			v.Slice(i).Set(y)
		}
	}
	for _, p := range s.Derivative.Pieces {
		d, _ := p.Domain.Interval()
		y, _ := p.Value.Interval()
		v.SetOn(y, d, true)
	}
	v.Update()
	return x, v, nil
}

// Return a derivative contractor configured by the scenario.
func (s *Scenario) Deriv(log *slog.Logger) (*ctc.Deriv, error) {
	opts, err := s.options()
	if err != nil {
		return nil, err
	}
	return ctc.NewDeriv(append(opts, ctc.WithLogger(log))...), nil
}

func (s *Scenario) options() ([]ctc.Option, error) {
	var opts []ctc.Option
	switch strings.ToLower(s.Mode) {
	case "", "optimal":
	case "fast":
		opts = append(opts, ctc.Fast())
	default:
		return nil, fmt.Errorf("%w: mode %q", ErrInvalidScenario, s.Mode)
	}
	switch strings.ToLower(s.Propagation) {
	case "", "both":
		opts = append(opts, ctc.WithPropagation(ctc.Both))
	case "forward":
		opts = append(opts, ctc.WithPropagation(ctc.Forward))
	case "backward":
		opts = append(opts, ctc.WithPropagation(ctc.Backward))
	default:
		return nil, fmt.Errorf("%w: propagation %q", ErrInvalidScenario, s.Propagation)
	}
	if s.Restriction != nil {
		r, err := s.Restriction.Interval()
		if err != nil {
			return nil, fmt.Errorf("restriction: %w", err)
		}
		opts = append(opts, ctc.WithRestriction(r))
	}
	return opts, nil
}

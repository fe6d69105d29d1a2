package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/teichholz/go-tubes/ctc"
)

var (
	ErrUnknownPass   = errors.New("unknown propagation")
	ErrAmbiguousPass = errors.New("ambiguous propagation")
)

// Passes resolves propagation names given on the command line. A name may
// be abbreviated to any prefix that only one registered name starts with.
type Passes struct {
	passes map[string]ctc.Propagation
}

func NewPasses() *Passes {
	p := &Passes{passes: make(map[string]ctc.Propagation)}
	p.Register("forward", ctc.Forward)
	p.Register("backward", ctc.Backward)
	p.Register("both", ctc.Both)
	return p
}

func (p *Passes) Register(name string, dir ctc.Propagation) {
	p.passes[name] = dir
}

func (p *Passes) Find(prefix string) (ctc.Propagation, error) {
	prefix = strings.ToLower(prefix)
	if dir, ok := p.passes[prefix]; ok {
		return dir, nil
	}
	var matches []string
	for name := range p.passes {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPass, prefix)
	case 1:
		return p.passes[matches[0]], nil
	}
	sort.Strings(matches)
	return 0, fmt.Errorf("%w: %q matches %s", ErrAmbiguousPass, prefix, strings.Join(matches, ", "))
}

// The plot package draws a tube on a terminal screen and lets the user run
// contraction passes interactively.
package plot

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/teichholz/go-tubes/ctc"
	"github.com/teichholz/go-tubes/interval"
	"github.com/teichholz/go-tubes/layout"
	"github.com/teichholz/go-tubes/tube"
)

const legendWidth = 24

// A Session draws x on screen. The screen is owned by the caller, which
// initializes and finalizes it.
type Session struct {
	screen tcell.Screen
	log    *slog.Logger
	title  string
	x      *tube.Tube
	step   func(dir ctc.Propagation) bool
	status string
	layout *layout.Flex
}

func NewSession(screen tcell.Screen, log *slog.Logger, title string, x *tube.Tube) *Session {
	s := &Session{screen: screen, log: log, title: title, x: x, status: "ready"}
	s.layout = layout.Column(
		layout.FlexItemBox(layout.EmptyBox, layout.Max(layout.Rel(1)), layout.Row(
			layout.FlexItemBox(s.plotBox, layout.Max(layout.Rel(1)), nil),
			layout.FlexItemBox(s.legendBox, layout.Exact(layout.Abs(legendWidth)), nil),
		)),
		layout.FlexItemBox(s.statusLineBox, layout.Exact(layout.Abs(1)), nil),
	)
	return s
}

// Register the pass run by the f and b keys. It reports whether x changed.
func (s *Session) OnStep(step func(dir ctc.Propagation) bool) {
	s.step = step
}

func (s *Session) Status() string {
	return s.status
}

func (s *Session) Draw() {
	width, height := s.screen.Size()
	s.layout.StartLayouting(width, height)
	s.screen.Show()
}

// Process one event. Reports whether the session should end.
func (s *Session) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyCtrlL:
			s.screen.Sync()
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'f':
				s.pass(ctc.Forward)
			case 'b':
				s.pass(ctc.Backward)
			}
		}
	}
	return false
}

// Draw and handle events until the user quits or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		s.Draw()
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return ctx.Err()
		default:
			if s.HandleEvent(ev) {
				return nil
			}
		}
	}
}

func (s *Session) pass(dir ctc.Propagation) {
	if s.step == nil {
		s.status = "no contractor"
		return
	}
	changed := s.step(dir)
	s.status = fmt.Sprintf("%v pass: fixpoint", dir)
	if changed {
		s.status = fmt.Sprintf("%v pass: contracted", dir)
	}
	s.log.Debug("interactive pass", "direction", dir, "changed", changed, "volume", s.x.Volume())
}

func (s *Session) plotBox(dim layout.Dimensions) {
	clearArea(s.screen, dim)
	if dim.Width <= 0 || dim.Height <= 0 {
		return
	}
	values, ok := valueRange(s.x)
	if !ok {
		drawText(s.screen, dim.Origin.X, dim.Origin.Y, dim.Origin.X+dim.Width, dim.Origin.Y, LightStyle, "no bounded values")
		return
	}

	domain := s.x.Domain()
	step := domain.Diam() / float64(dim.Width)
	bottom := dim.Origin.Y + dim.Height - 1
	for c := 0; c < dim.Width; c++ {
		lb := domain.Lb() + float64(c)*step
		ub := min(domain.Lb()+float64(c+1)*step, domain.Ub())
		if c == dim.Width-1 {
			ub = domain.Ub()
		}
		y := s.x.Eval(interval.New(lb, ub))
		col := dim.Origin.X + c
		if y.IsEmpty() {
			s.screen.SetContent(col, bottom, 'x', nil, EmptyStyle)
			continue
		}
		for r := row(dim, values, y.Ub()); r <= row(dim, values, y.Lb()); r++ {
			s.screen.SetContent(col, r, '█', nil, EnvelopeStyle)
		}
	}
}

func (s *Session) legendBox(dim layout.Dimensions) {
	clearArea(s.screen, dim)
	x1, y1 := dim.Origin.X, dim.Origin.Y
	x2, y2 := x1+dim.Width-1, y1+dim.Height-1
	drawBox(s.screen, x1, y1, x2, y2, LightStyle, "")

	lines := []string{
		s.title,
		"t " + s.x.Domain().String(),
		"x " + s.x.Codomain().String(),
		fmt.Sprintf("%d slices", s.x.Size()),
		fmt.Sprintf("volume %.4g", s.x.Volume()),
	}
	for i, line := range lines {
		if y1+1+i >= y2 {
			break
		}
		drawText(s.screen, x1+1, y1+1+i, x2, y1+1+i, DefaultStyle, line)
	}
}

func (s *Session) statusLineBox(dim layout.Dimensions) {
	clearArea(s.screen, dim)
	text := "q quit  f forward  b backward | " + s.status
	drawText(s.screen, dim.Origin.X, dim.Origin.Y, dim.Origin.X+dim.Width, dim.Origin.Y, LightStyle, text)
}

// Return the hull of the finite envelope bounds, widened when degenerate.
func valueRange(x *tube.Tube) (interval.Interval, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range x.Slices() {
		c := s.Codomain()
		if c.IsEmpty() {
			continue
		}
		for _, b := range []float64{c.Lb(), c.Ub()} {
			if !math.IsInf(b, 0) {
				lo, hi = min(lo, b), max(hi, b)
			}
		}
	}
	if lo > hi {
		return interval.Empty(), false
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return interval.New(lo, hi), true
}

// Return the screen row of value v. Values outside of the range stick to
// the nearest border.
func row(dim layout.Dimensions, values interval.Interval, v float64) int {
	h := dim.Height - 1
	switch {
	case v >= values.Ub():
		return dim.Origin.Y
	case v <= values.Lb():
		return dim.Origin.Y + h
	}
	return dim.Origin.Y + int(math.Round((values.Ub()-v)/values.Diam()*float64(h)))
}

package plot

import (
	"github.com/gdamore/tcell/v2"
	"github.com/teichholz/go-tubes/layout"
)

var (
	DefaultStyle  = tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	LightStyle    = DefaultStyle.Foreground(tcell.ColorGray)
	EnvelopeStyle = DefaultStyle.Foreground(tcell.ColorTeal)
	GateStyle     = DefaultStyle.Foreground(tcell.ColorYellow)
	EmptyStyle    = DefaultStyle.Foreground(tcell.ColorRed)
)

func drawText(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style, text string) {
	row := y1
	col := x1
	for _, r := range text {
		s.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

func clearArea(s tcell.Screen, dim layout.Dimensions) {
	for y := dim.Origin.Y; y < dim.Origin.Y+dim.Height; y++ {
		for x := dim.Origin.X; x < dim.Origin.X+dim.Width; x++ {
			s.SetContent(x, y, ' ', nil, DefaultStyle)
		}
	}
}

func drawBox(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style, text string) {
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	if x2 < x1 {
		x1, x2 = x2, x1
	}

	for col := x1; col <= x2; col++ {
		s.SetContent(col, y1, tcell.RuneHLine, nil, style)
		s.SetContent(col, y2, tcell.RuneHLine, nil, style)
	}
	for row := y1 + 1; row < y2; row++ {
		s.SetContent(x1, row, tcell.RuneVLine, nil, style)
		s.SetContent(x2, row, tcell.RuneVLine, nil, style)
	}

	if y1 != y2 && x1 != x2 {
		s.SetContent(x1, y1, tcell.RuneULCorner, nil, style)
		s.SetContent(x2, y1, tcell.RuneURCorner, nil, style)
		s.SetContent(x1, y2, tcell.RuneLLCorner, nil, style)
		s.SetContent(x2, y2, tcell.RuneLRCorner, nil, style)
	}

	drawText(s, x1+1, y1+1, x2-1, y2-1, style, text)
}

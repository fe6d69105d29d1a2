// The layout package splits a terminal window into nested rows and columns
// of boxes.
package layout

import (
	"slices"
)

type Point struct {
	X, Y int
}

type Direction int

const (
	Y Direction = iota
	X
)

// Flex lays out its items along one axis and gives each of them the whole
// extent of the other axis.
type Flex struct {
	Dir   Direction // direction of the main axis
	Items []FlexItem
}

func Column(items ...FlexItem) *Flex {
	return &Flex{Dir: Y, Items: items}
}

func Row(items ...FlexItem) *Flex {
	return &Flex{Dir: X, Items: items}
}

// Lay out a window of the given size with its origin at (0, 0).
func (f Flex) StartLayouting(width, height int) {
	f.Layout(Dimensions{Width: width, Height: height})
}

// Items whose minimum size exceeds an equal share of the main axis are not
// laid out. The others are filled smallest maximum first, each taking at
// most an equal share of what is left.
func (f Flex) Layout(dim Dimensions) {
	if len(f.Items) == 0 {
		return
	}
	total := dim.Height
	if f.Dir == X {
		total = dim.Width
	}

	share := total / len(f.Items)
	items := filter(f.Items, func(item FlexItem) bool { return item.Size.Min.toAbs(total) <= share })
	if len(items) == 0 {
		return
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return items[a].Size.Max.toAbs(total) - items[b].Size.Max.toAbs(total)
	})

	filled := make([]int, len(items))
	remaining := total
	for n, i := range order {
		fill := min(items[i].Size.Max.toAbs(total), remaining/(len(order)-n))
		filled[i] = fill
		remaining -= fill
	}

	// items are placed in the order they were given so the origins follow
	orig := dim.Origin
	for i, item := range items {
		var child Dimensions
		if f.Dir == X {
			child = Dimensions{Origin: orig, Width: filled[i], Height: dim.Height}
			orig.X += filled[i]
		} else {
			child = Dimensions{Origin: orig, Width: dim.Width, Height: filled[i]}
			orig.Y += filled[i]
		}
		if item.Box != nil {
			item.Box(child)
		}
		if item.Flex != nil {
			item.Flex.Layout(child)
		}
	}
}

func filter[T any](ts []T, keep func(t T) bool) (ret []T) {
	for _, t := range ts {
		if keep(t) {
			ret = append(ret, t)
		}
	}
	return
}

type FlexItem struct {
	Box  LayoutBox
	Flex *Flex
	Size Constraint
}

func FlexItemBox(box LayoutBox, size Constraint, flex *Flex) FlexItem {
	return FlexItem{Box: box, Size: size, Flex: flex}
}

type Constraint struct {
	Min, Max Size
}

func Exact(size Size) Constraint {
	return Constraint{Min: size, Max: size}
}

func Max(size Size) Constraint {
	return Constraint{Min: Abs(0), Max: size}
}

type Size struct {
	abs int     // absolute size
	rel float64 // [0, 1]
}

func Abs(abs int) Size {
	return Size{abs: abs}
}

func Rel(rel float64) Size {
	return Size{rel: rel}
}

func (s Size) toAbs(size int) int {
	if s.abs != 0 {
		return s.abs
	}

	return int(s.rel * float64(size))
}

// Resolved dimensions of a box
type Dimensions struct {
	Origin        Point // TL corner
	Width, Height int
}

func (d Dimensions) Contains(p Point) bool {
	return p.X >= d.Origin.X && p.X < d.Origin.X+d.Width &&
		p.Y >= d.Origin.Y && p.Y < d.Origin.Y+d.Height
}

type LayoutBox func(Dimensions)

func EmptyBox(Dimensions) {}

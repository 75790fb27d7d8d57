// SPDX-License-Identifier: Unlicense OR MIT

package reflow

import (
	"fmt"
	"image"
	"math"

	"gioui.org/f32"
)

// Slot is a grid cell position. Slots are numbered in row-major order.
type Slot struct {
	Row, Col int
}

// Grid describes the geometry of a slot grid. All sizes are in pixels.
type Grid struct {
	// Rows and Cols are the number of rows and columns. A zero count
	// grows with the number of items; at most one of them may be zero.
	Rows, Cols int
	// Gap is the horizontal (X) and vertical (Y) space between slots.
	Gap image.Point
	// Item is the size of a slot.
	Item image.Point
	// Origin is the top-left corner of slot (0, 0).
	Origin image.Point
}

func (s Slot) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// Validate reports whether g describes a usable grid.
func (g Grid) Validate() error {
	switch {
	case g.Rows < 0 || g.Cols < 0:
		return fmt.Errorf("reflow: negative grid dimensions %dx%d: %w", g.Rows, g.Cols, ErrInvalidGrid)
	case g.Rows == 0 && g.Cols == 0:
		return fmt.Errorf("reflow: rows and columns are both zero: %w", ErrInvalidGrid)
	case g.Gap.X < 0 || g.Gap.Y < 0:
		return fmt.Errorf("reflow: negative gap %v: %w", g.Gap, ErrInvalidGrid)
	case g.Item.X < 0 || g.Item.Y < 0:
		return fmt.Errorf("reflow: negative item size %v: %w", g.Item, ErrInvalidGrid)
	}
	return nil
}

// Capacity returns the number of slots, or -1 if the grid grows
// along one axis.
func (g Grid) Capacity() int {
	if g.Rows == 0 || g.Cols == 0 {
		return -1
	}
	return g.Rows * g.Cols
}

// Fit returns g with a zero row or column count replaced by the
// count needed to hold n items.
func (g Grid) Fit(n int) Grid {
	switch {
	case g.Rows == 0 && g.Cols > 0:
		g.Rows = ceilDiv(n, g.Cols)
	case g.Cols == 0 && g.Rows > 0:
		g.Cols = ceilDiv(n, g.Rows)
	}
	return g
}

// Len returns the number of slots of a fitted grid.
func (g Grid) Len() int {
	return g.Rows * g.Cols
}

// Index returns the row-major index of s.
func (g Grid) Index(s Slot) int {
	return s.Row*g.Cols + s.Col
}

// SlotOf returns the slot with row-major index i.
func (g Grid) SlotOf(i int) Slot {
	if g.Cols == 0 {
		return Slot{}
	}
	return Slot{Row: i / g.Cols, Col: i % g.Cols}
}

// Contains reports whether s lies inside the grid.
func (g Grid) Contains(s Slot) bool {
	return s.Row >= 0 && s.Row < g.Rows && s.Col >= 0 && s.Col < g.Cols
}

// Rect returns the pixel rectangle of s.
func (g Grid) Rect(s Slot) image.Rectangle {
	o := g.Origin.Add(image.Point{
		X: s.Col * (g.Item.X + g.Gap.X),
		Y: s.Row * (g.Item.Y + g.Gap.Y),
	})
	return image.Rectangle{Min: o, Max: o.Add(g.Item)}
}

// Center returns the center point of s.
func (g Grid) Center(s Slot) f32.Point {
	r := g.Rect(s)
	return f32.Pt(
		float32(r.Min.X)+float32(r.Dx())/2,
		float32(r.Min.Y)+float32(r.Dy())/2,
	)
}

// Bounds returns the rectangle covering every slot.
func (g Grid) Bounds() image.Rectangle {
	if g.Rows <= 0 || g.Cols <= 0 {
		return image.Rectangle{Min: g.Origin, Max: g.Origin}
	}
	size := image.Point{
		X: g.Cols*g.Item.X + (g.Cols-1)*g.Gap.X,
		Y: g.Rows*g.Item.Y + (g.Rows-1)*g.Gap.Y,
	}
	return image.Rectangle{Min: g.Origin, Max: g.Origin.Add(size)}
}

// SlotAt returns the slot under p. Every slot is expanded by half the
// gap on each side so that a point in a gap belongs to the nearer slot;
// a point exactly halfway belongs to the later one. SlotAt reports false
// for points outside Bounds.
func (g Grid) SlotAt(p f32.Point) (Slot, bool) {
	b := g.Bounds()
	if b.Empty() {
		return Slot{}, false
	}
	if p.X < float32(b.Min.X) || p.X >= float32(b.Max.X) ||
		p.Y < float32(b.Min.Y) || p.Y >= float32(b.Max.Y) {
		return Slot{}, false
	}
	return g.Nearest(p), true
}

// Nearest is like SlotAt but clamps points outside the grid to the
// closest slot.
func (g Grid) Nearest(p f32.Point) Slot {
	return Slot{
		Row: cell(p.Y-float32(g.Origin.Y), g.Item.Y, g.Gap.Y, g.Rows),
		Col: cell(p.X-float32(g.Origin.X), g.Item.X, g.Gap.X, g.Cols),
	}
}

// cell maps an offset along one axis to a cell index in [0, n).
func cell(off float32, size, gap, n int) int {
	pitch := size + gap
	if pitch <= 0 || n <= 0 {
		return 0
	}
	i := int(math.Floor(float64((off + float32(gap)/2) / float32(pitch))))
	return clamp(i, 0, n-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

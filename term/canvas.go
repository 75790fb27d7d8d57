// SPDX-License-Identifier: Unlicense OR MIT

package term

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type ink uint8

const (
	inkBlank ink = iota
	inkItem
	inkPlaceholder
	inkLifted
)

var inkStyles = [...]lipgloss.Style{
	inkBlank:       lipgloss.NewStyle(),
	inkItem:        lipgloss.NewStyle().Foreground(colorWhite),
	inkPlaceholder: lipgloss.NewStyle().Foreground(colorDim),
	inkLifted:      lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
}

type cell struct {
	r   rune
	ink ink
}

// canvas is a fixed-size grid of styled terminal cells.
type canvas struct {
	size  image.Point
	cells []cell
}

func newCanvas(size image.Point) *canvas {
	size.X, size.Y = max(size.X, 0), max(size.Y, 0)
	c := &canvas{size: size, cells: make([]cell, size.X*size.Y)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

func (c *canvas) set(p image.Point, r rune, k ink) {
	if !p.In(image.Rectangle{Max: c.size}) {
		return
	}
	c.cells[p.Y*c.size.X+p.X] = cell{r: r, ink: k}
}

// box draws a framed rectangle with label centered on its middle row.
// Rectangles shorter than three rows are filled instead of framed.
func (c *canvas) box(r image.Rectangle, label string, k ink) {
	if r.Empty() {
		return
	}
	h, v, corners := '─', '│', [4]rune{'┌', '┐', '└', '┘'}
	if k == inkPlaceholder {
		h, v, corners = '┄', '┆', [4]rune{'╭', '╮', '╰', '╯'}
	}
	framed := r.Dy() >= 3 && r.Dx() >= 2
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ch := ' '
			if framed {
				top, bottom := y == r.Min.Y, y == r.Max.Y-1
				left, right := x == r.Min.X, x == r.Max.X-1
				switch {
				case top && left:
					ch = corners[0]
				case top && right:
					ch = corners[1]
				case bottom && left:
					ch = corners[2]
				case bottom && right:
					ch = corners[3]
				case top || bottom:
					ch = h
				case left || right:
					ch = v
				}
			} else if k != inkPlaceholder {
				ch = '░'
			}
			c.set(image.Pt(x, y), ch, k)
		}
	}
	if k == inkPlaceholder {
		return
	}
	inner := r.Dx()
	if framed {
		inner -= 2
	}
	runes := []rune(label)
	if len(runes) > inner {
		runes = runes[:max(inner, 0)]
	}
	y := r.Min.Y + r.Dy()/2
	x := r.Min.X + (r.Dx()-len(runes))/2
	for i, ch := range runes {
		c.set(image.Pt(x+i, y), ch, k)
	}
}

// render returns the canvas as lines of styled text.
func (c *canvas) render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.size.Y; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := c.cells[y*c.size.X : (y+1)*c.size.X]
		for i := 0; i < len(row); {
			k := row[i].ink
			run.Reset()
			for ; i < len(row) && row[i].ink == k; i++ {
				run.WriteRune(row[i].r)
			}
			b.WriteString(inkStyles[k].Render(run.String()))
		}
	}
	return b.String()
}

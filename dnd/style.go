// SPDX-License-Identifier: Unlicense OR MIT

package dnd

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// GridStyle lays out a Grid with a rounded placeholder marking the slot
// the lifted item will drop into.
type GridStyle[T any] struct {
	Grid         *Grid[T]
	Placeholder  color.NRGBA
	CornerRadius unit.Dp
}

// DragGrid returns a GridStyle using the theme's contrast color.
func DragGrid[T any](th *material.Theme, g *Grid[T]) GridStyle[T] {
	return GridStyle[T]{
		Grid:         g,
		Placeholder:  mulAlpha(th.Palette.ContrastBg, 0x50),
		CornerRadius: 4,
	}
}

func (s GridStyle[T]) Layout(gtx layout.Context, w ItemWidget[T]) layout.Dimensions {
	return s.Grid.Layout(gtx, w, func(gtx layout.Context) layout.Dimensions {
		size := gtx.Constraints.Min
		rr := gtx.Dp(s.CornerRadius)
		defer clip.UniformRRect(image.Rectangle{Max: size}, rr).Push(gtx.Ops).Pop()
		paint.Fill(gtx.Ops, s.Placeholder)
		return layout.Dimensions{Size: size}
	})
}

// mulAlpha applies the alpha a to c.
func mulAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = uint8(uint32(c.A) * uint32(a) / 0xFF)
	return c
}

// SPDX-License-Identifier: Unlicense OR MIT

package reflow

import (
	"image"

	"gioui.org/f32"
)

// Viewport is the visible part of a scrollable container. Visible is in
// content coordinates, so its Min is the current scroll offset.
type Viewport struct {
	Visible image.Rectangle
	// Content is the total size of the scrollable content.
	Content image.Point
}

// EdgeScroller computes auto-scroll nudges for a pointer close to the
// edge of a viewport.
type EdgeScroller struct {
	// Margin is the depth of the band along each edge that triggers
	// scrolling.
	Margin int
	// Speed is the nudge, in pixels, for a pointer at or past an edge.
	Speed int
}

// DefaultScroller scrolls by up to 20 pixels per nudge inside a 20 pixel
// band.
var DefaultScroller = EdgeScroller{Margin: 20, Speed: 20}

// Delta returns the signed distance to scroll v for a pointer at p.
// An axis only scrolls toward an edge with more content beyond it. The
// nudge grows linearly from zero at the inner boundary of the band to
// Speed at the edge, and never scrolls past the content.
func (s EdgeScroller) Delta(p f32.Point, v Viewport) f32.Point {
	if s.Margin <= 0 || s.Speed <= 0 || v.Visible.Empty() {
		return f32.Point{}
	}
	return f32.Point{
		X: s.axis(p.X, v.Visible.Min.X, v.Visible.Max.X, v.Content.X),
		Y: s.axis(p.Y, v.Visible.Min.Y, v.Visible.Max.Y, v.Content.Y),
	}
}

func (s EdgeScroller) axis(p float32, lo, hi, content int) float32 {
	switch {
	case lo > 0 && p < float32(lo+s.Margin):
		d := -s.nudge(p - float32(lo))
		if lim := -float32(lo); d < lim {
			d = lim
		}
		return d
	case hi < content && p > float32(hi-s.Margin):
		d := s.nudge(float32(hi) - p)
		if lim := float32(content - hi); d > lim {
			d = lim
		}
		return d
	}
	return 0
}

// nudge returns the scroll speed for a pointer dist pixels inside an edge.
func (s EdgeScroller) nudge(dist float32) float32 {
	m := float32(s.Margin)
	switch {
	case dist <= 0:
		return float32(s.Speed)
	case dist >= m:
		return 0
	}
	return float32(s.Speed) * (m - dist) / m
}

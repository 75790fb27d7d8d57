// SPDX-License-Identifier: Unlicense OR MIT

// Package dnd provides a Gio grid whose items the user reorders by
// dragging them with the pointer.
package dnd

import (
	"fmt"
	"image"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"

	"github.com/dndgrid/dndgrid/reflow"
)

// Grid is the state of a scrollable grid of reorderable items.
type Grid[T any] struct {
	// Rows and Columns are the grid dimensions. A zero count grows with
	// the number of items.
	Rows, Columns int
	// HGap and VGap are the gaps between columns and rows.
	HGap, VGap unit.Dp
	// ItemWidth and ItemHeight are the size of every slot.
	ItemWidth, ItemHeight unit.Dp
	// EdgeMargin is the depth of the band along the viewport edges that
	// scrolls while dragging. Zero means 20dp; negative disables
	// auto-scrolling.
	EdgeMargin unit.Dp
	// ScrollSpeed is the largest auto-scroll step. Zero means 20dp.
	ScrollSpeed unit.Dp
	// ScrollInterval is the time between auto-scroll steps. Zero means
	// 100ms.
	ScrollInterval time.Duration
	// Policy selects where a lifted item lands.
	Policy reflow.Policy

	engine *reflow.Engine[T]
	drag   gesture.Drag
	scroll gesture.Scroll

	// offset is the scroll position.
	offset  image.Point
	size    image.Point
	content image.Point
	// pointer is the last pointer position, relative to the viewport.
	pointer    f32.Point
	delta      f32.Point
	nextScroll time.Time
	events     []Event
	// err is the last geometry error.
	err error
}

// ItemWidget lays out a single grid item.
type ItemWidget[T any] func(gtx layout.Context, item T) layout.Dimensions

// EventKind describes a step of a drag gesture.
type EventKind uint8

const (
	// Picked is reported when an item is lifted from slot From.
	Picked EventKind = iota
	// Moved is reported when the lifted item moves from index From to To.
	Moved
	// Dropped is reported when the lifted item, picked from From, is
	// released at To.
	Dropped
	// Canceled is reported when the gesture is canceled and the item
	// returns to From.
	Canceled
)

// Event is a drag event of a Grid.
type Event struct {
	Kind     EventKind
	From, To int
}

const (
	defaultMargin   = unit.Dp(20)
	defaultSpeed    = unit.Dp(20)
	defaultInterval = 100 * time.Millisecond
)

// init creates the engine on first use. It fails while Rows and Columns
// do not describe a grid.
func (g *Grid[T]) init() error {
	if g.engine != nil {
		return nil
	}
	e, err := reflow.NewEngine[T](reflow.Grid{Rows: g.Rows, Cols: g.Columns})
	if err != nil {
		g.err = fmt.Errorf("dnd: %w", err)
		return g.err
	}
	g.engine = e
	g.err = nil
	return nil
}

// Add appends an item to the next free slot.
func (g *Grid[T]) Add(item T) error {
	if err := g.init(); err != nil {
		return err
	}
	return g.engine.Add(item)
}

// Items returns the items in slot order.
func (g *Grid[T]) Items() []T {
	if g.engine == nil {
		return nil
	}
	return g.engine.Items()
}

// Len returns the number of items.
func (g *Grid[T]) Len() int {
	if g.engine == nil {
		return 0
	}
	return g.engine.Len()
}

// Err returns the error of the last geometry change. While it is non-nil
// the grid keeps laying out with its previous geometry.
func (g *Grid[T]) Err() error {
	return g.err
}

// Dragging reports whether an item is lifted.
func (g *Grid[T]) Dragging() bool {
	return g.engine != nil && g.engine.Dragging()
}

// ScrollOffset returns the scroll position of the viewport.
func (g *Grid[T]) ScrollOffset() image.Point {
	return g.offset
}

// ScrollTo scrolls the viewport so that p is its top-left corner.
func (g *Grid[T]) ScrollTo(p image.Point) {
	g.offset = p
	g.clampOffset()
	g.setViewport()
}

// Update processes input events and returns the next drag event, if any.
func (g *Grid[T]) Update(gtx layout.Context) (Event, bool) {
	if g.init() != nil {
		return Event{}, false
	}
	if len(g.events) == 0 {
		g.update(gtx)
	}
	if len(g.events) == 0 {
		return Event{}, false
	}
	e := g.events[0]
	g.events = g.events[1:]
	return e, true
}

func (g *Grid[T]) update(gtx layout.Context) {
	limit := g.content.Sub(g.size)
	dy := g.scroll.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical,
		pointer.ScrollRange{},
		pointer.ScrollRange{Min: -g.offset.Y, Max: limit.Y - g.offset.Y},
	)
	if dy != 0 {
		g.scrollBy(image.Pt(0, dy))
		if g.engine.Dragging() {
			g.move(g.contentPos())
		}
	}

	for {
		e, ok := g.drag.Update(gtx.Metric, gtx.Source, gesture.Both)
		if !ok {
			break
		}
		g.pointer = e.Position
		switch e.Kind {
		case pointer.Press:
			s, err := g.engine.BeginDragAt(g.contentPos())
			if err != nil {
				break
			}
			g.delta = f32.Point{}
			g.nextScroll = gtx.Now.Add(g.interval())
			g.events = append(g.events, Event{Kind: Picked, From: s.Index(), To: s.Index()})
		case pointer.Drag:
			g.move(g.contentPos())
		case pointer.Release:
			if !g.engine.Dragging() {
				break
			}
			g.move(g.contentPos())
			from := g.origin()
			to := g.engine.Session().Index()
			if _, err := g.engine.EndDrag(); err != nil {
				break
			}
			g.delta = f32.Point{}
			g.events = append(g.events, Event{Kind: Dropped, From: from, To: to})
		case pointer.Cancel:
			if !g.engine.Dragging() {
				break
			}
			from := g.origin()
			to := g.engine.Session().Index()
			if _, err := g.engine.CancelDrag(); err != nil {
				break
			}
			g.delta = f32.Point{}
			g.events = append(g.events, Event{Kind: Canceled, From: from, To: to})
		}
	}

	if g.engine.Dragging() && g.delta != (f32.Point{}) && !gtx.Now.Before(g.nextScroll) {
		g.scrollBy(image.Pt(round(g.delta.X), round(g.delta.Y)))
		g.nextScroll = gtx.Now.Add(g.interval())
		// The content moved under a still pointer.
		g.move(g.contentPos())
	}
}

// move updates the drag with a pointer at p, in content coordinates.
func (g *Grid[T]) move(p f32.Point) {
	u, err := g.engine.UpdateDrag(p)
	if err != nil {
		return
	}
	g.delta = u.Scroll
	if u.Moved {
		g.events = append(g.events, Event{Kind: Moved, From: u.From, To: u.To})
	}
}

// origin returns the index the lifted item was picked from.
func (g *Grid[T]) origin() int {
	return g.engine.Layout().Index(g.engine.Session().Origin())
}

func (g *Grid[T]) contentPos() f32.Point {
	return g.pointer.Add(f32.Pt(float32(g.offset.X), float32(g.offset.Y)))
}

func (g *Grid[T]) scrollBy(d image.Point) {
	g.offset = g.offset.Add(d)
	g.clampOffset()
	g.setViewport()
}

func (g *Grid[T]) clampOffset() {
	limit := g.content.Sub(g.size)
	g.offset.X = max(0, min(g.offset.X, limit.X))
	g.offset.Y = max(0, min(g.offset.Y, limit.Y))
}

func (g *Grid[T]) setViewport() {
	if g.engine == nil {
		return
	}
	g.engine.Viewport = reflow.Viewport{
		Visible: image.Rectangle{Min: g.offset, Max: g.offset.Add(g.size)},
		Content: g.content,
	}
}

func (g *Grid[T]) interval() time.Duration {
	if g.ScrollInterval > 0 {
		return g.ScrollInterval
	}
	return defaultInterval
}

// configure converts the grid geometry to pixels and sizes the viewport.
func (g *Grid[T]) configure(gtx layout.Context) {
	grid := reflow.Grid{
		Rows: g.Rows,
		Cols: g.Columns,
		Gap:  image.Pt(gtx.Dp(g.HGap), gtx.Dp(g.VGap)),
		Item: image.Pt(gtx.Dp(g.ItemWidth), gtx.Dp(g.ItemHeight)),
	}
	g.err = nil
	if grid != g.engine.Grid() {
		if err := g.engine.SetGrid(grid); err != nil {
			g.err = fmt.Errorf("dnd: %w", err)
		}
	}
	margin, speed := g.EdgeMargin, g.ScrollSpeed
	if margin == 0 {
		margin = defaultMargin
	}
	if speed == 0 {
		speed = defaultSpeed
	}
	g.engine.Policy = g.Policy
	g.engine.Scroller = reflow.EdgeScroller{Margin: gtx.Dp(margin), Speed: gtx.Dp(speed)}
	g.content = g.engine.Layout().Bounds().Max
	g.size = gtx.Constraints.Constrain(g.content)
	g.clampOffset()
	g.setViewport()
}

// Layout lays out the items in slot order. The lifted item is replaced by
// placeholder, which may be nil, and drawn on top of everything following
// the pointer. A grid whose Rows and Columns were never valid draws
// nothing; see Err.
func (g *Grid[T]) Layout(gtx layout.Context, w ItemWidget[T], placeholder layout.Widget) layout.Dimensions {
	if g.init() != nil {
		return layout.Dimensions{}
	}
	g.configure(gtx)
	for {
		_, ok := g.Update(gtx)
		if !ok {
			break
		}
	}
	if g.Dragging() && g.delta != (f32.Point{}) {
		gtx.Execute(op.InvalidateCmd{At: g.nextScroll})
	}

	defer clip.Rect{Max: g.size}.Push(gtx.Ops).Pop()
	g.drag.Add(gtx.Ops)
	g.scroll.Add(gtx.Ops)
	if g.Dragging() {
		pointer.CursorGrabbing.Add(gtx.Ops)
	}

	l := g.engine.Layout()
	visible := image.Rectangle{Min: g.offset, Max: g.offset.Add(g.size)}
	s := g.engine.Session()
	trans := op.Offset(g.offset.Mul(-1)).Push(gtx.Ops)
	for i, item := range g.engine.Items() {
		r := l.Rect(l.SlotOf(i))
		if !r.Overlaps(visible) {
			continue
		}
		cgtx := gtx
		cgtx.Constraints = layout.Exact(r.Size())
		st := op.Offset(r.Min).Push(gtx.Ops)
		switch {
		case s == nil || i != s.Index():
			w(cgtx, item)
		case placeholder != nil:
			placeholder(cgtx)
		}
		st.Pop()
	}
	trans.Pop()

	if s != nil {
		m := op.Record(gtx.Ops)
		pos := s.Position().Sub(f32.Pt(float32(g.offset.X), float32(g.offset.Y)))
		op.Offset(image.Pt(round(pos.X), round(pos.Y))).Add(gtx.Ops)
		cgtx := gtx.Disabled()
		cgtx.Constraints = layout.Exact(l.Item)
		w(cgtx, s.Item())
		op.Defer(gtx.Ops, m.Stop())
	}

	return layout.Dimensions{Size: g.size}
}

func (k EventKind) String() string {
	switch k {
	case Picked:
		return "Picked"
	case Moved:
		return "Moved"
	case Dropped:
		return "Dropped"
	case Canceled:
		return "Canceled"
	default:
		panic("invalid EventKind")
	}
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}

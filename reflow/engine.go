// SPDX-License-Identifier: Unlicense OR MIT

package reflow

import (
	"errors"
	"fmt"
	"slices"

	"gioui.org/f32"
)

var (
	// ErrInvalidState is returned by operations called outside the drag
	// state they require.
	ErrInvalidState = errors.New("invalid drag state")
	// ErrOutOfBounds is returned for indices and slots outside the grid
	// or the item sequence.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrInvalidGrid is returned for grid geometry that cannot lay out
	// items, such as negative sizes or zero rows and columns.
	ErrInvalidGrid = errors.New("invalid grid")
)

// Policy selects where a lifted item lands when it hovers a slot.
type Policy uint8

const (
	// MoveToSlot moves the lifted item to the hovered slot, so its index
	// always equals the hovered slot index.
	MoveToSlot Policy = iota
	// InsertBefore inserts the lifted item before the item occupying the
	// hovered slot. Moving forward, the item lands one slot short of the
	// hovered slot, except over the trailing half of the last item or
	// past it, where it lands last.
	InsertBefore
)

// Engine tracks an ordered sequence of items laid out in grid slots and
// an optional drag session. Engine is not safe for concurrent use; hosts
// call it from their event loop.
type Engine[T any] struct {
	// Policy is consulted on every reflow.
	Policy Policy
	// Scroller computes the scroll deltas reported by UpdateDrag.
	Scroller EdgeScroller
	// Viewport is the visible part of the host's scrollable container.
	// A zero Viewport disables auto-scrolling.
	Viewport Viewport

	grid    Grid
	items   []T
	session *Session[T]
}

// Session is the state of an in-progress drag.
type Session[T any] struct {
	item    T
	origin  Slot
	hover   Slot
	index   int
	offset  f32.Point
	pointer f32.Point
	saved   []T
}

// Update is the result of UpdateDrag.
type Update[T any] struct {
	// Items is the item order after the update.
	Items []T
	// Moved reports whether the lifted item changed position, from index
	// From to index To.
	Moved    bool
	From, To int
	// Hover is the slot under the pointer, clamped to the grid.
	Hover Slot
	// Scroll is the distance the host should scroll its viewport.
	Scroll f32.Point
}

// NewEngine returns an engine for g with no items.
func NewEngine[T any](g Grid) (*Engine[T], error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Engine[T]{grid: g, Scroller: DefaultScroller}, nil
}

// Grid returns the grid as configured.
func (e *Engine[T]) Grid() Grid {
	return e.grid
}

// Layout returns the grid fitted to the current number of items.
func (e *Engine[T]) Layout() Grid {
	return e.grid.Fit(len(e.items))
}

// SetGrid replaces the grid geometry. An active session keeps its item
// indices; its slots are recomputed for the new geometry.
func (e *Engine[T]) SetGrid(g Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if c := g.Capacity(); c >= 0 && len(e.items) > c {
		return fmt.Errorf("reflow: %d items exceed %dx%d grid: %w", len(e.items), g.Rows, g.Cols, ErrOutOfBounds)
	}
	old := e.Layout()
	e.grid = g
	if s := e.session; s != nil {
		l := e.Layout()
		s.origin = l.SlotOf(old.Index(s.origin))
		s.hover = l.SlotOf(old.Index(s.hover))
	}
	return nil
}

// Add appends item to the sequence, placing it in the next free slot.
func (e *Engine[T]) Add(item T) error {
	if e.session != nil {
		return fmt.Errorf("reflow: add during drag: %w", ErrInvalidState)
	}
	if c := e.grid.Capacity(); c >= 0 && len(e.items) >= c {
		return fmt.Errorf("reflow: grid full at %d items: %w", c, ErrOutOfBounds)
	}
	e.items = append(e.items, item)
	return nil
}

// Len returns the number of items.
func (e *Engine[T]) Len() int {
	return len(e.items)
}

// Items returns a copy of the item sequence. Item i occupies slot i.
func (e *Engine[T]) Items() []T {
	return slices.Clone(e.items)
}

// SlotAt returns the slot under p, occupied or not.
func (e *Engine[T]) SlotAt(p f32.Point) (Slot, bool) {
	return e.Layout().SlotAt(p)
}

// Session returns the active drag session, or nil.
func (e *Engine[T]) Session() *Session[T] {
	return e.session
}

// Dragging reports whether a drag session is active.
func (e *Engine[T]) Dragging() bool {
	return e.session != nil
}

// BeginDrag lifts the item at index i.
func (e *Engine[T]) BeginDrag(i int) (*Session[T], error) {
	if e.session != nil {
		return nil, fmt.Errorf("reflow: begin drag: already dragging: %w", ErrInvalidState)
	}
	if i < 0 || i >= len(e.items) {
		return nil, fmt.Errorf("reflow: begin drag at index %d of %d: %w: %w", i, len(e.items), ErrInvalidState, ErrOutOfBounds)
	}
	l := e.Layout()
	slot := l.SlotOf(i)
	r := l.Rect(slot)
	e.session = &Session[T]{
		item:    e.items[i],
		origin:  slot,
		hover:   slot,
		index:   i,
		pointer: f32.Pt(float32(r.Min.X), float32(r.Min.Y)),
		saved:   slices.Clone(e.items),
	}
	return e.session, nil
}

// BeginDragAt lifts the item under p and records the offset between p and
// the item's corner, so the item follows the pointer without jumping.
func (e *Engine[T]) BeginDragAt(p f32.Point) (*Session[T], error) {
	l := e.Layout()
	slot, ok := l.SlotAt(p)
	if !ok {
		return nil, fmt.Errorf("reflow: begin drag at %v: no slot: %w: %w", p, ErrInvalidState, ErrOutOfBounds)
	}
	s, err := e.BeginDrag(l.Index(slot))
	if err != nil {
		return nil, err
	}
	r := l.Rect(slot)
	s.pointer = p
	s.offset = p.Sub(f32.Pt(float32(r.Min.X), float32(r.Min.Y)))
	return s, nil
}

// UpdateDrag moves the pointer of the active session to p. If p hovers a
// different slot, the lifted item is moved there and the items in between
// shift one slot toward the vacated one. Points outside the grid clamp to
// the nearest slot, and slots past the last item clamp to the last item.
func (e *Engine[T]) UpdateDrag(p f32.Point) (Update[T], error) {
	s := e.session
	if s == nil {
		return Update[T]{}, fmt.Errorf("reflow: update drag: %w", ErrInvalidState)
	}
	s.pointer = p
	l := e.Layout()
	target, inside := l.SlotAt(p)
	if !inside {
		target = l.Nearest(p)
	}
	last := len(e.items) - 1
	raw := l.Index(target)
	ti := min(raw, last)
	if ti != raw {
		target = l.SlotOf(ti)
	}
	to := ti
	if e.Policy == InsertBefore && ti > s.index {
		// Past the last item, or over its trailing half, appends.
		tail := raw > last || (ti == last && (!inside || p.X >= l.Center(target).X))
		if !tail {
			to = ti - 1
		}
	}
	u := Update[T]{From: s.index, To: s.index, Hover: target}
	if to != s.index {
		move(e.items, s.index, to)
		s.index = to
		u.Moved = true
		u.To = to
	}
	s.hover = target
	u.Items = e.Items()
	u.Scroll = e.Scroller.Delta(p, e.Viewport)
	return u, nil
}

// EndDrag drops the lifted item where the last UpdateDrag left it and
// ends the session.
func (e *Engine[T]) EndDrag() ([]T, error) {
	if e.session == nil {
		return nil, fmt.Errorf("reflow: end drag: %w", ErrInvalidState)
	}
	e.session = nil
	return e.Items(), nil
}

// CancelDrag ends the session and restores the order from BeginDrag.
func (e *Engine[T]) CancelDrag() ([]T, error) {
	s := e.session
	if s == nil {
		return nil, fmt.Errorf("reflow: cancel drag: %w", ErrInvalidState)
	}
	e.items = s.saved
	e.session = nil
	return e.Items(), nil
}

// Item returns the lifted item.
func (s *Session[T]) Item() T {
	return s.item
}

// Origin returns the slot the item was lifted from.
func (s *Session[T]) Origin() Slot {
	return s.origin
}

// Hover returns the slot under the pointer as of the last update.
func (s *Session[T]) Hover() Slot {
	return s.hover
}

// Index returns the current index of the lifted item.
func (s *Session[T]) Index() int {
	return s.index
}

// Offset returns the pointer position relative to the lifted item's
// corner.
func (s *Session[T]) Offset() f32.Point {
	return s.offset
}

// Pointer returns the last pointer position.
func (s *Session[T]) Pointer() f32.Point {
	return s.pointer
}

// Position returns where the lifted item's corner follows the pointer.
func (s *Session[T]) Position() f32.Point {
	return s.pointer.Sub(s.offset)
}

// move relocates s[from] to index to. Elements strictly between the two
// shift by one toward from.
func move[T any](s []T, from, to int) {
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
}

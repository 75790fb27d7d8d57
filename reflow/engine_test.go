// SPDX-License-Identifier: Unlicense OR MIT

package reflow

import (
	"image"
	"math/rand"
	"slices"
	"testing"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sizerGrid is a 3x3 grid of 100x100 buttons with a 25 pixel column gap
// and a 50 pixel row gap.
var sizerGrid = Grid{Rows: 3, Cols: 3, Gap: image.Pt(25, 50), Item: image.Pt(100, 100)}

func newEngine(t *testing.T, g Grid, n int) *Engine[int] {
	t.Helper()
	e, err := NewEngine[int](g)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		require.NoError(t, e.Add(i))
	}
	return e
}

func centerOf(g Grid, i int) f32.Point {
	return g.Center(g.SlotOf(i))
}

func TestDragScenarioInsertBefore(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)
	e.Policy = InsertBefore

	s, err := e.BeginDrag(0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Item())
	assert.Equal(t, Slot{0, 0}, s.Origin())

	u, err := e.UpdateDrag(sizerGrid.Center(Slot{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 1, 5, 6, 7, 8, 9}, u.Items)
	assert.True(t, u.Moved)
	assert.Equal(t, Slot{1, 1}, u.Hover)

	u, err = e.UpdateDrag(sizerGrid.Center(Slot{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, u.Items)

	final, err := e.EndDrag()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, final)
	assert.False(t, e.Dragging())
}

func TestDragScenarioMoveToSlot(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)

	_, err := e.BeginDrag(0)
	require.NoError(t, err)

	u, err := e.UpdateDrag(sizerGrid.Center(Slot{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 1, 6, 7, 8, 9}, u.Items)
	assert.Equal(t, 0, u.From)
	assert.Equal(t, 4, u.To)
	assert.Equal(t, 4, e.Session().Index())

	u, err = e.UpdateDrag(sizerGrid.Center(Slot{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, u.Items)

	final, err := e.EndDrag()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, final)
}

func TestDragSameSlot(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)
	_, err := e.BeginDrag(4)
	require.NoError(t, err)

	u, err := e.UpdateDrag(centerOf(e.Layout(), 4).Add(f32.Pt(30, -20)))
	require.NoError(t, err)
	assert.False(t, u.Moved)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, u.Items)
}

func TestDragPermutationAndRange(t *testing.T) {
	for _, policy := range []Policy{MoveToSlot, InsertBefore} {
		rng := rand.New(rand.NewSource(int64(policy) + 1))
		g := Grid{Rows: 4, Cols: 5, Gap: image.Pt(6, 4), Item: image.Pt(30, 20)}
		e := newEngine(t, g, 17)
		e.Policy = policy

		for round := 0; round < 20; round++ {
			_, err := e.BeginDrag(rng.Intn(e.Len()))
			require.NoError(t, err)
			before := e.Items()
			for step := 0; step < 15; step++ {
				b := g.Bounds()
				p := f32.Pt(
					float32(rng.Intn(b.Dx()+80)-40),
					float32(rng.Intn(b.Dy()+80)-40),
				)
				u, err := e.UpdateDrag(p)
				require.NoError(t, err)
				assertShifted(t, before, u)
				before = u.Items
			}
			_, err = e.EndDrag()
			require.NoError(t, err)
		}
	}
}

func TestDragToLastSlot(t *testing.T) {
	for _, policy := range []Policy{MoveToSlot, InsertBefore} {
		e := newEngine(t, sizerGrid, 9)
		e.Policy = policy
		_, err := e.BeginDrag(0)
		require.NoError(t, err)
		for _, i := range []int{4, 7, 8, 8} {
			_, err := e.UpdateDrag(centerOf(sizerGrid, i))
			require.NoError(t, err)
		}
		assert.Equal(t, 8, e.Session().Index(), "policy %d", policy)
		final, err := e.EndDrag()
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9, 1}, final, "policy %d", policy)
	}
}

func TestInsertBeforeLastSlotHalves(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)
	e.Policy = InsertBefore
	_, err := e.BeginDrag(0)
	require.NoError(t, err)

	c := centerOf(sizerGrid, 8)
	u, err := e.UpdateDrag(c.Sub(f32.Pt(30, 0)))
	require.NoError(t, err)
	assert.Equal(t, 7, u.To, "the leading half inserts before the last item")

	u, err = e.UpdateDrag(c.Add(f32.Pt(30, 0)))
	require.NoError(t, err)
	assert.Equal(t, 8, u.To, "the trailing half appends")

	_, err = e.UpdateDrag(centerOf(sizerGrid, 0))
	require.NoError(t, err)
	u, err = e.UpdateDrag(f32.Pt(10_000, 10_000))
	require.NoError(t, err)
	assert.Equal(t, 8, u.To, "past the grid appends")

	partial := newEngine(t, sizerGrid, 5)
	partial.Policy = InsertBefore
	_, err = partial.BeginDrag(0)
	require.NoError(t, err)
	u, err = partial.UpdateDrag(sizerGrid.Center(Slot{2, 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 1}, u.Items, "an empty slot appends")
}

// assertShifted checks that u only moved one item from u.From to u.To
// and shifted the items strictly in between by one slot.
func assertShifted(t *testing.T, before []int, u Update[int]) {
	t.Helper()
	after := u.Items
	require.ElementsMatch(t, before, after, "reflow must be a permutation")
	if !u.Moved {
		require.Equal(t, before, after)
		return
	}
	lo, hi := min(u.From, u.To), max(u.From, u.To)
	for i := range after {
		switch {
		case i < lo || i > hi:
			require.Equal(t, before[i], after[i], "index %d outside the moved range changed", i)
		case i == u.To:
			require.Equal(t, before[u.From], after[i])
		case u.From < u.To:
			require.Equal(t, before[i+1], after[i])
		default:
			require.Equal(t, before[i-1], after[i])
		}
	}
}

func TestCancelRestoresOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := Grid{Rows: 3, Cols: 4, Item: image.Pt(10, 10)}
	e := newEngine(t, g, 11)

	for round := 0; round < 10; round++ {
		want := e.Items()
		_, err := e.BeginDrag(rng.Intn(e.Len()))
		require.NoError(t, err)
		steps := rng.Intn(10)
		for step := 0; step < steps; step++ {
			_, err := e.UpdateDrag(centerOf(g, rng.Intn(g.Len())))
			require.NoError(t, err)
		}
		got, err := e.CancelDrag()
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, e.Items())

		// Scramble the order between rounds with a committed drag.
		_, err = e.BeginDrag(rng.Intn(e.Len()))
		require.NoError(t, err)
		_, err = e.UpdateDrag(centerOf(g, rng.Intn(e.Len())))
		require.NoError(t, err)
		_, err = e.EndDrag()
		require.NoError(t, err)
	}
}

func TestEndDragKeepsLastUpdate(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)
	_, err := e.BeginDrag(8)
	require.NoError(t, err)
	var last Update[int]
	for _, i := range []int{5, 2, 3} {
		last, err = e.UpdateDrag(centerOf(sizerGrid, i))
		require.NoError(t, err)
	}
	final, err := e.EndDrag()
	require.NoError(t, err)
	assert.Equal(t, last.Items, final)
	assert.Equal(t, 9, final[3])

	_, err = e.EndDrag()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, final, e.Items())
}

func TestDragStateMachine(t *testing.T) {
	e := newEngine(t, sizerGrid, 3)

	_, err := e.UpdateDrag(f32.Pt(1, 1))
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = e.CancelDrag()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = e.EndDrag()
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = e.BeginDrag(3)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = e.BeginDrag(-1)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = e.BeginDrag(1)
	require.NoError(t, err)
	_, err = e.BeginDrag(0)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, e.Add(4), ErrInvalidState)

	_, err = e.CancelDrag()
	require.NoError(t, err)
	assert.Nil(t, e.Session())
	_, err = e.BeginDrag(0)
	assert.NoError(t, err)
}

func TestBeginDragAt(t *testing.T) {
	e := newEngine(t, sizerGrid, 5)

	// Slot (1, 2) is empty.
	_, err := e.BeginDragAt(sizerGrid.Center(Slot{1, 2}))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = e.BeginDragAt(f32.Pt(-10, 10))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	s, err := e.BeginDragAt(f32.Pt(35, 160))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Item())
	assert.Equal(t, Slot{1, 0}, s.Origin())
	assert.Equal(t, f32.Pt(35, 10), s.Offset())
	assert.Equal(t, f32.Pt(0, 150), s.Position())

	_, err = e.UpdateDrag(f32.Pt(75, 170))
	require.NoError(t, err)
	assert.Equal(t, f32.Pt(40, 160), s.Position())
}

func TestDragClamps(t *testing.T) {
	e := newEngine(t, sizerGrid, 5)
	_, err := e.BeginDrag(0)
	require.NoError(t, err)

	// Empty slot (2, 2) clamps to the last item.
	u, err := e.UpdateDrag(sizerGrid.Center(Slot{2, 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 1}, u.Items)
	assert.Equal(t, Slot{1, 1}, u.Hover)

	// Points outside the grid clamp to the nearest slot.
	u, err = e.UpdateDrag(f32.Pt(-500, -500))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, u.Items)
	assert.Equal(t, Slot{0, 0}, u.Hover)

	u, err = e.UpdateDrag(f32.Pt(10_000, 20))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1, 4, 5}, u.Items)
}

func TestDragReportsScroll(t *testing.T) {
	e := newEngine(t, sizerGrid, 9)
	b := sizerGrid.Bounds()
	e.Viewport = Viewport{Visible: image.Rect(0, 0, 200, 200), Content: b.Size()}
	_, err := e.BeginDrag(0)
	require.NoError(t, err)

	u, err := e.UpdateDrag(f32.Pt(195, 100))
	require.NoError(t, err)
	assert.InDelta(t, 15, u.Scroll.X, 1e-4)
	assert.Zero(t, u.Scroll.Y)

	u, err = e.UpdateDrag(f32.Pt(100, 100))
	require.NoError(t, err)
	assert.Equal(t, f32.Point{}, u.Scroll)
}

func TestAddCapacity(t *testing.T) {
	e := newEngine(t, Grid{Rows: 2, Cols: 2}, 4)
	assert.ErrorIs(t, e.Add(5), ErrOutOfBounds)
	assert.Equal(t, 4, e.Len())

	grow := newEngine(t, Grid{Cols: 2, Item: image.Pt(10, 10)}, 7)
	assert.Equal(t, 4, grow.Layout().Rows)
	assert.Equal(t, image.Rect(0, 0, 20, 40), grow.Layout().Bounds())
}

func TestItemsIsACopy(t *testing.T) {
	e := newEngine(t, sizerGrid, 3)
	items := e.Items()
	items[0] = 42
	assert.Equal(t, []int{1, 2, 3}, e.Items())
}

func TestSetGrid(t *testing.T) {
	e := newEngine(t, sizerGrid, 6)
	assert.ErrorIs(t, e.SetGrid(Grid{Rows: 2, Cols: 2}), ErrOutOfBounds)
	assert.ErrorIs(t, e.SetGrid(Grid{}), ErrInvalidGrid)

	_, err := e.BeginDrag(4)
	require.NoError(t, err)
	wide := Grid{Rows: 1, Cols: 6, Item: image.Pt(10, 10)}
	require.NoError(t, e.SetGrid(wide))
	assert.Equal(t, Slot{0, 4}, e.Session().Origin())
	assert.Equal(t, Slot{0, 4}, e.Session().Hover())

	u, err := e.UpdateDrag(wide.Center(Slot{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 2, 3, 4, 6}, u.Items)
}

func TestMove(t *testing.T) {
	s := []int{0, 1, 2, 3, 4}
	move(s, 1, 3)
	assert.Equal(t, []int{0, 2, 3, 1, 4}, s)
	move(s, 3, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s)
	move(s, 4, 0)
	assert.Equal(t, []int{4, 0, 1, 2, 3}, s)
	assert.True(t, slices.IsSorted(s[1:]))
}

// SPDX-License-Identifier: Unlicense OR MIT

// Package term hosts a reflow grid in a terminal. Items are reordered by
// dragging them with the mouse.
package term

import (
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"time"

	"gioui.org/f32"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/dndgrid/dndgrid/reflow"
)

var (
	colorWhite  = lipgloss.Color("7")
	colorDim    = lipgloss.Color("8")
	colorCyan   = lipgloss.Color("6")
	colorYellow = lipgloss.Color("3")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleStatus = lipgloss.NewStyle().Foreground(colorDim)
)

// Rows above and below the grid viewport.
const (
	headerRows = 1
	footerRows = 1
)

// Options configures a Model. Sizes are in terminal cells.
type Options struct {
	Grid           reflow.Grid
	Policy         reflow.Policy
	Scroller       reflow.EdgeScroller
	ScrollInterval time.Duration
	// Logger receives drag events. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns a 3x3 grid of 8x3 cell items.
func DefaultOptions() Options {
	return Options{
		Grid:           reflow.Grid{Rows: 3, Cols: 3, Gap: image.Pt(2, 1), Item: image.Pt(8, 3)},
		Scroller:       reflow.EdgeScroller{Margin: 2, Speed: 1},
		ScrollInterval: 100 * time.Millisecond,
	}
}

// Model is a bubbletea model for a drag-and-drop grid of labels.
type Model struct {
	engine   *reflow.Engine[string]
	interval time.Duration
	logger   *log.Logger

	width, height int
	offset        image.Point
	pointer       image.Point
	delta         f32.Point
	ticking       bool
	status        string
}

type tickMsg struct{}

// New returns a model laying out items with opts.
func New(items []string, opts Options) (Model, error) {
	e, err := reflow.NewEngine[string](opts.Grid)
	if err != nil {
		return Model{}, err
	}
	e.Policy = opts.Policy
	e.Scroller = opts.Scroller
	for _, it := range items {
		if err := e.Add(it); err != nil {
			return Model{}, fmt.Errorf("term: add %q: %w", it, err)
		}
	}
	m := Model{
		engine:   e,
		interval: opts.ScrollInterval,
		logger:   opts.Logger,
		status:   "drag items with the mouse",
	}
	if m.interval <= 0 {
		m.interval = 100 * time.Millisecond
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m, nil
}

// Order returns the items in slot order.
func (m Model) Order() []string {
	return m.engine.Items()
}

// Dragging reports whether an item is lifted.
func (m Model) Dragging() bool {
	return m.engine.Dragging()
}

// ScrollOffset returns the scroll position of the grid viewport.
func (m Model) ScrollOffset() image.Point {
	return m.offset
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollBy(image.Point{})
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.cancel()
		case "up", "k":
			m.scrollBy(image.Pt(0, -1))
		case "down", "j":
			m.scrollBy(image.Pt(0, 1))
		case "left", "h":
			m.scrollBy(image.Pt(-1, 0))
		case "right", "l":
			m.scrollBy(image.Pt(1, 0))
		}
	case tea.MouseMsg:
		return m.mouse(msg)
	case tickMsg:
		m.ticking = false
		if !m.engine.Dragging() || m.delta == (f32.Point{}) {
			return m, nil
		}
		m.scrollBy(image.Pt(step(m.delta.X), step(m.delta.Y)))
		return m.move()
	}
	return m, nil
}

func (m Model) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.pointer = image.Pt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if m.engine.Dragging() {
				// The release of the previous drag was lost, as when the
				// button is let go outside the terminal.
				m.logger.Debug("press during drag, canceling the stale drag")
				m.cancel()
			}
			s, err := m.engine.BeginDragAt(m.contentPos())
			if err != nil {
				m.logger.Debug("press", "x", msg.X, "y", msg.Y, "err", err)
				return m, nil
			}
			m.delta = f32.Point{}
			m.status = fmt.Sprintf("picked %s", s.Item())
			m.logger.Debug("picked", "item", s.Item(), "slot", s.Origin())
		case tea.MouseButtonWheelUp:
			m.scrollBy(image.Pt(0, -1))
		case tea.MouseButtonWheelDown:
			m.scrollBy(image.Pt(0, 1))
		}
	case tea.MouseActionMotion:
		if m.engine.Dragging() {
			return m.move()
		}
	case tea.MouseActionRelease:
		if !m.engine.Dragging() {
			return m, nil
		}
		m, _ = m.move()
		s := m.engine.Session()
		item, to := s.Item(), s.Index()
		if _, err := m.engine.EndDrag(); err != nil {
			m.logger.Error("drop", "err", err)
			return m, nil
		}
		m.delta = f32.Point{}
		m.status = fmt.Sprintf("dropped %s at %d", item, to)
		m.logger.Info("dropped", "item", item, "index", to, "order", strings.Join(m.engine.Items(), ","))
	}
	return m, nil
}

// move updates the drag with the last pointer position and schedules an
// auto-scroll tick if the pointer is near an edge.
func (m Model) move() (Model, tea.Cmd) {
	u, err := m.engine.UpdateDrag(m.contentPos())
	if err != nil {
		return m, nil
	}
	if u.Moved {
		m.logger.Debug("moved", "from", u.From, "to", u.To, "hover", u.Hover)
	}
	m.delta = u.Scroll
	if m.delta == (f32.Point{}) || m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) cancel() {
	if !m.engine.Dragging() {
		return
	}
	item := m.engine.Session().Item()
	if _, err := m.engine.CancelDrag(); err != nil {
		m.logger.Error("cancel", "err", err)
		return
	}
	m.delta = f32.Point{}
	m.status = fmt.Sprintf("canceled %s", item)
	m.logger.Debug("canceled", "item", item)
}

// viewport returns the size of the grid area in cells.
func (m Model) viewport() image.Point {
	return image.Pt(max(m.width, 0), max(m.height-headerRows-footerRows, 0))
}

func (m *Model) scrollBy(d image.Point) {
	size := m.viewport()
	content := m.engine.Layout().Bounds().Max
	limit := content.Sub(size)
	m.offset = m.offset.Add(d)
	m.offset.X = max(0, min(m.offset.X, limit.X))
	m.offset.Y = max(0, min(m.offset.Y, limit.Y))
	m.engine.Viewport = reflow.Viewport{
		Visible: image.Rectangle{Min: m.offset, Max: m.offset.Add(size)},
		Content: content,
	}
}

// contentPos maps the pointer cell to the center of that cell in content
// coordinates.
func (m Model) contentPos() f32.Point {
	p := m.pointer.Add(m.offset).Sub(image.Pt(0, headerRows))
	return f32.Pt(float32(p.X)+.5, float32(p.Y)+.5)
}

func (m Model) View() string {
	size := m.viewport()
	c := newCanvas(size)
	l := m.engine.Layout()
	s := m.engine.Session()
	for i, item := range m.engine.Items() {
		r := l.Rect(l.SlotOf(i)).Sub(m.offset)
		if s != nil && i == s.Index() {
			c.box(r, "", inkPlaceholder)
			continue
		}
		c.box(r, item, inkItem)
	}
	if s != nil {
		pos := s.Position()
		corner := image.Pt(int(math.Floor(float64(pos.X))), int(math.Floor(float64(pos.Y))))
		r := image.Rectangle{Min: corner, Max: corner.Add(l.Item)}.Sub(m.offset)
		c.box(r, s.Item(), inkLifted)
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("dndgrid"))
	b.WriteString(styleStatus.Render("  drag to reorder · esc cancel · q quit"))
	b.WriteByte('\n')
	if size.Y > 0 {
		b.WriteString(c.render())
		b.WriteByte('\n')
	}
	b.WriteString(styleStatus.Render(m.status))
	return b.String()
}

// step rounds an auto-scroll delta to whole cells, moving at least one
// cell for any non-zero delta.
func step(d float32) int {
	switch {
	case d > 0:
		return max(1, int(math.Round(float64(d))))
	case d < 0:
		return min(-1, int(math.Round(float64(d))))
	}
	return 0
}

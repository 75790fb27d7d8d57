// SPDX-License-Identifier: Unlicense OR MIT

package cli

import (
	"context"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dndgrid/dndgrid/dnd"
	"github.com/dndgrid/dndgrid/internal/config"
)

func (a *state) guiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the grid in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.load()
			if err != nil {
				return err
			}
			g, err := newGUIGrid(c)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			go func() {
				w := new(app.Window)
				w.Option(app.Title("dndgrid"), app.Size(unit.Dp(640), unit.Dp(480)))
				if err := runWindow(ctx, w, g, logger); err != nil {
					logger.Error("window", "err", err)
					os.Exit(1)
				}
				logger.Info("final order", "items", g.Items())
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
}

// guiItem is a numbered button in the window grid.
type guiItem struct {
	label string
	click *widget.Clickable
}

func newGUIGrid(c config.Config) (*dnd.Grid[guiItem], error) {
	policy, err := config.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	g := &dnd.Grid[guiItem]{
		Rows:           c.Rows,
		Columns:        c.Cols,
		HGap:           unit.Dp(c.HGap),
		VGap:           unit.Dp(c.VGap),
		ItemWidth:      unit.Dp(c.ItemWidth),
		ItemHeight:     unit.Dp(c.ItemHeight),
		EdgeMargin:     unit.Dp(c.EdgeMargin),
		ScrollSpeed:    unit.Dp(c.ScrollSpeed),
		ScrollInterval: c.ScrollInterval(),
		Policy:         policy,
	}
	for _, l := range labels(c.Items) {
		if err := g.Add(guiItem{label: l, click: new(widget.Clickable)}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func runWindow(ctx context.Context, w *app.Window, g *dnd.Grid[guiItem], logger *log.Logger) error {
	stop := context.AfterFunc(ctx, func() {
		w.Perform(system.ActionClose)
	})
	defer stop()

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := g.Update(gtx)
				if !ok {
					break
				}
				logger.Debug("drag", "event", ev.Kind, "from", ev.From, "to", ev.To)
			}
			for _, it := range g.Items() {
				if it.click.Clicked(gtx) {
					logger.Info("clicked", "item", it.label)
				}
			}
			layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return dnd.DragGrid(th, g).Layout(gtx, func(gtx layout.Context, it guiItem) layout.Dimensions {
					return material.Button(th, it.click, it.label).Layout(gtx)
				})
			})
			e.Frame(gtx.Ops)
		}
	}
}

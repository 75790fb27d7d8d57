// SPDX-License-Identifier: Unlicense OR MIT

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dndgrid/dndgrid/internal/config"
	"github.com/dndgrid/dndgrid/reflow"
	"github.com/dndgrid/dndgrid/term"
)

func (a *state) tuiCommand() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the grid in the terminal",
		Long:  `Run the grid in the terminal. The terminal owns stderr while the grid is shown, so logs go to --log-file or nowhere.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.load()
			if err != nil {
				return err
			}
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			logger := newLogger(w, loggerFromContext(cmd.Context()).GetLevel())

			m, err := newTermModel(c, logger)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(term.Model); ok {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(fm.Order(), " "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}

func newTermModel(c config.Config, logger *log.Logger) (term.Model, error) {
	policy, err := config.ParsePolicy(c.Policy)
	if err != nil {
		return term.Model{}, err
	}
	return term.New(labels(c.Items), term.Options{
		Grid:           c.TermGrid(),
		Policy:         policy,
		Scroller:       reflow.EdgeScroller{Margin: c.Term.EdgeMargin, Speed: c.Term.ScrollSpeed},
		ScrollInterval: c.ScrollInterval(),
		Logger:         logger,
	})
}

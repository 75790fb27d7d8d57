// SPDX-License-Identifier: Unlicense OR MIT

// Package cli implements the dndgrid command-line interface.
//
// The gui command opens a Gio window and the tui command runs the same grid
// in the terminal. Both read their geometry from a TOML config file, DNDGRID_
// environment variables and flags, in increasing order of priority.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dndgrid/dndgrid/internal/config"
)

// version is set at link time.
var version = "dev"

// state is shared by all commands.
type state struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
}

// Execute runs the dndgrid command line with the process arguments.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	a := new(state)
	root := &cobra.Command{
		Use:          "dndgrid",
		Short:        "Reorder a grid of items by dragging them",
		Long:         `dndgrid lays items out in a fixed grid and lets you reorder them with the mouse, in a window or in the terminal.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(withLogger(cmd.Context(), logger))

			v, err := config.Open(a.cfgFile)
			if err != nil {
				return err
			}
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			a.v = v
			if used := v.ConfigFileUsed(); used != "" {
				logger.Debug("config loaded", "file", used)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/"+config.FileName+".toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	addGridFlags(flags)

	root.AddCommand(a.guiCommand())
	root.AddCommand(a.tuiCommand())
	root.AddCommand(a.configCommand())
	return root
}

// gridFlags are the flags that override config keys of the same name.
var gridFlags = []string{"rows", "cols", "items", "policy", "hgap", "vgap", "item-width", "item-height"}

func addGridFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.Int("rows", d.Rows, "grid rows, 0 grows with the item count")
	flags.Int("cols", d.Cols, "grid columns, 0 grows with the item count")
	flags.Int("items", d.Items, "number of items")
	flags.String("policy", d.Policy, "where a dragged item lands: move or insert-before")
	flags.Int("hgap", d.HGap, "gap between columns in dp")
	flags.Int("vgap", d.VGap, "gap between rows in dp")
	flags.Int("item-width", d.ItemWidth, "item width in dp")
	flags.Int("item-height", d.ItemHeight, "item height in dp")
}

// bindFlags makes explicitly set flags take priority over the config file
// and the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, name := range gridFlags {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(name, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// load returns the effective configuration.
func (a *state) load() (config.Config, error) {
	if a.v == nil {
		return config.Config{}, fmt.Errorf("config not initialized")
	}
	return config.Load(a.v)
}

// labels returns the item labels "1" to "n".
func labels(n int) []string {
	l := make([]string, n)
	for i := range l {
		l[i] = strconv.Itoa(i + 1)
	}
	return l
}

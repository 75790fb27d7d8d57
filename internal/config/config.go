// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the grid configuration from a TOML file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/dndgrid/dndgrid/reflow"
)

// FileName is the base name of the config file searched for in the home
// and working directories.
const FileName = ".dndgrid"

// EnvPrefix prefixes environment overrides, as in DNDGRID_ROWS.
const EnvPrefix = "dndgrid"

// Config is the grid configuration. Sizes are in dp for the window and in
// cells for the terminal.
type Config struct {
	Rows       int    `mapstructure:"rows" toml:"rows"`
	Cols       int    `mapstructure:"cols" toml:"cols"`
	Items      int    `mapstructure:"items" toml:"items"`
	Policy     string `mapstructure:"policy" toml:"policy"`
	HGap       int    `mapstructure:"hgap" toml:"hgap"`
	VGap       int    `mapstructure:"vgap" toml:"vgap"`
	ItemWidth  int    `mapstructure:"item-width" toml:"item-width"`
	ItemHeight int    `mapstructure:"item-height" toml:"item-height"`
	EdgeMargin int    `mapstructure:"edge-margin" toml:"edge-margin"`
	// ScrollSpeed is the largest auto-scroll step.
	ScrollSpeed int `mapstructure:"scroll-speed" toml:"scroll-speed"`
	// ScrollIntervalMS is the time between auto-scroll steps.
	ScrollIntervalMS int   `mapstructure:"scroll-interval-ms" toml:"scroll-interval-ms"`
	Term             Cells `mapstructure:"tui" toml:"tui"`
}

// Cells is the terminal geometry.
type Cells struct {
	HGap        int `mapstructure:"hgap" toml:"hgap"`
	VGap        int `mapstructure:"vgap" toml:"vgap"`
	ItemWidth   int `mapstructure:"item-width" toml:"item-width"`
	ItemHeight  int `mapstructure:"item-height" toml:"item-height"`
	EdgeMargin  int `mapstructure:"edge-margin" toml:"edge-margin"`
	ScrollSpeed int `mapstructure:"scroll-speed" toml:"scroll-speed"`
}

// Default returns a 3x3 grid of nine 100dp items with a 25dp column gap
// and a 50dp row gap.
func Default() Config {
	return Config{
		Rows:             3,
		Cols:             3,
		Items:            9,
		Policy:           "move",
		HGap:             25,
		VGap:             50,
		ItemWidth:        100,
		ItemHeight:       100,
		EdgeMargin:       20,
		ScrollSpeed:      20,
		ScrollIntervalMS: 100,
		Term: Cells{
			HGap:        2,
			VGap:        1,
			ItemWidth:   8,
			ItemHeight:  3,
			EdgeMargin:  2,
			ScrollSpeed: 1,
		},
	}
}

// Open returns a viper instance reading path, or the first FileName.toml
// found in the home and working directories when path is empty. A missing
// default file is not an error.
func Open(path string) (*viper.Viper, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(v, path), err)
		}
	}
	return v, nil
}

func describe(v *viper.Viper, path string) string {
	if path != "" {
		return path
	}
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return FileName + ".toml"
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("rows", c.Rows)
	v.SetDefault("cols", c.Cols)
	v.SetDefault("items", c.Items)
	v.SetDefault("policy", c.Policy)
	v.SetDefault("hgap", c.HGap)
	v.SetDefault("vgap", c.VGap)
	v.SetDefault("item-width", c.ItemWidth)
	v.SetDefault("item-height", c.ItemHeight)
	v.SetDefault("edge-margin", c.EdgeMargin)
	v.SetDefault("scroll-speed", c.ScrollSpeed)
	v.SetDefault("scroll-interval-ms", c.ScrollIntervalMS)
	v.SetDefault("tui.hgap", c.Term.HGap)
	v.SetDefault("tui.vgap", c.Term.VGap)
	v.SetDefault("tui.item-width", c.Term.ItemWidth)
	v.SetDefault("tui.item-height", c.Term.ItemHeight)
	v.SetDefault("tui.edge-margin", c.Term.EdgeMargin)
	v.SetDefault("tui.scroll-speed", c.Term.ScrollSpeed)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

// Validate checks that c describes a grid holding Items items.
func (c Config) Validate() error {
	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Items < 0 {
		return fmt.Errorf("config: negative item count %d", c.Items)
	}
	for _, g := range []reflow.Grid{c.Grid(), c.TermGrid()} {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if n := g.Capacity(); n >= 0 && c.Items > n {
			return fmt.Errorf("config: %d items do not fit a %dx%d grid: %w", c.Items, c.Rows, c.Cols, reflow.ErrOutOfBounds)
		}
	}
	switch {
	case c.EdgeMargin < 0 || c.Term.EdgeMargin < 0:
		return fmt.Errorf("config: negative edge margin")
	case c.ScrollSpeed < 0 || c.Term.ScrollSpeed < 0:
		return fmt.Errorf("config: negative scroll speed")
	case c.ScrollIntervalMS < 0:
		return fmt.Errorf("config: negative scroll interval %dms", c.ScrollIntervalMS)
	}
	return nil
}

// Grid returns the window grid in dp.
func (c Config) Grid() reflow.Grid {
	return reflow.Grid{
		Rows: c.Rows,
		Cols: c.Cols,
		Gap:  image.Pt(c.HGap, c.VGap),
		Item: image.Pt(c.ItemWidth, c.ItemHeight),
	}
}

// TermGrid returns the terminal grid in cells.
func (c Config) TermGrid() reflow.Grid {
	return reflow.Grid{
		Rows: c.Rows,
		Cols: c.Cols,
		Gap:  image.Pt(c.Term.HGap, c.Term.VGap),
		Item: image.Pt(c.Term.ItemWidth, c.Term.ItemHeight),
	}
}

// ScrollInterval returns the time between auto-scroll steps.
func (c Config) ScrollInterval() time.Duration {
	return time.Duration(c.ScrollIntervalMS) * time.Millisecond
}

// ParsePolicy maps a policy name to a reflow.Policy.
func ParsePolicy(name string) (reflow.Policy, error) {
	switch name {
	case "", "move":
		return reflow.MoveToSlot, nil
	case "insert-before":
		return reflow.InsertBefore, nil
	}
	return 0, fmt.Errorf("config: unknown policy %q (want move or insert-before)", name)
}

// Package config handles configuration loading and validation for binmap.
package config

import (
	"fmt"
	"os"

	"binmap/internal/binlist"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Window WindowConfig `yaml:"window"`
	Layout LayoutConfig `yaml:"layout"`
	View   ViewConfig   `yaml:"view"`
	Map    MapConfig    `yaml:"map"`
	Log    LogConfig    `yaml:"log"`
}

type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
}

type LayoutConfig struct {
	ItemWidth     int `yaml:"item_width"`
	ItemHeight    int `yaml:"item_height"`
	SpaceX        int `yaml:"space_x"`
	SpaceY        int `yaml:"space_y"`
	CommentColumn int `yaml:"comment_column"`
	MarginLeft    int `yaml:"margin_left"`
	MarginTop     int `yaml:"margin_top"`
}

type ViewConfig struct {
	// Format is the display format of newly loaded bytes: hex, dec, bin or ascii.
	Format string `yaml:"format"`
	// MaxFileSize caps the size of files opened in the viewer, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
}

type MapConfig struct {
	Compression bool   `yaml:"compression"`
	Password    string `yaml:"password"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() Config {
	g := binlist.DefaultGeometry()
	return Config{
		Window: WindowConfig{
			Title:     "Binmap",
			Width:     1024,
			Height:    720,
			MinWidth:  480,
			MinHeight: 320,
		},
		Layout: LayoutConfig{
			ItemWidth:     g.Item.X,
			ItemHeight:    g.Item.Y,
			SpaceX:        g.Space.X,
			SpaceY:        g.Space.Y,
			CommentColumn: g.CommentColumn,
			MarginLeft:    g.MarginLeft,
			MarginTop:     g.MarginTop,
		},
		View: ViewConfig{
			Format:      "hex",
			MaxFileSize: 64 << 20,
		},
		Map: MapConfig{Compression: true},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from path. If path is empty or doesn't exist,
// the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Window.Title == "" {
		c.Window.Title = defaults.Window.Title
	}
	if c.Window.Width == 0 {
		c.Window.Width = defaults.Window.Width
	}
	if c.Window.Height == 0 {
		c.Window.Height = defaults.Window.Height
	}
	if c.Layout.ItemWidth == 0 {
		c.Layout.ItemWidth = defaults.Layout.ItemWidth
	}
	if c.Layout.ItemHeight == 0 {
		c.Layout.ItemHeight = defaults.Layout.ItemHeight
	}
	if c.Layout.CommentColumn == 0 {
		c.Layout.CommentColumn = defaults.Layout.CommentColumn
	}
	if c.View.Format == "" {
		c.View.Format = defaults.View.Format
	}
	if c.View.MaxFileSize == 0 {
		c.View.MaxFileSize = defaults.View.MaxFileSize
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Window.Width < c.Window.MinWidth || c.Window.Height < c.Window.MinHeight {
		return fmt.Errorf("window size %dx%d is below the minimum %dx%d",
			c.Window.Width, c.Window.Height, c.Window.MinWidth, c.Window.MinHeight)
	}
	if c.Layout.ItemWidth < 1 || c.Layout.ItemHeight < 1 {
		return fmt.Errorf("layout item size must be at least 1x1")
	}
	if c.Layout.SpaceX < 0 || c.Layout.SpaceY < 0 {
		return fmt.Errorf("layout spacing cannot be negative")
	}
	if c.Layout.MarginLeft < 0 || c.Layout.MarginTop < 0 {
		return fmt.Errorf("layout margins cannot be negative")
	}
	if c.Layout.CommentColumn < 0 {
		return fmt.Errorf("layout.comment_column cannot be negative")
	}
	if _, err := binlist.ParseFormat(c.View.Format); err != nil {
		return fmt.Errorf("view.format: %w", err)
	}
	if c.View.MaxFileSize < 0 {
		return fmt.Errorf("view.max_file_size cannot be negative")
	}
	return nil
}

// Geometry returns the list geometry for a viewport of w by h pixels.
func (c *Config) Geometry(w, h int) binlist.Geometry {
	return binlist.Geometry{
		Width:         w,
		Height:        h,
		Item:          binlist.Point{X: c.Layout.ItemWidth, Y: c.Layout.ItemHeight},
		Space:         binlist.Point{X: c.Layout.SpaceX, Y: c.Layout.SpaceY},
		CommentColumn: c.Layout.CommentColumn,
		MarginLeft:    c.Layout.MarginLeft,
		MarginTop:     c.Layout.MarginTop,
	}
}

// Format returns the configured default display format.
func (c *Config) Format() binlist.Format {
	f, _ := binlist.ParseFormat(c.View.Format)
	return f
}

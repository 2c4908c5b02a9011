package config

import (
	"os"
	"path/filepath"
	"testing"

	"binmap/internal/binlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "binmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "hex", cfg.View.Format)
}

func TestLoadOverridesAndFillsZeroValues(t *testing.T) {
	path := writeConfig(t, `
window:
  title: ""
  width: 800
layout:
  item_width: 24
  space_x: 0
view:
  format: bin
map:
  compression: false
  password: hunter2
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Binmap", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 24, cfg.Layout.ItemWidth)
	assert.Equal(t, 20, cfg.Layout.ItemHeight)
	assert.Equal(t, 0, cfg.Layout.SpaceX)
	assert.Equal(t, binlist.FormatBinary, cfg.Format())
	assert.False(t, cfg.Map.Compression)
	assert.Equal(t, "hunter2", cfg.Map.Password)
	assert.Equal(t, "debug", cfg.Log.Level)

	g := cfg.Geometry(640, 480)
	assert.Equal(t, 640, g.Width)
	assert.Equal(t, binlist.Point{X: 24, Y: 20}, g.Item)
	assert.Equal(t, binlist.DefaultCommentColumn, g.CommentColumn)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad format", "view:\n  format: octal\n", "view.format"},
		{"negative spacing", "layout:\n  space_y: -1\n", "spacing cannot be negative"},
		{"window below minimum", "window:\n  width: 100\n", "below the minimum"},
		{"negative max size", "view:\n  max_file_size: -5\n", "max_file_size"},
		{"malformed yaml", "window: [\n", "parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

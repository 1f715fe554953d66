package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// resolveArgs runs the app with args and returns the resolved config instead of opening a window.
func resolveArgs(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	var (
		cfg Config
		err error
	)
	app := newApp()
	app.Action = func(c *cli.Context) error {
		cfg, err = resolveConfig(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"oxyview"}, args...)))
	return cfg, err
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, backendGL, cfg.Backend)
	assert.Equal(t, [4]uint8{100, 149, 237, 255}, cfg.Window.ClearColor)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
backend = "wgpu"
asset_root = "assets"
hot_reload = true

[window]
title = "tiles"
width = 800
clear_color = [0, 0, 0, 255]

[sheet]
path = "dungeon.png"
tile_width = 32
scale = 1.5
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, backendWGPU, cfg.Backend)
	assert.Equal(t, "assets", cfg.AssetRoot)
	assert.True(t, cfg.HotReload)
	assert.Equal(t, "tiles", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep their defaults")
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, cfg.Window.ClearColor)
	assert.Equal(t, "dungeon.png", cfg.Sheet.Path)
	assert.Equal(t, 32, cfg.Sheet.TileWidth)
	assert.Equal(t, 16, cfg.Sheet.TileHeight)
	assert.Equal(t, float32(1.5), cfg.Sheet.Scale)
	assert.NoError(t, cfg.validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "[sheet]\ntile_size = 16\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = loadConfig(writeConfig(t, "backend = \n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	valid := defaultConfig()
	valid.Sheet.Path = "tiles.png"
	require.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "vulkan" }},
		{"no sheet", func(c *Config) { c.Sheet.Path = "" }},
		{"zero tile width", func(c *Config) { c.Sheet.TileWidth = 0 }},
		{"negative spacing", func(c *Config) { c.Sheet.Spacing = -1 }},
		{"zero scale", func(c *Config) { c.Sheet.Scale = 0 }},
		{"vertex shader only", func(c *Config) { c.Shader.Vertex = "sprite.vert" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, `
backend = "wgpu"
[sheet]
path = "from-file.png"
columns = 8
`)
	cfg, err := resolveArgs(t, "--config", path, "--sheet", "from-flag.png", "--tile-width", "24", "--vsync=false", "--leak-check")
	require.NoError(t, err)
	assert.Equal(t, backendWGPU, cfg.Backend, "flags left unset keep the file value")
	assert.Equal(t, "from-flag.png", cfg.Sheet.Path)
	assert.Equal(t, 24, cfg.Sheet.TileWidth)
	assert.Equal(t, 8, cfg.Sheet.Columns)
	assert.False(t, cfg.Window.VSync)
	assert.True(t, cfg.LeakCheck)
}

func TestFlagsWithoutSheet(t *testing.T) {
	_, err := resolveArgs(t, "--backend", "gl")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = resolveArgs(t, "--sheet", "tiles.png", "--backend", "metal")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

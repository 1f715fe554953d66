package main

import (
	"bytes"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// ErrInvalidConfig reports a configuration file or flag value the viewer cannot use.
var ErrInvalidConfig = errors.New("invalid config")

const (
	backendGL   = "gl"
	backendWGPU = "wgpu"
)

// Config is the viewer configuration. It is read from a TOML file and then overridden by flags.
type Config struct {
	Backend   string `toml:"backend"`
	AssetRoot string `toml:"asset_root"`
	HotReload bool   `toml:"hot_reload"`
	LeakCheck bool   `toml:"leak_check"`
	Profiling bool   `toml:"profiling"`
	LogLevel  string `toml:"log_level"`

	Window WindowConfig `toml:"window"`
	Sheet  SheetConfig  `toml:"sheet"`
	Shader ShaderConfig `toml:"shader"`
}

type WindowConfig struct {
	Title      string   `toml:"title"`
	Width      int      `toml:"width"`
	Height     int      `toml:"height"`
	VSync      bool     `toml:"vsync"`
	ClearColor [4]uint8 `toml:"clear_color"`
}

// SheetConfig describes the sprite sheet and how its tiles are laid out on screen.
type SheetConfig struct {
	Path       string  `toml:"path"`
	TileWidth  int     `toml:"tile_width"`
	TileHeight int     `toml:"tile_height"`
	Columns    int     `toml:"columns"`
	Spacing    int     `toml:"spacing"`
	Scale      float32 `toml:"scale"`
	Outline    bool    `toml:"outline"`
}

// ShaderConfig names shader files below the asset root. Empty paths use the built-in shader of the backend.
type ShaderConfig struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

func defaultConfig() Config {
	return Config{
		Backend:   backendGL,
		AssetRoot: ".",
		LogLevel:  "info",
		Window: WindowConfig{
			Title:      "oxyview",
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: [4]uint8{common.CornflowerBlue.R, common.CornflowerBlue.G, common.CornflowerBlue.B, 255},
		},
		Sheet: SheetConfig{
			TileWidth:  16,
			TileHeight: 16,
			Columns:    16,
			Spacing:    4,
			Scale:      2,
			Outline:    true,
		},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
//
// Parameters:
//   - path: the TOML file, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: the read error, or ErrInvalidConfig for malformed or unknown keys
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, errors.Wrapf(ErrInvalidConfig, "%s: %s", path, strict.String())
		}
		return cfg, errors.Wrapf(ErrInvalidConfig, "%s: %v", path, err)
	}
	return cfg, nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(c *cli.Context, cfg *Config) {
	if c.IsSet(backendFlag.Name) {
		cfg.Backend = c.String(backendFlag.Name)
	}
	if c.IsSet(assetsFlag.Name) {
		cfg.AssetRoot = c.String(assetsFlag.Name)
	}
	if c.IsSet(sheetFlag.Name) {
		cfg.Sheet.Path = c.String(sheetFlag.Name)
	}
	if c.IsSet(tileWidthFlag.Name) {
		cfg.Sheet.TileWidth = c.Int(tileWidthFlag.Name)
	}
	if c.IsSet(tileHeightFlag.Name) {
		cfg.Sheet.TileHeight = c.Int(tileHeightFlag.Name)
	}
	if c.IsSet(columnsFlag.Name) {
		cfg.Sheet.Columns = c.Int(columnsFlag.Name)
	}
	if c.IsSet(widthFlag.Name) {
		cfg.Window.Width = c.Int(widthFlag.Name)
	}
	if c.IsSet(heightFlag.Name) {
		cfg.Window.Height = c.Int(heightFlag.Name)
	}
	if c.IsSet(vsyncFlag.Name) {
		cfg.Window.VSync = c.Bool(vsyncFlag.Name)
	}
	if c.IsSet(hotReloadFlag.Name) {
		cfg.HotReload = c.Bool(hotReloadFlag.Name)
	}
	if c.IsSet(leakCheckFlag.Name) {
		cfg.LeakCheck = c.Bool(leakCheckFlag.Name)
	}
	if c.IsSet(profileFlag.Name) {
		cfg.Profiling = c.Bool(profileFlag.Name)
	}
	if c.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = c.String(logLevelFlag.Name)
	}
}

func (cfg Config) validate() error {
	switch cfg.Backend {
	case backendGL, backendWGPU:
	default:
		return errors.Wrapf(ErrInvalidConfig, "backend %q, want %q or %q", cfg.Backend, backendGL, backendWGPU)
	}
	if cfg.Sheet.Path == "" {
		return errors.Wrap(ErrInvalidConfig, "no sprite sheet given")
	}
	if cfg.Sheet.TileWidth <= 0 || cfg.Sheet.TileHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "tile size %dx%d", cfg.Sheet.TileWidth, cfg.Sheet.TileHeight)
	}
	if cfg.Sheet.Columns <= 0 || cfg.Sheet.Scale <= 0 || cfg.Sheet.Spacing < 0 {
		return errors.Wrapf(ErrInvalidConfig, "layout of %d columns at scale %g with spacing %d", cfg.Sheet.Columns, cfg.Sheet.Scale, cfg.Sheet.Spacing)
	}
	if (cfg.Shader.Vertex == "") != (cfg.Shader.Fragment == "") {
		return errors.Wrap(ErrInvalidConfig, "shader needs both a vertex and a fragment file")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, errors.Wrapf(ErrInvalidConfig, "log level %q", s)
	}
	return level, nil
}

// Command oxyview shows every tile of a sprite sheet in a grid, on OpenGL or WebGPU.
//
// Usage:
//
//	oxyview --sheet tiles.png --tile-width 16 --tile-height 16
//	oxyview --config viewer.toml --backend wgpu
//
// WASD, the arrow keys or a middle-button drag pan the view. Minus, equal and the scroll wheel zoom.
// G toggles tile outlines, R resets the view and Esc quits.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

func init() {
	// GLFW and the GL context belong to the main thread.
	runtime.LockOSThread()
}

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "TOML configuration file",
		EnvVars: []string{"OXYVIEW_CONFIG"},
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "graphics backend, gl or wgpu",
		Value: backendGL,
	}
	assetsFlag = &cli.StringFlag{
		Name:  "assets",
		Usage: "asset root directory",
		Value: ".",
	}
	sheetFlag = &cli.StringFlag{
		Name:  "sheet",
		Usage: "sprite sheet image, relative to the asset root",
	}
	tileWidthFlag = &cli.IntFlag{
		Name:  "tile-width",
		Usage: "tile width in pixels",
		Value: 16,
	}
	tileHeightFlag = &cli.IntFlag{
		Name:  "tile-height",
		Usage: "tile height in pixels",
		Value: 16,
	}
	columnsFlag = &cli.IntFlag{
		Name:  "columns",
		Usage: "tiles per row on screen",
		Value: 16,
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "window width",
		Value: 1280,
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "window height",
		Value: 720,
	}
	vsyncFlag = &cli.BoolFlag{
		Name:  "vsync",
		Usage: "synchronize presentation with the display",
		Value: true,
	}
	hotReloadFlag = &cli.BoolFlag{
		Name:  "hot-reload",
		Usage: "reload the sheet and shaders when their files change",
	}
	leakCheckFlag = &cli.BoolFlag{
		Name:  "leak-check",
		Usage: "fail on exit when GPU resources were not disposed",
	}
	profileFlag = &cli.BoolFlag{
		Name:  "profile",
		Usage: "log frame and memory statistics every second",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
		Value: "info",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "oxyview",
		Usage: "browse the tiles of a sprite sheet",
		Flags: []cli.Flag{
			configFlag,
			backendFlag,
			assetsFlag,
			sheetFlag,
			tileWidthFlag,
			tileHeightFlag,
			columnsFlag,
			widthFlag,
			heightFlag,
			vsyncFlag,
			hotReloadFlag,
			leakCheckFlag,
			profileFlag,
			logLevelFlag,
		},
		Action: view,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file named by the flags and applies the flag overrides.
func resolveConfig(c *cli.Context) (Config, error) {
	cfg, err := loadConfig(c.String(configFlag.Name))
	if err != nil {
		return cfg, err
	}
	applyFlags(c, &cfg)
	return cfg, cfg.validate()
}

func view(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)

	v, err := newViewer(cfg, logger)
	if err != nil {
		return err
	}
	runErr := v.run()
	if err := v.dispose(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

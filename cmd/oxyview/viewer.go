package main

import (
	_ "embed"
	"log/slog"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/asset"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/gldriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/wgpudriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/sprite"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

var (
	//go:embed shaders/sprite.vert
	spriteVertexGLSL string
	//go:embed shaders/sprite.frag
	spriteFragmentGLSL string
	//go:embed shaders/sprite.wgsl
	spriteWGSL string
)

const (
	// panSpeed is in screen pixels per second.
	panSpeed = 400
	// zoomStep is the zoom delta applied per key press.
	zoomStep = 0.1
)

var outlineColor = common.RGBA(255, 255, 255, 96)

type viewer struct {
	cfg    Config
	logger *slog.Logger

	win     window.Window
	wgpu    *wgpudriver.Driver
	ctx     renderer.RenderContext
	assets  asset.Manager
	eng     engine.Engine
	program renderer.ShaderProgram
	sprites sprite.SpriteBatch
	lines   sprite.LineBatch
	tileset *sprite.Tileset
	cam     camera.Camera

	held        map[uint32]bool
	showOutline bool
	lastError   string

	dragging     bool
	dragX, dragY int32
}

// newViewer opens the window, creates the backend and loads the sheet.
// On failure everything created so far is released.
func newViewer(cfg Config, logger *slog.Logger) (v *viewer, err error) {
	v = &viewer{
		cfg:         cfg,
		logger:      logger,
		held:        make(map[uint32]bool),
		showOutline: cfg.Sheet.Outline,
	}
	defer func() {
		if err != nil {
			_ = v.dispose()
			v = nil
		}
	}()

	api := window.ClientAPIOpenGL
	if cfg.Backend == backendWGPU {
		api = window.ClientAPINone
	}
	v.win = window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithClientAPI(api),
		window.WithVSync(cfg.Window.VSync),
	)

	drv, present, err := v.openDriver()
	if err != nil {
		return v, err
	}
	v.ctx, err = renderer.NewRenderContext(drv,
		renderer.WithLogger(logger),
		renderer.WithLeakCheck(cfg.LeakCheck),
	)
	if err != nil {
		return v, err
	}
	v.ctx.SetDepthTest(false)
	v.ctx.SetCullBackfaces(false)
	v.ctx.SetBlend(true)
	v.ctx.SetBlendFunc(driver.BlendSrcAlpha, driver.BlendOneMinusSrcAlpha)
	c := cfg.Window.ClearColor
	v.ctx.SetClearColor(common.RGBA(c[0], c[1], c[2], c[3]))
	v.ctx.SetViewport(common.NewRectangle(0, 0, v.win.Width(), v.win.Height()))

	var managerOptions []asset.ManagerOption
	if cfg.HotReload {
		managerOptions = append(managerOptions, asset.WithHotReload())
	}
	if v.assets, err = asset.NewManager(v.ctx, cfg.AssetRoot, managerOptions...); err != nil {
		return v, err
	}
	if err := v.loadAssets(); err != nil {
		return v, err
	}

	v.cam = camera.NewCamera(
		camera.WithViewport(float32(v.win.Width()), float32(v.win.Height())),
		camera.WithController(camera.NewCameraController(camera.WithZoomLimits(0.25, 8))),
	)
	v.resetView()

	v.eng = engine.NewEngine(
		engine.WithWindow(v.win),
		engine.WithRenderContext(v.ctx),
		engine.WithDispatcher(v.assets.Dispatcher()),
		engine.WithPresenter(present),
		engine.WithProfiling(cfg.Profiling),
		engine.WithLogger(logger),
	)
	v.eng.SetRenderCallback(v.render)
	v.eng.SetResizeCallback(v.resize)
	v.win.SetKeyDownCallback(v.keyDown)
	v.win.SetKeyUpCallback(func(key uint32) { delete(v.held, key) })
	v.win.SetScrollCallback(func(delta float32) { v.cam.Controller().ZoomBy(delta) })
	v.win.SetMiddleMouseDownCallback(func(x, y int32) { v.dragging, v.dragX, v.dragY = true, x, y })
	v.win.SetMiddleMouseUpCallback(func(x, y int32) { v.dragging = false })
	v.win.SetMouseMoveCallback(v.drag)
	return v, nil
}

// openDriver creates the driver for the configured backend and the function presenting a frame.
func (v *viewer) openDriver() (driver.Driver, func(), error) {
	if v.cfg.Backend == backendWGPU {
		d, err := wgpudriver.NewFromWindow(v.win,
			wgpudriver.WithVSync(v.cfg.Window.VSync),
			wgpudriver.WithLogger(v.logger),
		)
		if err != nil {
			return nil, nil, err
		}
		v.wgpu = d
		return d, d.Present, nil
	}
	d, err := gldriver.New()
	if err != nil {
		return nil, nil, err
	}
	return d, v.win.SwapBuffers, nil
}

func (v *viewer) loadAssets() error {
	tex, err := v.assets.LoadTexture2D(v.cfg.Sheet.Path)
	if err != nil {
		return err
	}
	if err := tex.SetMinFilter(driver.FilterNearest); err != nil {
		return err
	}
	if err := tex.SetMagFilter(driver.FilterNearest); err != nil {
		return err
	}
	if v.tileset, err = sprite.NewTilesetFromTileSize(tex, v.cfg.Sheet.TileWidth, v.cfg.Sheet.TileHeight); err != nil {
		return err
	}

	if v.cfg.Shader.Vertex != "" {
		v.program, err = v.assets.LoadShader(v.cfg.Shader.Vertex, v.cfg.Shader.Fragment)
	} else {
		v.program, err = v.builtinProgram()
	}
	if err != nil {
		return err
	}

	if v.sprites, err = sprite.NewSpriteBatch(v.ctx, sprite.WithLabel("tiles")); err != nil {
		return err
	}
	v.assets.AddDisposable(v.sprites)
	if v.lines, err = sprite.NewLineBatch(v.ctx, sprite.WithLabel("outlines")); err != nil {
		return err
	}
	v.assets.AddDisposable(v.lines)
	v.logger.Info("sprite sheet loaded",
		slog.String("path", v.assets.Resolve(v.cfg.Sheet.Path)),
		slog.Int("columns", v.tileset.Columns()),
		slog.Int("rows", v.tileset.Rows()))
	return nil
}

func (v *viewer) builtinProgram() (renderer.ShaderProgram, error) {
	vs, fs := spriteVertexGLSL, spriteFragmentGLSL
	if v.cfg.Backend == backendWGPU {
		vs, fs = spriteWGSL, spriteWGSL
	}
	program, err := renderer.NewShaderProgram(v.ctx, vs, fs)
	if err != nil {
		return nil, err
	}
	program.SetLabel("sprite")
	program.TrySetUniformInt("atlas", 0)
	v.assets.AddDisposable(program)
	return program, nil
}

func (v *viewer) run() error {
	v.win.SetTitle(v.cfg.Window.Title + " - " + filepath.Base(v.cfg.Sheet.Path))
	return v.eng.Run()
}

// resetView centers the grid and fits it into the window.
func (v *viewer) resetView() {
	w, h := v.gridSize()
	vw, vh := v.cam.Viewport()
	ctrl := v.cam.Controller()
	ctrl.SetPosition(mgl32.Vec2{float32(w) / 2, float32(h) / 2})
	ctrl.SetZoom(min(1, min(vw/float32(max(w, 1)), vh/float32(max(h, 1)))))
	ctrl.SetRotation(0)
	v.cam.Update()
}

func (v *viewer) gridSize() (int, int) {
	rects := tileLayout(v.tileset.TileCount(), v.cfg.Sheet.Columns, v.tileset.TileWidth(), v.tileset.TileHeight(), v.cfg.Sheet.Scale, v.cfg.Sheet.Spacing)
	return layoutBounds(rects)
}

func (v *viewer) resize(width, height int) {
	if v.wgpu != nil {
		if err := v.wgpu.Resize(width, height); err != nil {
			v.logger.Error("resize surface", "error", err)
		}
	}
	v.cam.SetViewport(float32(width), float32(height))
}

func (v *viewer) keyDown(key uint32) {
	switch key {
	case common.KeyEsc:
		v.eng.Quit()
	case common.KeyG:
		v.showOutline = !v.showOutline
	case common.KeyR:
		v.resetView()
	case common.KeyMinus:
		v.cam.Controller().ZoomBy(-zoomStep)
	case common.KeyEqual:
		v.cam.Controller().ZoomBy(zoomStep)
	default:
		v.held[key] = true
	}
}

// pan converts the held movement keys into a screen-space offset for dt seconds.
func (v *viewer) pan(dt float32) (dx, dy float32) {
	step := panSpeed * dt
	if v.held[common.KeyA] || v.held[common.KeyLeft] {
		dx -= step
	}
	if v.held[common.KeyD] || v.held[common.KeyRight] {
		dx += step
	}
	if v.held[common.KeyW] || v.held[common.KeyUp] {
		dy -= step
	}
	if v.held[common.KeyS] || v.held[common.KeyDown] {
		dy += step
	}
	return dx, dy
}

// drag moves the view with the cursor while the middle button is held.
func (v *viewer) drag(x, y int32) {
	if !v.dragging {
		return
	}
	v.cam.Controller().PanBy(float32(v.dragX-x), float32(v.dragY-y))
	v.dragX, v.dragY = x, y
}

func (v *viewer) render(dt float32) {
	if dx, dy := v.pan(dt); dx != 0 || dy != 0 {
		v.cam.Controller().PanBy(dx, dy)
	}
	v.cam.Update()

	v.ctx.Clear()
	if err := v.drawTiles(); err != nil {
		v.reportError(err)
		return
	}
	v.lastError = ""
}

func (v *viewer) drawTiles() error {
	ts := v.tileset
	rects := tileLayout(ts.TileCount(), v.cfg.Sheet.Columns, ts.TileWidth(), ts.TileHeight(), v.cfg.Sheet.Scale, v.cfg.Sheet.Spacing)
	transform := v.cam.Transform()

	if err := v.sprites.BeginWithTransform(v.program, transform); err != nil {
		return err
	}
	for i, dest := range rects {
		if err := v.sprites.DrawTile(ts, i%ts.Columns(), i/ts.Columns(), dest, common.White, sprite.FlipNone); err != nil {
			_ = v.sprites.End()
			return err
		}
	}
	if err := v.sprites.End(); err != nil {
		return err
	}

	if !v.showOutline {
		return nil
	}
	if err := v.lines.BeginWithTransform(v.program, transform); err != nil {
		return err
	}
	for _, dest := range rects {
		if err := v.lines.DrawRectangleOutline(dest, outlineColor); err != nil {
			_ = v.lines.End()
			return err
		}
	}
	return v.lines.End()
}

// reportError logs a frame error once until a frame succeeds again.
func (v *viewer) reportError(err error) {
	if msg := err.Error(); msg != v.lastError {
		v.lastError = msg
		v.logger.Error("draw frame", "error", err)
	}
}

// dispose releases everything in reverse creation order and reports leaked resources.
func (v *viewer) dispose() error {
	var err error
	if v.assets != nil {
		v.assets.Dispose()
	}
	if v.ctx != nil {
		err = v.ctx.Dispose()
	}
	if v.wgpu != nil {
		v.wgpu.Release()
	}
	if v.win != nil && v.win.IsRunning() {
		if closeErr := v.win.Close(); closeErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(closeErr, "close window"))
		}
	}
	return err
}

// tileLayout places count tiles in rows of columns, each scaled and separated by spacing pixels.
//
// Parameters:
//   - count: the number of tiles
//   - columns: tiles per row
//   - tileWidth: the source tile width in pixels
//   - tileHeight: the source tile height in pixels
//   - scale: the on-screen scale of each tile
//   - spacing: the gap between tiles and around the grid
//
// Returns:
//   - []common.Rectangle: the destination rectangle of each tile in sheet order
func tileLayout(count, columns, tileWidth, tileHeight int, scale float32, spacing int) []common.Rectangle {
	if count <= 0 || columns <= 0 {
		return nil
	}
	w := int(float32(tileWidth) * scale)
	h := int(float32(tileHeight) * scale)
	rects := make([]common.Rectangle, count)
	for i := range rects {
		col, row := i%columns, i/columns
		rects[i] = common.NewRectangle(spacing+col*(w+spacing), spacing+row*(h+spacing), w, h)
	}
	return rects
}

// layoutBounds returns the size of the area covering every rectangle plus the trailing spacing.
func layoutBounds(rects []common.Rectangle) (int, int) {
	if len(rects) == 0 {
		return 0, 0
	}
	var w, h int
	for _, r := range rects {
		w = max(w, r.Right())
		h = max(h, r.Bottom())
	}
	return w + rects[0].X, h + rects[0].Y
}

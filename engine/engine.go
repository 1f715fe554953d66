package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/asset"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// ErrRenderPanic is returned by Run when the render function panics.
var ErrRenderPanic = errors.New("render loop panicked")

// engine implements the Engine interface.
// Coordinates the tick goroutine with the render loop on the calling thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window     window.Window
	ctx        renderer.RenderContext
	dispatcher asset.Dispatcher
	present    func()
	logger     *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	resizeCallback func(width, height int)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the tick loop, the render loop, and window event pumping.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil when running headless
	Window() window.Window

	// Context returns the render context the engine drives.
	Context() renderer.RenderContext

	// Dispatcher returns the queue drained once per frame on the render thread.
	// Work queued here from any goroutine runs before the render callback.
	Dispatcher() asset.Dispatcher

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// It runs on the tick goroutine, so it must not touch the render context directly.
	// Queue GPU work on the Dispatcher instead.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame on the render thread.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called after the viewport follows a window resize.
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick goroutine and runs the render loop on the calling goroutine.
	// Blocks until the window closes or Quit is called. The caller must be the thread
	// that owns the graphics context.
	//
	// Returns:
	//   - error: ErrRenderPanic if the render callback panicked
	Run() error

	// Running reports whether Run is executing.
	Running() bool

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, context, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		logger:          common.Logger(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.dispatcher == nil {
		e.dispatcher = asset.NewDispatcher()
	}
	if e.present == nil && e.window != nil {
		e.present = e.window.SwapBuffers
	}

	var profilerOptions []profiler.ProfilerOption
	if e.ctx != nil {
		profilerOptions = append(profilerOptions, profiler.WithStatsSource(e.ctx))
	}
	e.profiler = profiler.NewProfiler(append(profilerOptions, profiler.WithLogger(e.logger))...)

	if e.window != nil {
		e.window.SetResizeCallback(e.handleResize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Context() renderer.RenderContext {
	return e.ctx
}

func (e *engine) Dispatcher() asset.Dispatcher {
	return e.dispatcher
}

func (e *engine) Running() bool {
	return e.running.Load()
}

func (e *engine) Run() error {
	e.running.Store(true)
	defer e.running.Store(false)

	e.wg.Add(1)
	go e.handleEngine()

	err := e.handleRender()
	e.signalQuit()
	e.wg.Wait()
	return err
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleResize keeps the context viewport matched to the framebuffer.
// It is invoked from the window event pump, which runs on the render thread.
func (e *engine) handleResize(width, height int) {
	if e.ctx != nil {
		e.ctx.SetViewport(common.NewRectangle(0, 0, width, height))
	}
	if e.resizeCallback != nil {
		e.resizeCallback(width, height)
	}
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop on the calling goroutine.
// Each frame pumps window events, drains the dispatcher, renders, presents, and profiles.
// A panic in the render callback is recovered and returned as ErrRenderPanic.
func (e *engine) handleRender() (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", slog.Any("panic", r))
			err = errors.Wrapf(ErrRenderPanic, "%v", r)
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return nil
		default:
		}

		if e.window != nil && !e.window.PollEvents() {
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if n := e.dispatcher.ProcessActionQueue(); n > 0 {
			e.logger.Debug("dispatcher drained", slog.Int("actions", n))
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.present != nil {
			e.present()
		}

		if e.profilingEnabled.Load() {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(lastRender)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// tickInterval converts a rate in hertz to a ticker interval. Rates <= 0 mean 60Hz.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// frameInterval converts a frame cap in hertz to a minimum frame duration. Rates <= 0 mean uncapped.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameInterval(fps)
}

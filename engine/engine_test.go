package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/asset"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/drivertest"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// fakeWindow implements the parts of window.Window the engine uses.
type fakeWindow struct {
	window.Window

	frames   int
	polled   int
	swapped  int
	onResize func(width, height int)
}

func (w *fakeWindow) PollEvents() bool {
	w.polled++
	return w.polled <= w.frames
}

func (w *fakeWindow) SwapBuffers() { w.swapped++ }

func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	win := &fakeWindow{frames: 3}
	e := NewEngine(WithWindow(win))

	rendered := 0
	e.SetRenderCallback(func(float32) { rendered++ })

	require.NoError(t, e.Run())
	assert.Equal(t, 3, rendered)
	assert.Equal(t, 3, win.swapped)
	assert.False(t, e.Running())
}

func TestFrameOrder(t *testing.T) {
	var order []string
	e := NewEngine(WithPresenter(func() { order = append(order, "present") }))

	e.Dispatcher().Invoke(func() { order = append(order, "dispatch") })
	e.SetRenderCallback(func(float32) {
		order = append(order, "render")
		e.Quit()
	})

	require.NoError(t, e.Run())
	assert.Equal(t, []string{"dispatch", "render", "present"}, order)
}

func TestSharedDispatcher(t *testing.T) {
	d := asset.NewDispatcher()
	e := NewEngine(WithDispatcher(d), WithPresenter(func() {}))
	assert.Same(t, d, e.Dispatcher())

	ran := false
	d.Invoke(func() { ran = true })
	e.SetRenderCallback(func(float32) { e.Quit() })

	require.NoError(t, e.Run())
	assert.True(t, ran)
	assert.Zero(t, d.Len())
}

func TestRenderPanicIsReturned(t *testing.T) {
	e := NewEngine()
	e.SetRenderCallback(func(float32) { panic("boom") })

	err := e.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRenderPanic))
	assert.Contains(t, err.Error(), "boom")
}

func TestTickCallbackRunsOffRenderThread(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithRenderFrameLimit(1000))

	var ticks atomic.Int32
	e.SetTickCallback(func(dt float32) {
		if ticks.Add(1) >= 3 {
			e.Quit()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("engine did not stop")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine()
	assert.NotPanics(t, func() {
		e.Quit()
		e.Quit()
	})
	require.NoError(t, e.Run())
}

func TestResizeUpdatesViewport(t *testing.T) {
	ctx, err := renderer.NewRenderContext(drivertest.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Dispose() })

	win := &fakeWindow{}
	e := NewEngine(WithWindow(win), WithRenderContext(ctx))
	assert.Same(t, ctx, e.Context())

	var got [2]int
	e.SetResizeCallback(func(w, h int) { got = [2]int{w, h} })

	require.NotNil(t, win.onResize)
	win.onResize(640, 360)
	assert.Equal(t, common.NewRectangle(0, 0, 640, 360), ctx.Viewport())
	assert.Equal(t, [2]int{640, 360}, got)
}

func TestIntervals(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, 4*time.Millisecond, tickInterval(250))
	assert.Zero(t, frameInterval(-1))
	assert.Equal(t, 10*time.Millisecond, frameInterval(100))
}

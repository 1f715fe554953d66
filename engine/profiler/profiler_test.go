package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
)

var _ StatsSource = renderer.RenderContext(nil)

type fakeSource struct {
	stats  renderer.Stats
	resets int
}

func (f *fakeSource) Stats() renderer.Stats { return f.stats }
func (f *fakeSource) ResetStats() {
	f.resets++
	f.stats = renderer.Stats{}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	src := &fakeSource{stats: renderer.Stats{DrawCalls: 7, Primitives: 40, NativeBinds: 12, SkippedBinds: 30}}
	p := NewProfiler(WithStatsSource(src), WithInterval(time.Second), withClock(clock.now))

	frame := time.Second / 60
	for range 59 {
		clock.advance(frame)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.Last())

	// time.Second/60 truncates, so the last frame closes the interval exactly.
	clock.advance(time.Second - 59*frame)
	require.True(t, p.Tick())

	r := p.Last()
	assert.InDelta(t, 60.0, r.FPS, 0.01)
	assert.Equal(t, 7, r.DrawCalls)
	assert.Equal(t, 40, r.Primitives)
	assert.Equal(t, 12, r.NativeBinds)
	assert.Equal(t, 30, r.SkippedBinds)
	assert.Greater(t, r.SysMB, 0.0)
	assert.Equal(t, 1, src.resets)

	clock.advance(time.Second / 2)
	assert.False(t, p.Tick())
	clock.advance(time.Second / 2)
	require.True(t, p.Tick())
	assert.InDelta(t, 2.0, p.Last().FPS, 0.01)
	assert.Zero(t, p.Last().DrawCalls)
}

func TestProfilerWithoutSource(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithInterval(0), WithLogger(nil), withClock(clock.now))

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick())
	clock.advance(500 * time.Millisecond)
	require.True(t, p.Tick())
	assert.Zero(t, p.Last().DrawCalls)
	assert.InDelta(t, 2.0, p.Last().FPS, 0.01)
}

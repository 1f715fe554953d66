package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
)

// StatsSource supplies per-interval render counters. renderer.RenderContext satisfies it.
type StatsSource interface {
	Stats() renderer.Stats
	ResetStats()
}

// Report is one interval of frame, memory, and render statistics.
type Report struct {
	FPS          float64
	HeapMB       float64
	AllocRateMB  float64
	SysMB        float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	DrawCalls    int
	Primitives   int
	NativeBinds  int
	SkippedBinds int
}

// Profiler tracks frame rate, memory, and render statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	source StatsSource
	logger *slog.Logger
	now    func() time.Time
	last   Report
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithStatsSource attaches a render stats source. Its counters are reported and reset every interval.
func WithStatsSource(source StatsSource) ProfilerOption {
	return func(p *Profiler) {
		p.source = source
	}
}

// WithInterval sets how often statistics are logged. Values <= 0 keep the 1 second default.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger reports are written to. Defaults to common.Logger().
func WithLogger(l *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		if l != nil {
			p.logger = l
		}
	}
}

// withClock replaces time.Now for tests.
func withClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for the stats source, interval, and logger
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		logger:         common.Logger(),
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory,
// and the render counters of the attached stats source.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	r := Report{FPS: float64(p.frameCount) / elapsed.Seconds()}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.source != nil {
		s := p.source.Stats()
		r.DrawCalls = s.DrawCalls
		r.Primitives = s.Primitives
		r.NativeBinds = s.NativeBinds
		r.SkippedBinds = s.SkippedBinds
		p.source.ResetStats()
	}

	p.logger.Info("profiler",
		slog.Float64("fps", r.FPS),
		slog.Float64("heap_mb", r.HeapMB),
		slog.Float64("alloc_rate_mb", r.AllocRateMB),
		slog.Uint64("gc", uint64(r.GCCount)),
		slog.Uint64("gc_last_us", r.LastPauseUs),
		slog.Uint64("gc_max_us", r.MaxPauseUs),
		slog.Float64("sys_mb", r.SysMB),
		slog.Int("draw_calls", r.DrawCalls),
		slog.Int("primitives", r.Primitives),
		slog.Int("native_binds", r.NativeBinds),
		slog.Int("skipped_binds", r.SkippedBinds),
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged report. It is the zero Report before the first interval elapses.
func (p *Profiler) Last() Report {
	return p.last
}

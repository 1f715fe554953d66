package wgpudriver

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// DriverOption is a functional option for configuring a Driver.
type DriverOption func(*Driver)

// WithVSync selects FIFO presentation when enabled and immediate presentation otherwise.
// VSync is on by default.
//
// Parameters:
//   - enabled: whether presentation waits for the vertical blank
//
// Returns:
//   - DriverOption: option function to apply
func WithVSync(enabled bool) DriverOption {
	return func(d *Driver) {
		if enabled {
			d.presentMode = wgpu.PresentModeFifo
		} else {
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithFallbackAdapter forces the software adapter.
func WithFallbackAdapter() DriverOption {
	return func(d *Driver) {
		d.fallback = true
	}
}

// WithLogger sets the logger for device events and failed draws. Defaults to common.Logger().
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

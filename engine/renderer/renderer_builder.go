package renderer

import "log/slog"

// RenderContextOption is a functional option applied to a render context during construction via NewRenderContext.
type RenderContextOption func(*renderContext)

// WithLogger sets the logger used by the context and every resource created on it.
//
// Parameters:
//   - logger: the logger to use; nil keeps the package logger from common.Logger
//
// Returns:
//   - RenderContextOption: a function that applies the logger option to a render context
func WithLogger(logger *slog.Logger) RenderContextOption {
	return func(c *renderContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLeakCheck makes Dispose fail with ErrResourceLeak when resources are still live at shutdown.
// Tests and debug builds enable it; release builds only log leaks.
//
// Parameters:
//   - enabled: whether leaks are reported as an error
//
// Returns:
//   - RenderContextOption: a function that applies the leak check option to a render context
func WithLeakCheck(enabled bool) RenderContextOption {
	return func(c *renderContext) {
		c.leakCheck = enabled
	}
}

// WithVerboseBinds logs every native bind at debug level.
func WithVerboseBinds(enabled bool) RenderContextOption {
	return func(c *renderContext) {
		c.verboseBinds = enabled
	}
}

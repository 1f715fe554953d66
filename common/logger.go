package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(NopLogger())
}

// NopLogger returns a logger that drops all output.
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// SetLogger sets the logger shared by the engine packages. By default nothing is logged.
// Passing nil restores the silent default. Safe for concurrent use.
//
// Log levels used by the engine:
//   - slog.LevelDebug: native binds, buffer growth, pipeline creation
//   - slog.LevelInfo: context lifecycle, asset reloads, profiler output
//   - slog.LevelWarn: leaked resources, failed reloads that were skipped
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger shared by the engine packages.
//
// Returns:
//   - *slog.Logger: the current logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

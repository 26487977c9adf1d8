package backend

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record; Enabled reports false so callers skip
// formatting.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var silent = slog.New(discard{})

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger sets the logger shared by copyenc and the backends. Pass nil to
// silence output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the shared logger. It is never nil.
func Logger() *slog.Logger {
	return current.Load()
}

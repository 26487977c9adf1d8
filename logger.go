package copyenc

import (
	"log/slog"

	"github.com/gogpu/copyenc/backend"
)

// SetLogger configures the logger for copyenc and its backends. Pass nil to
// restore the default, which discards everything.
//
// Levels:
//   - [slog.LevelDebug]: dropped operations (overflow, destroyed resources,
//     final bounds checks), copy decomposition, lazy clears
//   - [slog.LevelInfo]: encoder creation and the adapter behind it
//   - [slog.LevelWarn]: backend requests that had to be dropped
//
// Example:
//
//	copyenc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	backend.SetLogger(l)
}

// Logger returns the logger copyenc currently writes to.
func Logger() *slog.Logger {
	return backend.Logger()
}

package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// InitLogger builds the process logger at the given level. When w is a terminal the output is
// human-readable console text; otherwise it is one JSON object per line.
// An unparsable level falls back to info.
//
// Parameters:
//   - level: a zerolog level name such as "debug" or "warn"
//   - w: the log destination
//
// Returns:
//   - zerolog.Logger: the configured logger
func InitLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if isTerminal(w) {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

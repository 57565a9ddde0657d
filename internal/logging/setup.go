package logging

import (
	"io"
	"log/slog"
	"os"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configure the process-wide logger.
type Options struct {
	// Debug lowers the level from Info to Debug.
	Debug bool

	// Format selects "text" or "json" output. Defaults to text.
	Format string

	// Output is where log lines go. Defaults to stderr, which keeps logs
	// off stdout for the stdio MCP transport.
	Output io.Writer
}

// Setup builds the logger from opts, installs it as the slog default and
// returns it.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

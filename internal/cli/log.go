// Package cli implements the reqtrace command-line interface.
//
// The commands are:
//   - graph: classify requirement text and render the traceability diagram
//   - render: re-render a saved graph JSON file
//   - classify, detect: inspect the classifier and system type detector
//   - generate: write design and verification documents with a language model
//   - schema: inspect the configured PostgreSQL schema
//   - serve: run the HTTP API
//   - cache: manage the on-disk artifact cache
//
// All commands accept --verbose (-v) for debug logging. The logger travels
// through context.Context so long-running steps can report progress.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// startTimer returns a func that logs a completion message at info level
// with the time elapsed since startTimer was called, e.g.
// "Traced Autonomous Vehicle elapsed=1.234s".
func startTimer(l *log.Logger) func(format string, args ...any) {
	start := time.Now()
	return func(format string, args ...any) {
		l.Info(fmt.Sprintf(format, args...), "elapsed", time.Since(start).Round(time.Millisecond))
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

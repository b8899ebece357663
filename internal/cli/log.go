// Package cli implements the pondera command-line interface.
//
// # Commands
//
//   - render: draw the flow diagram to SVG, PNG, JPG or DOT files
//   - table: print a filtered slice of the weighting table
//   - calc: estimate an admission score
//   - legend: print the legend embedded in the data file
//   - usefulness: rank subjects by how many programs weight them per branch
//   - explore: pick a focus node interactively and render it
//   - serve: run the web dashboard
//   - cache: inspect and clear rendered artifacts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a timestamped logger filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Loaded data.csv (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

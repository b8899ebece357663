package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("rows", "n", 3) }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("rows", "n", 3) }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("cache unavailable") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Loaded ponderaciones.csv")
	out := buf.String()
	if !strings.Contains(out, "Loaded ponderaciones.csv (") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext() without logger = nil, want default")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, msg)
	s.out = &buf
	return s, &buf
}

func TestSpinnerDrawsFrames(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Rendering...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(buf.String(), "Rendering...") {
		t.Errorf("spinner output %q does not contain message", buf.String())
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s, _ := quietSpinner(ctx, "waiting")
			s.Start()
			cancel()
			<-s.stopped
			if !s.Cancelled() {
				t.Error("Cancelled() = false after context cancellation")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "stop")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() before Start() blocked")
	}
}

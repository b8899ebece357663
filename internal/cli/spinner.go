package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows progress on a terminal line while a render runs. It stops
// on Stop or when its context is cancelled.
type Spinner struct {
	message string
	out     io.Writer
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	started bool
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context is done.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

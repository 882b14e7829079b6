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

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line on stderr while a model call runs. It
// stops on Stop or when the context it was created with ends.
type Spinner struct {
	out io.Writer
	ctx context.Context

	mu      sync.Mutex
	message string
	running bool
	halt    chan struct{}
	exited  chan struct{}
	stopped bool
}

func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return &Spinner{
		out:     os.Stderr,
		ctx:     ctx,
		message: message,
		halt:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Start begins the animation. Later calls do nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.halt:
			return
		case <-s.ctx.Done():
			s.erase()
			return
		case <-tick.C:
			s.mu.Lock()
			glyph := string(spinnerFrames[frame%len(spinnerFrames)])
			fmt.Fprintf(s.out, "\r%s %s", styleSpinner.Render(glyph), styleMuted.Render(s.message))
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) erase() {
	s.mu.Lock()
	width := len(s.message) + 4
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", width))
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Calling it again is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	running := s.running
	close(s.halt)
	s.mu.Unlock()

	if running {
		<-s.exited
	}
	s.erase()
}

func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context ended before Stop was called.
func (s *Spinner) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.ctx.Err() != nil
}

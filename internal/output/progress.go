package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// frameInterval paces the spinner redraw.
const frameInterval = 100 * time.Millisecond

var spinnerFrames = []string{"|", "/", "-", "\\"}

// writerIsTTY reports whether w is a terminal. Buffers and log files are not.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// Spinner is shown while the CLI waits on the background service: the first
// heartbeat after `watch --daemon`, running=false after `watch --stop`, or
// both for `watch --restart`. With a timeout it counts down to the point the
// command gives up.
//
//	|  Stopping service (8s remaining)
type Spinner struct {
	message   string
	running   bool
	mu        sync.Mutex
	writer    io.Writer
	ticker    *time.Ticker
	done      chan struct{}
	timeout   time.Duration
	startTime time.Time
	drawn     int // width of the last frame, cleared on Stop
}

// NewSpinner returns an idle spinner on stdout.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		writer:  os.Stdout,
		done:    make(chan struct{}),
	}
}

// WithTimeout sets the wait limit shown as a countdown. Call before Start.
func (s *Spinner) WithTimeout(timeout time.Duration) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	return s
}

// SetWriter redirects output, e.g. to a buffer in tests.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the wait. A daemon child or a piped CLI has no terminal, so
// there the message is written once as a plain line instead of animating.
func (s *Spinner) Start() *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s
	}
	s.running = true
	s.startTime = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return s
	}

	s.ticker = time.NewTicker(frameInterval)
	go s.spin()
	return s
}

func (s *Spinner) spin() {
	for frame := 0; ; frame++ {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		line := spinnerFrames[frame%len(spinnerFrames)] + "  " + s.formatMessage()
		fmt.Fprintf(s.writer, "\r%s", line)
		s.drawn = len(line)
		s.mu.Unlock()
	}
}

// formatMessage must be called with the lock held.
func (s *Spinner) formatMessage() string {
	if s.timeout <= 0 {
		return s.message
	}
	remaining := s.timeout - time.Since(s.startTime)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%s (%ds remaining)", s.message, int(remaining.Seconds()))
}

// Stop ends the wait and erases the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if s.drawn > 0 {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// StopWithMessage ends the wait with an outcome line such as
// "✓ Service stopped".
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}

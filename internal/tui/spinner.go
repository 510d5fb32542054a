package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"golang.org/x/term"
)

// spinnerStyle is the frame set and rate of the terminal spinner.
var spinnerStyle = spinner.MiniDot //nolint:gochecknoglobals // read-only

// showElapsedAfter adds "(Ns elapsed)" to lines that have been spinning a
// while. Model calls routinely take several seconds.
const showElapsedAfter = 5 * time.Second

const clearLine = "\r\033[K"

// TerminalSpinner draws an animated status line until stopped. It implements
// Spinner.
type TerminalSpinner struct {
	out    io.Writer
	styles *OutputStyles

	mu      sync.Mutex // guards the fields below and writes to out
	message string
	started time.Time
	halt    chan struct{}
	stopped bool
}

// NewTerminalSpinner returns an idle spinner drawing to w.
func NewTerminalSpinner(w io.Writer) *TerminalSpinner {
	return &TerminalSpinner{out: w, styles: NewOutputStyles(), stopped: true}
}

// Start shows message and begins animating until Stop or ctx ends. On a
// running spinner it only swaps the message.
func (s *TerminalSpinner) Start(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if !s.stopped {
		return
	}
	s.stopped = false
	s.started = time.Now()
	s.halt = make(chan struct{})
	go s.run(ctx, s.halt)
}

// Update implements Spinner.
func (s *TerminalSpinner) Update(message string) { s.UpdateMessage(message) }

func (s *TerminalSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *TerminalSpinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop clears the status line. Extra calls do nothing.
func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish()
}

// finish marks the spinner stopped and clears the line. Callers hold mu.
func (s *TerminalSpinner) finish() {
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.halt)
	_, _ = io.WriteString(s.out, clearLine)
}

func (s *TerminalSpinner) run(ctx context.Context, halt <-chan struct{}) {
	tick := time.NewTicker(spinnerStyle.FPS)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-halt:
			return
		case <-ctx.Done():
			s.mu.Lock()
			s.finish()
			s.mu.Unlock()
			return
		case <-tick.C:
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		line := s.message
		if elapsed := time.Since(s.started); elapsed > showElapsedAfter {
			line += " " + formatElapsedTime(elapsed)
		}
		if room := terminalWidth() - 4; room > 0 {
			line = truncateToWidth(line, room)
		}
		glyph := s.styles.Info.Render(spinnerStyle.Frames[frame%len(spinnerStyle.Frames)])
		_, _ = fmt.Fprintf(s.out, "%s%s %s", clearLine, glyph, line)
		s.mu.Unlock()
	}
}

func formatElapsedTime(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("(%ds elapsed)", secs)
	}
	return fmt.Sprintf("(%dm %ds elapsed)", secs/60, secs%60)
}

// terminalWidth is the width of the terminal on stderr, or 80.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && w > 0 { //nolint:gosec // fd fits in int
		return w
	}
	return 80
}

// FormatSeconds renders a duration in seconds as "850ms", "12.4s" or "2m05s".
func FormatSeconds(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%dms", int(sec*1000))
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	whole := int(sec)
	return fmt.Sprintf("%dm%02ds", whole/60, whole%60)
}

// NoopSpinner stands in when output is JSON or not a terminal.
type NoopSpinner struct{}

func (*NoopSpinner) Update(string) {}
func (*NoopSpinner) Stop()         {}

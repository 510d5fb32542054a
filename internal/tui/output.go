package tui

import (
	"context"
	"io"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Spinner is a progress indicator returned by Output.Spinner.
type Spinner interface {
	// Update changes the message shown next to the animation.
	Update(msg string)
	// Stop clears the spinner line.
	Stop()
}

// Output renders command results either as styled terminal text or as
// newline-delimited JSON.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error together with its remediation hint.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON writes v as JSON.
	JSON(v any) error
	// Spinner starts a progress indicator.
	Spinner(ctx context.Context, msg string) Spinner
	// URL prints a link.
	URL(url, displayText string)
}

// NewOutput creates the Output for format.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

var (
	_ Output = (*TTYOutput)(nil)
	_ Output = (*JSONOutput)(nil)
)

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lunacore/luna/internal/errors"
)

// TTYOutput renders status lines with icons and lipgloss colors, tables with
// aligned columns and JSON indented.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput honors NO_COLOR before building its styles.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()

	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
		table:  NewTableStyles(),
	}
}

func (o *TTYOutput) line(style lipgloss.Style, icon, msg string) {
	_, _ = fmt.Fprintln(o.w, style.Render(icon+" "+msg))
}

func (o *TTYOutput) Success(msg string) { o.line(o.styles.Success, "✓", msg) }
func (o *TTYOutput) Warning(msg string) { o.line(o.styles.Warning, "⚠", msg) }
func (o *TTYOutput) Info(msg string)    { o.line(o.styles.Info, "ℹ", msg) }

// Error outputs the user-facing message for err with a ✗ icon, followed by
// the suggested action when one is known.
func (o *TTYOutput) Error(err error) {
	msg, action := errors.Actionable(err)
	o.line(o.styles.Error, "✗", msg)
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Table outputs rows with aligned columns.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	cols := make([]TableColumn, len(headers))
	for i, h := range headers {
		cols[i] = TableColumn{Name: h}
	}
	t := NewTable(o.w, cols)
	for _, row := range rows {
		t.AddRow(row...)
	}
	t.Render()
}

// JSON outputs v as indented JSON.
func (o *TTYOutput) JSON(v any) error {
	encoder := json.NewEncoder(o.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Spinner starts animating msg until Stop or ctx ends.
func (o *TTYOutput) Spinner(ctx context.Context, msg string) Spinner {
	s := NewTerminalSpinner(o.w)
	s.Start(ctx, msg)
	return s
}

// URL outputs a link, as an OSC 8 hyperlink where supported.
func (o *TTYOutput) URL(url, displayText string) {
	if displayText == "" {
		displayText = url
	}
	if SupportsHyperlinks() {
		_, _ = fmt.Fprintln(o.w, "  "+FormatHyperlink(url, displayText))
		return
	}
	underlined := StyleUnderline.Render(displayText)
	if displayText != url {
		_, _ = fmt.Fprintf(o.w, "  %s (%s)\n", underlined, url)
		return
	}
	_, _ = fmt.Fprintln(o.w, "  "+underlined)
}

// SupportsHyperlinks reports whether the terminal renders OSC 8 links.
func SupportsHyperlinks() bool {
	if !HasColorSupport() {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "vscode", "WezTerm", "ghostty":
		return true
	}
	return strings.Contains(os.Getenv("TERM"), "kitty") || os.Getenv("WT_SESSION") != ""
}

// FormatHyperlink wraps text in an OSC 8 hyperlink escape sequence.
func FormatHyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

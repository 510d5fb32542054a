// Package tui provides terminal user interface components for luna.
//
// This package provides a centralized style system using Lip Gloss. All
// colors use AdaptiveColor for light/dark terminal support.
//
// # Semantic Colors
//
//   - ColorPrimary (Blue): active states, links, headings
//   - ColorSuccess (Green): completed runs and passing checks
//   - ColorWarning (Yellow): degraded states such as a cloud fallback
//   - ColorError (Red): failed runs and checks
//   - ColorMuted (Gray): secondary text
//
// # NO_COLOR Support
//
// Call CheckNoColor() at the start of commands to respect the NO_COLOR
// environment variable. Colors are also disabled when TERM=dumb.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/present
//   - MUST NOT import: internal/cli, internal/crew, internal/web
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/lunacore/luna/internal/domain"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states, links, and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for errors.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleUnderline applies underline formatting to text.
	StyleUnderline = lipgloss.NewStyle().Underline(true)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// RunStatusIcon returns the icon shown next to a run or stage status.
func RunStatusIcon(status domain.RunStatus) string {
	switch status {
	case domain.RunSuccess:
		return "✓"
	case domain.RunError:
		return "✗"
	case domain.RunRunning:
		return "●"
	default:
		return "○"
	}
}

// CheckStatusIcon returns the icon for an agent health check status.
func CheckStatusIcon(status string) string {
	if status == domain.AgentCheckSuccess {
		return "✓"
	}
	return "✗"
}

// DefaultBoxWidth is the default width of boxed output.
const DefaultBoxWidth = 72

// BoxStyle renders a titled box with rounded borders.
type BoxStyle struct {
	width int
	style lipgloss.Style
}

// NewBoxStyle creates a box with the default width.
func NewBoxStyle() *BoxStyle {
	return &BoxStyle{
		width: DefaultBoxWidth,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1),
	}
}

// WithWidth returns a copy of the box with the given width.
func (b *BoxStyle) WithWidth(width int) *BoxStyle {
	return &BoxStyle{width: width, style: b.style}
}

// Render draws content inside the box with title as its first line.
func (b *BoxStyle) Render(title, content string) string {
	body := content
	if title != "" {
		body = StyleBold.Foreground(ColorPrimary).Render(title) + "\n\n" + content
	}
	return b.style.Width(b.width).Render(strings.TrimRight(body, "\n"))
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncateToWidth truncates s to maxWidth display columns, appending "..."
// when something was cut.
func truncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // renderer initialization
)

// markdownRenderer returns a cached glamour renderer, or nil if one could
// not be created.
func markdownRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// RenderMarkdown renders md for the terminal. Without color support, or if
// rendering fails, md is returned unchanged.
func RenderMarkdown(md string) string {
	if !HasColorSupport() {
		return md
	}
	r := markdownRenderer()
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

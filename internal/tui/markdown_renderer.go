package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// defaultMarkdownStyle is used when no glamour style is configured.
const defaultMarkdownStyle = "dark"

// markdownRenderer renders insight markdown and recreates the renderer when wrap width or style changes.
type markdownRenderer struct {
	style     string
	width     int
	usedStyle string
	renderer  *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
// Renderer failures fall back to the raw text.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	style := r.style
	if style == "" {
		style = defaultMarkdownStyle
	}

	if r.renderer == nil || r.width != wrapWidth || r.usedStyle != style {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.usedStyle = style
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

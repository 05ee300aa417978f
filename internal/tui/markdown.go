package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// markdownStyle is a glamour standard style name, or "plain" to only wrap.
// Set once at startup.
var markdownStyle = "plain"

// SetMarkdownStyle selects how bug descriptions and comments are rendered.
func SetMarkdownStyle(style string) {
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = "plain"
	}
	markdownStyle = style
}

// markdownRenderer returns a renderer for text wrapped at width. Any glamour
// failure falls back to plain word wrapping.
func markdownRenderer(style string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

package tui

import "github.com/hylla/dayflow/internal/app"

// Option configures a Model.
type Option func(*Model)

// WithInsightGenerator sets the generator used by the insight key.
func WithInsightGenerator(gen app.InsightGenerator) Option {
	return func(m *Model) {
		m.insight = gen
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithShowHelp starts the model with the full help expanded.
func WithShowHelp(show bool) Option {
	return func(m *Model) {
		m.help.ShowAll = show
	}
}

// WithMarkdownStyle selects the glamour style used for insight text.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		if style != "" {
			m.markdown.style = style
		}
	}
}

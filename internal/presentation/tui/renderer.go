package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/aidbuddy/pkg/runner"
)

// DefaultWordWrap matches a standard 80-column terminal.
const DefaultWordWrap = 80

// NewRenderer returns a runner.ContentRenderer that turns Markdown replies
// into ANSI output. style is a glamour style name ("dark", "light",
// "notty"); empty picks one from the terminal background.
func NewRenderer(style string, width int) (runner.ContentRenderer, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width), glamour.WithEmoji()}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render, nil
}

package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders node text through glamour.
// Node lines may contain simple markdown (bold resource numbers and the
// like); auto style picks light or dark based on the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(text string) (string, error) { return text, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ABOUTME: Markdown rendering for post bodies via glamour.
// ABOUTME: Style and word wrap come from the render section of the config.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/2389-research/quill/internal/models"
)

// Renderer turns Markdown into styled terminal output.
type Renderer struct {
	tr *glamour.TermRenderer
}

// New creates a renderer. style is a glamour style name ("dark", "light",
// "notty", ...) or a path to a JSON style file.
func New(style string, width int) (*Renderer, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &Renderer{tr: tr}, nil
}

// Markdown renders md.
func (r *Renderer) Markdown(md string) (string, error) {
	out, err := r.tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Post renders a post as a title heading followed by its content.
func (r *Renderer) Post(p *models.Post) (string, error) {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(p.Title)
	b.WriteString("\n\n")
	b.WriteString(p.Content)
	return r.Markdown(b.String())
}

package render

import (
	"fmt"

	"github.com/dshills/feedbackform/internal/form"
)

// Document is what gets rendered: the form snapshot plus run metadata.
type Document struct {
	Tool    string    `json:"tool"`
	Version string    `json:"version"`
	Script  string    `json:"script,omitempty"`      // path of a replayed script
	Hash    string    `json:"script_hash,omitempty"` // sha256 of that script
	Form    form.View `json:"form"`
}

// Renderer formats a Document into bytes for output.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "text" (default), "json".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return &textRenderer{}, nil
	case "json":
		return &jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are text, json", format)
	}
}

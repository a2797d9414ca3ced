// Package dashboard renders the upload and chart page served at "/".
package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/page.html templates/styles.css
var templateFS embed.FS

// HTMLBuilder handles page rendering and markdown conversion
type HTMLBuilder struct {
	page     *template.Template
	css      template.CSS
	goldmark goldmark.Markdown
}

// NewHTMLBuilder parses the embedded page template
func NewHTMLBuilder() (*HTMLBuilder, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	css, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read stylesheet: %w", err)
	}

	// Raw HTML in markdown is escaped.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &HTMLBuilder{
		page:     page,
		css:      template.CSS(css),
		goldmark: md,
	}, nil
}

// Render writes the full dashboard page
func (h *HTMLBuilder) Render(w io.Writer, data *PageData) error {
	data.CSS = h.css

	// Nothing reaches w unless the whole template executes.
	var buf bytes.Buffer
	if err := h.page.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderMarkdown converts markdown to an HTML fragment
func (h *HTMLBuilder) RenderMarkdown(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Package render turns backend-supplied disclaimer markup into something safe
// to show in a page or a terminal.
package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	ugc      = bluemonday.UGCPolicy()
	strict   = bluemonday.StrictPolicy()
)

// Disclaimer converts markdown (raw HTML allowed) to HTML and sanitizes it.
// The backend is not trusted: scripts, handlers and javascript: URLs are dropped.
func Disclaimer(markup string) template.HTML {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(markup), &buf); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text
		return template.HTML(template.HTMLEscapeString(markup))
	}
	return template.HTML(ugc.SanitizeBytes(buf.Bytes()))
}

// PlainText strips every tag and returns unescaped text.
func PlainText(markup string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(markup)))
}

// Terminal renders the disclaimer markdown for a terminal of the given width.
// With color disabled the "notty" style is used so output has no escape codes.
func Terminal(markup string, width int, color bool) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	out, err := r.Render(PlainText(markup))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n "), nil
}

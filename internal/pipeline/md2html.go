package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultDocumentTemplate wraps the rendered fragment in a complete HTML5
// document. It must contain exactly one %s verb (the body); the title is
// substituted through the {{title}} marker.
const DefaultDocumentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{title}}</title>
</head>
<body>
%s
</body>
</html>`

// defaultTitle is used when the caller does not name the document.
const defaultTitle = "Document"

// HTMLConverter abstracts Markdown to HTML conversion.
// An empty title selects the converter's default title.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content, title string) (string, error)
}

// GoldmarkOption configures a GoldmarkConverter.
type GoldmarkOption func(*goldmarkSettings)

type goldmarkSettings struct {
	highlight      bool
	highlightStyle string
	template       string
	title          string
}

// WithHighlighting enables chroma syntax highlighting for fenced code blocks.
// Colors are emitted as inline styles so no extra stylesheet is needed.
// An empty style selects chroma's "github" style.
func WithHighlighting(style string) GoldmarkOption {
	return func(s *goldmarkSettings) {
		s.highlight = true
		s.highlightStyle = style
	}
}

// WithDocumentTemplate replaces DefaultDocumentTemplate.
func WithDocumentTemplate(tmpl string) GoldmarkOption {
	return func(s *goldmarkSettings) {
		if tmpl != "" {
			s.template = tmpl
		}
	}
}

// WithTitle sets the default <title> of generated documents.
func WithTitle(title string) GoldmarkOption {
	return func(s *goldmarkSettings) {
		if title != "" {
			s.title = title
		}
	}
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md       goldmark.Markdown
	template string
	title    string
}

// NewGoldmarkConverter creates a GoldmarkConverter with the GFM extension set:
// tables, strikethrough, autolinks and task lists.
func NewGoldmarkConverter(opts ...GoldmarkOption) *GoldmarkConverter {
	settings := goldmarkSettings{
		template: DefaultDocumentTemplate,
		title:    defaultTitle,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	extensions := []goldmark.Extender{extension.GFM}
	if settings.highlight {
		style := settings.highlightStyle
		if style == "" {
			style = "github"
		}
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(false),
			),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			// Raw HTML in the source is not passed through.
		),
	)

	return &GoldmarkConverter{md: md, template: settings.template, title: settings.title}
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if title == "" {
		title = c.title
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: c.wrap(buf.String(), title)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// wrap places the rendered fragment and the escaped title into the template.
// The template is split at its first %s before the title goes in, so neither
// the title nor the body can move the insertion point.
func (c *GoldmarkConverter) wrap(body, title string) string {
	title = html.EscapeString(title)
	head, tail, _ := strings.Cut(c.template, "%s")
	return strings.ReplaceAll(head, "{{title}}", title) + body + strings.ReplaceAll(tail, "{{title}}", title)
}

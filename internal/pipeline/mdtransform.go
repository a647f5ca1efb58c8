package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)
)

// utf8BOM is stripped from uploaded files; editors on Windows like to add it.
const utf8BOM = "\ufeff"

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor prepares uploaded Markdown for goldmark.
// It only touches encoding artifacts, never Markdown syntax.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown strips a leading BOM and normalizes line endings.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, utf8BOM)
	return normalizeLineEndings(content)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

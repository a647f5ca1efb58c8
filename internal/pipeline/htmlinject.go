package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	headClose = regexp.MustCompile(`(?i)</head\s*>`)
	bodyOpen  = regexp.MustCompile(`(?i)<body\b[^>]*>`)
)

// StyleInjector places stylesheets into an HTML document.
type StyleInjector interface {
	InjectCSS(ctx context.Context, htmlContent string, sheets ...string) string
}

// HeadStyleInjector writes each non-blank sheet as its own <style> element,
// in argument order, so later sheets win on equal specificity.
type HeadStyleInjector struct{}

// InjectCSS inserts the sheets before </head>, after <body> when the document
// has no head, or at the very start of a fragment.
func (HeadStyleInjector) InjectCSS(ctx context.Context, htmlContent string, sheets ...string) string {
	if ctx.Err() != nil {
		return htmlContent
	}

	var block strings.Builder
	for _, css := range sheets {
		if strings.TrimSpace(css) == "" {
			continue
		}
		block.WriteString("<style>")
		block.WriteString(escapeStyleText(css))
		block.WriteString("</style>")
	}
	if block.Len() == 0 {
		return htmlContent
	}
	styles := block.String()

	if loc := headClose.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[0]] + styles + htmlContent[loc[0]:]
	}
	if loc := bodyOpen.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[1]] + styles + htmlContent[loc[1]:]
	}
	return styles + htmlContent
}

// escapeStyleText keeps CSS from closing its <style> element early.
func escapeStyleText(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

package mdpdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-mdpdf/internal/assets"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.StyleInjector        = pipeline.HeadStyleInjector{}
)

// Converter orchestrates the Markdown to PDF pipeline.
// Create with NewConverter, call Convert, and Close when done.
// A Converter owns one browser and is not meant for concurrent use;
// use ConverterPool to serve parallel requests.
type Converter struct {
	cfg           converterConfig
	assetLoader   assets.AssetLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	styleInjector pipeline.StyleInjector
	pdfConverter  pdfConverter
}

// NewConverter creates a Converter with the default stylesheet, A4 pages
// and 20px margins. The browser is not launched until the first PDF.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:    defaultTimeout,
			styleInput: assets.DefaultStyleName,
		},
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		styleInjector: pipeline.HeadStyleInjector{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.page.Validate(); err != nil {
		return nil, err
	}

	if c.cfg.assetDir != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	if c.htmlConverter == nil {
		tmpl, err := c.assetLoader.LoadTemplate(assets.DocumentTemplateName)
		if err != nil {
			return nil, fmt.Errorf("loading document template: %w", err)
		}
		gmOpts := []pipeline.GoldmarkOption{pipeline.WithDocumentTemplate(tmpl)}
		if c.cfg.highlight {
			gmOpts = append(gmOpts, pipeline.WithHighlighting(c.cfg.highlightStyle))
		}
		c.htmlConverter = pipeline.NewGoldmarkConverter(gmOpts...)
	}

	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout, c.cfg.tempDir)
	}

	return c, nil
}

// Convert runs the full pipeline and returns the styled HTML and the PDF.
// If input.HTMLOnly is true, PDF generation is skipped.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, mdContent, input.Title)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	// Converter style first so caller CSS can override it.
	htmlContent = c.styleInjector.InjectCSS(ctx, htmlContent, c.cfg.resolvedStyle, input.CSS)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &ConvertResult{HTML: []byte(htmlContent)}
	if input.HTMLOnly {
		return res, nil
	}

	page := input.Page
	if page == nil {
		page = c.cfg.page
	}

	pdfBytes, err := c.pdfConverter.ToPDF(ctx, htmlContent, &pdfOptions{Page: page})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	if len(pdfBytes) == 0 {
		return nil, fmt.Errorf("%w: renderer returned no bytes", ErrPDFGeneration)
	}

	res.PDF = pdfBytes
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// resolveStyle turns the style input (name, path, or CSS content) into CSS.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		return nil
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- operator-provided path
		if err != nil {
			return fmt.Errorf("%w: loading style file %q: %v", ErrStyleNotFound, input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	if fileutil.IsCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrStyleNotFound, input, err)
	}
	c.cfg.resolvedStyle = css
	return nil
}

// validateInput is the trust boundary for library users building Input by hand.
func (c *Converter) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	return input.Page.Validate()
}

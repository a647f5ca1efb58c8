package mdpdf

import (
	"time"

	"github.com/alnah/go-mdpdf/internal/assets"
)

// defaultTimeout bounds a single PDF render.
const defaultTimeout = 30 * time.Second

// converterConfig holds configuration for Converter.
type converterConfig struct {
	timeout        time.Duration
	styleInput     string // name, file path or inline CSS
	resolvedStyle  string
	assetDir       string
	highlight      bool
	highlightStyle string
	tempDir        string
	page           *PageSettings
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout sets the PDF generation timeout. Zero or negative values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		if d > 0 {
			c.cfg.timeout = d
		}
	}
}

// WithStyle sets the stylesheet: a style name ("default"), a path to a
// .css file, or inline CSS. An empty string means no stylesheet.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath layers a directory of styles/templates over the embedded assets.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetDir = dir
	}
}

// WithAssetLoader replaces the embedded assets entirely.
func WithAssetLoader(loader assets.AssetLoader) Option {
	return func(c *Converter) {
		if loader != nil {
			c.assetLoader = loader
		}
	}
}

// WithHighlighting enables syntax highlighting of fenced code blocks using
// the named chroma style (empty selects "github").
func WithHighlighting(style string) Option {
	return func(c *Converter) {
		c.cfg.highlight = true
		c.cfg.highlightStyle = style
	}
}

// WithPage sets the default page settings used when Input.Page is nil.
func WithPage(page *PageSettings) Option {
	return func(c *Converter) {
		c.cfg.page = page
	}
}

// WithTempDir sets where intermediate HTML files are written.
// Empty means os.TempDir().
func WithTempDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.tempDir = dir
	}
}

// withPDFConverter injects a PDF backend (tests).
func withPDFConverter(p pdfConverter) Option {
	return func(c *Converter) {
		c.pdfConverter = p
	}
}

package mdpdf

import (
	"fmt"
	"strings"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Margin bounds in CSS pixels (96 per inch).
const (
	MinMargin     = 0.0
	MaxMargin     = 200.0
	DefaultMargin = 20.0
)

// cssPixelsPerInch converts CSS pixels to the inches Chrome's print API expects.
const cssPixelsPerInch = 96.0

// paperSizes holds width and height in inches for each page size.
var paperSizes = map[string][2]float64{
	PageSizeA4:     {8.27, 11.69},
	PageSizeLetter: {8.5, 11},
	PageSizeLegal:  {8.5, 14},
}

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size   string  // "a4", "letter", "legal"
	Margin float64 // CSS pixels, applied to all sides
}

// DefaultPageSettings returns A4 with 20px margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:   PageSizeA4,
		Margin: DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.1f (must be between %.0f and %.0f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// dimensions returns paper width, height and margin in inches.
// Nil settings yield the defaults.
func (p *PageSettings) dimensions() (width, height, margin float64) {
	if p == nil {
		p = DefaultPageSettings()
	}
	size, ok := paperSizes[strings.ToLower(p.Size)]
	if !ok {
		size = paperSizes[PageSizeA4]
	}
	return size[0], size[1], p.Margin / cssPixelsPerInch
}

// Input contains the data for a Markdown to PDF conversion.
type Input struct {
	Markdown string        // Required
	CSS      string        // Appended after the converter style
	Title    string        // Document <title>; empty means "Document"
	Page     *PageSettings // nil = A4, 20px margins
	HTMLOnly bool          // Skip PDF generation
}

// ConvertResult holds the output of a Markdown to PDF conversion.
type ConvertResult struct {
	HTML []byte // Styled HTML document
	PDF  []byte // Empty when Input.HTMLOnly is set
}

// ExtractResult holds the output of a PDF to Markdown conversion.
type ExtractResult struct {
	Text     string // Raw text as returned by the extractor
	Markdown string // Text after structure reconstruction
}

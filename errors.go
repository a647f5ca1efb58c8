package mdpdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// PDF to Markdown errors.
	ErrEmptyPDF         = errors.New("PDF content cannot be empty")
	ErrTextExtraction   = errors.New("text extraction failed")
	ErrUnknownExtractor = errors.New("unknown extractor backend")

	// Page settings validation errors.
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidMargin   = errors.New("invalid margin")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Pool errors.
	ErrPoolClosed = errors.New("converter pool is closed")
)

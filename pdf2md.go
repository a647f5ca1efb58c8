package mdpdf

import (
	"context"
	"fmt"

	"github.com/alnah/go-mdpdf/internal/pipeline"
)

// Extractor orchestrates the PDF to Markdown pipeline: text extraction
// followed by structure reconstruction.
type Extractor struct {
	text TextExtractor
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithTextExtractor replaces the default NativeExtractor.
func WithTextExtractor(te TextExtractor) ExtractorOption {
	return func(e *Extractor) {
		if te != nil {
			e.text = te
		}
	}
}

// NewExtractor creates an Extractor backed by NativeExtractor unless
// overridden.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{text: &NativeExtractor{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the raw text of the PDF and its Markdown reconstruction.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Extractor) Extract(ctx context.Context, data []byte) (result *ExtractResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if len(data) == 0 {
		return nil, ErrEmptyPDF
	}

	text, err := e.text.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &ExtractResult{
		Text:     text,
		Markdown: pipeline.Reconstruct(text),
	}, nil
}

package mdpdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// Extractor backend names.
const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)

// TextExtractor recovers plain text from a PDF.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Compile-time interface checks
var (
	_ TextExtractor = (*NativeExtractor)(nil)
	_ TextExtractor = (*PopplerExtractor)(nil)
)

// NewTextExtractor returns the extractor for a backend name.
func NewTextExtractor(backend string) (TextExtractor, error) {
	switch backend {
	case "", BackendNative:
		return &NativeExtractor{}, nil
	case BackendPdftotext:
		return &PopplerExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, backend)
	}
}

// NativeExtractor reads the text layer in pure Go.
// Pages are joined with a blank line. Image-only pages yield no text.
type NativeExtractor struct{}

// ExtractText parses data and returns the concatenated page text.
func (e *NativeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPDF
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r, err := openPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
	}

	fonts := make(map[string]*pdf.Font)
	var parts []string

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrTextExtraction, i, err)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// openPDF wraps pdf.NewReader, which panics on some malformed inputs.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// PopplerExtractor shells out to poppler's pdftotext through docconv.
// It copes with more encodings than NativeExtractor but needs the binary
// on PATH.
type PopplerExtractor struct{}

// ExtractText runs pdftotext on data.
// docconv has no context support, so the call runs in a goroutine and the
// caller stops waiting on cancellation.
func (e *PopplerExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPDF
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, _, err := docconv.ConvertPDF(bytes.NewReader(data))
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrTextExtraction, err)}
			return
		}
		done <- result{text: text}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

// PdftotextPath reports where pdftotext is installed, if anywhere.
func PdftotextPath() (string, bool) {
	path, err := exec.LookPath("pdftotext")
	return path, err == nil
}

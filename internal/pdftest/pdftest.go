// Package pdftest builds tiny PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// OnePage returns a one-page PDF drawing each line of text in Helvetica,
// 14pt apart. Offsets in the xref table are computed while writing, so
// strict readers accept the file. Parentheses and backslashes in text are
// escaped.
func OnePage(text string) []byte {
	escape := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			content.WriteString(" T*")
		}
		fmt.Fprintf(&content, " (%s) Tj", escape.Replace(line))
	}
	content.WriteString(" ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

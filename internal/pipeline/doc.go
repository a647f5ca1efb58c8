// Package pipeline implements the text stages of both conversion directions.
//
// Markdown to PDF (HTML side):
//   - Markdown preprocessing (BOM and line ending cleanup)
//   - Markdown to HTML conversion via Goldmark
//   - CSS injection into the HTML document
//
// PDF to Markdown (text side):
//   - Reconstruct, an ordered list of regex stages that re-imposes headings,
//     bullets and paragraph breaks on plain text extracted from a PDF
//
// Rasterization and text extraction live in the root mdpdf package; this
// package never touches a browser or a PDF binary.
//
// Reconstruction is heuristic. A Markdown file converted to PDF and back
// does not come out identical: emphasis, links, code blocks and tables are
// lost during extraction and cannot be recovered from plain text.
package pipeline

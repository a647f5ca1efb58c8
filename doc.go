// Package mdpdf converts Markdown to PDF and PDF back to Markdown.
//
// # Markdown to PDF
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := mdpdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, mdpdf.Input{
//	    Markdown: "# Hello\n\nWorld",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// The pipeline is:
//
//  1. Markdown preprocessing (BOM and line endings)
//  2. Markdown to HTML via Goldmark (GFM, optional chroma highlighting)
//  3. Stylesheet injection (Arial, 800px column, shaded code blocks)
//  4. PDF rendering via headless Chrome (go-rod), A4 with 20px margins
//
// # PDF to Markdown
//
//	ext := mdpdf.NewExtractor()
//	result, err := ext.Extract(ctx, pdfBytes)
//	fmt.Print(result.Markdown)
//
// Text is pulled from the PDF's text layer (NativeExtractor, or
// PopplerExtractor when pdftotext is installed) and a fixed sequence of
// heuristics re-imposes headings, bullets and paragraph breaks. The round
// trip is lossy: emphasis, links, tables and code blocks do not survive.
//
// # Parallel Processing
//
// ConverterPool manages several browser instances:
//
//	pool := mdpdf.NewConverterPool(mdpdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	result, err := pool.Convert(ctx, input)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. go-rod downloads a managed
// Chromium on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package mdpdf

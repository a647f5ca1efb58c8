package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
	"github.com/alnah/go-mdpdf/internal/fileutil"
)

// Sentinel errors for file conversion.
var (
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// filePermissions is rw-r--r--: owner read+write, others read.
const filePermissions = 0o644

// runConvert converts one local file. The direction follows the input
// extension: .md becomes PDF (or HTML with --html-only), .pdf becomes Markdown.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError(err)
	}

	switch fs.NArg() {
	case 0:
		return ErrNoInput
	case 1:
	default:
		return fmt.Errorf("%w: convert takes one input, got %d", ErrUsage, fs.NArg())
	}
	input := fs.Arg(0)

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	f.render.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var output string
	switch {
	case fileutil.HasExtension(input, ".md"):
		output, err = convertMarkdown(ctx, input, f, cfg)
	case fileutil.HasExtension(input, ".pdf"):
		output, err = convertPDF(ctx, input, f, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidExtension, input)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Created %s\n", output)
	return nil
}

func convertMarkdown(ctx context.Context, input string, f *convertFlags, cfg *config.Config) (string, error) {
	content, err := os.ReadFile(input) // #nosec G304 -- path is the user's own argument
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	loader, err := assetLoader(cfg)
	if err != nil {
		return "", err
	}
	conv, err := mdpdf.NewConverter(converterOptions(cfg, loader)...)
	if err != nil {
		return "", err
	}
	defer func() { _ = conv.Close() }()

	result, err := conv.Convert(ctx, mdpdf.Input{
		Markdown: string(content),
		Title:    strings.TrimSuffix(filepath.Base(input), ".md"),
		HTMLOnly: f.htmlOnly,
	})
	if err != nil {
		return "", err
	}

	data, ext := result.PDF, ".pdf"
	if f.htmlOnly {
		data, ext = result.HTML, ".html"
	}
	output := outputPath(input, f.output, ".md", ext)
	return output, writeOutput(output, data)
}

func convertPDF(ctx context.Context, input string, f *convertFlags, cfg *config.Config) (string, error) {
	data, err := os.ReadFile(input) // #nosec G304 -- path is the user's own argument
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		return "", err
	}
	result, err := extractor.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	output := outputPath(input, f.output, ".pdf", ".md")
	return output, writeOutput(output, []byte(result.Markdown))
}

// outputPath returns explicit when set, otherwise input with its trailing
// extension from replaced by to.
func outputPath(input, explicit, from, to string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(input, from) + to
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

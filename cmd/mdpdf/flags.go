package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpdf/internal/config"
)

// Sentinel errors for CLI usage.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input file specified")
	ErrInvalidExtension = errors.New("input must end with .md or .pdf")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	envFile string
}

// renderFlags holds Markdown to PDF options shared by serve and convert.
type renderFlags struct {
	style     string
	highlight bool
	pageSize  string
	margin    float64
	timeout   time.Duration
	assetsDir string
	backend   string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	render    renderFlags
	addr      string
	uploadDir string
	maxBytes  int64
	workers   int
	cors      []string
	logLevel  string
	logFormat string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	render   renderFlags
	output   string
	htmlOnly bool
}

// addCommonFlags adds flags shared by every command that reads config.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path (env: MDPDF_CONFIG)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file read before the environment (\"\" = none)")
}

// addRenderFlags adds conversion flags.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.style, "style", "", "style name, CSS file path or inline CSS")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax highlighting for fenced code")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: a4, letter, legal")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in CSS pixels (0-200)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "PDF generation timeout (e.g. 30s, 2m)")
	fs.StringVar(&f.assetsDir, "assets", "", "directory overriding embedded styles, templates and web page")
	fs.StringVar(&f.backend, "extract-backend", "", "PDF text extractor: native, pdftotext")
}

// apply overlays flags the user actually set onto cfg.
func (f *renderFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("style") {
		cfg.Render.Style = f.style
	}
	if fs.Changed("highlight") {
		cfg.Render.Highlight = f.highlight
	}
	if fs.Changed("page-size") {
		cfg.Render.PageSize = f.pageSize
	}
	if fs.Changed("margin") {
		cfg.Render.MarginPx = f.margin
	}
	if fs.Changed("timeout") {
		cfg.Render.Timeout = f.timeout
	}
	if fs.Changed("assets") {
		cfg.Assets.Dir = f.assetsDir
	}
	if fs.Changed("extract-backend") {
		cfg.Extract.Backend = f.backend
	}
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :3000)")
	fs.StringVar(&f.uploadDir, "upload-dir", "", "directory for staged uploads")
	fs.Int64Var(&f.maxBytes, "max-bytes", 0, "largest accepted upload in bytes")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser instances (0 = auto)")
	fs.StringSliceVar(&f.cors, "cors-origin", nil, "allowed CORS origin (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("%w: unexpected arguments %s", ErrUsage, strings.Join(fs.Args(), " "))
	}
	return f, fs, nil
}

// apply overlays flags the user actually set onto cfg.
func (f *serveFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("upload-dir") {
		cfg.Upload.Dir = f.uploadDir
	}
	if fs.Changed("max-bytes") {
		cfg.Upload.MaxBytes = f.maxBytes
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if fs.Changed("cors-origin") {
		cfg.Server.CORSOrigins = f.cors
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	f.render.apply(fs, cfg)
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input with swapped extension)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write the styled HTML instead of a PDF")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parseConfigFlags parses flags for commands that only need the config.
func parseConfigFlags(name string, args []string, stderr io.Writer) (*commonFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// usageError marks flag parsing failures so they map to ExitUsage.
// pflag's help request is passed through unchanged.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpdf [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP service (default)")
	fmt.Fprintln(w, "  convert    Convert a local .md or .pdf file")
	fmt.Fprintln(w, "  doctor     Check Chrome, pdftotext and the upload directory")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpdf help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by every command that reads config.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Config:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (env: MDPDF_CONFIG)")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file read first (default .env)")
}

// printRenderUsage prints conversion flags shared by serve and convert.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --style <s>           Style name, CSS file path or inline CSS")
	fmt.Fprintln(w, "      --highlight           Syntax highlighting for fenced code")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a4, letter, legal")
	fmt.Fprintln(w, "      --margin <px>         Page margin in CSS pixels (0-200)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w, "      --assets <dir>        Override embedded styles, templates and web page")
	fmt.Fprintln(w, "      --extract-backend <s> PDF text extractor: native, pdftotext")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the conversion service: POST /md-to-pdf, POST /pdf-to-md, GET /.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3000)")
	fmt.Fprintln(w, "      --upload-dir <dir>    Directory for staged uploads")
	fmt.Fprintln(w, "      --max-bytes <n>       Largest accepted upload in bytes")
	fmt.Fprintln(w, "  -w, --workers <n>         Browser instances (0 = auto)")
	fmt.Fprintln(w, "      --cors-origin <url>   Allowed CORS origin (repeatable)")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      text, json")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: flags > MDPDF_* environment > config file > defaults.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpdf convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one file. input.md becomes input.pdf, input.pdf becomes input.md.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file")
	fmt.Fprintln(w, "      --html-only           Write styled HTML instead of PDF")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpdf doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the service can run on this machine.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Machine-readable output")
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		fmt.Fprintln(env.Stdout, "Usage: mdpdf config [flags]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Print the effective configuration as YAML.")
		fmt.Fprintln(env.Stdout)
		printCommonUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdpdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdpdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

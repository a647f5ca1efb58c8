// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdpdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser launch or connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("for large documents, raise --timeout or MDPDF_TIMEOUT")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mdpdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForPdftotext returns hints for a missing pdftotext binary.
func ForPdftotext() string {
	return format("install poppler-utils or set MDPDF_EXTRACT_BACKEND=native")
}

// ForUploadDir returns hints for an unusable upload directory.
func ForUploadDir() string {
	return format("check that upload.dir exists and is writable, or set MDPDF_UPLOAD_DIR")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound() string {
	return format("pass a style name, a path to a .css file, or inline CSS")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

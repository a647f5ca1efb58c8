package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Chrome    chromeInfo    `json:"chrome"`
	Pdftotext pdftotextInfo `json:"pdftotext"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// pdftotextInfo holds poppler detection results.
type pdftotextInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Backend string `json:"backend"` // configured extract.backend
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	ConfigValid    bool   `json:"config_valid"`
	UploadDir      string `json:"upload_dir"`
	UploadWritable bool   `json:"upload_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var common commonFlags
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	addCommonFlags(fs, &common)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(&common, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(common *commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg := checkConfig(result, common, env)
	checkChrome(result)
	checkPdftotext(result, cfg)
	checkEnvironment(result)
	checkUploadDir(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkConfig loads and validates the effective config. On failure the
// defaults are used for the remaining checks.
func checkConfig(result *doctorResult, common *commonFlags, env *Environment) *config.Config {
	quiet := *env
	quiet.Stderr = io.Discard

	cfg, err := loadConfig(common, &quiet)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", firstLine(err.Error())))
		return config.DefaultConfig()
	}
	result.System.ConfigValid = true
	return cfg
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath, found := mdpdf.BrowserPath()
	if !found {
		if chromePath != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		} else {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
		}
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path comes from rod's lookup or the operator
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkPdftotext detects poppler. Missing poppler is an error only when the
// pdftotext backend is configured.
func checkPdftotext(result *doctorResult, cfg *config.Config) {
	result.Pdftotext.Backend = cfg.Extract.Backend

	path, found := mdpdf.PdftotextPath()
	result.Pdftotext.Found = found
	result.Pdftotext.Path = path

	if !found && cfg.Extract.Backend == mdpdf.BackendPdftotext {
		result.Errors = append(result.Errors,
			"pdftotext not found but extract.backend is pdftotext"+hints.ForPdftotext())
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MDPDF_CONTAINER") == "1" {
		return true, "MDPDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkUploadDir verifies the upload directory accepts new files.
func checkUploadDir(result *doctorResult, cfg *config.Config) {
	result.System.UploadDir = cfg.Upload.Dir
	if err := fileutil.CheckWritable(cfg.Upload.Dir); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Upload directory not writable: %s", cfg.Upload.Dir))
		return
	}
	result.System.UploadWritable = true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdpdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium (Markdown to PDF)")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Text extraction (PDF to Markdown)")
	fmt.Fprintf(w, "  [OK] Backend: %s\n", r.Pdftotext.Backend)
	switch {
	case r.Pdftotext.Found:
		fmt.Fprintf(w, "  [OK] pdftotext: %s\n", r.Pdftotext.Path)
	case r.Pdftotext.Backend == mdpdf.BackendPdftotext:
		fmt.Fprintln(w, "  [ERROR] pdftotext: not found")
	default:
		fmt.Fprintln(w, "  [--] pdftotext: not found (not needed for native backend)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.ConfigValid {
		fmt.Fprintln(w, "  [OK] Config: valid")
	} else {
		fmt.Fprintln(w, "  [ERROR] Config: invalid")
	}
	if r.System.UploadWritable {
		fmt.Fprintf(w, "  [OK] Upload directory: %s (writable)\n", r.System.UploadDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Upload directory: %s (not writable)\n", r.System.UploadDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to serve")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

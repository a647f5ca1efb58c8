package main

// Notes:
// - runMain: we test dispatch and exit codes. Markdown to PDF needs Chrome and
//   is covered by the integration tests in the root package; here convert runs
//   with --html-only or in the PDF to Markdown direction.
// - Every invocation passes --env-file= so a stray .env cannot leak in, and
//   Environ is injected so tests can run in parallel.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-mdpdf/internal/pdftest"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(environ ...string) *testEnv {
	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Stdout:  &stdout,
			Stderr:  &stderr,
			Environ: func() []string { return environ },
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

func run(t *testing.T, env *testEnv, args ...string) int {
	t.Helper()
	return runMain(context.Background(), append([]string{"mdpdf"}, args...), env.Environment)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"version", "--version", "-v"} {
		arg := arg
		t.Run(arg, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			require.Equal(t, ExitSuccess, run(t, env, arg))
			assert.Equal(t, "mdpdf dev\n", env.stdout.String())
		})
	}
}

func TestRunMain_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"help"}, "Commands:"},
		{[]string{"--help"}, "Commands:"},
		{[]string{"help", "serve"}, "Usage: mdpdf serve"},
		{[]string{"help", "convert"}, "--html-only"},
		{[]string{"help", "doctor"}, "--json"},
		{[]string{"help", "config"}, "effective configuration"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			require.Equal(t, ExitSuccess, run(t, env, tt.args...))
			assert.Contains(t, env.stdout.String(), tt.want)
		})
	}
}

func TestRunMain_UnknownCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	assert.Equal(t, ExitUsage, run(t, env, "frobnicate"))
	assert.Contains(t, env.stderr.String(), "Unknown command: frobnicate")
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want bool
	}{
		{"serve", true},
		{"convert", true},
		{"--version", true},
		{"-h", true},
		{"--addr", false},
		{"-w", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isCommand(tt.arg), "isCommand(%q)", tt.arg)
	}
}

// ---------------------------------------------------------------------------
// config command
// ---------------------------------------------------------------------------

func TestRunMain_Config(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		require.Equal(t, ExitSuccess, run(t, env, "config", "--env-file="))
		out := env.stdout.String()
		assert.Contains(t, out, "addr:")
		assert.Contains(t, out, "backend: native")
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeFile(t, t.TempDir(), "mdpdf.yaml", []byte("server:\n  addr: \":4000\"\nrender:\n  page_size: letter\n"))
		env := newTestEnv("MDPDF_ADDR=:5000")

		require.Equal(t, ExitSuccess, run(t, env, "config", "--env-file=", "--config", cfgPath))
		out := env.stdout.String()
		assert.Contains(t, out, "5000")
		assert.NotContains(t, out, "4000")
		assert.Contains(t, out, "page_size: letter")
	})

	t.Run("config path from environment", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeFile(t, t.TempDir(), "mdpdf.yaml", []byte("extract:\n  backend: pdftotext\n"))
		env := newTestEnv("MDPDF_CONFIG=" + cfgPath)

		require.Equal(t, ExitSuccess, run(t, env, "config", "--env-file="))
		assert.Contains(t, env.stdout.String(), "backend: pdftotext")
	})

	t.Run("unknown variable warns", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv("MDPDF_ADRR=:1")
		require.Equal(t, ExitSuccess, run(t, env, "config", "--env-file="))
		assert.Contains(t, env.stderr.String(), "warning: unknown environment variable MDPDF_ADRR")
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv("MDPDF_PAGE_SIZE=a5")
		assert.Equal(t, ExitUsage, run(t, env, "config", "--env-file="))
		assert.Contains(t, env.stderr.String(), "page_size")
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		code := run(t, env, "config", "--env-file=", "--config", "no-such-config-xyz")
		assert.Equal(t, ExitUsage, code)
		assert.Contains(t, env.stderr.String(), "hint:")
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		assert.Equal(t, ExitUsage, run(t, env, "config", "--nope"))
	})
}

// ---------------------------------------------------------------------------
// convert command
// ---------------------------------------------------------------------------

func TestRunMain_ConvertHTMLOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "notes.md", []byte("# Notes\n\nSome *text*."))
	env := newTestEnv()

	require.Equal(t, ExitSuccess, run(t, env, "convert", input, "--html-only", "--env-file="),
		"stderr: %s", env.stderr.String())

	output := filepath.Join(dir, "notes.html")
	assert.Equal(t, "Created "+output+"\n", env.stdout.String())

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), `<h1 id="notes">Notes</h1>`)
	assert.Contains(t, string(html), "<title>notes</title>")
	assert.Contains(t, string(html), "font-family: Arial")
}

func TestRunMain_ConvertPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "report.pdf", pdftest.OnePage("QUARTERLY REPORT"))
	output := filepath.Join(dir, "out", "report.md")
	env := newTestEnv()

	require.Equal(t, ExitSuccess, run(t, env, "convert", input, "-o", output, "--env-file="),
		"stderr: %s", env.stderr.String())

	md, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# QUARTERLY REPORT")
}

func TestRunMain_ConvertErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", []byte("x"))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no input", []string{"convert", "--env-file="}, ExitUsage},
		{"two inputs", []string{"convert", "a.md", "b.md", "--env-file="}, ExitUsage},
		{"unsupported extension", []string{"convert", txt, "--env-file="}, ExitUsage},
		{"missing file", []string{"convert", filepath.Join(dir, "missing.md"), "--env-file="}, ExitIO},
		{"unknown flag", []string{"convert", "--bogus"}, ExitUsage},
		{"invalid margin", []string{"convert", "a.md", "--margin", "500", "--env-file="}, ExitUsage},
		{"unknown backend", []string{"convert", "a.pdf", "--extract-backend", "ocr", "--env-file="}, ExitUsage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			assert.Equal(t, tt.want, run(t, env, tt.args...), "stderr: %s", env.stderr.String())
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/notes.pdf", outputPath("a/notes.md", "", ".md", ".pdf"))
	assert.Equal(t, "my.md.backup.pdf", outputPath("my.md.backup.md", "", ".md", ".pdf"))
	assert.Equal(t, "x.pdf", outputPath("notes.md", "x.pdf", ".md", ".pdf"))
}

// ---------------------------------------------------------------------------
// serve command
// ---------------------------------------------------------------------------

func TestRunMain_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)

	go func() {
		done <- runMain(ctx, []string{"mdpdf", "--addr", "127.0.0.1:0", "--upload-dir", t.TempDir(), "--env-file="}, env.Environment)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, ExitSuccess, code, "stderr: %s", env.stderr.String())
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, env.stderr.String(), "msg=starting")
}

func TestRunMain_ServeRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad style", []string{"serve", "--style", "missing-style", "--env-file="}, ExitUsage},
		{"positional argument", []string{"serve", "extra", "--env-file="}, ExitUsage},
		{"bad workers", []string{"serve", "--workers", "-1", "--env-file="}, ExitUsage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			args := append(tt.args, "--upload-dir", t.TempDir())
			assert.Equal(t, tt.want, run(t, env, args...), "stderr: %s", env.stderr.String())
		})
	}
}

func TestServeFlags_Apply(t *testing.T) {
	t.Parallel()

	f, fs, err := parseServeFlags([]string{"--addr", ":6000", "--cors-origin", "https://a.example", "--cors-origin", "https://b.example", "--highlight"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := defaultTestConfig()
	cfg.Render.Style = "from-file"
	f.apply(fs, cfg)

	assert.Equal(t, ":6000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Render.Highlight)
	assert.Equal(t, "from-file", cfg.Render.Style, "unset flags must not clobber config")
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	mu     sync.Mutex
	inputs []mdpdf.Input
	pdf    []byte
	err    error
}

func (f *fakeRenderer) Convert(_ context.Context, input mdpdf.Input) (*mdpdf.ConvertResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &mdpdf.ConvertResult{PDF: f.pdf}, nil
}

func (f *fakeRenderer) calls() []mdpdf.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mdpdf.Input(nil), f.inputs...)
}

type fakeExtractor struct {
	got      []byte
	markdown string
	err      error
}

func (f *fakeExtractor) Extract(_ context.Context, data []byte) (*mdpdf.ExtractResult, error) {
	f.got = data
	if f.err != nil {
		return nil, f.err
	}
	return &mdpdf.ExtractResult{Text: string(data), Markdown: f.markdown}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testPage = "<!DOCTYPE html><title>mdpdf</title>"

type testEnv struct {
	handler   http.Handler
	renderer  *fakeRenderer
	extractor *fakeExtractor
	uploadDir string
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		renderer:  &fakeRenderer{pdf: []byte("%PDF-1.4 fake")},
		extractor: &fakeExtractor{markdown: "# TITLE\nbody"},
		uploadDir: cfg.Upload.Dir,
	}
	env.handler = NewRouter(cfg, Deps{
		Renderer:  env.renderer,
		Extractor: env.extractor,
		Web:       fstest.MapFS{"index.html": {Data: []byte(testPage)}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return env
}

// multipartBody builds a request body with one file part under field.
func multipartBody(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postFile(t *testing.T, h http.Handler, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, formField, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func assertNoStagedFiles(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged uploads should be removed after the request")
}

// ---------------------------------------------------------------------------
// Markdown to PDF
// ---------------------------------------------------------------------------

func TestMarkdownToPDF(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/md-to-pdf", "/api/md-to-pdf"} {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			rec := postFile(t, env.handler, path, "notes.md", []byte("# Hello"))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="notes.pdf"`, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, "%PDF-1.4 fake", rec.Body.String())

			calls := env.renderer.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "# Hello", calls[0].Markdown)
			assert.Equal(t, "notes", calls[0].Title)
			assertNoStagedFiles(t, env.uploadDir)
		})
	}
}

func TestMarkdownToPDF_FilenameSwap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"simple", "report.md", `attachment; filename="report.pdf"`},
		{"first occurrence only", "a.md.backup.md", `attachment; filename="a.pdf.backup.md"`},
		{"spaces", "my notes.md", `attachment; filename="my notes.pdf"`},
		{"quote escaped", `say "hi".md`, `attachment; filename="say \"hi\".pdf"`},
		{"non ascii", "résumé.md", `attachment; filename="résumé.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			rec := postFile(t, env.handler, "/md-to-pdf", tt.filename, []byte("x"))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Disposition"))
		})
	}
}

// htmlRenderer runs the real Markdown pipeline without a browser and serves
// the document HTML in place of the PDF.
type htmlRenderer struct {
	conv *mdpdf.Converter
}

func (h htmlRenderer) Convert(ctx context.Context, input mdpdf.Input) (*mdpdf.ConvertResult, error) {
	input.HTMLOnly = true
	res, err := h.conv.Convert(ctx, input)
	if err != nil {
		return nil, err
	}
	return &mdpdf.ConvertResult{HTML: res.HTML, PDF: res.HTML}, nil
}

func TestMarkdownToPDF_FormatVerbInFilename(t *testing.T) {
	t.Parallel()

	conv, err := mdpdf.NewConverter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conv.Close() })

	cfg := config.DefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	h := NewRouter(cfg, Deps{
		Renderer:  htmlRenderer{conv: conv},
		Extractor: &fakeExtractor{},
		Web:       fstest.MapFS{"index.html": {Data: []byte(testPage)}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rec := postFile(t, h, "/md-to-pdf", "a%s.md", []byte("# Hello"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="a%s.pdf"`, rec.Header().Get("Content-Disposition"))

	doc := rec.Body.String()
	assert.Contains(t, doc, "<title>a%s</title>")
	_, body, found := strings.Cut(doc, "<body>")
	require.True(t, found, "document has no <body>: %s", doc)
	assert.Contains(t, body, "Hello</h1>")
	assert.NotContains(t, body, "%s")
	assertNoStagedFiles(t, cfg.Upload.Dir)
}

func TestMarkdownToPDF_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"wrong extension", "notes.txt", []byte("# x")},
		{"upper case extension", "NOTES.MD", []byte("# x")},
		{"pdf sent to markdown endpoint", "doc.pdf", []byte("%PDF")},
		{"no filename", "", []byte("# x")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			rec := postFile(t, env.handler, "/md-to-pdf", tt.filename, tt.content)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Please upload a valid .md file", decodeError(t, rec))
			assert.Empty(t, env.renderer.calls())
			assertNoStagedFiles(t, env.uploadDir)
		})
	}
}

func TestMarkdownToPDF_MissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/md-to-pdf", strings.NewReader("# x"))
		req.Header.Set("Content-Type", "text/markdown")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please upload a valid .md file", decodeError(t, rec))
	})

	t.Run("wrong field", func(t *testing.T) {
		body, contentType := multipartBody(t, "document", "notes.md", []byte("# x"))
		req := httptest.NewRequest(http.MethodPost, "/md-to-pdf", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please upload a valid .md file", decodeError(t, rec))
	})
}

func TestMarkdownToPDF_EmptyFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.renderer.err = mdpdf.ErrEmptyMarkdown

	rec := postFile(t, env.handler, "/md-to-pdf", "empty.md", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload a valid .md file", decodeError(t, rec))
}

func TestMarkdownToPDF_ConversionFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.renderer.err = errors.New("browser exploded")

	rec := postFile(t, env.handler, "/md-to-pdf", "notes.md", []byte("# x"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeError(t, rec)
	assert.Equal(t, "Failed to convert file", msg)
	assert.NotContains(t, msg, "browser")
	assertNoStagedFiles(t, env.uploadDir)
}

func TestMarkdownToPDF_TooLarge(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(c *config.Config) { c.Upload.MaxBytes = 512 })
	rec := postFile(t, env.handler, "/md-to-pdf", "big.md", bytes.Repeat([]byte("a"), 4096))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File too large", decodeError(t, rec))
	assert.Empty(t, env.renderer.calls())
	assertNoStagedFiles(t, env.uploadDir)
}

// ---------------------------------------------------------------------------
// PDF to Markdown
// ---------------------------------------------------------------------------

func TestPDFToMarkdown(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/pdf-to-md", "/api/pdf-to-md"} {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			rec := postFile(t, env.handler, path, "paper.pdf", []byte("%PDF-1.4 data"))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="paper.md"`, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, "# TITLE\nbody", rec.Body.String())
			assert.Equal(t, []byte("%PDF-1.4 data"), env.extractor.got)
			assertNoStagedFiles(t, env.uploadDir)
		})
	}
}

func TestPDFToMarkdown_Rejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := postFile(t, env.handler, "/pdf-to-md", "notes.md", []byte("# x"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload a valid .pdf file", decodeError(t, rec))
	assert.Nil(t, env.extractor.got)
}

func TestPDFToMarkdown_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"empty pdf", mdpdf.ErrEmptyPDF, http.StatusBadRequest, "Please upload a valid .pdf file"},
		{"corrupt pdf", mdpdf.ErrTextExtraction, http.StatusInternalServerError, "Failed to convert file"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			env.extractor.err = tt.err

			rec := postFile(t, env.handler, "/pdf-to-md", "broken.pdf", []byte("garbage"))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rec))
		})
	}
}

// ---------------------------------------------------------------------------
// Routing
// ---------------------------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, path := range []string{"/md-to-pdf", "/pdf-to-md", "/api/md-to-pdf", "/api/pdf-to-md"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			method := method
			t.Run(method+" "+path, func(t *testing.T) {
				t.Parallel()

				rec := httptest.NewRecorder()
				env.handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

				require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
				assert.Equal(t, "Method not allowed", decodeError(t, rec))
			})
		}
	}
}

func TestIndexAndHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	t.Run("upload page", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, testPage, rec.Body.String())
	})

	t.Run("healthz", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not found", decodeError(t, rec))
	})

	t.Run("request id header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	preflight := func(h http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/md-to-pdf", nil)
		req.Header.Set("Origin", "https://docs.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		rec := preflight(newTestEnv(t).handler)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("configured origin allowed", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, func(c *config.Config) {
			c.Server.CORSOrigins = []string{"https://docs.example.com"}
		})
		rec := preflight(env.handler)
		assert.Equal(t, "https://docs.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Upload.Dir = t.TempDir()
	srv := New(cfg, Deps{
		Renderer:  &fakeRenderer{pdf: []byte("%PDF")},
		Extractor: &fakeExtractor{},
		Web:       fstest.MapFS{"index.html": {Data: []byte(testPage)}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	assert.Equal(t, ":3000", srv.Addr())
	assert.NotNil(t, srv.Handler())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err, "clean shutdown should not surface ErrServerClosed")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `attachment; filename="a.pdf"`, contentDisposition("a.pdf"))
	assert.Equal(t, `attachment; filename="ab.pdf"`, contentDisposition("a\r\nb.pdf"))
	assert.Equal(t, `attachment; filename="a\\b.pdf"`, contentDisposition(`a\b.pdf`))
}

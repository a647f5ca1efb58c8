package server

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/fileutil"
)

// formField is the multipart field carrying the uploaded document.
const formField = "file"

const (
	extMarkdown = ".md"
	extPDF      = ".pdf"
)

// upload is a document staged on disk for the duration of one request.
type upload struct {
	name    string // original filename as sent by the client
	path    string
	cleanup func() error
}

type handlers struct {
	renderer  Renderer
	extractor Extractor
	web       fs.FS
	uploadDir string
	maxBytes  int64
	logger    *slog.Logger
}

// markdownToPDF handles POST /md-to-pdf.
func (h *handlers) markdownToPDF(w http.ResponseWriter, r *http.Request) {
	up, err := h.receive(w, r, extMarkdown)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer h.discard(r, up)

	data, err := os.ReadFile(up.path)
	if err != nil {
		writeError(w, r, h.logger, &ConversionError{Op: "reading upload", Err: err})
		return
	}

	result, err := h.renderer.Convert(r.Context(), mdpdf.Input{
		Markdown: string(data),
		Title:    strings.TrimSuffix(up.name, extMarkdown),
	})
	if errors.Is(err, mdpdf.ErrEmptyMarkdown) {
		writeError(w, r, h.logger, badRequest(invalidFileMessage(extMarkdown)))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, &ConversionError{Op: "rendering PDF", Err: err})
		return
	}

	name := fileutil.SwapExtension(up.name, extMarkdown, extPDF)
	writeAttachment(w, "application/pdf", name, result.PDF)
}

// pdfToMarkdown handles POST /pdf-to-md.
func (h *handlers) pdfToMarkdown(w http.ResponseWriter, r *http.Request) {
	up, err := h.receive(w, r, extPDF)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer h.discard(r, up)

	data, err := os.ReadFile(up.path)
	if err != nil {
		writeError(w, r, h.logger, &ConversionError{Op: "reading upload", Err: err})
		return
	}

	result, err := h.extractor.Extract(r.Context(), data)
	if errors.Is(err, mdpdf.ErrEmptyPDF) {
		writeError(w, r, h.logger, badRequest(invalidFileMessage(extPDF)))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, &ConversionError{Op: "extracting text", Err: err})
		return
	}

	name := fileutil.SwapExtension(up.name, extPDF, extMarkdown)
	writeAttachment(w, "text/markdown; charset=utf-8", name, []byte(result.Markdown))
}

// index serves the upload page.
func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(h.web, "index.html")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "loading upload page", slog.Any("error", err))
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgNotFound})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// health handles GET /healthz.
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// receive streams the "file" part of a multipart request into the upload
// directory. The filename must end with ext; nothing is written otherwise.
func (h *handlers) receive(w http.ResponseWriter, r *http.Request, ext string) (*upload, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	invalid := badRequest(invalidFileMessage(ext))

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, invalid
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, invalid
		}
		if err != nil {
			if isTooLarge(err) {
				return nil, tooLarge()
			}
			return nil, invalid
		}
		if part.FormName() != formField {
			_ = part.Close()
			continue
		}
		return h.stage(part, ext)
	}
}

func (h *handlers) stage(part *multipart.Part, ext string) (*upload, error) {
	defer func() { _ = part.Close() }()

	name := part.FileName()
	if !fileutil.HasExtension(name, ext) {
		return nil, badRequest(invalidFileMessage(ext))
	}

	path, cleanup, err := fileutil.StageUpload(h.uploadDir, part, strings.TrimPrefix(ext, "."))
	if err != nil {
		if isTooLarge(err) {
			return nil, tooLarge()
		}
		return nil, &ConversionError{Op: "staging upload", Err: err}
	}
	return &upload{name: name, path: path, cleanup: cleanup}, nil
}

// discard removes the staged file. Failures are logged, never returned.
func (h *handlers) discard(r *http.Request, up *upload) {
	if err := up.cleanup(); err != nil {
		h.logger.WarnContext(r.Context(), "removing staged upload",
			slog.String("path", up.path),
			slog.Any("error", err),
		)
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// writeAttachment sends body as a download named filename.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// contentDisposition quotes filename for the header. Non-ASCII names also get
// an RFC 5987 filename* parameter.
func contentDisposition(filename string) string {
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "").Replace(filename)
	v := `attachment; filename="` + quoted + `"`
	if !isASCII(filename) {
		v += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return v
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

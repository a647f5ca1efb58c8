// Package fileutil provides temp file staging and path helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrDirNotWritable         = errors.New("directory is not writable")
)

// tempPrefix marks files created by this program.
const tempPrefix = "mdpdf-"

// WriteTempFile creates a temporary file in dir with the given content and
// extension. An empty dir means os.TempDir().
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(dir, content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp(dir, tempPrefix+"*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// StageUpload copies r into dir under a random UUID name and returns its path.
// The directory is created if absent. The returned cleanup removes the file
// and reports the error so callers can log it; a file that is already gone is
// not an error.
func StageUpload(dir string, r io.Reader, extension string) (path string, cleanup func() error, err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", nil, fmt.Errorf("creating upload dir: %w", err)
	}

	path = filepath.Join(dir, tempPrefix+uuid.NewString()+"."+extension)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("creating upload file: %w", err)
	}

	cleanup = func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}

	if _, copyErr := io.Copy(f, r); copyErr != nil {
		_ = f.Close()
		_ = cleanup()
		return "", nil, fmt.Errorf("writing upload file: %w", copyErr)
	}
	if closeErr := f.Close(); closeErr != nil {
		_ = cleanup()
		return "", nil, fmt.Errorf("closing upload file: %w", closeErr)
	}

	return path, cleanup, nil
}

// CheckWritable verifies that dir exists (creating it if needed) and accepts
// new files.
func CheckWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}
	f, err := os.CreateTemp(dir, tempPrefix+"probe-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// HasExtension reports whether name ends with ext (e.g. ".md").
// The match is case-sensitive.
func HasExtension(name, ext string) bool {
	return name != "" && strings.HasSuffix(name, ext)
}

// SwapExtension replaces the first occurrence of from in name with to.
//
//	"notes.md"         -> "notes.pdf"
//	"my.md.backup.md"  -> "my.pdf.backup.md"
func SwapExtension(name, from, to string) string {
	return strings.Replace(name, from, to, 1)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "default" -> false (name)
//   - "./custom.css" -> true (relative path)
//   - "/absolute/path.css" -> true (absolute)
//   - "C:\windows\path.css" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsCSS returns true if the string looks like inline CSS rather than a name
// or a path.
func IsCSS(s string) bool {
	return strings.Contains(s, "{")
}

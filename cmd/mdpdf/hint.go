package main

import (
	"context"
	"errors"
	"os/exec"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/hints"
)

// hintFor returns an actionable hint to print after err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdpdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, mdpdf.ErrPageLoad):
		return hints.ForTimeout()
	case errors.Is(err, mdpdf.ErrStyleNotFound):
		return hints.ForStyleNotFound()
	case errors.Is(err, fileutil.ErrDirNotWritable):
		return hints.ForUploadDir()
	case errors.Is(err, exec.ErrNotFound):
		return hints.ForPdftotext()
	}
	return ""
}

package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Well-known asset names.
const (
	DefaultStyleName     = "default"
	DocumentTemplateName = "document"
)

// AssetLoader defines the contract for loading CSS styles, HTML templates and
// the static web UI.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	LoadTemplate(name string) (string, error)

	// Web returns the filesystem served at the site root.
	Web() fs.FS
}

// fsLoader reads assets from any fs.FS laid out as styles/, templates/, web/.
type fsLoader struct {
	fsys fs.FS
}

func (l *fsLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(l.fsys, "styles/"+name+".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

func (l *fsLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(l.fsys, "templates/"+name+".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return string(content), nil
}

func (l *fsLoader) Web() fs.FS {
	sub, err := fs.Sub(l.fsys, "web")
	if err != nil {
		return l.fsys
	}
	return sub
}

// NewDirLoader loads assets from a directory on disk.
func NewDirLoader(dir string) (AssetLoader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrInvalidBasePath, dir)
	}
	return &fsLoader{fsys: os.DirFS(dir)}, nil
}

// AssetResolver tries an override loader first and falls back to the
// embedded assets when the override does not have the requested asset.
type AssetResolver struct {
	custom   AssetLoader // nil when no override directory is configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty dir means embedded only.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if dir == "" {
		return r, nil
	}
	custom, err := NewDirLoader(dir)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// LoadStyle loads a style, preferring the override directory.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplate loads a template, preferring the override directory.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(l AssetLoader) (string, error) {
		return l.LoadTemplate(name)
	})
}

// Web serves the override directory's web/ when it has an index.html.
func (r *AssetResolver) Web() fs.FS {
	if r.custom != nil {
		web := r.custom.Web()
		if _, err := fs.Stat(web, "index.html"); err == nil {
			return web
		}
	}
	return r.embedded.Web()
}

func (r *AssetResolver) loadWithFallback(loadFn func(AssetLoader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}

	// Validation errors are not retried against the embedded set.
	if !isNotFoundError(err) {
		return "", err
	}
	return loadFn(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// Compile-time interface checks.
var (
	_ AssetLoader = (*fsLoader)(nil)
	_ AssetLoader = (*AssetResolver)(nil)
)

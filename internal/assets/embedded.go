package assets

import (
	"embed"
)

//go:embed styles/*.css templates/*.html web/*
var embedded embed.FS

// NewEmbeddedLoader returns a loader backed by the compiled-in assets.
func NewEmbeddedLoader() AssetLoader {
	return &fsLoader{fsys: embedded}
}

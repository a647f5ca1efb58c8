package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/assets"
	"github.com/alnah/go-mdpdf/internal/config"
	"github.com/alnah/go-mdpdf/internal/hints"
)

// loadConfig builds the effective config: defaults, then the YAML file,
// then MDPDF_* variables (after reading the dotenv file). Callers overlay
// flags last and validate.
func loadConfig(f *commonFlags, env *Environment) (*config.Config, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return nil, err
	}
	environ := env.Environ()

	name := f.config
	if name == "" {
		name = config.LookupEnv(environ, config.EnvConfigPath)
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	for _, warning := range cfg.ApplyEnv(environ) {
		fmt.Fprintf(env.Stderr, "warning: %s\n", warning)
	}
	return cfg, nil
}

// newLogger returns a slog logger writing to w as configured.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// assetLoader returns the embedded assets, layered under cfg.Assets.Dir when set.
func assetLoader(cfg *config.Config) (assets.AssetLoader, error) {
	if cfg.Assets.Dir == "" {
		return assets.NewEmbeddedLoader(), nil
	}
	resolver, err := assets.NewAssetResolver(cfg.Assets.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mdpdf.ErrInvalidAssetPath, err)
	}
	return resolver, nil
}

// converterOptions maps the render section of cfg to converter options.
func converterOptions(cfg *config.Config, loader assets.AssetLoader) []mdpdf.Option {
	opts := []mdpdf.Option{
		mdpdf.WithTimeout(cfg.Render.Timeout),
		mdpdf.WithStyle(cfg.Render.Style),
		mdpdf.WithPage(&mdpdf.PageSettings{
			Size:   strings.ToLower(cfg.Render.PageSize),
			Margin: cfg.Render.MarginPx,
		}),
		mdpdf.WithTempDir(cfg.Upload.Dir),
		mdpdf.WithAssetLoader(loader),
	}
	if cfg.Render.Highlight {
		opts = append(opts, mdpdf.WithHighlighting(""))
	}
	return opts
}

// newExtractor builds the PDF to Markdown extractor for cfg.Extract.Backend.
func newExtractor(cfg *config.Config) (*mdpdf.Extractor, error) {
	te, err := mdpdf.NewTextExtractor(cfg.Extract.Backend)
	if err != nil {
		return nil, err
	}
	return mdpdf.NewExtractor(mdpdf.WithTextExtractor(te)), nil
}

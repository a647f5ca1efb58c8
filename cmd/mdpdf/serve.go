package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/server"
)

// runServe starts the HTTP service and blocks until ctx is cancelled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError(err)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Log, env.Stderr)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	if err := fileutil.CheckWritable(cfg.Upload.Dir); err != nil {
		return fmt.Errorf("upload dir %s: %w", cfg.Upload.Dir, err)
	}

	loader, err := assetLoader(cfg)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	if cfg.Extract.Backend == mdpdf.BackendPdftotext {
		if _, ok := mdpdf.PdftotextPath(); !ok {
			logger.Warn("pdftotext not found on PATH, PDF uploads will fail")
		}
	}

	poolSize := mdpdf.ResolvePoolSize(cfg.Render.Workers)
	pool := mdpdf.NewConverterPool(poolSize, converterOptions(cfg, loader)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converter pool", slog.Any("error", err))
		}
	}()

	// Build one converter up front so a bad style or template fails at
	// startup instead of on the first request. No browser is launched yet.
	conv, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	pool.Release(conv)

	srv := server.New(cfg, server.Deps{
		Renderer:  pool,
		Extractor: extractor,
		Web:       loader.Web(),
		Logger:    logger,
	})

	logger.Info("starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Server.Addr),
		slog.Int("workers", poolSize),
		slog.String("extract_backend", cfg.Extract.Backend),
		slog.String("upload_dir", cfg.Upload.Dir),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	logger.Info("stopped")
	return nil
}

package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-mdconv"
	"github.com/alnah/go-mdconv/internal/assets"
	"github.com/alnah/go-mdconv/internal/config"
	"github.com/alnah/go-mdconv/internal/preview"
	"github.com/alnah/go-mdconv/internal/server"
)

// serveDefaultTimeout bounds a conversion when the config leaves the
// timeout empty. It also sizes the HTTP write timeout.
const serveDefaultTimeout = 2 * time.Minute

// runServe starts the form server and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.pandoc.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadEffectiveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(env.Stderr, logLevel(flags.common))

	srv, pool, err := newServer(cfg, flags.strict, log, env)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	timeout, _ := cfg.TimeoutDuration()
	timeout = cmp.Or(timeout, serveDefaultTimeout)

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving on http://%s (workers: %d)\n", cfg.Server.Addr, pool.Size())
	}
	return server.ListenAndServe(ctx, cfg.Server.Addr, srv.Routes(), timeout, log)
}

// mergeServeFlags merges serve flags into config (CLI wins).
func mergeServeFlags(flags *serveFlags, cfg *config.Config) {
	mergeString(flags.set, "addr", flags.addr, &cfg.Server.Addr)
	mergeString(flags.set, "assets", flags.assets, &cfg.Server.AssetsDir)
	mergePandocFlags(flags.set, flags.pandoc, cfg)
}

// newServer wires the converter pool, the preview renderer and the form
// assets into a server. The caller closes the returned pool.
func newServer(cfg *config.Config, strict bool, log *slog.Logger, env *Environment) (*server.Server, *mdconv.ConverterPool, error) {
	resolver, err := assets.NewAssetResolver(cfg.Server.AssetsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("form assets: %w", err)
	}

	opts := append(converterOptions(cfg, strict, false, env), mdconv.WithLogger(log))

	// probe answers /healthz without taking a pooled converter
	probe, err := mdconv.NewConverter(opts...)
	if err != nil {
		return nil, nil, err
	}

	pool := mdconv.NewConverterPool(mdconv.ResolvePoolSize(cfg.Workers), opts...)

	srv, err := server.New(pool, preview.New(), server.Config{
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Defaults:       serverDefaults(cfg),
		Assets:         resolver,
		Logger:         log,
		Version:        Version,
		Check: func(ctx context.Context) error {
			_, err := probe.PandocVersion(ctx)
			return err
		},
	})
	if err != nil {
		_ = pool.Close()
		return nil, nil, err
	}
	return srv, pool, nil
}

// serverDefaults pre-fills the form from the effective config.
func serverDefaults(cfg *config.Config) server.Defaults {
	return server.Defaults{
		Format:         strings.ToLower(cfg.Format),
		TOC:            cfg.TOC.Enabled,
		TOCDepth:       cfg.TOC.Depth,
		NumberSections: cfg.NumberSections,
		HighlightStyle: cfg.HighlightStyle,
		DPI:            cfg.Docx.DPI,
		DocxFont:       cfg.Docx.Font,
		Engine:         cfg.PDF.Engine,
		PaperSize:      cfg.PDF.PaperSize,
		FontSize:       cfg.PDF.FontSize,
		DocumentClass:  cfg.PDF.DocumentClass,
		Margin:         cfg.PDF.Margin,
		LineStretch:    cfg.PDF.LineStretch,
		FontFamily:     cfg.PDF.FontFamily,
	}
}

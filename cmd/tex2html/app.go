package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/hints"
	"github.com/alnah/go-tex2html/internal/pipeline"
	"github.com/alnah/go-tex2html/internal/store"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// app bundles what a command needs once flags and config are resolved.
type app struct {
	env    *Environment
	cfg    *config.Config
	logger *slog.Logger
	quiet  bool
}

// newApp resolves configuration for a command.
func newApp(f *commonFlags, env *Environment) (*app, error) {
	if !f.quiet && env.Environ != nil {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	cfg, err := resolveConfig(f, env)
	if err != nil {
		return nil, err
	}

	return &app{
		env:    env,
		cfg:    cfg,
		logger: newLogger(env.Stderr, f.quiet, f.verbose),
		quiet:  f.quiet,
	}, nil
}

// newLogger returns a text logger on w. Warnings are shown by default,
// debug records with verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// newRenderer builds a Renderer from the resolved config.
func (a *app) newRenderer() (*tex2html.Renderer, error) {
	macros, err := a.loadMacros()
	if err != nil {
		return nil, err
	}

	timeout, err := a.cfg.PandocTimeout()
	if err != nil {
		return nil, err
	}

	resourcePath := a.cfg.Pandoc.ResourcePath
	if resourcePath == "" {
		resourcePath = a.cfg.Static.Root
	}

	opts := []tex2html.Option{
		tex2html.WithLogger(a.logger),
		tex2html.WithMacros(macros),
		tex2html.WithBackendOrder(a.cfg.Backends...),
		tex2html.WithPandoc(tex2html.PandocOptions{
			Binary:       a.cfg.Pandoc.Path,
			ResourcePath: resourcePath,
			Timeout:      timeout,
			Args:         a.cfg.Pandoc.Args,
		}),
		tex2html.WithHighlightStyle(a.cfg.Highlight.Style),
		tex2html.WithImages(tex2html.ImageOptions{
			FiguresDir: a.cfg.Static.FiguresDir,
			URLPrefix:  a.cfg.Static.URLPrefix,
			Extension:  a.cfg.Static.Extension,
		}),
	}
	if a.cfg.Highlight.Disabled {
		opts = append(opts, tex2html.WithoutHighlighting())
	}

	if slices.Contains(a.cfg.Backends, config.BackendPandoc) {
		if _, ok := pipeline.LookupPandoc(a.cfg.Pandoc.Path); !ok {
			a.logger.Warn("pandoc not found, its attempts will fail", "binary", a.cfg.Pandoc.Path)
		}
	}

	r, err := tex2html.New(opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("renderer ready", "backends", r.Backends(), "pandocTimeout", timeout)
	return r, nil
}

// loadMacros reads the configured macro preamble. An unreadable file only
// warns: rendering proceeds without macros.
func (a *app) loadMacros() (string, error) {
	src := tex2html.MacroSource{
		Kind:       a.cfg.Macros.Source,
		StaticRoot: a.cfg.Static.Root,
		Path:       a.cfg.Macros.Path,
		Set:        a.cfg.Macros.Set,
		Logger:     a.logger,
	}

	if src.Kind == tex2html.MacroSourceBuiltin && src.Set != "" {
		if _, err := tex2html.ReadMacroSet(src.Set); err != nil {
			return "", fmt.Errorf("%w%s", err, hints.ForMacroSetNotFound(tex2html.MacroSets()))
		}
	}

	loader, err := tex2html.NewMacroLoader(src)
	if err != nil {
		if errors.Is(err, tex2html.ErrUnknownMacroSource) {
			return "", err
		}
		a.logger.Warn("macros unavailable, rendering without them", "error", err)
		return "", nil
	}
	return loader.LoadMacros(), nil
}

// openStore opens the configured problem bank.
func (a *app) openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := a.cfg.Database.Path
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w%s", ErrDatabase, err, hints.ForDatabase(path))
	}
	a.logger.Debug("problem bank open", "path", path, "topics", st.HasTopics())
	return st, nil
}

// macroFilePath returns the macro file the file and auto sources read.
func (a *app) macroFilePath() string {
	name := a.cfg.Macros.Path
	if name == "" {
		name = tex2html.DefaultMacroFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.cfg.Static.Root, name)
}

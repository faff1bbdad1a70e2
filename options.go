package tex2html

import (
	"context"
	"log/slog"
	"time"
)

// Backend converts LaTeX, macro preamble included, to an HTML fragment.
// Implementations report failure through the error; the renderer then tries
// the next backend.
type Backend interface {
	Name() string
	Convert(ctx context.Context, source string) (string, error)
}

// PandocOptions configures the pandoc backend.
type PandocOptions struct {
	Binary       string        // Executable name or path (default "pandoc")
	ResourcePath string        // Image search path (default "static")
	Timeout      time.Duration // 0 = bounded only by the caller's context
	Args         []string      // Appended after the fixed flags
}

// ImageOptions configures the <img src> rewrite applied to backend output.
type ImageOptions struct {
	FiguresDir string // Directory figures are referenced from (default "figures")
	URLPrefix  string // Where they are served (default "/static/figures")
	Extension  string // Served extension (default "png")
	Disabled   bool   // Leave src values as the backend wrote them
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds construction-time settings resolved by New.
type rendererConfig struct {
	backends       []Backend
	customBackends bool
	native         bool
	pandoc         bool
	order          []string
	pandocOpts     PandocOptions
	highlightStyle string
	highlightOff   bool
	images         ImageOptions
}

// WithMacros sets the macro preamble prepended to every source.
func WithMacros(macros string) Option {
	return func(r *Renderer) {
		r.macros = macros
	}
}

// WithBackends replaces the default native and pandoc backends.
// Backends are tried in the given order.
func WithBackends(backends ...Backend) Option {
	return func(r *Renderer) {
		r.cfg.backends = append([]Backend(nil), backends...)
		r.cfg.customBackends = true
	}
}

// WithPandoc configures the pandoc backend.
func WithPandoc(opts PandocOptions) Option {
	return func(r *Renderer) {
		r.cfg.pandocOpts = opts
	}
}

// WithBackendOrder selects the built-in backends by name, in the order they
// are tried. Names are BackendNative and BackendPandoc.
func WithBackendOrder(names ...string) Option {
	return func(r *Renderer) {
		r.cfg.order = append([]string{}, names...)
	}
}

// WithoutNative drops the in-process converter from the default chain.
func WithoutNative() Option {
	return func(r *Renderer) {
		r.cfg.native = false
	}
}

// WithoutPandoc drops pandoc from the default chain.
func WithoutPandoc() Option {
	return func(r *Renderer) {
		r.cfg.pandoc = false
	}
}

// WithHighlightStyle sets the chroma style used for code listings.
func WithHighlightStyle(style string) Option {
	return func(r *Renderer) {
		r.cfg.highlightStyle = style
	}
}

// WithoutHighlighting renders code listings as plain <pre><code>.
func WithoutHighlighting() Option {
	return func(r *Renderer) {
		r.cfg.highlightOff = true
	}
}

// WithImages configures the image path rewrite.
func WithImages(opts ImageOptions) Option {
	return func(r *Renderer) {
		r.cfg.images = opts
	}
}

// WithLogger sets the logger for backend diagnostics.
// Nil keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimeout bounds a whole render, every backend attempt included.
// Panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2html: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.timeout = d
	}
}

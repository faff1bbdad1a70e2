package tex2html

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.LaTeXPreprocessor = (*pipeline.LaTeXCleaner)(nil)
	_ pipeline.Backend           = (*pipeline.NativeBackend)(nil)
	_ pipeline.Backend           = (*pipeline.PandocBackend)(nil)
)

// Backend names reported in Result.
const (
	BackendNative   = pipeline.NativeBackendName
	BackendPandoc   = pipeline.PandocBackendName
	BackendFallback = pipeline.FallbackBackendName
)

// Attempt records one backend call made for a render.
type Attempt struct {
	Backend  string
	Err      error // nil for the attempt that produced output
	Duration time.Duration
}

// Result is the outcome of RenderDetailed.
type Result struct {
	HTML     *string   // nil only when the source was nil
	Backend  string    // backend that produced HTML, BackendFallback when none did
	Attempts []Attempt // every backend call, in order
}

// Fallback reports whether HTML is the escaped plain-text fallback.
func (r Result) Fallback() bool {
	return r.Backend == BackendFallback
}

// Renderer runs the cleanup, conversion and image rewrite pipeline.
// Create with New; a Renderer is safe for concurrent use.
type Renderer struct {
	cfg     rendererConfig
	macros  string
	timeout time.Duration
	logger  *slog.Logger
	cleaner pipeline.LaTeXPreprocessor
	chain   *pipeline.Chain
	images  *pipeline.ImageRewriter // nil when disabled
}

// New creates a Renderer. Without options it tries the native converter,
// then pandoc, and rewrites images to /static/figures/<name>.png.
// Returns ErrNoBackends if the options leave no backend to try.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg:     rendererConfig{native: true, pandoc: true},
		logger:  slog.New(slog.DiscardHandler),
		cleaner: &pipeline.LaTeXCleaner{},
	}

	for _, opt := range opts {
		opt(r)
	}

	if ext := r.cfg.images.Extension; ext != "" {
		if err := fileutil.ValidateExtension(ext); err != nil {
			return nil, fmt.Errorf("%w: image extension: %v", ErrInvalidOption, err)
		}
	}
	if !r.cfg.images.Disabled {
		img := r.cfg.images
		r.images = pipeline.NewImageRewriter(img.FiguresDir, img.URLPrefix, img.Extension)
	}

	backends, err := r.buildBackends()
	if err != nil {
		return nil, err
	}
	r.chain = pipeline.NewChain(backends...)
	if r.chain.Len() == 0 {
		return nil, ErrNoBackends
	}

	return r, nil
}

// buildBackends returns the custom backends, or the built-in ones in the
// configured order.
func (r *Renderer) buildBackends() ([]pipeline.Backend, error) {
	var backends []pipeline.Backend

	if r.cfg.customBackends {
		for _, b := range r.cfg.backends {
			if b != nil {
				backends = append(backends, b)
			}
		}
		return backends, nil
	}

	order := r.cfg.order
	if order == nil {
		order = []string{BackendNative, BackendPandoc}
	}

	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if seen[name] {
			return nil, fmt.Errorf("%w: backend %q listed twice", ErrInvalidOption, name)
		}
		seen[name] = true

		switch name {
		case BackendNative:
			if r.cfg.native {
				backends = append(backends, r.nativeBackend())
			}
		case BackendPandoc:
			if r.cfg.pandoc {
				backends = append(backends, r.pandocBackend())
			}
		default:
			return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidOption, name)
		}
	}
	return backends, nil
}

func (r *Renderer) nativeBackend() *pipeline.NativeBackend {
	if r.cfg.highlightOff {
		return pipeline.NewNativeBackend(pipeline.WithHighlighter(nil))
	}
	return pipeline.NewNativeBackend(pipeline.WithHighlighter(pipeline.NewHighlighter(r.cfg.highlightStyle)))
}

func (r *Renderer) pandocBackend() *pipeline.PandocBackend {
	p := r.cfg.pandocOpts
	return pipeline.NewPandocBackend(pipeline.PandocOptions{
		Binary:       p.Binary,
		ResourcePath: p.ResourcePath,
		Timeout:      p.Timeout,
		ExtraArgs:    p.Args,
	})
}

// Backends returns the backend names in the order they are tried.
func (r *Renderer) Backends() []string {
	return r.chain.Names()
}

// Render converts src to HTML. A nil src returns nil without running any
// backend. Failures are never returned: the result then holds the cleaned
// source, HTML-escaped, in a <pre> block.
func (r *Renderer) Render(ctx context.Context, src *string) *string {
	return r.RenderDetailed(ctx, src).HTML
}

// RenderString is Render for non-nullable sources.
func (r *Renderer) RenderString(ctx context.Context, src string) string {
	return *r.Render(ctx, &src)
}

// RenderDetailed is Render reporting which backend produced the HTML.
// Recovers from internal panics so a bad source cannot crash the caller.
func (r *Renderer) RenderDetailed(ctx context.Context, src *string) (result Result) {
	if src == nil {
		return Result{}
	}

	cleaned := *src
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("render panicked, using plain text", "panic", fmt.Sprint(rec))
			html := pipeline.PlainTextFallback(cleaned)
			result = Result{HTML: &html, Backend: BackendFallback, Attempts: result.Attempts}
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cleaned = r.cleaner.PreprocessLaTeX(ctx, cleaned)

	composed := cleaned
	if r.macros != "" {
		composed = r.macros + "\n" + cleaned
	}

	out, backend, attempts, err := r.chain.Convert(ctx, composed)
	result.Attempts = publicAttempts(attempts)
	for _, a := range attempts {
		if a.Err != nil {
			r.logger.Debug("backend failed", "backend", a.Backend, "duration", a.Duration, "error", a.Err)
		}
	}

	if err != nil {
		r.logger.Warn("all backends failed, using plain text", "backends", r.chain.Names(), "error", err)
		html := pipeline.PlainTextFallback(cleaned)
		result.HTML = &html
		result.Backend = BackendFallback
		return result
	}

	if len(attempts) > 1 {
		r.logger.Warn("fallback backend used", "backend", backend, "attempts", len(attempts))
	}
	if r.images != nil {
		out = r.images.RewriteImages(out)
	}

	result.HTML = &out
	result.Backend = backend
	return result
}

func publicAttempts(attempts []pipeline.Attempt) []Attempt {
	if len(attempts) == 0 {
		return nil
	}
	out := make([]Attempt, len(attempts))
	for i, a := range attempts {
		out[i] = Attempt{Backend: a.Backend, Err: a.Err, Duration: a.Duration}
	}
	return out
}

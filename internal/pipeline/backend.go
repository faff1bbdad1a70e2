package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// FallbackBackendName identifies output produced when every backend failed.
const FallbackBackendName = "fallback"

// Sentinel errors for backend conversion.
var (
	ErrNoBackends        = errors.New("no conversion backends configured")
	ErrBackendPanic      = errors.New("backend panicked")
	ErrUnsupportedSyntax = errors.New("unsupported LaTeX syntax")
)

// Backend converts LaTeX (macros already prepended) to an HTML fragment.
// Implementations report failure through the error; the caller decides what
// happens next.
type Backend interface {
	Name() string
	Convert(ctx context.Context, source string) (string, error)
}

// Attempt records the outcome of one backend call.
type Attempt struct {
	Backend  string
	Err      error
	Duration time.Duration
}

// Chain tries backends in rank order until one succeeds.
type Chain struct {
	backends []Backend
}

// NewChain creates a Chain. Nil backends are skipped.
func NewChain(backends ...Backend) *Chain {
	c := &Chain{backends: make([]Backend, 0, len(backends))}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	return c
}

// Names returns the backend names in rank order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

// Len returns the number of backends in the chain.
func (c *Chain) Len() int {
	return len(c.backends)
}

// Convert returns the first successful backend output and the name of the
// backend that produced it. A backend that returns no error succeeds even
// when its output is empty. Every attempt, failed or not, is returned in order.
// When all backends fail the returned error joins the individual failures.
func (c *Chain) Convert(ctx context.Context, source string) (html string, backend string, attempts []Attempt, err error) {
	if len(c.backends) == 0 {
		return "", "", nil, ErrNoBackends
	}

	attempts = make([]Attempt, 0, len(c.backends))
	var errs []error

	for _, b := range c.backends {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}

		start := time.Now()
		out, convErr := convertSafely(ctx, b, source)
		attempts = append(attempts, Attempt{
			Backend:  b.Name(),
			Err:      convErr,
			Duration: time.Since(start),
		})

		if convErr == nil {
			return out, b.Name(), attempts, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), convErr))
	}

	return "", "", attempts, errors.Join(errs...)
}

// convertSafely calls the backend and turns a panic into an error.
func convertSafely(ctx context.Context, b Backend, source string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBackendPanic, r)
		}
	}()
	return b.Convert(ctx, source)
}

// fallbackEscaper escapes only the characters that would otherwise form markup.
var fallbackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// PlainTextFallback wraps the cleaned source in a <pre> block so nothing is lost
// when no backend could convert it.
func PlainTextFallback(cleaned string) string {
	return "<pre>" + fallbackEscaper.Replace(cleaned) + "</pre>"
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc struct {
	BackendName string
	Fn          func(ctx context.Context, source string) (string, error)
}

// Name implements Backend.
func (f BackendFunc) Name() string { return f.BackendName }

// Convert implements Backend.
func (f BackendFunc) Convert(ctx context.Context, source string) (string, error) {
	return f.Fn(ctx, source)
}

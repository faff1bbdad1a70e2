package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/hints"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// stdinName selects standard input as the render source.
const stdinName = "-"

// runRender renders one LaTeX source file, or stdin, to an HTML fragment.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: render takes one input, got %d", ErrInvalidArgs, len(positional))
	}

	input := stdinName
	if len(positional) == 1 {
		input = positional[0]
	}

	src, err := readInput(input, env)
	if err != nil {
		return err
	}

	a, err := newApp(&f.common, env)
	if err != nil {
		return err
	}
	r, err := a.newRenderer()
	if err != nil {
		return err
	}

	res := r.RenderDetailed(ctx, &src)
	logAttempts(a, input, res)

	if f.strict && res.Fallback() {
		return fmt.Errorf("%w: %s%s", ErrFallbackUsed, input, attemptHints(res))
	}

	return writeOutput(f.output, *res.HTML, env)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, env *Environment) (string, error) {
	if path == stdinName {
		b, err := io.ReadAll(env.Stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(b), nil
}

// writeOutput writes html to path, or to stdout when path is empty.
func writeOutput(path, html string, env *Environment) error {
	if !strings.HasSuffix(html, "\n") {
		html += "\n"
	}

	if path == "" {
		if _, err := io.WriteString(env.Stdout, html); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
		}
	}
	if err := fileutil.WriteFileAtomic(path, []byte(html), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// logAttempts records each backend attempt at debug level.
func logAttempts(a *app, source string, res tex2html.Result) {
	for _, at := range res.Attempts {
		if at.Err != nil {
			a.logger.Debug("backend attempt failed", "source", source, "backend", at.Backend, "duration", at.Duration, "error", at.Err)
			continue
		}
		a.logger.Debug("backend attempt succeeded", "source", source, "backend", at.Backend, "duration", at.Duration)
	}
}

// attemptHints returns hints matching the errors of failed attempts.
func attemptHints(res tex2html.Result) string {
	var out string
	for _, at := range res.Attempts {
		switch {
		case errors.Is(at.Err, pipeline.ErrUnsupportedSyntax):
			out += hints.ForUnsupportedSyntax()
		case errors.Is(at.Err, context.DeadlineExceeded):
			out += hints.ForTimeout()
		case errors.Is(at.Err, exec.ErrNotFound):
			out += hints.ForPandocMissing()
		}
	}
	return out
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-tex2html/internal/process"
)

// Pandoc defaults.
const (
	PandocBackendName   = "pandoc"
	DefaultPandocBinary = "pandoc"
	DefaultResourcePath = "static"

	// pandocInputFormat enables \newcommand expansion by the LaTeX reader.
	pandocInputFormat = "latex+latex_macros"
)

// ErrPandocFailed indicates pandoc could not be launched or exited non-zero.
var ErrPandocFailed = errors.New("pandoc conversion failed")

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run starts the command, feeds stdin and waits for it. Cancelling ctx kills
// the command's whole process group.
func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary comes from trusted configuration
	process.BindToContext(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.String(), stderr.String(), ctxErr
		}
		return stdout.String(), stderr.String(), err
	}
	return stdout.String(), stderr.String(), nil
}

// PandocOptions configures the pandoc backend.
type PandocOptions struct {
	Binary       string        // executable name or path (default "pandoc")
	ResourcePath string        // image search path (default "static")
	Timeout      time.Duration // 0 = bounded only by the caller's context
	ExtraArgs    []string      // appended after the fixed flags
}

// PandocBackend converts LaTeX to HTML by invoking the pandoc executable.
type PandocBackend struct {
	Runner CommandRunner
	opts   PandocOptions
}

// NewPandocBackend creates a PandocBackend with a real command runner.
func NewPandocBackend(opts PandocOptions) *PandocBackend {
	if opts.Binary == "" {
		opts.Binary = DefaultPandocBinary
	}
	if opts.ResourcePath == "" {
		opts.ResourcePath = DefaultResourcePath
	}
	return &PandocBackend{Runner: &ExecRunner{}, opts: opts}
}

// Name implements Backend.
func (p *PandocBackend) Name() string { return PandocBackendName }

// Args returns the command line arguments passed to pandoc.
func (p *PandocBackend) Args() []string {
	args := []string{
		"-f", pandocInputFormat,
		"-t", "html",
		"--mathml",
		"--resource-path=" + p.opts.ResourcePath,
	}
	return append(args, p.opts.ExtraArgs...)
}

// Convert pipes the source through pandoc and returns its stdout.
func (p *PandocBackend) Convert(ctx context.Context, source string) (string, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	stdout, stderr, err := p.Runner.Run(ctx, strings.NewReader(source), p.opts.Binary, p.Args()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", ErrPandocFailed, ctxErr)
		}
		stderr = strings.TrimSpace(stderr)
		if stderr == "" {
			return "", fmt.Errorf("%w: %w", ErrPandocFailed, err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrPandocFailed, stderr, err)
	}
	return stdout, nil
}

// LookupPandoc reports the resolved path of the pandoc binary, if any.
func LookupPandoc(binary string) (string, bool) {
	if binary == "" {
		binary = DefaultPandocBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/pipeline"
)

// ---------------------------------------------------------------------------
// TestRunRender
// ---------------------------------------------------------------------------

func TestRunRender_Stdin(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.Stdin = strings.NewReader(`Hello \textbf{world}, see \includegraphics{figures/a.png}`)

	code := te.run("render", "--backend", "native", "--static-root", t.TempDir())
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, te.stderr.String())
	}
	assertContains(t, "stdout", te.stdout.String(),
		"<strong>world</strong>",
		`src="/static/figures/a.png"`,
	)
	if !strings.HasSuffix(te.stdout.String(), "\n") {
		t.Error("output should end with a newline")
	}
}

func TestRunRender_FileToOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.tex")
	if err := os.WriteFile(in, []byte(`$\R$`), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "macros.tex"), []byte(`\newcommand{\R}{\mathbb{R}}`), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out := filepath.Join(dir, "nested", "out.html")

	te := newTestEnv(t)
	code := te.run("render", "-b", "native", "--static-root", dir, "-o", out, in)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, te.stderr.String())
	}
	if te.stdout.Len() != 0 {
		t.Errorf("stdout should be empty with --output, got %q", te.stdout.String())
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	assertContains(t, "output", string(got), "<math")
	if out := string(got); !strings.Contains(out, "ℝ") && !strings.Contains(out, `double-struck`) {
		t.Errorf("macro from macros.tex not applied:\n%s", out)
	}
}

func TestRunRender_FallbackAndStrict(t *testing.T) {
	t.Parallel()

	src := `\unknowncommand{x} a < b`

	t.Run("fallback succeeds by default", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t)
		te.Stdin = strings.NewReader(src)
		code := te.run("render", "-b", "native", "--static-root", t.TempDir())
		if code != ExitSuccess {
			t.Fatalf("exit = %d, stderr: %s", code, te.stderr.String())
		}
		assertContains(t, "stdout", te.stdout.String(), "<pre>", "a &lt; b")
		assertContains(t, "stderr", te.stderr.String(), "level=WARN")
	})

	t.Run("strict fails with a hint", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t)
		te.Stdin = strings.NewReader(src)
		code := te.run("render", "-b", "native", "--strict", "--static-root", t.TempDir())
		if code != ExitGeneral {
			t.Fatalf("exit = %d, want %d", code, ExitGeneral)
		}
		assertContains(t, "stderr", te.stderr.String(), "no backend rendered the source", "hint:")
		if te.stdout.Len() != 0 {
			t.Errorf("stdout should be empty, got %q", te.stdout.String())
		}
	})
}

func TestRunRender_TooManyArgs(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	if code := te.run("render", "a.tex", "b.tex"); code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestAttemptHints
// ---------------------------------------------------------------------------

func TestAttemptHints(t *testing.T) {
	t.Parallel()

	res := tex2html.Result{Attempts: []tex2html.Attempt{
		{Backend: "native", Err: pipeline.ErrUnsupportedSyntax},
		{Backend: "pandoc", Err: errors.Join(pipeline.ErrPandocFailed, errors.New("boom"))},
	}}
	got := attemptHints(res)
	if strings.Count(got, "hint:") != 1 {
		t.Errorf("attemptHints() = %q, want exactly the unsupported syntax hint", got)
	}

	if got := attemptHints(tex2html.Result{}); got != "" {
		t.Errorf("attemptHints(no attempts) = %q, want empty", got)
	}
}

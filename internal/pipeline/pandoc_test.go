package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type MockRunner struct {
	Stdout     string
	Stderr     string
	Err        error
	CalledWith []string
	Stdin      string
	Deadline   bool
}

func (m *MockRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (string, string, error) {
	m.CalledWith = append([]string{name}, args...)
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		m.Stdin = string(b)
	}
	_, m.Deadline = ctx.Deadline()
	return m.Stdout, m.Stderr, m.Err
}

// ---------------------------------------------------------------------------
// TestPandocBackend_Convert
// ---------------------------------------------------------------------------

func TestPandocBackend_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		opts           PandocOptions
		mock           *MockRunner
		wantOutput     string
		wantErr        error
		wantErrContain string
		wantCalledWith []string
	}{
		{
			name:       "success returns stdout",
			mock:       &MockRunner{Stdout: "<p>ok</p>\n"},
			wantOutput: "<p>ok</p>\n",
			wantCalledWith: []string{
				"pandoc", "-f", "latex+latex_macros", "-t", "html", "--mathml", "--resource-path=static",
			},
		},
		{
			name: "custom binary, resource path and extra args",
			opts: PandocOptions{Binary: "/opt/pandoc", ResourcePath: "public", ExtraArgs: []string{"--wrap=none"}},
			mock: &MockRunner{Stdout: "<p>ok</p>"},
			wantCalledWith: []string{
				"/opt/pandoc", "-f", "latex+latex_macros", "-t", "html", "--mathml", "--resource-path=public", "--wrap=none",
			},
			wantOutput: "<p>ok</p>",
		},
		{
			name: "non-zero exit carries stderr",
			mock: &MockRunner{
				Stderr: "Error at line 1: unexpected }\n",
				Err:    errors.New("exit status 64"),
			},
			wantErr:        ErrPandocFailed,
			wantErrContain: "unexpected }",
		},
		{
			name:           "launch failure without stderr",
			mock:           &MockRunner{Err: errors.New(`exec: "pandoc": executable file not found in $PATH`)},
			wantErr:        ErrPandocFailed,
			wantErrContain: "executable file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := NewPandocBackend(tt.opts)
			backend.Runner = tt.mock

			got, err := backend.Convert(context.Background(), `\textbf{x}`)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantErrContain != "" && !strings.Contains(err.Error(), tt.wantErrContain) {
					t.Errorf("error %q does not contain %q", err, tt.wantErrContain)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantOutput {
				t.Errorf("output = %q, want %q", got, tt.wantOutput)
			}
			if tt.mock.Stdin != `\textbf{x}` {
				t.Errorf("stdin = %q, want source text", tt.mock.Stdin)
			}
			if tt.wantCalledWith != nil {
				if strings.Join(tt.mock.CalledWith, " ") != strings.Join(tt.wantCalledWith, " ") {
					t.Errorf("called with %v, want %v", tt.mock.CalledWith, tt.wantCalledWith)
				}
			}
		})
	}
}

func TestPandocBackend_Timeout(t *testing.T) {
	t.Parallel()

	mock := &MockRunner{Stdout: "<p>x</p>"}
	backend := NewPandocBackend(PandocOptions{Timeout: time.Minute})
	backend.Runner = mock

	if _, err := backend.Convert(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mock.Deadline {
		t.Error("expected a deadline on the runner context when Timeout is set")
	}

	mock = &MockRunner{Stdout: "<p>x</p>"}
	backend = NewPandocBackend(PandocOptions{})
	backend.Runner = mock
	if _, err := backend.Convert(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Deadline {
		t.Error("expected no deadline when Timeout is zero")
	}
}

func TestPandocBackend_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	backend := NewPandocBackend(PandocOptions{})
	backend.Runner = &MockRunner{Err: errors.New("signal: killed")}

	_, err := backend.Convert(ctx, "x")
	if !errors.Is(err, ErrPandocFailed) {
		t.Fatalf("error = %v, want ErrPandocFailed", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want it to wrap context.DeadlineExceeded", err)
	}
}

func TestPandocBackend_Name(t *testing.T) {
	t.Parallel()

	if got := NewPandocBackend(PandocOptions{}).Name(); got != PandocBackendName {
		t.Errorf("Name() = %q, want %q", got, PandocBackendName)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}
	_, _, err := r.Run(context.Background(), strings.NewReader(""), "tex2html-no-such-binary-xyz")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestLookupPandoc_Missing(t *testing.T) {
	t.Parallel()

	if _, ok := LookupPandoc("tex2html-no-such-binary-xyz"); ok {
		t.Error("LookupPandoc() reported a binary that does not exist")
	}
}

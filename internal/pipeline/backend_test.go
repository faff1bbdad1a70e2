package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubBackend returns canned output and records how often it ran.
type stubBackend struct {
	name  string
	out   string
	err   error
	calls int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Convert(context.Context, string) (string, error) {
	s.calls++
	return s.out, s.err
}

// ---------------------------------------------------------------------------
// TestChain_Convert
// ---------------------------------------------------------------------------

func TestChain_Convert(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name         string
		backends     []*stubBackend
		wantHTML     string
		wantBackend  string
		wantAttempts int
		wantErr      error
		wantCalls    []int
	}{
		{
			name:         "first backend succeeds",
			backends:     []*stubBackend{{name: "a", out: "<p>a</p>"}, {name: "b", out: "<p>b</p>"}},
			wantHTML:     "<p>a</p>",
			wantBackend:  "a",
			wantAttempts: 1,
			wantCalls:    []int{1, 0},
		},
		{
			name:         "falls through to second",
			backends:     []*stubBackend{{name: "a", err: errBoom}, {name: "b", out: "<p>b</p>"}},
			wantHTML:     "<p>b</p>",
			wantBackend:  "b",
			wantAttempts: 2,
			wantCalls:    []int{1, 1},
		},
		{
			name:         "empty output is a success",
			backends:     []*stubBackend{{name: "a", out: ""}, {name: "b", out: "<p>b</p>"}},
			wantHTML:     "",
			wantBackend:  "a",
			wantAttempts: 1,
			wantCalls:    []int{1, 0},
		},
		{
			name:         "all fail joins errors",
			backends:     []*stubBackend{{name: "a", err: errBoom}, {name: "b", err: ErrPandocFailed}},
			wantAttempts: 2,
			wantErr:      ErrPandocFailed,
			wantCalls:    []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backends := make([]Backend, len(tt.backends))
			for i, b := range tt.backends {
				backends[i] = b
			}
			chain := NewChain(backends...)

			html, backend, attempts, err := chain.Convert(context.Background(), "x")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if html != tt.wantHTML {
				t.Errorf("html = %q, want %q", html, tt.wantHTML)
			}
			if backend != tt.wantBackend {
				t.Errorf("backend = %q, want %q", backend, tt.wantBackend)
			}
			if len(attempts) != tt.wantAttempts {
				t.Errorf("got %d attempts, want %d", len(attempts), tt.wantAttempts)
			}
			for i, want := range tt.wantCalls {
				if tt.backends[i].calls != want {
					t.Errorf("backend %q called %d times, want %d", tt.backends[i].name, tt.backends[i].calls, want)
				}
			}
		})
	}
}

func TestChain_EmptyOutputWithPreambleSucceeds(t *testing.T) {
	t.Parallel()

	chain := NewChain(&stubBackend{name: "a", out: ""})
	_, backend, _, err := chain.Convert(context.Background(), `\newcommand{\E}{\mathbb{E}}`+"\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend != "a" {
		t.Errorf("backend = %q, want %q", backend, "a")
	}
}

func TestChain_NoBackends(t *testing.T) {
	t.Parallel()

	_, _, _, err := NewChain(nil, nil).Convert(context.Background(), "x")
	if !errors.Is(err, ErrNoBackends) {
		t.Errorf("error = %v, want ErrNoBackends", err)
	}
}

func TestChain_RecoversPanic(t *testing.T) {
	t.Parallel()

	panicky := BackendFunc{
		BackendName: "panicky",
		Fn: func(context.Context, string) (string, error) {
			panic("index out of range")
		},
	}
	good := &stubBackend{name: "good", out: "<p>ok</p>"}

	html, backend, attempts, err := NewChain(panicky, good).Convert(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<p>ok</p>" || backend != "good" {
		t.Errorf("got (%q, %q), want (\"<p>ok</p>\", \"good\")", html, backend)
	}
	if len(attempts) != 2 || !errors.Is(attempts[0].Err, ErrBackendPanic) {
		t.Errorf("first attempt error = %v, want ErrBackendPanic", attempts[0].Err)
	}
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	b := &stubBackend{name: "a", out: "<p>a</p>"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := NewChain(b).Convert(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if b.calls != 0 {
		t.Errorf("backend called %d times after cancellation", b.calls)
	}
}

func TestChain_Names(t *testing.T) {
	t.Parallel()

	chain := NewChain(&stubBackend{name: "native"}, nil, &stubBackend{name: "pandoc"})
	if got := strings.Join(chain.Names(), ","); got != "native,pandoc" {
		t.Errorf("Names() = %q, want %q", got, "native,pandoc")
	}
	if chain.Len() != 2 {
		t.Errorf("Len() = %d, want 2", chain.Len())
	}
}

// ---------------------------------------------------------------------------
// TestPlainTextFallback
// ---------------------------------------------------------------------------

func TestPlainTextFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"escapes markup", `a < b & c > d`, `<pre>a &lt; b &amp; c &gt; d</pre>`},
		{"quotes untouched", `"x" 'y'`, `<pre>"x" 'y'</pre>`},
		{"latex kept", `$\frac{1}{2}$`, `<pre>$\frac{1}{2}$</pre>`},
		{"empty", "", "<pre></pre>"},
		{"existing entity escaped again", "&amp;", "<pre>&amp;amp;</pre>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PlainTextFallback(tt.input); got != tt.want {
				t.Errorf("PlainTextFallback(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

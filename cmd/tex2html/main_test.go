package main

// Notes:
// - runMain: exit codes and the text routed to stdout/stderr. Commands that
//   render use --backend native so no test depends on a pandoc install.
// - main itself (maxprocs, os.Exit) is not tested.

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Main entry point exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage and exits with ExitUsage",
			args:         nil,
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: tex2html"},
		},
		{
			name:         "version command exits 0",
			args:         []string{"version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"tex2html dev"},
		},
		{
			name:         "help command exits 0",
			args:         []string{"help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: tex2html", "Commands:", "comment-graphics"},
		},
		{
			name:         "help batch shows batch help",
			args:         []string{"help", "batch"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: tex2html batch", "manifest.yaml", "--static-root"},
		},
		{
			name:         "help for unknown command",
			args:         []string{"help", "nope"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Unknown command: nope"},
		},
		{
			name:         "unknown command exits with ExitUsage",
			args:         []string{"unknown"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: unknown"},
		},
		{
			name:         "command --help exits 0",
			args:         []string{"render", "--help"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Usage: tex2html render"},
		},
		{
			name:         "unknown flag exits with ExitUsage",
			args:         []string{"render", "--bogus"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"invalid arguments", "bogus"},
		},
		{
			name:         "bad field exits with ExitUsage",
			args:         []string{"problem", "--field", "title", "1"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"--field"},
		},
		{
			name:         "problem without id exits with ExitUsage",
			args:         []string{"problem"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"expected one problem id"},
		},
		{
			name:     "non-numeric problem id exits with ExitUsage",
			args:     []string{"problem", "abc"},
			wantCode: ExitUsage,
		},
		{
			name:     "topic without random exits with ExitUsage",
			args:     []string{"problem", "--topic", "Probability", "1"},
			wantCode: ExitUsage,
		},
		{
			name:     "negative workers exits with ExitUsage",
			args:     []string{"batch", "--workers", "-1"},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown backend exits with ExitUsage",
			args:     []string{"render", "--backend", "mathjax", "-"},
			wantCode: ExitUsage,
		},
		{
			name:     "bad timeout exits with ExitUsage",
			args:     []string{"render", "--timeout", "soon", "-"},
			wantCode: ExitUsage,
		},
		{
			name:         "missing config exits with ExitUsage and a hint",
			args:         []string{"render", "--config", "no-such-config", "-"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"config file not found", "hint:"},
		},
		{
			name:     "missing input exits with ExitIO",
			args:     []string{"render", "--backend", "native", "no-such-file.tex"},
			wantCode: ExitIO,
		},
		{
			name:         "missing database exits with ExitDatabase",
			args:         []string{"problem", "--backend", "native", "--db", "no-such.db", "1"},
			wantCode:     ExitDatabase,
			wantInStderr: []string{"cannot open problem bank", "hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t)
			code := te.run(tt.args...)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, te.stderr.String())
			}
			assertContains(t, "stdout", te.stdout.String(), tt.wantInStdout...)
			assertContains(t, "stderr", te.stderr.String(), tt.wantInStderr...)
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsCommand
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"render", "problem", "batch", "comment-graphics", "doctor", "css", "version", "help"} {
		if !isCommand(name) {
			t.Errorf("isCommand(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "convert", "Render", "problem.tex"} {
		if isCommand(name) {
			t.Errorf("isCommand(%q) = true, want false", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"tex2html", "batch", "-v"}, true},
		{[]string{"tex2html", "batch", "--verbose"}, true},
		{[]string{"tex2html", "batch"}, false},
		{[]string{"tex2html", "render", "--", "-v"}, false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

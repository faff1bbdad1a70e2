package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewMacroLoader(t *testing.T) {
	t.Parallel()

	withFile := t.TempDir()
	writeFile(t, filepath.Join(withFile, DefaultMacroFile), `\newcommand{\custom}{c}`)
	empty := t.TempDir()

	tests := []struct {
		name    string
		src     Source
		want    string // substring; "" means empty result
		wantErr error
	}{
		{name: "file present", src: Source{StaticRoot: withFile}, want: `\custom`},
		{name: "file missing", src: Source{Kind: SourceFile, StaticRoot: empty}, want: ""},
		{name: "builtin", src: Source{Kind: SourceBuiltin}, want: `\mathbb{R}`},
		{name: "auto prefers file", src: Source{Kind: SourceAuto, StaticRoot: withFile}, want: `\custom`},
		{name: "auto falls back", src: Source{Kind: SourceAuto, StaticRoot: empty}, want: `\mathbb{R}`},
		{name: "none", src: Source{Kind: SourceNone}, want: ""},
		{name: "unknown kind", src: Source{Kind: "s3"}, wantErr: ErrUnknownSource},
		{name: "bad root", src: Source{Kind: SourceFile, StaticRoot: "/nonexistent/abc123xyz"}, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewMacroLoader(tt.src)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := loader.LoadMacros()
			if tt.want == "" {
				if got != "" {
					t.Errorf("LoadMacros() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("LoadMacros() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

type failingReader struct{ err error }

func (f failingReader) ReadMacros() (string, error) { return "", f.err }

func TestFallbackLoader_OnlyFallsBackWhenNotFound(t *testing.T) {
	t.Parallel()

	fallback := StaticMacros("fallback")

	if got := NewFallbackLoader(failingReader{ErrMacrosNotFound}, fallback).LoadMacros(); got != "fallback" {
		t.Errorf("not found: LoadMacros() = %q, want fallback", got)
	}
	if got := NewFallbackLoader(failingReader{ErrAssetRead}, fallback).LoadMacros(); got != "" {
		t.Errorf("read error: LoadMacros() = %q, want empty", got)
	}
	if got := NewFallbackLoader(failingReader{errors.New("other")}, fallback).LoadMacros(); got != "" {
		t.Errorf("other error: LoadMacros() = %q, want empty", got)
	}
}

package yamlutil_test

// Notes:
// - Marshal error branch: yaml.Marshal only fails on unmarshalable types
//   (channels, functions), which never reach it in production.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-tex2html/internal/yamlutil"
)

type testConfig struct {
	Root     string   `yaml:"root"`
	Workers  int      `yaml:"workers"`
	Backends []string `yaml:"backends"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		wantMsg string
	}{
		{name: "valid YAML", data: []byte("root: static\nworkers: 4\nbackends: [native, pandoc]"), dest: &testConfig{}},
		{name: "unknown field ignored", data: []byte("root: static\nextra: 1"), dest: &testConfig{}},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("root: x"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{name: "invalid syntax", data: []byte("root: [unclosed"), dest: &testConfig{}, wantMsg: "yamlutil:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantMsg) {
					t.Fatalf("error = %v, want prefix %q", err, tt.wantMsg)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUnmarshal_Values(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.Unmarshal([]byte("root: static\nworkers: 4\nbackends: [native, pandoc]"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Root != "static" || cfg.Workers != 4 || strings.Join(cfg.Backends, ",") != "native,pandoc" {
		t.Errorf("decoded %+v", cfg)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict / TestReadStrict - Reject unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("root: static"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := yamlutil.UnmarshalStrict([]byte("root: static\nextra: 1"), &cfg); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestReadStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.ReadStrict(strings.NewReader("workers: 2\n"), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}

	if err := yamlutil.ReadStrict(strings.NewReader("typo: 2\n"), &cfg); err == nil {
		t.Error("expected error for unknown field")
	}
	if err := yamlutil.ReadStrict(strings.NewReader(""), &cfg); !errors.Is(err, yamlutil.ErrNilData) {
		t.Errorf("error = %v, want ErrNilData", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(&testConfig{Root: "static", Workers: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"root: static", "workers: 3"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarshal_ManifestLayout(t *testing.T) {
	t.Parallel()

	type entry struct {
		Backends []string `yaml:"backends"`
		Error    string   `yaml:"error"`
	}
	out, err := yamlutil.Marshal(&entry{
		Backends: []string{"native", "pandoc"},
		Error:    "native: unsupported\npandoc: exit status 64",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "  - native") {
		t.Errorf("sequence items should be indented:\n%s", got)
	}
	if !strings.Contains(got, "error: |") {
		t.Errorf("multi-line string should use a literal block:\n%s", got)
	}

	var back entry
	if err := yamlutil.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Error != "native: unsupported\npandoc: exit status 64" {
		t.Errorf("Error = %q after round trip", back.Error)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Note: This test modifies the global MaxInputSize variable, so it cannot
// run in parallel with other tests.

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := []byte("root: x" + strings.Repeat(" ", 93))
		var cfg testConfig
		if err := yamlutil.Unmarshal(data, &cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input exceeding limit fails", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := []byte("root: x" + strings.Repeat(" ", 94))
		var cfg testConfig
		err := yamlutil.Unmarshal(data, &cfg)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
		if err != nil && !strings.Contains(err.Error(), "101 bytes (max 100)") {
			t.Errorf("error should report sizes, got: %v", err)
		}
	})

	t.Run("ReadStrict enforces limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		var cfg testConfig
		err := yamlutil.ReadStrict(strings.NewReader("root: x"+strings.Repeat(" ", 200)), &cfg)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-tex2html/internal/assets"
	"github.com/alnah/go-tex2html/internal/dateutil"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength    = 4096 // PATH_MAX on Linux
	MaxURLLength     = 2048 // Browser limit
	MaxNameLength    = 64   // Backend, macro set or style name
	MaxArgLength     = 256  // Single pandoc argument
	MaxPandocArgs    = 32
	MaxBackends      = 8
	MaxWorkers       = 32
	MaxFormatLength  = dateutil.MaxDateFormatLength
	MaxDurationInput = 32 // "1m30s"
)

// Backend names accepted in the backends list.
const (
	BackendNative = "native"
	BackendPandoc = "pandoc"
)

// Config holds all configuration for rendering problem statements.
type Config struct {
	Static    StaticConfig    `yaml:"static"`
	Macros    MacrosConfig    `yaml:"macros"`
	Backends  []string        `yaml:"backends"`
	Pandoc    PandocConfig    `yaml:"pandoc"`
	Highlight HighlightConfig `yaml:"highlight"`
	Database  DatabaseConfig  `yaml:"database"`
	Batch     BatchConfig     `yaml:"batch"`
}

// StaticConfig locates the static tree and controls figure URLs.
type StaticConfig struct {
	Root       string `yaml:"root"`       // Directory holding figures and macros.tex
	FiguresDir string `yaml:"figuresDir"` // Subdirectory looked up for bare figure names
	URLPrefix  string `yaml:"urlPrefix"`  // Prefix of rewritten <img src>
	Extension  string `yaml:"extension"`  // Appended when a figure has none
}

// MacrosConfig selects where the macro preamble comes from.
type MacrosConfig struct {
	Source string `yaml:"source"` // "file", "builtin", "auto" or "none"
	Path   string `yaml:"path"`   // Relative to static.root unless absolute
	Set    string `yaml:"set"`    // Built-in set name
}

// PandocConfig configures the external converter.
type PandocConfig struct {
	Path         string   `yaml:"path"`         // Binary name or path
	ResourcePath string   `yaml:"resourcePath"` // Passed as --resource-path (empty = static.root)
	Timeout      string   `yaml:"timeout"`      // Go duration, "0" disables
	Args         []string `yaml:"args"`         // Extra arguments
}

// HighlightConfig configures code listing highlighting.
type HighlightConfig struct {
	Style    string `yaml:"style"`    // Chroma style name
	Disabled bool   `yaml:"disabled"` // Emit plain <pre><code>
}

// DatabaseConfig locates the problem bank.
type DatabaseConfig struct {
	Path         string `yaml:"path"`
	BackupFormat string `yaml:"backupFormat"` // Suffix of the copy made before rewrites
}

// BatchConfig controls the batch command.
type BatchConfig struct {
	Workers int    `yaml:"workers"` // 0 = auto
	OutDir  string `yaml:"outDir"`
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., library users).
func (c *Config) Validate() error {
	// Static tree
	if err := validateFieldLength("static.root", c.Static.Root, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("static.figuresDir", c.Static.FiguresDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("static.urlPrefix", c.Static.URLPrefix, MaxURLLength); err != nil {
		return err
	}
	if p := c.Static.URLPrefix; p != "" && !strings.HasPrefix(p, "/") && !fileutil.IsURL(p) {
		return fmt.Errorf("%w: static.urlPrefix %q must start with / or be an http(s) URL", ErrInvalidValue, p)
	}
	if c.Static.Extension != "" {
		if err := fileutil.ValidateExtension(c.Static.Extension); err != nil {
			return fmt.Errorf("static.extension: %w", err)
		}
	}

	// Macros
	if c.Macros.Source != "" && !slices.Contains(assets.Sources, c.Macros.Source) {
		return fmt.Errorf("%w: macros.source %q (must be one of %s)",
			ErrInvalidValue, c.Macros.Source, strings.Join(assets.Sources, ", "))
	}
	if err := validateFieldLength("macros.path", c.Macros.Path, MaxPathLength); err != nil {
		return err
	}
	if c.Macros.Set != "" {
		if err := assets.ValidateAssetName(c.Macros.Set); err != nil {
			return fmt.Errorf("macros.set: %w", err)
		}
	}

	// Backends
	if len(c.Backends) > MaxBackends {
		return fmt.Errorf("%w: backends has %d entries, max %d", ErrInvalidValue, len(c.Backends), MaxBackends)
	}
	seen := make(map[string]bool, len(c.Backends))
	for i, name := range c.Backends {
		switch name {
		case BackendNative, BackendPandoc:
		default:
			return fmt.Errorf("%w: backends[%d] %q (must be native or pandoc)", ErrInvalidValue, i, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: backends[%d] %q listed twice", ErrInvalidValue, i, name)
		}
		seen[name] = true
	}

	// Pandoc
	if err := validateFieldLength("pandoc.path", c.Pandoc.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("pandoc.resourcePath", c.Pandoc.ResourcePath, MaxPathLength); err != nil {
		return err
	}
	if _, err := c.PandocTimeout(); err != nil {
		return err
	}
	if len(c.Pandoc.Args) > MaxPandocArgs {
		return fmt.Errorf("%w: pandoc.args has %d entries, max %d", ErrInvalidValue, len(c.Pandoc.Args), MaxPandocArgs)
	}
	for i, arg := range c.Pandoc.Args {
		if err := validateFieldLength(fmt.Sprintf("pandoc.args[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("highlight.style", c.Highlight.Style, MaxNameLength); err != nil {
		return err
	}

	// Database
	if err := validateFieldLength("database.path", c.Database.Path, MaxPathLength); err != nil {
		return err
	}
	if c.Database.BackupFormat != "" {
		if _, err := dateutil.Format(c.Database.BackupFormat, time.Time{}); err != nil {
			return fmt.Errorf("database.backupFormat: %w", err)
		}
	}

	// Batch
	if c.Batch.Workers < 0 || c.Batch.Workers > MaxWorkers {
		return fmt.Errorf("%w: batch.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Batch.Workers)
	}
	if err := validateFieldLength("batch.outDir", c.Batch.OutDir, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// PandocTimeout parses pandoc.timeout. Empty means no timeout.
func (c *Config) PandocTimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Pandoc.Timeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	if err := validateFieldLength("pandoc.timeout", s, MaxDurationInput); err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: pandoc.timeout %q: %v", ErrInvalidValue, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: pandoc.timeout must not be negative, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Static: StaticConfig{
			Root:       "static",
			FiguresDir: "figures",
			URLPrefix:  "/static/figures",
			Extension:  "png",
		},
		Macros:    MacrosConfig{Source: assets.SourceFile, Path: assets.DefaultMacroFile},
		Backends:  []string{BackendNative, BackendPandoc},
		Pandoc:    PandocConfig{Path: "pandoc", Timeout: "30s"},
		Highlight: HighlightConfig{Style: "github"},
		Database:  DatabaseConfig{Path: "problems.db", BackupFormat: dateutil.DefaultBackupFormat},
		Batch:     BatchConfig{OutDir: "rendered"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if err := yamlutil.ReadStrict(r, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-tex2html/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-tex2html", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

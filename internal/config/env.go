package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// EnvConfig names the config file when --config is not given.
const EnvConfig = "TEX2HTML_CONFIG"

// Environment variables read by ApplyEnv.
const (
	EnvStaticRoot = "TEX2HTML_STATIC_ROOT"
	EnvDatabase   = "TEX2HTML_DB"
	EnvPandoc     = "TEX2HTML_PANDOC"
	EnvBackends   = "TEX2HTML_BACKENDS"
	EnvMacros     = "TEX2HTML_MACROS"
)

// DefaultDotenvFile is read from the working directory when present.
const DefaultDotenvFile = ".env"

// LookupFunc returns the value of a variable, empty when unset.
type LookupFunc func(key string) string

// EnvLookup combines the process environment with a dotenv file.
// Variables set in the environment win over the file. A missing file is not
// an error; a malformed one is.
func EnvLookup(dotenvPath string, getenv LookupFunc) (LookupFunc, error) {
	fileVars := map[string]string{}
	if dotenvPath != "" {
		vars, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", dotenvPath, err)
		}
	}

	return func(key string) string {
		if getenv != nil {
			if v := getenv(key); v != "" {
				return v
			}
		}
		return fileVars[key]
	}, nil
}

// ApplyEnv overrides config fields with TEX2HTML_* variables and
// re-validates the result.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	if v := lookup(EnvStaticRoot); v != "" {
		c.Static.Root = v
	}
	if v := lookup(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := lookup(EnvPandoc); v != "" {
		c.Pandoc.Path = v
	}
	if v := lookup(EnvBackends); v != "" {
		c.Backends = SplitList(v)
	}
	if v := lookup(EnvMacros); v != "" {
		c.Macros.Source = v
	}
	return c.Validate()
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

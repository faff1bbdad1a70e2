package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/hints"
)

// envPrefix marks variables read by tex2html.
const envPrefix = "TEX2HTML_"

// knownEnvVars lists valid TEX2HTML_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	config.EnvConfig:     true,
	config.EnvStaticRoot: true,
	config.EnvDatabase:   true,
	config.EnvPandoc:     true,
	config.EnvBackends:   true,
	config.EnvMacros:     true,
	envContainer:         true,
}

// warnUnknownEnvVars writes a warning for each unrecognized TEX2HTML_*
// variable, catching typos like TEX2HTML_DATABASE for TEX2HTML_DB.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// resolveConfig builds the effective configuration.
// Priority: flags > environment (and .env) > config file > defaults.
func resolveConfig(f *commonFlags, env *Environment) (*config.Config, error) {
	lookup, err := config.EnvLookup(env.DotenvPath, env.Getenv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfigParse, err)
	}

	name := f.config
	if name == "" {
		name = lookup(config.EnvConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			var notFound *config.NotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(notFound.Tried))
			}
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.Config, f *commonFlags) {
	if f.staticRoot != "" {
		cfg.Static.Root = f.staticRoot
	}
	if f.db != "" {
		cfg.Database.Path = f.db
	}
	if f.pandoc != "" {
		cfg.Pandoc.Path = f.pandoc
	}
	if len(f.backends) > 0 {
		cfg.Backends = config.SplitList(strings.Join(f.backends, ","))
	}
	if f.timeout != "" {
		cfg.Pandoc.Timeout = f.timeout
	}
}

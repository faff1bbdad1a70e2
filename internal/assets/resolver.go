package assets

import (
	"errors"
	"fmt"
	"log/slog"
)

// Macro source kinds accepted in configuration.
const (
	SourceFile    = "file"    // macro file under the static root
	SourceBuiltin = "builtin" // embedded macro set
	SourceAuto    = "auto"    // macro file, falling back to the embedded set
	SourceNone    = "none"
)

// Sources lists the accepted source kinds.
var Sources = []string{SourceFile, SourceBuiltin, SourceAuto, SourceNone}

// Source describes where the macro preamble comes from.
type Source struct {
	Kind       string // one of Sources; empty means SourceFile
	StaticRoot string // directory holding the macro file
	Path       string // file name relative to StaticRoot, or absolute
	Set        string // built-in set name
	Logger     *slog.Logger
}

// NewMacroLoader builds the loader for src, wrapped in a OnceLoader so the
// underlying source is read at most once.
func NewMacroLoader(src Source) (MacroLoader, error) {
	var loader MacroLoader
	switch src.Kind {
	case "", SourceFile:
		fl, err := NewStaticFileLoader(src.StaticRoot, src.Path, src.Logger)
		if err != nil {
			return nil, err
		}
		loader = fl
	case SourceBuiltin:
		loader = NewEmbeddedLoader(src.Set)
	case SourceAuto:
		fl, err := NewStaticFileLoader(src.StaticRoot, src.Path, src.Logger)
		if err != nil {
			return nil, err
		}
		loader = &FallbackLoader{primary: fl, fallback: NewEmbeddedLoader(src.Set)}
	case SourceNone:
		return StaticMacros(""), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src.Kind)
	}
	return NewOnceLoader(loader), nil
}

// FallbackLoader tries primary first and falls back only when primary
// reports ErrMacrosNotFound. Other read errors yield "".
type FallbackLoader struct {
	primary  MacroReader
	fallback MacroLoader
}

// NewFallbackLoader creates a FallbackLoader.
func NewFallbackLoader(primary MacroReader, fallback MacroLoader) *FallbackLoader {
	return &FallbackLoader{primary: primary, fallback: fallback}
}

// LoadMacros implements MacroLoader.
func (f *FallbackLoader) LoadMacros() string {
	content, err := f.primary.ReadMacros()
	if err == nil {
		return content
	}
	if !errors.Is(err, ErrMacrosNotFound) {
		return ""
	}
	return f.fallback.LoadMacros()
}

// Compile-time interface check.
var _ MacroLoader = (*FallbackLoader)(nil)

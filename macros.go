package tex2html

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/go-tex2html/internal/assets"
)

// Macro source kinds.
const (
	MacroSourceFile    = assets.SourceFile    // macros.tex under the static root
	MacroSourceBuiltin = assets.SourceBuiltin // macro set embedded in the binary
	MacroSourceAuto    = assets.SourceAuto    // file, falling back to the built-in set
	MacroSourceNone    = assets.SourceNone    // no preamble
)

// DefaultMacroFile is the macro file name looked up under the static root.
const DefaultMacroFile = assets.DefaultMacroFile

// DefaultMacroSet is the built-in set used when none is named.
const DefaultMacroSet = assets.DefaultMacroSet

// MacroLoader returns the macro preamble. A source that cannot be read
// yields "" so rendering proceeds without macros.
type MacroLoader interface {
	LoadMacros() string
}

// MacroSource describes where the macro preamble comes from.
type MacroSource struct {
	Kind       string // MacroSource* constant; empty means MacroSourceFile
	StaticRoot string // Directory holding the macro file
	Path       string // Relative to StaticRoot unless absolute (default macros.tex)
	Set        string // Built-in set name (default "default")
	Logger     *slog.Logger
}

// NewMacroLoader creates a loader that reads its source at most once,
// on the first LoadMacros call.
//
// Returns ErrInvalidMacroPath if the static root is not a readable directory
// or the path escapes it, and ErrUnknownMacroSource for an unknown kind.
func NewMacroLoader(src MacroSource) (MacroLoader, error) {
	loader, err := assets.NewMacroLoader(assets.Source{
		Kind:       src.Kind,
		StaticRoot: src.StaticRoot,
		Path:       src.Path,
		Set:        src.Set,
		Logger:     src.Logger,
	})
	if err != nil {
		return nil, convertAssetError(err)
	}
	return loader, nil
}

// LoadMacros reads <staticRoot>/macros.tex. Any failure yields "".
func LoadMacros(staticRoot string) string {
	loader, err := NewMacroLoader(MacroSource{StaticRoot: staticRoot})
	if err != nil {
		return ""
	}
	return loader.LoadMacros()
}

// ReadMacroSet returns a built-in macro set, or ErrMacroSetNotFound.
func ReadMacroSet(name string) (string, error) {
	content, err := assets.NewEmbeddedLoader(name).ReadMacros()
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// MacroSets lists the built-in macro set names.
func MacroSets() []string {
	return assets.EmbeddedMacroSets()
}

// convertAssetError maps internal asset errors to public sentinel errors.
func convertAssetError(err error) error {
	switch {
	case errors.Is(err, assets.ErrInvalidAssetName), errors.Is(err, assets.ErrMacrosNotFound):
		return fmt.Errorf("%w: %v", ErrMacroSetNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return fmt.Errorf("%w: %v", ErrInvalidMacroPath, err)
	case errors.Is(err, assets.ErrUnknownSource):
		return fmt.Errorf("%w: %v", ErrUnknownMacroSource, err)
	default:
		return err
	}
}

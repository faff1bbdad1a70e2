package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed macros/*.tex
var macroFS embed.FS

// EmbeddedLoader loads a macro set bundled into the binary.
// Implements MacroLoader and MacroReader.
type EmbeddedLoader struct {
	name string
}

// NewEmbeddedLoader creates an EmbeddedLoader for the named set.
// An empty name selects DefaultMacroSet.
func NewEmbeddedLoader(name string) *EmbeddedLoader {
	if name == "" {
		name = DefaultMacroSet
	}
	return &EmbeddedLoader{name: name}
}

// ReadMacros returns the macro set, or ErrMacrosNotFound.
func (e *EmbeddedLoader) ReadMacros() (string, error) {
	if err := ValidateAssetName(e.name); err != nil {
		return "", err
	}

	content, err := macroFS.ReadFile("macros/" + e.name + ".tex")
	if err != nil {
		return "", fmt.Errorf("%w: built-in set %q", ErrMacrosNotFound, e.name)
	}
	return string(content), nil
}

// LoadMacros returns the macro set, or "" if it does not exist.
func (e *EmbeddedLoader) LoadMacros() string {
	content, err := e.ReadMacros()
	if err != nil {
		return ""
	}
	return content
}

// EmbeddedMacroSets lists the names of the bundled macro sets.
func EmbeddedMacroSets() []string {
	matches, err := fs.Glob(macroFS, "macros/*.tex")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".tex"))
	}
	sort.Strings(names)
	return names
}

// Compile-time interface checks.
var (
	_ MacroLoader = (*EmbeddedLoader)(nil)
	_ MacroReader = (*EmbeddedLoader)(nil)
)

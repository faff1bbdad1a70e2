package assets

// MacroLoader supplies the LaTeX macro preamble prepended to every render.
// Loading never fails: a missing or unreadable source yields "".
type MacroLoader interface {
	LoadMacros() string
}

// MacroReader is implemented by loaders that can report why no macros were
// found. The doctor command and the fallback resolver use it.
type MacroReader interface {
	ReadMacros() (string, error)
}

// DefaultMacroFile is the macro file name looked up under the static root.
const DefaultMacroFile = "macros.tex"

// DefaultMacroSet is the name of the built-in macro set.
const DefaultMacroSet = "default"

// StaticMacros is a MacroLoader over a fixed string. The zero value loads
// no macros.
type StaticMacros string

// LoadMacros returns the string itself.
func (s StaticMacros) LoadMacros() string { return string(s) }

// Compile-time interface check.
var _ MacroLoader = StaticMacros("")

// Package assets provides the LaTeX macro preamble prepended to every render.
//
// # Loader Architecture
//
//	MacroLoader (interface)
//	    │
//	    ├── FileLoader      - reads <static root>/macros.tex
//	    ├── EmbeddedLoader  - bundled macro sets (go:embed)
//	    ├── FallbackLoader  - file first, embedded set when the file is absent
//	    ├── StaticMacros    - fixed string, used for "none" and in tests
//	    └── OnceLoader      - caches any loader for the process lifetime
//
// Loading is a soft operation: a missing or unreadable macro file yields an
// empty preamble and rendering proceeds without it. Loaders that implement
// MacroReader expose the underlying error for diagnostics.
//
// # Security
//
// Built-in set names are validated to prevent path traversal. Relative macro
// paths are resolved inside the static root with symlinks followed.
package assets

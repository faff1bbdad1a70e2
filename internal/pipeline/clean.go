package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// Precompiled regex patterns for the cleaner passes.
var (
	// Whole line whose first non-blank character is %, including its terminator.
	fullLineComment = regexp.MustCompile(`(?m)^[ \t]*%.*(?:\r?\n|$)`)

	// \textnormal{...} with a single, non-nested brace group.
	textnormalCommand = regexp.MustCompile(`\\textnormal\{([^}]*)\}`)

	// \includegraphics[opts]{figures/name.ext} for the extensions we re-point at rasters.
	figureInclude = regexp.MustCompile(`(\\includegraphics\*?(?:\[[^\]]*\])?\{\s*(?:\./)?figures/[^}]*?)\.(?i:pdf|jpe?g)(\s*\})`)
)

// LaTeXPreprocessor defines the contract for source cleanup before conversion.
type LaTeXPreprocessor interface {
	PreprocessLaTeX(ctx context.Context, content string) string
}

// LaTeXCleaner narrows stored LaTeX to the dialect the converters accept.
type LaTeXCleaner struct{}

// PreprocessLaTeX applies Clean. It runs even on a done context: the
// plain-text fallback shows the cleaned source.
func (c *LaTeXCleaner) PreprocessLaTeX(_ context.Context, content string) string {
	return Clean(content)
}

// Clean applies every rewrite in order. Comment stripping runs first so later
// passes never touch commented-out text.
func Clean(content string) string {
	content = StripFullLineComments(content)
	content = ReplaceTextnormal(content)
	content = StripLeadingNoindent(content)
	content = ReplaceDisplaylimits(content)
	content = CanonicalizeFigureExtensions(content)
	return content
}

// CleanPtr is Clean for nullable sources: nil in, nil out.
func CleanPtr(content *string) *string {
	if content == nil {
		return nil
	}
	cleaned := Clean(*content)
	return &cleaned
}

// StripFullLineComments deletes lines that hold only optional indentation and a
// % comment, line terminator included. Trailing comments after content stay.
func StripFullLineComments(content string) string {
	return fullLineComment.ReplaceAllString(content, "")
}

// ReplaceTextnormal rewrites \textnormal{x} as \mathrm{x}.
// Arguments with nested braces are not handled.
func ReplaceTextnormal(content string) string {
	return textnormalCommand.ReplaceAllString(content, `\mathrm{$1}`)
}

// StripLeadingNoindent removes a \noindent (or \noindent{}) directive at the
// start of the source together with the whitespace after it.
func StripLeadingNoindent(content string) string {
	rest, ok := cutControlWord(content, `\noindent`)
	if !ok {
		return content
	}
	rest = strings.TrimPrefix(rest, "{}")
	return strings.TrimLeftFunc(rest, unicode.IsSpace)
}

// ReplaceDisplaylimits rewrites \displaylimits as \limits.
func ReplaceDisplaylimits(content string) string {
	return replaceControlWord(content, `\displaylimits`, `\limits`)
}

// CanonicalizeFigureExtensions points \includegraphics references under figures/
// at the .png rendition when they name a .pdf, .jpg or .jpeg file.
func CanonicalizeFigureExtensions(content string) string {
	return figureInclude.ReplaceAllString(content, "$1.png$2")
}

// cutControlWord reports whether content starts with the control word and, if
// so, returns what follows it. \noindentfoo is a different command and does not match.
func cutControlWord(content, word string) (string, bool) {
	rest, ok := strings.CutPrefix(content, word)
	if !ok || startsWithLetter(rest) {
		return content, false
	}
	return rest, true
}

// replaceControlWord replaces every occurrence of a control word that is not
// the prefix of a longer command name.
func replaceControlWord(content, word, replacement string) string {
	var b strings.Builder
	for {
		idx := strings.Index(content, word)
		if idx == -1 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:idx])
		rest := content[idx+len(word):]
		if startsWithLetter(rest) {
			b.WriteString(word)
		} else {
			b.WriteString(replacement)
		}
		content = rest
	}
}

// startsWithLetter reports whether s begins with an ASCII letter, which would
// extend a TeX control word.
func startsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

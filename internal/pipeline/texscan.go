package pipeline

import (
	"fmt"
	"strings"
)

// texScanner walks LaTeX source by byte offset. It knows just enough TeX to
// find control sequences, brace groups and optional arguments.
type texScanner struct {
	src string
	pos int
}

func newTeXScanner(src string) *texScanner {
	return &texScanner{src: src}
}

func (s *texScanner) eof() bool { return s.pos >= len(s.src) }

func (s *texScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *texScanner) rest() string { return s.src[s.pos:] }

func (s *texScanner) hasPrefix(p string) bool { return strings.HasPrefix(s.rest(), p) }

// skipSpaces skips blanks and newlines.
func (s *texScanner) skipSpaces() {
	for !s.eof() && isTeXSpace(s.src[s.pos]) {
		s.pos++
	}
}

// skipComment skips a % comment through the end of its line.
func (s *texScanner) skipComment() {
	for !s.eof() && s.src[s.pos] != '\n' {
		s.pos++
	}
	if !s.eof() {
		s.pos++
	}
}

// readControlSequence reads the name after a backslash at the current
// position: a run of letters, or a single non-letter. The returned name has
// no backslash. Trailing spaces after a control word are skipped, as TeX does.
func (s *texScanner) readControlSequence() string {
	if s.peek() != '\\' {
		return ""
	}
	s.pos++
	if s.eof() {
		return ""
	}
	start := s.pos
	if !isASCIILetter(s.src[s.pos]) {
		s.pos++
		return s.src[start:s.pos]
	}
	for !s.eof() && isASCIILetter(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
	return name
}

// readGroup reads a balanced {...} group at the current position (after
// optional spaces) and returns its inner text.
func (s *texScanner) readGroup() (string, error) {
	s.skipSpaces()
	if s.peek() != '{' {
		return "", fmt.Errorf("%w: expected { at offset %d", ErrUnsupportedSyntax, s.pos)
	}
	end, err := matchBrace(s.src, s.pos)
	if err != nil {
		return "", err
	}
	inner := s.src[s.pos+1 : end]
	s.pos = end + 1
	return inner, nil
}

// readArgument reads a macro argument: a brace group, a control sequence, or
// a single character.
func (s *texScanner) readArgument() (string, error) {
	s.skipSpaces()
	switch {
	case s.eof():
		return "", fmt.Errorf("%w: missing argument", ErrUnsupportedSyntax)
	case s.peek() == '{':
		return s.readGroup()
	case s.peek() == '\\':
		start := s.pos
		s.readControlSequence()
		return strings.TrimRight(s.src[start:s.pos], " \t"), nil
	default:
		start := s.pos
		s.pos++
		return s.src[start:s.pos], nil
	}
}

// readOptional reads a [...] argument if present. Brackets inside braces are
// not treated as the terminator.
func (s *texScanner) readOptional() (string, bool) {
	save := s.pos
	s.skipSpaces()
	if s.peek() != '[' {
		s.pos = save
		return "", false
	}
	depth := 0
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ']':
			if depth == 0 {
				opt := s.src[s.pos+1 : i]
				s.pos = i + 1
				return opt, true
			}
		}
	}
	s.pos = save
	return "", false
}

// matchBrace returns the index of the } closing the { at open.
func matchBrace(src string, open int) (int, error) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unbalanced braces at offset %d", ErrUnsupportedSyntax, open)
}

// findEnvironmentEnd returns the offsets of \end{name} matching a \begin{name}
// whose body starts at from, accounting for nested environments of the same name.
func findEnvironmentEnd(src string, from int, name string) (bodyEnd, after int, err error) {
	begin := `\begin{` + name + `}`
	end := `\end{` + name + `}`
	depth := 1
	for i := from; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], begin):
			depth++
			i += len(begin)
		case strings.HasPrefix(src[i:], end):
			depth--
			if depth == 0 {
				return i, i + len(end), nil
			}
			i += len(end)
		case src[i] == '\\':
			i += 2
		default:
			i++
		}
	}
	return 0, 0, fmt.Errorf("%w: missing \\end{%s}", ErrUnsupportedSyntax, name)
}

// splitTopLevel splits src on sep where sep appears outside braces and
// nested environments. Escaped characters never match, and a control word
// separator such as \item does not match \itemsep.
func splitTopLevel(src, sep string) []string {
	var parts []string
	depth, envDepth, last := 0, 0, 0
	for i := 0; i < len(src); {
		rest := src[i:]
		switch {
		case strings.HasPrefix(rest, `\begin{`):
			envDepth++
			i += len(`\begin{`)
			continue
		case strings.HasPrefix(rest, `\end{`):
			envDepth--
			i += len(`\end{`)
			continue
		case depth == 0 && envDepth == 0 && strings.HasPrefix(rest, sep) && !extendsControlWord(sep, rest[len(sep):]):
			parts = append(parts, src[last:i])
			i += len(sep)
			last = i
			continue
		}
		switch src[i] {
		case '\\':
			i += 2
			continue
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}
	return append(parts, src[min(last, len(src)):])
}

// extendsControlWord reports whether after continues the control word sep.
func extendsControlWord(sep, after string) bool {
	return len(sep) > 1 && sep[0] == '\\' && isASCIILetter(sep[len(sep)-1]) && startsWithLetter(after)
}

func isTeXSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

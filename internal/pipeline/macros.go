package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxMacroExpansions bounds macro expansion so self-referencing definitions
// fail instead of looping.
const maxMacroExpansions = 10000

// ErrMacroRecursion indicates macro expansion did not terminate.
var ErrMacroRecursion = errors.New("macro expansion limit exceeded")

// Macro is a user-defined LaTeX command.
type Macro struct {
	Name     string // without backslash
	Params   int    // number of #n parameters, 0-9
	Optional *string
	Body     string
}

// MacroTable maps command names (without backslash) to their definitions.
type MacroTable map[string]Macro

// definitionCommands are the commands ExtractMacros understands.
var definitionCommands = map[string]bool{
	"newcommand":          true,
	"renewcommand":        true,
	"providecommand":      true,
	"def":                 true,
	"DeclareMathOperator": true,
}

// ExtractMacros removes macro definitions from src and returns them with the
// remaining text. Later definitions override earlier ones, except
// \providecommand, which never overrides.
func ExtractMacros(src string) (MacroTable, string, error) {
	table := MacroTable{}
	var out strings.Builder
	s := newTeXScanner(src)

	for !s.eof() {
		c := s.peek()
		if c == '%' {
			// Commented-out definitions stay inert.
			start := s.pos
			s.skipComment()
			out.WriteString(src[start:s.pos])
			continue
		}
		if c != '\\' {
			out.WriteByte(c)
			s.pos++
			continue
		}

		start := s.pos
		name := s.readControlSequence()
		if !definitionCommands[name] {
			out.WriteString(src[start:s.pos])
			continue
		}
		s.readStar()

		m, err := parseDefinition(s, name)
		if err != nil {
			return nil, "", fmt.Errorf("\\%s: %w", name, err)
		}
		if _, exists := table[m.Name]; exists && name == "providecommand" {
			continue
		}
		table[m.Name] = m
	}
	return table, out.String(), nil
}

func parseDefinition(s *texScanner, cmd string) (Macro, error) {
	s.skipSpaces()
	name, err := readDefinedName(s)
	if err != nil {
		return Macro{}, err
	}
	m := Macro{Name: name}

	switch cmd {
	case "def":
		// \def\name#1#2{body}
		for s.peek() == '#' {
			s.pos++
			if s.eof() || s.peek() < '1' || s.peek() > '9' {
				return Macro{}, fmt.Errorf("%w: bad parameter in \\def\\%s", ErrUnsupportedSyntax, name)
			}
			s.pos++
			m.Params++
		}
	case "DeclareMathOperator":
		text, err := s.readGroup()
		if err != nil {
			return Macro{}, err
		}
		m.Body = `\operatorname{` + text + `}`
		return m, nil
	default:
		if n, ok := s.readOptional(); ok {
			params, err := strconv.Atoi(strings.TrimSpace(n))
			if err != nil || params < 0 || params > 9 {
				return Macro{}, fmt.Errorf("%w: bad parameter count %q for \\%s", ErrUnsupportedSyntax, n, name)
			}
			m.Params = params
			if def, ok := s.readOptional(); ok {
				m.Optional = &def
			}
		}
	}

	body, err := s.readGroup()
	if err != nil {
		return Macro{}, err
	}
	m.Body = body
	return m, nil
}

// readDefinedName reads {\name}, \name, or {\name } and returns name.
func readDefinedName(s *texScanner) (string, error) {
	if s.peek() == '{' {
		inner, err := s.readGroup()
		if err != nil {
			return "", err
		}
		inner = strings.TrimSpace(inner)
		if len(inner) < 2 || inner[0] != '\\' {
			return "", fmt.Errorf("%w: bad command name %q", ErrUnsupportedSyntax, inner)
		}
		return inner[1:], nil
	}
	if s.peek() != '\\' {
		return "", fmt.Errorf("%w: expected command name", ErrUnsupportedSyntax)
	}
	name := s.readControlSequence()
	if name == "" {
		return "", fmt.Errorf("%w: empty command name", ErrUnsupportedSyntax)
	}
	return name, nil
}

// readStar consumes a * directly after a command name.
func (s *texScanner) readStar() bool {
	if s.peek() == '*' {
		s.pos++
		return true
	}
	return false
}

// Expand replaces every use of a macro in src with its body, repeatedly,
// until no defined macro remains.
func (t MacroTable) Expand(src string) (string, error) {
	if len(t) == 0 {
		return src, nil
	}
	budget := maxMacroExpansions
	return t.expand(src, &budget)
}

func (t MacroTable) expand(src string, budget *int) (string, error) {
	var out strings.Builder
	s := newTeXScanner(src)
	for !s.eof() {
		c := s.peek()
		if c != '\\' {
			out.WriteByte(c)
			s.pos++
			continue
		}
		start := s.pos
		name := s.readControlSequence()
		m, ok := t[name]
		if !ok {
			out.WriteString(src[start:s.pos])
			continue
		}

		*budget--
		if *budget < 0 {
			return "", fmt.Errorf("%w: \\%s", ErrMacroRecursion, name)
		}

		args, err := readMacroArgs(s, m)
		if err != nil {
			return "", fmt.Errorf("\\%s: %w", name, err)
		}
		expanded, err := t.expand(substituteParams(m.Body, args), budget)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
		// Keep "\foo x" from fusing into "\foox" when the expansion ends in a control word.
		if endsWithControlWord(expanded) && startsWithLetter(s.rest()) {
			out.WriteByte(' ')
		}
	}
	return out.String(), nil
}

func readMacroArgs(s *texScanner, m Macro) ([]string, error) {
	args := make([]string, 0, m.Params)
	first := 0
	if m.Optional != nil && m.Params > 0 {
		if opt, ok := s.readOptional(); ok {
			args = append(args, opt)
		} else {
			args = append(args, *m.Optional)
		}
		first = 1
	}
	for i := first; i < m.Params; i++ {
		arg, err := s.readArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// substituteParams replaces #1..#9 with args and ## with #.
func substituteParams(body string, args []string) string {
	if !strings.Contains(body, "#") {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '#' || i+1 >= len(body) {
			b.WriteByte(body[i])
			continue
		}
		next := body[i+1]
		switch {
		case next == '#':
			b.WriteByte('#')
			i++
		case next >= '1' && next <= '9' && int(next-'1') < len(args):
			b.WriteString(args[next-'1'])
			i++
		default:
			b.WriteByte('#')
		}
	}
	return b.String()
}

func endsWithControlWord(s string) bool {
	i := len(s)
	for i > 0 && isASCIILetter(s[i-1]) {
		i--
	}
	return i < len(s) && i > 0 && s[i-1] == '\\'
}

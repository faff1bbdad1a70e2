package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// NativeBackendName identifies the in-process converter.
const NativeBackendName = "native"

// maxNesting bounds group and environment recursion.
const maxNesting = 256

var (
	listingLanguage = regexp.MustCompile(`(?i)\blanguage\s*=\s*\{?([A-Za-z0-9+#_-]+)\}?`)
	graphicsWidth   = regexp.MustCompile(`\bwidth\s*=\s*([0-9]*\.?[0-9]+)\s*\\(?:textwidth|linewidth|columnwidth)`)
)

// NativeBackend converts a LaTeX subset to HTML in-process. Math becomes
// MathML; anything outside the subset fails with ErrUnsupportedSyntax.
type NativeBackend struct {
	highlighter *Highlighter
}

// NativeOption configures a NativeBackend.
type NativeOption func(*NativeBackend)

// WithHighlighter sets the highlighter used for code listings. Nil disables
// highlighting.
func WithHighlighter(h *Highlighter) NativeOption {
	return func(b *NativeBackend) {
		b.highlighter = h
	}
}

// NewNativeBackend creates a NativeBackend that highlights listings with the
// default chroma style.
func NewNativeBackend(opts ...NativeOption) *NativeBackend {
	b := &NativeBackend{highlighter: NewHighlighter("")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements Backend.
func (b *NativeBackend) Name() string { return NativeBackendName }

// Convert collects macro definitions, expands them and converts the rest.
func (b *NativeBackend) Convert(ctx context.Context, source string) (string, error) {
	macros, body, err := ExtractMacros(source)
	if err != nil {
		return "", err
	}
	body, err = macros.Expand(body)
	if err != nil {
		return "", err
	}

	c := &textConverter{ctx: ctx, highlighter: b.highlighter}
	f := &flow{}
	if err := c.parse(body, f, false); err != nil {
		return "", err
	}
	f.endParagraph()
	return renderNodes(f.blocks)
}

// flow collects inline content into paragraphs between block elements.
type flow struct {
	blocks []*html.Node
	inline []*html.Node
}

func (f *flow) add(n *html.Node) {
	f.inline = append(f.inline, n)
}

func (f *flow) addText(text string) {
	if text == "" {
		return
	}
	if k := len(f.inline); k > 0 && f.inline[k-1].Type == html.TextNode {
		f.inline[k-1].Data += text
		return
	}
	f.inline = append(f.inline, newText(text))
}

func (f *flow) addBlock(n *html.Node) {
	f.endParagraph()
	f.blocks = append(f.blocks, n)
}

func (f *flow) endParagraph() {
	nodes := trimInline(f.inline)
	f.inline = nil
	if len(nodes) > 0 {
		f.blocks = append(f.blocks, elem("p", nodes...))
	}
}

// trimInline strips whitespace at both ends of an inline run. A run holding
// only whitespace yields nil.
func trimInline(nodes []*html.Node) []*html.Node {
	for len(nodes) > 0 && nodes[0].Type == html.TextNode {
		nodes[0].Data = strings.TrimLeftFunc(nodes[0].Data, unicode.IsSpace)
		if nodes[0].Data != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Type == html.TextNode {
		last := nodes[len(nodes)-1]
		last.Data = strings.TrimRightFunc(last.Data, unicode.IsSpace)
		if last.Data != "" {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

type textConverter struct {
	ctx         context.Context
	highlighter *Highlighter
	depth       int
	inFigure    int
}

// parse converts src into f. In inline mode paragraph breaks collapse to a
// space and block constructs are rejected.
func (c *textConverter) parse(src string, f *flow, inline bool) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxNesting {
		return unsupported("nesting too deep")
	}

	s := newTeXScanner(src)
	for !s.eof() {
		ch := s.peek()
		switch ch {
		case '%':
			s.skipComment()
		case ' ', '\t', '\n', '\r':
			c.whitespace(s, f, inline)
		case '{':
			inner, err := s.readGroup()
			if err != nil {
				return err
			}
			if err := c.parse(inner, f, inline); err != nil {
				return err
			}
		case '}':
			return unsupported("unmatched }")
		case '$':
			if err := c.dollarMath(s, f); err != nil {
				return err
			}
		case '~':
			s.pos++
			f.addText(" ")
		case '-':
			f.addText(readDashes(s))
		case '`', '\'':
			f.addText(readQuotes(s))
		case '&', '#', '^', '_':
			return unsupported("%q outside math", ch)
		case '\\':
			if err := c.command(s, f, inline); err != nil {
				return err
			}
		default:
			start := s.pos
			for !s.eof() && !strings.ContainsRune("%{}$~-`'&#^_\\ \t\n\r", rune(s.peek())) {
				s.pos++
			}
			f.addText(s.src[start:s.pos])
		}
	}
	return nil
}

// whitespace collapses a run of blanks. Two or more newlines end a paragraph.
func (c *textConverter) whitespace(s *texScanner, f *flow, inline bool) {
	newlines := 0
	for !s.eof() && isTeXSpace(s.peek()) {
		if s.peek() == '\n' {
			newlines++
		}
		s.pos++
	}
	if newlines >= 2 && !inline {
		f.endParagraph()
		return
	}
	f.addText(" ")
}

func readDashes(s *texScanner) string {
	switch {
	case s.hasPrefix("---"):
		s.pos += 3
		return "—"
	case s.hasPrefix("--"):
		s.pos += 2
		return "–"
	default:
		s.pos++
		return "-"
	}
}

func readQuotes(s *texScanner) string {
	switch {
	case s.hasPrefix("``"):
		s.pos += 2
		return "“"
	case s.hasPrefix("''"):
		s.pos += 2
		return "”"
	case s.peek() == '`':
		s.pos++
		return "‘"
	default:
		s.pos++
		return "’"
	}
}

func (c *textConverter) dollarMath(s *texScanner, f *flow) error {
	display := s.hasPrefix("$$")
	delim := "$"
	if display {
		delim = "$$"
	}
	s.pos += len(delim)
	end := findMathClose(s.src, s.pos, delim)
	if end < 0 {
		return unsupported("unterminated %s", delim)
	}
	tex := s.src[s.pos:end]
	s.pos = end + len(delim)
	return c.math(tex, display, f)
}

func (c *textConverter) math(tex string, display bool, f *flow) error {
	n, err := MathToMathML(tex, display)
	if err != nil {
		return err
	}
	f.add(n)
	return nil
}

// findMathClose returns the offset of the closing delimiter, skipping escaped
// characters, or -1.
func findMathClose(src string, from int, delim string) int {
	for i := from; i < len(src); i++ {
		if src[i] == '\\' {
			if delim[0] == '\\' && strings.HasPrefix(src[i:], delim) {
				return i
			}
			i++
			continue
		}
		if strings.HasPrefix(src[i:], delim) {
			return i
		}
	}
	return -1
}

func (c *textConverter) command(s *texScanner, f *flow, inline bool) error {
	name := s.readControlSequence()

	if text, ok := textSymbols[name]; ok {
		f.addText(text)
		return nil
	}
	if mark, ok := textAccents[name]; ok {
		arg, err := s.readArgument()
		if err != nil {
			return err
		}
		f.addText(applyAccent(arg, mark))
		return nil
	}
	if tag, ok := inlineWrappers[name]; ok {
		arg, err := s.readArgument()
		if err != nil {
			return err
		}
		return c.wrapInline(arg, tag, f)
	}
	if tag, ok := fontDeclarations[name]; ok {
		rest := s.rest()
		s.pos = len(s.src)
		return c.wrapInline(rest, tag, f)
	}
	if level, ok := sectionLevels[name]; ok {
		if inline {
			return unsupported(`\%s inside inline content`, name)
		}
		s.readStar()
		s.readOptional()
		title, err := s.readGroup()
		if err != nil {
			return err
		}
		g := &flow{}
		if err := c.parse(title, g, true); err != nil {
			return err
		}
		f.addBlock(elem(level, trimInline(g.inline)...))
		return nil
	}
	if ignoredCommands[name] {
		return nil
	}
	if n, ok := ignoredWithArgs[name]; ok {
		s.readStar()
		for range n {
			if _, err := s.readGroup(); err != nil {
				return err
			}
		}
		return nil
	}

	switch name {
	case "(":
		end := findMathClose(s.src, s.pos, `\)`)
		if end < 0 {
			return unsupported(`unterminated \(`)
		}
		tex := s.src[s.pos:end]
		s.pos = end + 2
		return c.math(tex, false, f)
	case "[":
		end := findMathClose(s.src, s.pos, `\]`)
		if end < 0 {
			return unsupported(`unterminated \[`)
		}
		tex := s.src[s.pos:end]
		s.pos = end + 2
		return c.math(tex, true, f)
	case "\\", "newline", "linebreak":
		s.readStar()
		s.readOptional()
		f.add(newElement("br"))
		return nil
	case "par":
		if inline {
			f.addText(" ")
		} else {
			f.endParagraph()
		}
		return nil
	case "hspace":
		s.readStar()
		if _, err := s.readGroup(); err != nil {
			return err
		}
		f.addText(" ")
		return nil
	case "includegraphics":
		return c.includeGraphics(s, f)
	case "url":
		target, err := s.readGroup()
		if err != nil {
			return err
		}
		f.add(textElem("a", target, attr("href", target)))
		return nil
	case "href":
		target, err := s.readGroup()
		if err != nil {
			return err
		}
		label, err := s.readGroup()
		if err != nil {
			return err
		}
		g := &flow{}
		if err := c.parse(label, g, true); err != nil {
			return err
		}
		a := elem("a", g.inline...)
		setAttr(a, "href", target)
		f.add(a)
		return nil
	case "verb":
		return readVerb(s, f)
	case "caption":
		if c.inFigure == 0 || inline {
			return unsupported(`\caption outside a float`)
		}
		s.readOptional()
		text, err := s.readGroup()
		if err != nil {
			return err
		}
		g := &flow{}
		if err := c.parse(text, g, true); err != nil {
			return err
		}
		f.addBlock(elem("figcaption", trimInline(g.inline)...))
		return nil
	case "begin":
		env, err := s.readGroup()
		if err != nil {
			return err
		}
		return c.environment(strings.TrimSpace(env), s, f, inline)
	case "":
		return unsupported("trailing backslash")
	}
	return unsupported(`\%s`, name)
}

// wrapInline converts src in inline mode and appends it to f, wrapped in tag
// unless tag is empty.
func (c *textConverter) wrapInline(src, tag string, f *flow) error {
	g := &flow{}
	if err := c.parse(src, g, true); err != nil {
		return err
	}
	if tag == "" {
		for _, n := range g.inline {
			if n.Type == html.TextNode {
				f.addText(n.Data)
			} else {
				f.add(n)
			}
		}
		return nil
	}
	n := elem(tag, g.inline...)
	if tag == "span" {
		setAttr(n, "class", "smallcaps")
	}
	f.add(n)
	return nil
}

func applyAccent(arg, mark string) string {
	if sym, ok := textSymbols[strings.TrimPrefix(arg, `\`)]; ok && strings.HasPrefix(arg, `\`) {
		arg = sym
	}
	if arg == "" {
		return mark
	}
	_, size := utf8.DecodeRuneInString(arg)
	return arg[:size] + mark + arg[size:]
}

func readVerb(s *texScanner, f *flow) error {
	s.readStar()
	if s.eof() {
		return unsupported(`\verb without delimiter`)
	}
	delim := s.peek()
	s.pos++
	end := strings.IndexByte(s.rest(), delim)
	if end < 0 {
		return unsupported(`unterminated \verb`)
	}
	f.add(textElem("code", s.rest()[:end]))
	s.pos += end + 1
	return nil
}

func (c *textConverter) includeGraphics(s *texScanner, f *flow) error {
	s.readStar()
	opts, _ := s.readOptional()
	src, err := s.readGroup()
	if err != nil {
		return err
	}
	img := newElement("img", attr("src", strings.TrimSpace(src)))
	if m := graphicsWidth.FindStringSubmatch(opts); m != nil {
		if frac, err := strconv.ParseFloat(m[1], 64); err == nil {
			setAttr(img, "style", "width:"+strconv.FormatFloat(frac*100, 'f', -1, 64)+"%")
		}
	}
	f.add(img)
	return nil
}

// mathEnvironments maps display math environments to the inner environment
// their body is typeset in; "" means the body is a single formula.
var mathEnvironments = map[string]string{
	"equation": "", "equation*": "", "displaymath": "",
	"multline": "", "multline*": "",
	"align": "aligned", "align*": "aligned", "flalign": "aligned", "flalign*": "aligned",
	"eqnarray": "aligned", "eqnarray*": "aligned",
	"alignat": "alignedat", "alignat*": "alignedat",
	"gather": "gathered", "gather*": "gathered",
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUnsupportedSyntax}, args...)...)
}

func (c *textConverter) environment(name string, s *texScanner, f *flow, inline bool) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}

	switch name {
	case "verbatim", "lstlisting", "minted":
		return c.listing(name, s, f, inline)
	}

	begin := s.pos
	var args []string
	switch name {
	case "tabular":
		s.readOptional()
		spec, err := s.readGroup()
		if err != nil {
			return err
		}
		args = append(args, spec)
	case "tabular*":
		if _, err := s.readGroup(); err != nil {
			return err
		}
		s.readOptional()
		spec, err := s.readGroup()
		if err != nil {
			return err
		}
		args = append(args, spec)
	case "minipage":
		s.readOptional()
		if _, err := s.readGroup(); err != nil {
			return err
		}
	case "figure", "figure*", "table", "table*", "itemize", "enumerate", "description":
		s.readOptional()
	}

	bodyEnd, after, err := findEnvironmentEnd(s.src, s.pos, name)
	if err != nil {
		return err
	}
	body := s.src[s.pos:bodyEnd]
	s.pos = after

	if inner, ok := mathEnvironments[name]; ok {
		return c.math(displayBody(inner, s.src[begin:bodyEnd]), true, f)
	}
	if name == "math" {
		return c.math(body, false, f)
	}
	if name == "tabular" || name == "tabular*" {
		table, err := c.tabular(args[0], body)
		if err != nil {
			return err
		}
		if inline {
			f.add(table)
		} else {
			f.addBlock(table)
		}
		return nil
	}

	if inline {
		return unsupported("environment %q inside inline content", name)
	}

	switch name {
	case "itemize", "enumerate", "description":
		list, err := c.list(name, body)
		if err != nil {
			return err
		}
		f.addBlock(list)
		return nil
	case "center", "flushleft", "flushright", "minipage":
		f.endParagraph()
		return c.parse(body, f, false)
	case "quote", "quotation":
		g := &flow{}
		if err := c.parse(body, g, false); err != nil {
			return err
		}
		g.endParagraph()
		f.addBlock(elem("blockquote", g.blocks...))
		return nil
	case "figure", "figure*", "table", "table*":
		c.inFigure++
		defer func() { c.inFigure-- }()
		g := &flow{}
		if err := c.parse(body, g, false); err != nil {
			return err
		}
		g.endParagraph()
		f.addBlock(elem("figure", unwrapSingleParagraphs(g.blocks)...))
		return nil
	}
	return unsupported("environment %q", name)
}

// unwrapSingleParagraphs replaces <p> blocks by their children so a figure
// holds its image directly.
func unwrapSingleParagraphs(blocks []*html.Node) []*html.Node {
	var out []*html.Node
	for _, b := range blocks {
		if b.Data != "p" {
			out = append(out, b)
			continue
		}
		for c := b.FirstChild; c != nil; {
			next := c.NextSibling
			b.RemoveChild(c)
			out = append(out, c)
			c = next
		}
	}
	return out
}

// listing converts verbatim-like environments. Their body is taken literally.
func (c *textConverter) listing(name string, s *texScanner, f *flow, inline bool) error {
	if inline {
		return unsupported("environment %q inside inline content", name)
	}
	var language string
	switch name {
	case "lstlisting":
		if opts, ok := s.readOptional(); ok {
			if m := listingLanguage.FindStringSubmatch(opts); m != nil {
				language = m[1]
			}
		}
	case "minted":
		s.readOptional()
		lang, err := s.readGroup()
		if err != nil {
			return err
		}
		language = lang
	}

	endTag := `\end{` + name + `}`
	end := strings.Index(s.rest(), endTag)
	if end < 0 {
		return unsupported(`missing \end{%s}`, name)
	}
	code := s.rest()[:end]
	s.pos += end + len(endTag)

	code = strings.TrimPrefix(strings.TrimPrefix(code, "\r"), "\n")
	if i := strings.LastIndexByte(code, '\n'); i >= 0 && strings.TrimSpace(code[i:]) == "" {
		code = code[:i+1]
	}

	if language != "" && c.highlighter != nil {
		if highlighted, ok := c.highlighter.Highlight(code, language); ok {
			f.addBlock(newRaw(highlighted))
			return nil
		}
	}
	pre := elem("pre", textElem("code", code))
	f.addBlock(pre)
	return nil
}

func (c *textConverter) list(name, body string) (*html.Node, error) {
	items := splitTopLevel(body, `\item`)
	if lead := strings.TrimSpace(items[0]); lead != "" && !isIgnorableLead(lead) {
		return nil, unsupported("text before first \\item")
	}

	tag := "ul"
	switch name {
	case "enumerate":
		tag = "ol"
	case "description":
		tag = "dl"
	}
	list := newElement(tag)

	for _, item := range items[1:] {
		s := newTeXScanner(item)
		label, hasLabel := s.readOptional()

		g := &flow{}
		if err := c.parse(s.rest(), g, false); err != nil {
			return nil, err
		}
		g.endParagraph()
		content := g.blocks
		if len(content) == 1 && content[0].Data == "p" {
			content = unwrapSingleParagraphs(content)
		}

		if tag == "dl" {
			lf := &flow{}
			if hasLabel {
				if err := c.parse(label, lf, true); err != nil {
					return nil, err
				}
			}
			list.AppendChild(elem("dt", trimInline(lf.inline)...))
			list.AppendChild(elem("dd", content...))
			continue
		}
		list.AppendChild(elem("li", content...))
	}
	return list, nil
}

// isIgnorableLead reports whether text before the first \item holds only
// spacing commands such as \setlength.
func isIgnorableLead(lead string) bool {
	c := &textConverter{ctx: context.Background()}
	f := &flow{}
	if err := c.parse(lead, f, true); err != nil {
		return false
	}
	return len(trimInline(f.inline)) == 0
}

// tabular converts a tabular body to a <table>. Column alignment comes from
// the l/c/r letters of spec.
func (c *textConverter) tabular(spec, body string) (*html.Node, error) {
	aligns := tabularAlignment(spec)
	rows := splitTopLevel(body, `\\`)
	if last := len(rows) - 1; last > 0 && strings.TrimSpace(stripTableRules(stripRowPrefix(rows[last]))) == "" {
		rows = rows[:last]
	}

	tbody := newElement("tbody")
	for _, row := range rows {
		row = stripTableRules(stripRowPrefix(row))
		if strings.TrimSpace(row) == "" {
			continue
		}
		tr := newElement("tr")
		col := 0
		for _, cell := range splitTopLevel(row, "&") {
			span, align, content, err := multicolumn(cell)
			if err != nil {
				return nil, err
			}
			if align == "" && col < len(aligns) {
				align = aligns[col]
			}
			g := &flow{}
			if err := c.parse(content, g, true); err != nil {
				return nil, err
			}
			td := elem("td", trimInline(g.inline)...)
			if span > 1 {
				setAttr(td, "colspan", strconv.Itoa(span))
			}
			if align == "center" || align == "right" {
				setAttr(td, "style", "text-align: "+align+";")
			}
			tr.AppendChild(td)
			col += span
		}
		tbody.AppendChild(tr)
	}
	return elem("table", tbody), nil
}

// multicolumn unpacks \multicolumn{n}{spec}{text}; other cells pass through
// with a span of 1.
func multicolumn(cell string) (span int, align, content string, err error) {
	rest, ok := cutControlWord(strings.TrimSpace(cell), `\multicolumn`)
	if !ok {
		return 1, "", cell, nil
	}
	s := newTeXScanner(rest)
	n, err := s.readGroup()
	if err != nil {
		return 0, "", "", err
	}
	spec, err := s.readGroup()
	if err != nil {
		return 0, "", "", err
	}
	content, err = s.readGroup()
	if err != nil {
		return 0, "", "", err
	}
	span, err = strconv.Atoi(strings.TrimSpace(n))
	if err != nil || span < 1 {
		return 0, "", "", unsupported("bad \\multicolumn span %q", n)
	}
	if aligns := tabularAlignment(spec); len(aligns) > 0 {
		align = aligns[0]
	}
	return span, align, content, nil
}

func tabularAlignment(spec string) []string {
	var aligns []string
	depth := 0
	for i := 0; i < len(spec); i++ {
		switch ch := spec[i]; {
		case ch == '{':
			depth++
		case ch == '}':
			depth--
		case depth > 0:
		case ch == 'l' || ch == 'p' || ch == 'm' || ch == 'b' || ch == 'X':
			aligns = append(aligns, "left")
		case ch == 'c':
			aligns = append(aligns, "center")
		case ch == 'r':
			aligns = append(aligns, "right")
		}
	}
	return aligns
}

// stripTableRules drops horizontal rule commands between rows.
func stripTableRules(row string) string {
	for {
		row = strings.TrimLeftFunc(row, unicode.IsSpace)
		trimmed := false
		for _, rule := range []string{`\hline`, `\toprule`, `\midrule`, `\bottomrule`} {
			if rest, ok := cutControlWord(row, rule); ok {
				row, trimmed = rest, true
			}
		}
		if rest, ok := cutControlWord(row, `\cline`); ok {
			s := newTeXScanner(rest)
			if _, err := s.readGroup(); err == nil {
				row, trimmed = s.rest(), true
			}
		}
		if !trimmed {
			return row
		}
	}
}

// displayBody rewraps a display environment body for the math converter.
// The alignat column count stays in front of the body.
func displayBody(inner, body string) string {
	if inner == "" {
		return body
	}
	return `\begin{` + inner + `}` + body + `\end{` + inner + `}`
}

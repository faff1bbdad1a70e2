package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MathMLNamespace is the xmlns of generated <math> elements.
const MathMLNamespace = "http://www.w3.org/1998/Math/MathML"

// mathMarkdown only ever sees one $…$ or $$…$$ span. Markdown is the carrier
// the treeblood extension plugs into.
var mathMarkdown = goldmark.New(goldmark.WithExtensions(treeblood.MathML()))

// MathToMathML converts a TeX math fragment to a <math> element through
// treeblood. Commands treeblood cannot typeset fail with ErrUnsupportedSyntax
// so the next backend gets the source.
func MathToMathML(tex string, display bool) (*html.Node, error) {
	tex = flattenMath(tex)
	if tex == "" {
		return mathElement(newElement("math"), display), nil
	}

	delim := "$"
	if display {
		delim = "$$"
	}
	var buf bytes.Buffer
	if err := mathMarkdown.Convert([]byte(delim+tex+delim), &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSyntax, err)
	}
	return extractMath(buf.String(), display)
}

// flattenMath drops % comments and joins the lines of a math fragment, since
// the inline math syntax ends at a blank line and TeX reads newlines in math
// as spaces anyway.
func flattenMath(tex string) string {
	lines := strings.Split(tex, "\n")
	for i, line := range lines {
		lines[i] = cutComment(line)
	}
	return strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
}

func cutComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return line[:i]
		}
	}
	return line
}

// extractMath pulls the first <math> element out of rendered markup and
// normalizes its display and xmlns attributes.
func extractMath(markup string, display bool) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSyntax, err)
	}

	var math *html.Node
	for _, n := range nodes {
		if math = findElement(n, "math"); math != nil {
			break
		}
	}
	if math == nil {
		return nil, unsupported("math not recognized")
	}
	if bad := findElement(math, "merror"); bad != nil {
		return nil, unsupported("math: %s", strings.TrimSpace(textContent(bad)))
	}
	if math.Parent != nil {
		math.Parent.RemoveChild(math)
	}
	return mathElement(math, display), nil
}

func mathElement(n *html.Node, display bool) *html.Node {
	mode := "inline"
	if display {
		mode = "block"
	}
	setAttr(n, "display", mode)
	setAttr(n, "xmlns", MathMLNamespace)
	return n
}

// findElement returns the first element named tag in n's subtree, n included.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

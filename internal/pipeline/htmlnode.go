package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// Small constructors for building output trees with golang.org/x/net/html.

func newElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func newText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func newRaw(markup string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: markup}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// elem creates an element and appends the given children.
func elem(tag string, children ...*html.Node) *html.Node {
	n := newElement(tag)
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// textElem creates an element holding a single text node.
func textElem(tag, text string, attrs ...html.Attribute) *html.Node {
	n := newElement(tag, attrs...)
	n.AppendChild(newText(text))
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, attr(key, val))
}

// renderNodes serializes sibling trees, one per line.
func renderNodes(nodes []*html.Node) (string, error) {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

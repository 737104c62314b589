package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// VisibleText returns the text a reader would see for n.
// Script-like elements, elements with the hidden attribute and elements
// styled display:none are skipped, with their whole subtree.
func VisibleText(n *html.Node) string {
	var b strings.Builder
	collectVisible(n, &b)
	return b.String()
}

func collectVisible(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if !isRendered(n) {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectVisible(c, b)
	}
}

func isRendered(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
		return false
	}
	if _, hidden := Attr(n, "hidden"); hidden {
		return false
	}
	if display, ok := StyleProperty(n, "display"); ok && strings.EqualFold(withoutImportant(display), "none") {
		return false
	}
	return true
}

// Visible reports whether n and every ancestor element are rendered.
func Visible(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && !isRendered(p) {
			return false
		}
	}
	return true
}

// WordCount counts whitespace-delimited tokens of the visible text of n.
func WordCount(n *html.Node) int {
	return len(strings.Fields(VisibleText(n)))
}

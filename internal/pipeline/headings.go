package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-enhance/internal/dom"
)

// Heading anchor defaults.
const (
	DefaultExcludeClass = "subtitle"
	AnchorGlyph         = "§"
	AnchorClass         = "text-mono"
)

// DefaultRanks are the heading depths anchored when none are configured.
var DefaultRanks = []int{2, 3, 4, 5, 6}

// Headings prepends a self-link to every identified heading of the article.
type Headings struct {
	Scope string
	Ranks []int
	// ExcludeClass marks headings kept out of the table of contents.
	ExcludeClass string
}

// Name implements Pass.
func (h *Headings) Name() string { return NameHeadings }

// Apply implements Pass.
func (h *Headings) Apply(_ context.Context, doc *goquery.Document) error {
	scope := inScope(doc, h.Scope)
	for _, rank := range h.Ranks {
		scope.Find(h.selector(rank)).Each(func(_ int, s *goquery.Selection) {
			anchorHeading(s.Nodes[0])
		})
	}
	return nil
}

func (h *Headings) selector(rank int) string {
	sel := fmt.Sprintf("h%d", rank)
	if h.ExcludeClass != "" {
		sel += ":not(." + h.ExcludeClass + ")"
	}
	return sel
}

// anchorHeading rewrites <hN id="x">T</hN> as
// <hN id="x"><a href="#x" class="text-mono">§</a> <span>T</span></hN>.
func anchorHeading(n *html.Node) {
	id := dom.ID(n)
	if id == "" || hasSelfAnchor(n, id) {
		return
	}

	span := dom.NewElement("span")
	dom.MoveChildren(n, span)

	a := dom.NewElement("a", AnchorClass)
	dom.SetAttr(a, "href", "#"+id)
	a.AppendChild(dom.NewText(AnchorGlyph))

	n.AppendChild(a)
	n.AppendChild(dom.NewText(" "))
	n.AppendChild(span)
}

// hasSelfAnchor reports whether n already carries the anchor written by
// anchorHeading. A heading whose own content is a link to itself does not.
func hasSelfAnchor(n *html.Node, id string) bool {
	first := n.FirstChild
	if first == nil || first.Type != html.ElementNode || first.DataAtom != atom.A {
		return false
	}
	if href, _ := dom.Attr(first, "href"); href != "#"+id || !dom.HasClass(first, AnchorClass) {
		return false
	}
	glyph := first.FirstChild
	if glyph == nil || glyph.Type != html.TextNode || glyph.NextSibling != nil ||
		strings.TrimSpace(glyph.Data) != AnchorGlyph {
		return false
	}

	next := first.NextSibling
	for next != nil && next.Type == html.TextNode && strings.TrimSpace(next.Data) == "" {
		next = next.NextSibling
	}
	return next != nil && next.Type == html.ElementNode && next.DataAtom == atom.Span
}

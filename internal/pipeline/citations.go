package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-enhance/internal/dom"
)

// Citation defaults and class names.
const (
	DefaultCitationScope = "article"
	CitedClass           = "bq-cited"
	CitationClass        = "bq-citation"
)

// Citations turns cited blockquotes into a figure with a source caption.
type Citations struct {
	Scope string
}

// Name implements Pass.
func (c *Citations) Name() string { return NameCitations }

// Apply implements Pass.
func (c *Citations) Apply(_ context.Context, doc *goquery.Document) error {
	inScope(doc, c.Scope).Find("blockquote[cite]").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		src, _ := dom.Attr(n, "cite")
		if strings.TrimSpace(src) == "" || isCitedFigure(n.Parent) {
			return
		}

		link := dom.NewElement("a")
		dom.SetAttr(link, "href", src)
		link.AppendChild(dom.NewText("Source"))

		caption := dom.NewElement("figcaption", CitationClass)
		caption.AppendChild(dom.NewText("—"))
		caption.AppendChild(link)

		figure := dom.NewElement("figure", CitedClass)
		dom.Wrap(n, figure)
		figure.AppendChild(caption)
	})
	return nil
}

func isCitedFigure(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Figure && dom.HasClass(n, CitedClass)
}

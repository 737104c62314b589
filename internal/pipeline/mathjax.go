package pipeline

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-enhance/internal/dom"
)

// MathJaxDisplaySelector matches the block wrappers MathJax puts around SVG output.
const MathJaxDisplaySelector = "div.MathJax_SVG_Display"

// MathJax replaces each MathJax display wrapper with its rendered content.
type MathJax struct{}

// Name implements Pass.
func (MathJax) Name() string { return NameMathJax }

// Apply implements Pass.
func (MathJax) Apply(_ context.Context, doc *goquery.Document) error {
	doc.Find(MathJaxDisplaySelector).Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		if child := dom.FirstElementChild(n); child != nil {
			dom.Replace(n, child)
		}
	})
	return nil
}

package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/alnah/go-enhance/internal/dom"
)

// StylesheetMarker is the attribute set on the injected <style> element.
const StylesheetMarker = "data-enhance"

// Stylesheet injects CSS as a <style> block into <head>.
// It is idempotent: an existing marked block is replaced.
type Stylesheet struct {
	CSS string
}

// Name implements Pass.
func (s *Stylesheet) Name() string { return NameStylesheet }

// Apply implements Pass.
func (s *Stylesheet) Apply(_ context.Context, doc *goquery.Document) error {
	if s.CSS == "" {
		return nil
	}

	style := dom.NewElement("style")
	dom.SetAttr(style, StylesheetMarker, "")
	style.AppendChild(&html.Node{Type: html.TextNode, Data: sanitizeCSS(s.CSS)})

	if existing := doc.Find("style[" + StylesheetMarker + "]"); existing.Length() > 0 {
		dom.Replace(existing.Nodes[0], style)
		return nil
	}

	head := doc.Find("head").First()
	if head.Length() == 0 {
		return nil
	}
	head.Nodes[0].AppendChild(style)
	return nil
}

// sanitizeCSS escapes sequences that could close the <style> block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

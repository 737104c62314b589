// Package highlight colorizes code elements in place.
//
// The decorator only depends on the Highlighter interface; Chroma is the
// production implementation and emits class-based spans so that the colors
// come from a stylesheet (see CSS).
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
)

// Sentinel errors for highlighting.
var (
	ErrTokenize = errors.New("tokenizing code failed")
	ErrFormat   = errors.New("formatting highlighted code failed")
)

// MarkerClass is added to every element Chroma has colorized.
const MarkerClass = "chroma"

// Highlighter colorizes the text of one element according to a language tag.
type Highlighter interface {
	Highlight(sel *goquery.Selection, tag string) error
}

// Compile-time interface check.
var _ Highlighter = (*Chroma)(nil)

// Chroma highlights with github.com/alecthomas/chroma.
type Chroma struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewChroma creates a Chroma highlighter. An unknown style name falls back
// to Chroma's default style.
func NewChroma(styleName string) *Chroma {
	return &Chroma{
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Get(styleName),
	}
}

// Highlight replaces the element's children with highlighted markup.
// Tags Chroma does not know are rendered as plain text.
func (c *Chroma) Highlight(sel *goquery.Selection, tag string) error {
	if sel.Length() == 0 {
		return nil
	}

	lexer := lexers.Get(tag)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, sel.Text())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenize, err)
	}

	var buf bytes.Buffer
	if err := c.formatter.Format(&buf, c.style, iterator); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}

	for _, n := range sel.Nodes {
		if err := replaceChildren(n, buf.String()); err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
	}
	sel.AddClass(MarkerClass)
	return nil
}

// WriteCSS writes the stylesheet matching the highlighter's classes.
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}

// CSS returns the stylesheet matching the highlighter's classes.
func (c *Chroma) CSS() (string, error) {
	var b strings.Builder
	if err := c.WriteCSS(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func replaceChildren(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-enhance/internal/dom"
	"github.com/alnah/go-enhance/internal/highlight"
)

// Class names of the code block contract.
const (
	CodeBlockClass  = "codeblock"
	CodeBlockPrefix = "codeblock-"
	ContainerClass  = "code-container"
	LangMarkerClass = "lang-marker"
)

// CodeBlocks labels and highlights pre.codeblock elements.
type CodeBlocks struct {
	// Highlighter colorizes the inner element. Nil leaves the text as is.
	Highlighter highlight.Highlighter
	Log         *zap.Logger
}

// Name implements Pass.
func (c *CodeBlocks) Name() string { return NameCodeBlocks }

// Apply implements Pass. Highlighting failures are reported but the block
// is still wrapped and labeled.
func (c *CodeBlocks) Apply(_ context.Context, doc *goquery.Document) error {
	var errs error
	doc.Find("pre." + CodeBlockClass).Each(func(_ int, pre *goquery.Selection) {
		errs = multierr.Append(errs, c.decorate(pre.Nodes[0]))
	})
	return errs
}

func (c *CodeBlocks) decorate(pre *html.Node) error {
	tag, ok := dom.ClassWithPrefix(pre, CodeBlockPrefix)
	if !ok {
		return nil
	}
	lang, ok := LookupLanguage(tag)
	if !ok {
		c.logger().Debug("unknown code block tag", zap.String("tag", tag))
		return nil
	}
	if isContainer(pre.Parent) {
		return nil
	}
	inner := dom.FirstElementChild(pre)
	if inner == nil {
		return nil
	}

	var err error
	switch lang.Rendering {
	case RenderSample:
		dom.Rename(inner, "samp")
	case RenderPlain:
		retagPlain(inner, tag)
		err = c.highlight(inner, PlainTag)
	default:
		err = c.highlight(inner, tag)
	}

	marker := dom.NewElement("div", LangMarkerClass)
	marker.AppendChild(dom.NewText(lang.Label))
	wrapper := dom.NewElement("div", ContainerClass, CodeBlockPrefix+tag)
	dom.Wrap(pre, wrapper)
	wrapper.InsertBefore(marker, pre)

	if err != nil {
		return fmt.Errorf("highlighting %s block: %w", tag, err)
	}
	return nil
}

func (c *CodeBlocks) highlight(n *html.Node, tag string) error {
	if c.Highlighter == nil {
		return nil
	}
	return c.Highlighter.Highlight(goquery.NewDocumentFromNode(n).Selection, tag)
}

func (c *CodeBlocks) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// retagPlain swaps the language classes of n for the plain-text ones.
func retagPlain(n *html.Node, tag string) {
	drop := map[string]bool{tag: true, "lang-" + tag: true, "language-" + tag: true}
	classes := dom.Classes(n)
	kept := classes[:0]
	for _, cl := range classes {
		if !drop[cl] {
			kept = append(kept, cl)
		}
	}
	for _, cl := range []string{PlainTag, "lang-" + PlainTag, "language-" + PlainTag} {
		if !slices.Contains(kept, cl) {
			kept = append(kept, cl)
		}
	}
	setClasses(n, kept)
}

func isContainer(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Div && dom.HasClass(n, ContainerClass)
}

func setClasses(n *html.Node, classes []string) {
	if len(classes) == 0 {
		dom.RemoveAttr(n, "class")
		return
	}
	dom.SetAttr(n, "class", strings.Join(classes, " "))
}

// Package dom holds the tree operations shared by the enhancement passes.
//
// Selection work goes through goquery; structural edits (wrapping, moving,
// renaming nodes) operate on the underlying golang.org/x/net/html nodes so
// that the original nodes keep their identity when they are relocated.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrParse indicates the input could not be parsed as HTML.
var ErrParse = errors.New("HTML parsing failed")

// Parse reads an HTML document into a goquery document.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (*goquery.Document, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes the whole document.
func Render(doc *goquery.Document) (string, error) {
	var buf bytes.Buffer
	for _, n := range doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return buf.String(), nil
}

// NewElement creates a detached element node.
func NewElement(tag string, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(classes) > 0 {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
	return n
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Rename changes an element's tag name in place, keeping attributes and children.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Detach removes n from its parent, if it has one.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace puts repl where old is and detaches old.
// repl is detached from its current position first, so existing nodes can be moved.
func Replace(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil || old == repl {
		return
	}
	Detach(repl)
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// Wrap inserts wrapper at target's position and appends target as its last child.
func Wrap(target, wrapper *html.Node) {
	parent := target.Parent
	if parent == nil {
		return
	}
	Detach(wrapper)
	parent.InsertBefore(wrapper, target)
	parent.RemoveChild(target)
	wrapper.AppendChild(target)
}

// MoveChildren moves every child of src to the end of dst, preserving order.
func MoveChildren(src, dst *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// FirstElementChild returns the first child that is an element, or nil.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or adds the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Classes returns the class list in attribute order.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// ClassWithPrefix returns the remainder of the first class starting with prefix.
func ClassWithPrefix(n *html.Node, prefix string) (string, bool) {
	for _, c := range Classes(n) {
		if strings.HasPrefix(c, prefix) {
			return strings.TrimPrefix(c, prefix), true
		}
	}
	return "", false
}

// ID returns the element's id attribute, empty when absent.
func ID(n *html.Node) string {
	v, _ := Attr(n, "id")
	return v
}

// ElementByID returns the first element under root whose id is id, in
// document order, or nil.
func ElementByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	if root.Type == html.ElementNode && ID(root) == id {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := ElementByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-enhance/internal/dom"
)

// DefaultFigurePrefix starts generated figure identifiers.
const DefaultFigurePrefix = "figure-"

// Figures gives every figure an identifier and a caption element.
// Numbering restarts at 1 on every Apply.
type Figures struct {
	Scope    string
	IDPrefix string
}

// Name implements Pass.
func (f *Figures) Name() string { return NameFigures }

// Apply implements Pass.
func (f *Figures) Apply(_ context.Context, doc *goquery.Document) error {
	used := make(map[string]bool)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		used[dom.ID(s.Nodes[0])] = true
	})

	counter := 0
	inScope(doc, f.Scope).Find("figure").Each(func(_ int, fig *goquery.Selection) {
		counter++
		n := fig.Nodes[0]
		if dom.ID(n) == "" {
			id := uniqueID(f.IDPrefix+strconv.Itoa(counter), used)
			dom.SetAttr(n, "id", id)
			used[id] = true
		}
		if fig.ChildrenFiltered("figcaption").Length() == 0 {
			n.AppendChild(dom.NewElement("figcaption"))
		}
	})
	return nil
}

// uniqueID returns base, or base-2, base-3, ... when base is already taken.
func uniqueID(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for k := 2; ; k++ {
		candidate := fmt.Sprintf("%s-%d", base, k)
		if !used[candidate] {
			return candidate
		}
	}
}

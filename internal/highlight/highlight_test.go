package highlight

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseCode(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc.Find("code")
}

func TestChromaHighlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tag       string
		code      string
		wantSpans bool
	}{
		{name: "rust", tag: "rust", code: "fn main() { let x = 1; }", wantSpans: true},
		{name: "plain", tag: "plain", code: "+---+\n| a |\n+---+"},
		{name: "unknown tag falls back", tag: "no-such-language", code: "whatever text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sel := parseCode(t, "<pre><code>"+tt.code+"</code></pre>")
			h := NewChroma("github")

			if err := h.Highlight(sel, tt.tag); err != nil {
				t.Fatalf("Highlight() error = %v", err)
			}
			if !sel.HasClass(MarkerClass) {
				t.Errorf("class %q missing", MarkerClass)
			}
			if got := strings.TrimRight(sel.Text(), "\n"); got != tt.code {
				t.Errorf("text changed: got %q, want %q", got, tt.code)
			}
			inner, _ := sel.Html()
			if tt.wantSpans && !strings.Contains(inner, `<span class="`) {
				t.Errorf("no highlighted spans in %q", inner)
			}
			if strings.Contains(inner, "<pre") {
				t.Errorf("highlighted markup wraps a <pre>: %q", inner)
			}
		})
	}
}

func TestChromaHighlightEmptySelection(t *testing.T) {
	t.Parallel()

	sel := parseCode(t, "<p>no code</p>")
	if err := NewChroma("github").Highlight(sel, "rust"); err != nil {
		t.Errorf("Highlight() on empty selection error = %v", err)
	}
}

func TestChromaCSS(t *testing.T) {
	t.Parallel()

	css, err := NewChroma("monokai").CSS()
	if err != nil {
		t.Fatalf("CSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("CSS() missing .chroma rules: %q", css)
	}
}

package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// ErrInvalidLength indicates a length attribute that cannot be converted to pixels.
var ErrInvalidLength = errors.New("invalid length")

// CSS reference pixels per unit.
const (
	pxPerIn = 96.0
	pxPerPt = pxPerIn / 72
	pxPerPc = pxPerIn / 6
	pxPerCm = pxPerIn / 2.54
	pxPerMm = pxPerIn / 25.4
)

type declaration struct {
	property string
	value    string
}

// parseInlineStyle splits a style attribute into its declarations.
// Parsing stops at the first malformed token; what was read before is kept.
func parseInlineStyle(style string) []declaration {
	var decls []declaration
	p := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var b strings.Builder
			for _, v := range p.Values() {
				b.Write(v.Data)
			}
			decls = append(decls, declaration{
				property: strings.ToLower(string(data)),
				value:    strings.TrimSpace(b.String()),
			})
		}
	}
}

func formatInlineStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.property+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// withoutImportant strips a trailing !important flag from a declaration
// value. The parser joins the flag to the value, as in "none!important".
func withoutImportant(value string) string {
	i := strings.LastIndexByte(value, '!')
	if i < 0 {
		return value
	}
	flag := strings.ReplaceAll(value[i+1:], " ", "")
	if !strings.EqualFold(flag, "important") {
		return value
	}
	return strings.TrimSpace(value[:i])
}

// StyleProperty returns the value of one property from the inline style.
func StyleProperty(n *html.Node, property string) (string, bool) {
	style, ok := Attr(n, "style")
	if !ok {
		return "", false
	}
	property = strings.ToLower(property)
	var (
		val   string
		found bool
	)
	for _, d := range parseInlineStyle(style) {
		if d.property == property {
			val, found = d.value, true
		}
	}
	return val, found
}

// SetStyleProperty writes one property into the inline style, keeping the others.
func SetStyleProperty(n *html.Node, property, value string) {
	property = strings.ToLower(property)
	style, _ := Attr(n, "style")
	decls := parseInlineStyle(style)

	replaced := false
	out := decls[:0]
	for _, d := range decls {
		if d.property == property {
			if replaced {
				continue
			}
			d.value = value
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, declaration{property: property, value: value})
	}
	SetAttr(n, "style", formatInlineStyle(out))
}

// LengthPx converts an SVG/CSS absolute length such as "120", "12pt" or
// "2.5cm" to CSS pixels. Relative units are rejected.
func LengthPx(s string) (float64, error) {
	b := []byte(strings.TrimSpace(s))
	num, unit := parse.Dimension(b)
	if num == 0 || num+unit != len(b) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	v, err := strconv.ParseFloat(string(b[:num]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}

	switch strings.ToLower(string(b[num:])) {
	case "", "px":
		return v, nil
	case "pt":
		return v * pxPerPt, nil
	case "pc":
		return v * pxPerPc, nil
	case "in":
		return v * pxPerIn, nil
	case "cm":
		return v * pxPerCm, nil
	case "mm":
		return v * pxPerMm, nil
	default:
		return 0, fmt.Errorf("%w: unsupported unit in %q", ErrInvalidLength, s)
	}
}

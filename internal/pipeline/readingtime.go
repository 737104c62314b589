package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-enhance/internal/dom"
)

// Reading time defaults.
const (
	DefaultWordsPerMinute    = 200
	DefaultReadingTimeTarget = "#reading-time"
)

// ErrInvalidRate indicates a non-positive words-per-minute rate.
var ErrInvalidRate = errors.New("words per minute must be positive")

// ReadingTime writes a minutes estimate for the article into a placeholder.
type ReadingTime struct {
	Scope          string
	Target         string
	WordsPerMinute int
}

// Name implements Pass.
func (r *ReadingTime) Name() string { return NameReadingTime }

// Apply implements Pass. Without a placeholder on the page it does nothing.
func (r *ReadingTime) Apply(_ context.Context, doc *goquery.Document) error {
	target := doc.Find(r.Target).First()
	if target.Length() == 0 {
		return nil
	}
	if r.WordsPerMinute <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, r.WordsPerMinute)
	}

	words := 0
	inScope(doc, r.Scope).Find("p").Each(func(_ int, p *goquery.Selection) {
		n := p.Nodes[0]
		if dom.Visible(n) {
			words += dom.WordCount(n)
		}
	})

	target.SetText(FormatMinutes(Minutes(words, r.WordsPerMinute)))
	return nil
}

// Minutes is the reading time of words at wpm, rounded up.
func Minutes(words, wpm int) int {
	if words <= 0 || wpm <= 0 {
		return 0
	}
	return (words + wpm - 1) / wpm
}

// FormatMinutes renders a minute count for display.
func FormatMinutes(m int) string {
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

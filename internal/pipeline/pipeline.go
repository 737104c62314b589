package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pass names, used for configuration and logging.
const (
	NameReadingTime = "readingtime"
	NameHeadings    = "headings"
	NameCodeBlocks  = "codeblocks"
	NameFigures     = "figures"
	NameCitations   = "citations"
	NameMathJax     = "mathjax"
	NameStylesheet  = "stylesheet"
)

// DefaultOrder lists the passes in the order the page applies them.
var DefaultOrder = []string{
	NameReadingTime,
	NameHeadings,
	NameCodeBlocks,
	NameFigures,
	NameCitations,
	NameMathJax,
	NameStylesheet,
}

// DefaultScope selects the article body of a rendered page.
const DefaultScope = "main article"

// inScope returns the elements matched by scope, or the whole document
// when scope is empty. Passes search below it with Find so that a
// selector group never matches the scope elements themselves.
func inScope(doc *goquery.Document, scope string) *goquery.Selection {
	if scope == "" {
		return doc.Selection
	}
	return doc.Find(scope)
}

// Pass is one transformation over the document.
// A pass that cannot do its work on a given page returns nil: a missing
// optional element is not an error. Errors are reserved for failures that
// deserve a warning, and never stop the other passes.
type Pass interface {
	Name() string
	Apply(ctx context.Context, doc *goquery.Document) error
}

// Pipeline runs passes in order.
type Pipeline struct {
	passes []Pass
	log    *zap.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(log *zap.Logger, passes ...Pass) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{passes: passes, log: log.Named("pipeline")}
}

// Passes returns the passes in execution order.
func (p *Pipeline) Passes() []Pass {
	out := make([]Pass, len(p.passes))
	copy(out, p.passes)
	return out
}

// Run applies every pass to doc. Pass errors are logged and combined into
// the returned error; the remaining passes still run. Cancellation stops
// the run before the next pass.
func (p *Pipeline) Run(ctx context.Context, doc *goquery.Document) error {
	var errs error
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		start := time.Now()
		if err := pass.Apply(ctx, doc); err != nil {
			p.log.Warn("pass failed", zap.String("pass", pass.Name()), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", pass.Name(), err))
			continue
		}
		p.log.Debug("pass applied",
			zap.String("pass", pass.Name()),
			zap.Duration("elapsed", time.Since(start)))
	}
	return errs
}

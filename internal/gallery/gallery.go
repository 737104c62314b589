// Package gallery swaps image placeholders for real images after the page
// has loaded.
//
// Placeholders are popped from a shared stack by a few concurrent chains,
// each started by its own short timer. A chain loads one image at a time and
// moves on to the next placeholder only when the previous load succeeded.
package gallery

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/alnah/go-enhance/internal/dom"
	"github.com/alnah/go-enhance/internal/resource"
)

// Placeholder contract.
const (
	PlaceholderSelector = ".async-image"
	SourceAttr          = "data-src"
	TitleAttr           = "data-title"
	ImageClass          = "unset gallery-img"
)

// DefaultDelays are the chain start delays. One chain per entry.
var DefaultDelays = []time.Duration{
	20 * time.Millisecond,
	15 * time.Millisecond,
	10 * time.Millisecond,
	5 * time.Millisecond,
}

// Config wires a Gallery.
type Config struct {
	Loader resource.Loader
	Clock  clockwork.Clock
	Log    *zap.Logger
	// Delays starts one chain per entry. Empty uses DefaultDelays.
	Delays []time.Duration
	// Lock guards the document. Nil uses a private mutex.
	Lock sync.Locker
}

// Gallery loads the placeholders of one document.
type Gallery struct {
	loader resource.Loader
	clock  clockwork.Clock
	log    *zap.Logger
	delays []time.Duration
	doc    sync.Locker

	mu     sync.Mutex
	stack  []*html.Node
	timers []clockwork.Timer

	wg     sync.WaitGroup
	loaded atomic.Int64
	failed atomic.Int64
}

// New collects the placeholders of doc. Nothing loads until Start.
func New(doc *goquery.Document, cfg Config) *Gallery {
	g := &Gallery{
		loader: cfg.Loader,
		clock:  cfg.Clock,
		log:    cfg.Log,
		delays: cfg.Delays,
		doc:    cfg.Lock,
	}
	if g.loader == nil {
		g.loader = resource.NewFetcher()
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	g.log = g.log.Named("gallery")
	if len(g.delays) == 0 {
		g.delays = DefaultDelays
	}
	if g.doc == nil {
		g.doc = &sync.Mutex{}
	}

	g.doc.Lock()
	g.stack = doc.Find(PlaceholderSelector).Nodes
	g.doc.Unlock()
	// Popping from the end yields document order.
	slices.Reverse(g.stack)
	return g
}

// Start schedules the chains. ctx bounds every load.
func (g *Gallery) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.stack) == 0 || g.timers != nil {
		return
	}
	g.log.Debug("starting chains",
		zap.Int("placeholders", len(g.stack)),
		zap.Int("chains", len(g.delays)))

	g.wg.Add(len(g.delays))
	for i, d := range g.delays {
		g.timers = append(g.timers, g.clock.AfterFunc(d, func() {
			g.chain(ctx, i)
		}))
	}
}

// Stop cancels chains whose timer has not fired yet.
// Chains already running end at their next failure or when ctx is done.
func (g *Gallery) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.timers {
		if t.Stop() {
			g.wg.Done()
		}
	}
}

// Wait blocks until every chain has ended or ctx is done.
func (g *Gallery) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of placeholders no chain has taken yet.
func (g *Gallery) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stack)
}

// Loaded returns the number of placeholders replaced so far.
func (g *Gallery) Loaded() int { return int(g.loaded.Load()) }

// Failed returns the number of chains that ended on a failed load.
func (g *Gallery) Failed() int { return int(g.failed.Load()) }

func (g *Gallery) chain(ctx context.Context, id int) {
	defer g.wg.Done()
	for ctx.Err() == nil {
		n := g.pop()
		if n == nil {
			return
		}
		if !g.load(ctx, n) {
			g.failed.Add(1)
			g.log.Debug("chain ended", zap.Int("chain", id))
			return
		}
	}
}

func (g *Gallery) pop() *html.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.stack) == 0 {
		return nil
	}
	n := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return n
}

// load fetches the image for placeholder n and swaps it in.
// It reports false when the placeholder was left in place.
func (g *Gallery) load(ctx context.Context, n *html.Node) bool {
	g.doc.Lock()
	src, _ := dom.Attr(n, SourceAttr)
	title, _ := dom.Attr(n, TitleAttr)
	g.doc.Unlock()

	if src == "" {
		g.log.Debug("placeholder without source")
		return false
	}

	if _, err := g.loader.Load(ctx, src); err != nil {
		g.log.Warn("image failed to load", zap.String("src", src), zap.Error(err))
		return false
	}

	img := dom.NewElement("img")
	dom.SetAttr(img, "class", ImageClass)
	dom.SetAttr(img, "src", src)
	if title != "" {
		dom.SetAttr(img, "alt", title)
	}

	g.doc.Lock()
	dom.Replace(n, img)
	g.doc.Unlock()

	g.loaded.Add(1)
	return true
}

package enhance

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/alnah/go-enhance/internal/dom"
	"github.com/alnah/go-enhance/internal/gallery"
	"github.com/alnah/go-enhance/internal/jukebox"
	"github.com/alnah/go-enhance/internal/resource"
	"github.com/alnah/go-enhance/internal/sundial"
)

// Page is a loaded document whose daemons keep running until Close:
// image chains fill in placeholders and the clock hands move every minute.
// Every method is safe for concurrent use.
type Page struct {
	// mu guards doc. Image chains and the clock take it before mutating.
	mu  sync.Mutex
	doc *goquery.Document
	log *zap.Logger

	jukebox  *jukebox.Jukebox
	gallery  *gallery.Gallery
	sundial  *sundial.Sundial
	warnings error

	ctx     context.Context
	cancel  context.CancelFunc
	daemons sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
}

func newPage(ctx context.Context, doc *goquery.Document, log *zap.Logger) *Page {
	pageCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &Page{
		doc:    doc,
		log:    log.Named("page"),
		ctx:    pageCtx,
		cancel: cancel,
	}
}

// mountClock finds the clock scene and sets the hands to the current time.
// A page without a complete scene has no clock.
func (p *Page) mountClock(scene string, clock clockwork.Clock, loc *time.Location) {
	sd, err := sundial.New(p.doc, scene, sundial.Config{
		Clock:    clock,
		Location: loc,
		Log:      p.log,
		Lock:     &p.mu,
	})
	if err != nil {
		p.log.Debug("clock skipped", zap.Error(err))
		return
	}
	sd.Adjust(clock.Now())
	p.sundial = sd
}

// startClock runs the clock daemon until Close.
func (p *Page) startClock() {
	if p.sundial == nil {
		return
	}
	p.daemons.Add(1)
	go func() {
		defer p.daemons.Done()
		p.sundial.Run(p.ctx)
	}()
}

// startGallery schedules the image chains.
func (p *Page) startGallery(loader resource.Loader, clock clockwork.Clock, delays []time.Duration) {
	p.gallery = gallery.New(p.doc, gallery.Config{
		Loader: loader,
		Clock:  clock,
		Log:    p.log,
		Delays: delays,
		Lock:   &p.mu,
	})
	p.gallery.Start(p.ctx)
}

// HTML renders the current state of the document.
// Returns ErrPageClosed after Close.
func (p *Page) HTML() (string, error) {
	if p.closed.Load() {
		return "", ErrPageClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return dom.Render(p.doc)
}

// Jukebox returns the audio controller, or nil when the audio pass is off.
func (p *Page) Jukebox() *Jukebox {
	return p.jukebox
}

// Warnings returns the combined failures of the passes, or nil.
func (p *Page) Warnings() error {
	return p.warnings
}

// WaitImages blocks until every image chain has ended or ctx is done.
func (p *Page) WaitImages(ctx context.Context) error {
	if p.gallery == nil {
		return nil
	}
	return p.gallery.Wait(ctx)
}

// StopImages cancels the chains that have not started yet.
func (p *Page) StopImages() {
	if p.gallery != nil {
		p.gallery.Stop()
	}
}

// ImagesLoaded returns the number of placeholders replaced so far.
func (p *Page) ImagesLoaded() int {
	if p.gallery == nil {
		return 0
	}
	return p.gallery.Loaded()
}

// ImagesPending returns the number of placeholders not yet attempted.
func (p *Page) ImagesPending() int {
	if p.gallery == nil {
		return 0
	}
	return p.gallery.Pending()
}

// ClockHands returns the current hand angles in degrees. ok is false when
// the page has no clock scene.
func (p *Page) ClockHands() (hour, minute float64, ok bool) {
	if p.sundial == nil {
		return 0, 0, false
	}
	h := p.sundial.Hands()
	return h.Hour, h.Minute, true
}

// Close stops the daemons and waits for them to return.
func (p *Page) Close() {
	p.once.Do(func() {
		p.closed.Store(true)
		p.cancel()
		if p.gallery != nil {
			p.gallery.Stop()
			_ = p.gallery.Wait(context.Background())
		}
		p.daemons.Wait()
		p.log.Debug("page closed")
	})
}

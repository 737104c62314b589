package enhance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-enhance/internal/assets"
	"github.com/alnah/go-enhance/internal/dom"
	"github.com/alnah/go-enhance/internal/highlight"
	"github.com/alnah/go-enhance/internal/jukebox"
	"github.com/alnah/go-enhance/internal/pipeline"
	"github.com/alnah/go-enhance/internal/resource"
)

// Enhancer runs the enhancement passes over server-rendered pages.
// One Enhancer can load many pages concurrently. Close releases the
// printer's browser.
type Enhancer struct {
	cfg      settings
	log      *zap.Logger
	pipeline *pipeline.Pipeline
	printer  Printer
}

// Input is one page for Enhance.
type Input struct {
	HTML       string
	BaseDir    string // Relative image sources resolve here
	WaitImages bool   // Snapshot after every image chain has ended
	PDF        bool   // Also print the snapshot
}

// Result is the outcome of Enhance.
type Result struct {
	HTML []byte
	PDF  []byte
	// Warnings combines the failures of individual passes. They never
	// abort the page.
	Warnings error
	// ImagesLoaded and ImagesPending count replaced and remaining
	// placeholders at snapshot time.
	ImagesLoaded  int
	ImagesPending int
}

// NewEnhancer creates an Enhancer. Returns ErrInvalidOption for invalid
// settings and ErrStyleNotFound when the stylesheet cannot be loaded.
func NewEnhancer(opts ...Option) (*Enhancer, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Enhancer{cfg: cfg, log: cfg.log.Named("enhance")}
	if e.cfg.highlighter == nil && e.cfg.enabled(PassCodeBlocks) {
		e.cfg.highlighter = highlight.NewChroma(cfg.theme)
	}

	passes, err := e.passes()
	if err != nil {
		return nil, err
	}
	e.pipeline = pipeline.New(cfg.log, passes...)

	e.printer = cfg.printer
	if e.printer == nil {
		e.printer = newRodPrinter(cfg.timeout, cfg.log)
	}
	return e, nil
}

// passes builds the enabled synchronous passes in page order.
func (e *Enhancer) passes() ([]pipeline.Pass, error) {
	var out []pipeline.Pass
	for _, name := range allPasses {
		if !e.cfg.enabled(name) {
			continue
		}
		switch name {
		case PassReadingTime:
			out = append(out, &pipeline.ReadingTime{
				Scope:          e.cfg.scope,
				Target:         e.cfg.readingTime.Target,
				WordsPerMinute: e.cfg.readingTime.WordsPerMinute,
			})
		case PassHeadings:
			out = append(out, &pipeline.Headings{
				Scope:        e.cfg.scope,
				Ranks:        e.cfg.headings.Ranks,
				ExcludeClass: e.cfg.headings.ExcludeClass,
			})
		case PassCodeBlocks:
			out = append(out, &pipeline.CodeBlocks{Highlighter: e.cfg.highlighter, Log: e.cfg.log})
		case PassFigures:
			out = append(out, &pipeline.Figures{Scope: e.cfg.scope, IDPrefix: e.cfg.figurePrefix})
		case PassCitations:
			out = append(out, &pipeline.Citations{Scope: e.cfg.citationScope})
		case PassMathJax:
			out = append(out, pipeline.MathJax{})
		case PassStylesheet:
			css, err := e.stylesheet()
			if err != nil {
				return nil, err
			}
			out = append(out, &pipeline.Stylesheet{CSS: css})
		}
	}
	return out, nil
}

// stylesheet joins the base style, the highlighter theme and extra CSS.
func (e *Enhancer) stylesheet() (string, error) {
	resolver, err := assets.NewResolver(e.cfg.assetPath)
	if err != nil {
		return "", fmt.Errorf("%w: asset path: %v", ErrInvalidOption, err)
	}
	base, err := resolver.LoadStyle(e.cfg.style)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) {
			return "", fmt.Errorf("%w: %q", ErrStyleNotFound, e.cfg.style)
		}
		return "", fmt.Errorf("loading style: %w", err)
	}

	parts := []string{base}
	if c, ok := e.cfg.highlighter.(*highlight.Chroma); ok {
		theme, err := c.CSS()
		if err != nil {
			return "", fmt.Errorf("rendering theme CSS: %w", err)
		}
		parts = append(parts, theme)
	}
	if e.cfg.css != "" {
		parts = append(parts, e.cfg.css)
	}
	return strings.Join(parts, "\n"), nil
}

// Load parses r, applies the passes and starts the page's daemons.
// Pass failures do not fail the load: they are reported by Page.Warnings.
// ctx bounds the load only; the page lives until Close.
func (e *Enhancer) Load(ctx context.Context, r io.Reader) (*Page, error) {
	return e.load(ctx, r, e.imageLoader(""))
}

func (e *Enhancer) load(ctx context.Context, r io.Reader, loader resource.Loader) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := dom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	p := newPage(ctx, doc, e.cfg.log)
	if e.cfg.enabled(PassClock) {
		p.mountClock(e.cfg.scene, e.cfg.clock, e.cfg.location)
	}

	p.mu.Lock()
	warnings := e.pipeline.Run(ctx, doc)
	if e.cfg.enabled(PassAudio) {
		p.jukebox = jukebox.Mount(doc, e.cfg.slots, e.cfg.log)
	}
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		p.Close()
		return nil, err
	}
	p.warnings = warnings

	if e.cfg.enabled(PassImages) {
		p.startGallery(loader, e.cfg.clock, e.cfg.images.Delays)
	}
	p.startClock()

	e.log.Debug("page loaded", zap.Duration("elapsed", time.Since(start)))
	return p, nil
}

// baseDir returns dir, or the configured image base dir when dir is empty.
func (e *Enhancer) baseDir(dir string) string {
	if dir != "" {
		return dir
	}
	return e.cfg.images.BaseDir
}

// imageLoader returns the configured loader, or a fetcher rooted at baseDir.
func (e *Enhancer) imageLoader(baseDir string) resource.Loader {
	if e.cfg.loader != nil {
		return e.cfg.loader
	}
	opts := []resource.Option{resource.WithBaseDir(e.baseDir(baseDir))}
	if e.cfg.images.MaxBytes > 0 {
		opts = append(opts, resource.WithMaxBytes(e.cfg.images.MaxBytes))
	}
	return resource.NewFetcher(opts...)
}

// Enhance loads input, optionally waits for the image chains, snapshots
// the page and optionally prints it. The page is closed before returning.
func (e *Enhancer) Enhance(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(input.HTML) == "" {
		return nil, ErrEmptyInput
	}

	page, err := e.load(ctx, strings.NewReader(input.HTML), e.imageLoader(input.BaseDir))
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if input.WaitImages {
		if err := page.WaitImages(ctx); err != nil {
			return nil, err
		}
	} else {
		page.StopImages()
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	res := &Result{
		HTML:          []byte(html),
		Warnings:      page.Warnings(),
		ImagesLoaded:  page.ImagesLoaded(),
		ImagesPending: page.ImagesPending(),
	}

	if input.PDF {
		printed, err := withBaseHref(html, e.baseDir(input.BaseDir))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
		}
		pdf, err := e.printer.PrintPDF(ctx, printed)
		if err != nil {
			return nil, err
		}
		res.PDF = pdf
	}
	return res, nil
}

// Passes returns the names of the enabled passes in page order.
func (e *Enhancer) Passes() []string {
	var out []string
	for _, name := range allPasses {
		if e.cfg.enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

// Close releases the printer.
func (e *Enhancer) Close() error {
	if e.printer != nil {
		return e.printer.Close()
	}
	return nil
}

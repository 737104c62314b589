package enhance

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/alnah/go-enhance/internal/assets"
	"github.com/alnah/go-enhance/internal/gallery"
	"github.com/alnah/go-enhance/internal/highlight"
	"github.com/alnah/go-enhance/internal/jukebox"
	"github.com/alnah/go-enhance/internal/pipeline"
	"github.com/alnah/go-enhance/internal/resource"
	"github.com/alnah/go-enhance/internal/sundial"
)

// Pass names accepted by WithPasses.
const (
	PassReadingTime = pipeline.NameReadingTime
	PassHeadings    = pipeline.NameHeadings
	PassCodeBlocks  = pipeline.NameCodeBlocks
	PassFigures     = pipeline.NameFigures
	PassCitations   = pipeline.NameCitations
	PassMathJax     = pipeline.NameMathJax
	PassStylesheet  = pipeline.NameStylesheet
	PassAudio       = "audio"
	PassImages      = "images"
	PassClock       = "clock"
)

// allPasses lists every pass in the order a page applies them.
var allPasses = []string{
	PassClock,
	PassReadingTime,
	PassHeadings,
	PassCodeBlocks,
	PassFigures,
	PassCitations,
	PassMathJax,
	PassStylesheet,
	PassAudio,
	PassImages,
}

// DefaultPasses returns the passes enabled when WithPasses is not used:
// every pass except the MathJax unwrap.
func DefaultPasses() []string {
	out := make([]string, 0, len(allPasses))
	for _, name := range allPasses {
		if name != PassMathJax {
			out = append(out, name)
		}
	}
	return out
}

// AllPasses returns every pass name in page order.
func AllPasses() []string {
	return slices.Clone(allPasses)
}

// defaultTimeout bounds PDF printing when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Highlighter colorizes a code element according to its language tag.
type Highlighter = highlight.Highlighter

// ImageLoader fetches the bytes behind a deferred image source.
type ImageLoader = resource.Loader

// Resource is an image fetched by an ImageLoader.
type Resource = resource.Resource

// Jukebox and Track expose the audio elements of a page.
type (
	Jukebox = jukebox.Jukebox
	Track   = jukebox.Track
)

// Headings tunes heading anchors.
type Headings struct {
	Ranks        []int  // Heading levels to anchor (1-6)
	ExcludeClass string // Headings with this class are skipped
}

// ReadingTime tunes the reading time estimate.
type ReadingTime struct {
	Target         string // Selector of the placeholder element
	WordsPerMinute int
}

// Images tunes deferred image loading.
type Images struct {
	Delays   []time.Duration // One chain per delay
	BaseDir  string          // Relative sources resolve here
	MaxBytes int64           // 0 = loader default
}

// Option configures an Enhancer.
type Option func(*settings)

// settings holds the resolved configuration of an Enhancer.
type settings struct {
	log         *zap.Logger
	clock       clockwork.Clock
	highlighter Highlighter
	loader      ImageLoader
	printer     Printer

	scope         string
	headings      Headings
	readingTime   ReadingTime
	figurePrefix  string
	citationScope string
	images        Images
	scene         string
	location      *time.Location
	slots         []string
	passes        []string

	theme     string
	style     string
	assetPath string
	css       string
	timeout   time.Duration
}

func defaultSettings() settings {
	return settings{
		log:   zap.NewNop(),
		clock: clockwork.NewRealClock(),
		scope: pipeline.DefaultScope,
		headings: Headings{
			Ranks:        slices.Clone(pipeline.DefaultRanks),
			ExcludeClass: pipeline.DefaultExcludeClass,
		},
		readingTime: ReadingTime{
			Target:         pipeline.DefaultReadingTimeTarget,
			WordsPerMinute: pipeline.DefaultWordsPerMinute,
		},
		figurePrefix:  pipeline.DefaultFigurePrefix,
		citationScope: pipeline.DefaultCitationScope,
		images:        Images{Delays: slices.Clone(gallery.DefaultDelays)},
		scene:         sundial.DefaultScene,
		location:      time.Local,
		slots:         slices.Clone(jukebox.DefaultSlots),
		passes:        DefaultPasses(),
		theme:         "github",
		style:         assets.DefaultStyle,
		timeout:       defaultTimeout,
	}
}

// WithLogger sets the logger. Nil discards output.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log == nil {
			log = zap.NewNop()
		}
		s.log = log
	}
}

// WithClock sets the clock driving image chains and the clock scene.
func WithClock(c clockwork.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithHighlighter replaces the Chroma highlighter. The theme stylesheet is
// only injected for the default highlighter.
func WithHighlighter(h Highlighter) Option {
	return func(s *settings) {
		s.highlighter = h
	}
}

// WithImageLoader replaces the default HTTP, file and data URI loader.
func WithImageLoader(l ImageLoader) Option {
	return func(s *settings) {
		s.loader = l
	}
}

// WithPrinter replaces the headless Chrome printer.
func WithPrinter(p Printer) Option {
	return func(s *settings) {
		s.printer = p
	}
}

// WithScope sets the selector of the article body.
func WithScope(selector string) Option {
	return func(s *settings) {
		s.scope = selector
	}
}

// WithHeadings tunes heading anchors. Empty fields keep their defaults.
func WithHeadings(h Headings) Option {
	return func(s *settings) {
		if h.Ranks != nil {
			s.headings.Ranks = slices.Clone(h.Ranks)
		}
		if h.ExcludeClass != "" {
			s.headings.ExcludeClass = h.ExcludeClass
		}
	}
}

// WithReadingTime tunes the reading time estimate. Empty fields keep
// their defaults.
func WithReadingTime(r ReadingTime) Option {
	return func(s *settings) {
		if r.Target != "" {
			s.readingTime.Target = r.Target
		}
		if r.WordsPerMinute != 0 {
			s.readingTime.WordsPerMinute = r.WordsPerMinute
		}
	}
}

// WithFigurePrefix sets the prefix of generated figure ids.
func WithFigurePrefix(prefix string) Option {
	return func(s *settings) {
		s.figurePrefix = prefix
	}
}

// WithCitationScope sets the selector under which blockquotes are cited.
func WithCitationScope(selector string) Option {
	return func(s *settings) {
		s.citationScope = selector
	}
}

// WithImages tunes deferred image loading. Empty fields keep their defaults.
func WithImages(img Images) Option {
	return func(s *settings) {
		if img.Delays != nil {
			s.images.Delays = slices.Clone(img.Delays)
		}
		if img.BaseDir != "" {
			s.images.BaseDir = img.BaseDir
		}
		if img.MaxBytes != 0 {
			s.images.MaxBytes = img.MaxBytes
		}
	}
}

// WithClockScene sets the selector of the clock scene and the location its
// hours are read in. A nil location keeps local time.
func WithClockScene(selector string, loc *time.Location) Option {
	return func(s *settings) {
		s.scene = selector
		if loc != nil {
			s.location = loc
		}
	}
}

// WithAudioSlots sets the slot ids whose companion audio is relocated.
func WithAudioSlots(slots ...string) Option {
	return func(s *settings) {
		s.slots = slices.Clone(slots)
	}
}

// WithPasses sets the enabled passes. Order is fixed regardless of the
// order given here.
func WithPasses(names ...string) Option {
	return func(s *settings) {
		s.passes = slices.Clone(names)
	}
}

// WithTheme sets the Chroma style of the default highlighter.
func WithTheme(name string) Option {
	return func(s *settings) {
		s.theme = name
	}
}

// WithStyle sets the name of the base stylesheet.
func WithStyle(name string) Option {
	return func(s *settings) {
		s.style = name
	}
}

// WithAssetPath sets a directory searched for styles/<name>.css before the
// embedded styles.
func WithAssetPath(path string) Option {
	return func(s *settings) {
		s.assetPath = path
	}
}

// WithCSS appends CSS after the base stylesheet and theme.
func WithCSS(css string) Option {
	return func(s *settings) {
		s.css = css
	}
}

// WithTimeout sets the PDF printing timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("enhance: WithTimeout duration must be positive")
	}
	return func(s *settings) {
		s.timeout = d
	}
}

func (s *settings) enabled(name string) bool {
	return slices.Contains(s.passes, name)
}

// validate reports the first invalid setting.
func (s *settings) validate() error {
	for _, name := range s.passes {
		if !slices.Contains(allPasses, name) {
			return fmt.Errorf("%w: unknown pass %q", ErrInvalidOption, name)
		}
	}

	selectors := []struct{ field, value string }{
		{"scope", s.scope},
		{"reading time target", s.readingTime.Target},
		{"citation scope", s.citationScope},
		{"clock scene", s.scene},
	}
	for _, sel := range selectors {
		if strings.TrimSpace(sel.value) == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidOption, sel.field)
		}
		if _, err := cascadia.Compile(sel.value); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidOption, sel.field, sel.value, err)
		}
	}

	if s.enabled(PassReadingTime) && s.readingTime.WordsPerMinute <= 0 {
		return fmt.Errorf("%w: words per minute must be positive, got %d", ErrInvalidOption, s.readingTime.WordsPerMinute)
	}
	for _, r := range s.headings.Ranks {
		if r < 1 || r > 6 {
			return fmt.Errorf("%w: heading rank must be between 1 and 6, got %d", ErrInvalidOption, r)
		}
	}
	if s.enabled(PassImages) && len(s.images.Delays) == 0 {
		return fmt.Errorf("%w: at least one image chain delay required", ErrInvalidOption)
	}
	for _, d := range s.images.Delays {
		if d < 0 {
			return fmt.Errorf("%w: negative image chain delay %v", ErrInvalidOption, d)
		}
	}
	if s.images.MaxBytes < 0 {
		return fmt.Errorf("%w: negative image size limit", ErrInvalidOption)
	}
	for _, slot := range s.slots {
		if strings.TrimSpace(slot) == "" {
			return fmt.Errorf("%w: empty audio slot", ErrInvalidOption)
		}
	}
	if s.enabled(PassStylesheet) {
		if err := assets.ValidateAssetName(s.style); err != nil {
			return fmt.Errorf("%w: style: %v", ErrInvalidOption, err)
		}
	}
	return nil
}

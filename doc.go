// Package enhance applies the progressive enhancements of an article page
// to server-rendered HTML held in memory.
//
// # Quick Start
//
// Create an enhancer, enhance a page, and close when done:
//
//	enh, err := enhance.NewEnhancer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer enh.Close()
//
//	result, err := enh.Enhance(ctx, enhance.Input{
//	    HTML:       page,
//	    BaseDir:    "/srv/site/posts",
//	    WaitImages: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("post.enhanced.html", result.HTML, 0644)
//
// # Passes
//
// A page goes through these passes, in this order:
//
//  1. Clock: the hands of the svg#gravatar scene are set to the current time
//  2. Reading time: "<n> minutes" is written into #reading-time
//  3. Headings: h2-h6 with an id get a "§" self link
//  4. Code blocks: pre.codeblock-<tag> is labeled and highlighted with Chroma
//  5. Figures: figures get an id and a caption
//  6. Citations: blockquote[cite] gets a "Source" caption
//  7. MathJax: display wrappers are unwrapped (off by default)
//  8. Stylesheet: the base style and the Chroma theme are injected
//  9. Audio: slot audio is relocated and playback made exclusive
//  10. Images: .async-image placeholders are loaded by four delayed chains
//
// A pass that finds nothing to do is a no-op. A pass that fails is
// reported through Result.Warnings and never stops the others.
//
// # Live Pages
//
// Load returns a Page whose clock and image chains keep running:
//
//	page, err := enh.Load(ctx, r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer page.Close()
//
//	for _, t := range page.Jukebox().Tracks() {
//	    fmt.Println(t.ID(), t.Source())
//	}
//	html, err := page.HTML()
//
// # Configuration
//
// Use functional options to customize the enhancer:
//
//	enh, err := enhance.NewEnhancer(
//	    enhance.WithLogger(logger),
//	    enhance.WithScope("main article"),
//	    enhance.WithReadingTime(enhance.ReadingTime{WordsPerMinute: 250}),
//	    enhance.WithPasses(enhance.PassHeadings, enhance.PassCodeBlocks),
//	    enhance.WithTheme("monokai"),
//	)
//
// # Parallel Processing
//
// For batch runs with PDF output, use EnhancerPool so every worker prints
// with its own browser:
//
//	pool := enhance.NewEnhancerPool(4)
//	defer pool.Close()
//
//	enh, err := pool.Acquire()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Release(enh)
//
// # Errors
//
// Errors can be checked with errors.Is:
//
//	if errors.Is(err, enhance.ErrParse) {
//	    // the page could not be parsed
//	}
//
// Available sentinel errors: ErrEmptyInput, ErrParse, ErrInvalidOption,
// ErrStyleNotFound, ErrPageClosed, ErrPDFGeneration, ErrBrowserConnect,
// ErrPageCreate, ErrPageLoad.
package enhance

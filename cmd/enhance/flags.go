package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds flags tuning how a page is enhanced.
type pageFlags struct {
	scope     string
	passes    []string
	timezone  string
	style     string
	theme     string
	assetPath string
	noStyle   bool
}

// runFlags holds all flags for the run command.
type runFlags struct {
	common     commonFlags
	page       pageFlags
	output     string
	workers    int
	timeout    string
	pdf        bool
	waitImages bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	page   pageFlags
	addr   string
	watch  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output and timing")
}

// addPageFlags adds page enhancement flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.scope, "scope", "", "selector of the article body")
	fs.StringSliceVar(&f.passes, "passes", nil, "comma-separated passes to run (default from config)")
	fs.StringVar(&f.timezone, "tz", "", "IANA time zone of the clock scene")
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	fs.StringVar(&f.theme, "theme", "", "Chroma theme for code blocks")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with custom styles")
	fs.BoolVar(&f.noStyle, "no-style", false, "do not inject the stylesheet")
}

// parseRunFlags parses flags for the run command.
func parseRunFlags(args []string) (*runFlags, []string, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	f := &runFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-page timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.pdf, "pdf", false, "also print each page to PDF")
	fs.BoolVar(&f.waitImages, "wait-images", false, "wait for deferred images before writing")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printRunUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses flags for the serve command.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default from config, :8080)")
	fs.BoolVar(&f.watch, "watch", false, "reload the page when its file changes")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

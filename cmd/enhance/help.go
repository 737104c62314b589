package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: enhance <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Enhance HTML pages and write the results")
	fmt.Fprintln(w, "  serve      Serve a live enhanced page")
	fmt.Fprintln(w, "  doctor     Check the system for PDF printing")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'enhance help <command>' for details on a specific command.")
}

// printPageFlags prints the flags shared by run and serve.
func printPageFlags(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --scope <sel>         Selector of the article body (default \"main article\")")
	fmt.Fprintln(w, "      --passes <list>       Passes to run, e.g. headings,codeblocks")
	fmt.Fprintln(w, "                            Known: clock, readingtime, headings, codeblocks,")
	fmt.Fprintln(w, "                            figures, citations, mathjax, stylesheet, audio, images")
	fmt.Fprintln(w, "      --tz <zone>           IANA time zone of the clock scene")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <name>        Stylesheet name")
	fmt.Fprintln(w, "      --theme <name>        Chroma theme for code blocks")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with styles/<name>.css")
	fmt.Fprintln(w, "      --no-style            Do not inject the stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output and timing")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: enhance run <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Enhance HTML pages and write <name>.enhanced.html next to each one.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    HTML file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-page timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --pdf                 Also print each page to <name>.enhanced.pdf")
	fmt.Fprintln(w, "      --wait-images         Wait for deferred images before writing")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: enhance serve <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keep a page live and serve its current state:")
	fmt.Fprintln(w, "  GET /         Enhanced HTML (the clock moves, images fill in)")
	fmt.Fprintln(w, "  GET /status   Loaded and pending images, clock hand angles")
	fmt.Fprintln(w, "  GET /health   Liveness check")
	fmt.Fprintln(w, "  GET /metrics  Prometheus metrics")
	fmt.Fprintln(w, "  GET /ws       Live reload push (with --watch)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default \":8080\")")
	fmt.Fprintln(w, "      --watch               Reload the page when its file changes")
	fmt.Fprintln(w)
	printPageFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: enhance doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the environment and the temp directory.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdRun:
		printRunUsage(env.Stdout)
	case cmdServe:
		printServeUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: enhance version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: enhance help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

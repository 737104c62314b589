package main

import (
	"errors"
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdRun     = "run"
	cmdServe   = "serve"
	cmdDoctor  = "doctor"
	cmdVersion = "version"
	cmdHelp    = "help"
)

// ErrUnknownCommand is returned for a command name the CLI does not know.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case cmdRun:
		return runRunCmd(rest, env)
	case cmdServe:
		return runServeCmd(rest, env)
	case cmdDoctor:
		return runDoctorCmd(rest, env)
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "enhance %s\n", Version)
		return ExitSuccess
	case cmdHelp:
		return runHelp(rest, env)
	case "-h", "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: %v: %q\n", ErrUnknownCommand, cmd)
	if isHTMLName(cmd) {
		fmt.Fprintf(env.Stderr, "  hint: did you mean 'enhance run %s'?\n", cmd)
	}
	fmt.Fprintln(env.Stderr)
	printUsage(env.Stderr)
	return exitCodeFor(ErrUnknownCommand)
}

package main

import (
	"context"
	"errors"
	"os"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/config"
)

// Exit codes for the enhance CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, enhance.ErrBrowserConnect) ||
		errors.Is(err, enhance.ErrPageCreate) ||
		errors.Is(err, enhance.ErrPageLoad) ||
		errors.Is(err, enhance.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadPage) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrOutputDir) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoPages) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, enhance.ErrInvalidOption) ||
		errors.Is(err, enhance.ErrStyleNotFound) ||
		errors.Is(err, enhance.ErrEmptyInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUnknownPass) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}

// isTimeout reports whether err comes from an expired deadline.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

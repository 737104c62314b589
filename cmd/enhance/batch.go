package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrNoPages      = errors.New("no HTML pages found")
	ErrReadPage     = errors.New("failed to read page")
	ErrWriteOutput  = errors.New("failed to write output")
	ErrOutputDir    = errors.New("failed to create output directory")
	ErrPagesFailed  = errors.New("some pages failed")
	ErrEnhancerInit = errors.New("failed to initialize enhancer")
)

// batchParams groups parameters shared across the pages of a run.
type batchParams struct {
	pdf        bool
	waitImages bool
	timeout    time.Duration // Per page, 0 = none
	baseDir    string        // Empty = directory of each page
}

// PageResult holds the outcome of a single page.
type PageResult struct {
	InputPath     string
	OutputPath    string
	PDFPath       string
	Warnings      error
	ImagesPending int
	Err           error
	Duration      time.Duration
}

// enhanceBatch processes pages concurrently using the enhancer pool.
func enhanceBatch(ctx context.Context, pool Pool, pages []PageToEnhance, params *batchParams, log *zap.Logger) []PageResult {
	if len(pages) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(pages))

	results := make([]PageResult, len(pages))
	var wg sync.WaitGroup
	jobs := make(chan int, len(pages))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			enh, err := pool.Acquire()
			if err != nil {
				// Enhancer creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = PageResult{
						InputPath: pages[idx].InputPath,
						Err:       fmt.Errorf("%w: %w", ErrEnhancerInit, err),
					}
				}
				return
			}
			defer pool.Release(enh)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = PageResult{
						InputPath: pages[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = enhancePage(ctx, enh, pages[idx], params)
				log.Debug("page done",
					zap.String("input", pages[idx].InputPath),
					zap.Duration("elapsed", results[idx].Duration),
					zap.Error(results[idx].Err))
			}
		}()
	}

	for i := range pages {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// enhancePage processes a single page and returns the result.
func enhancePage(ctx context.Context, enh PageEnhancer, p PageToEnhance, params *batchParams) PageResult {
	start := time.Now()
	result := PageResult{
		InputPath:  p.InputPath,
		OutputPath: p.OutputPath,
	}
	fail := func(err error) PageResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(p.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadPage, err))
	}

	if err := os.MkdirAll(filepath.Dir(p.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrOutputDir, err))
	}

	baseDir := params.baseDir
	if baseDir == "" {
		baseDir = filepath.Dir(p.InputPath)
	}

	pageCtx := ctx
	if params.timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, params.timeout)
		defer cancel()
	}

	res, err := enh.Enhance(pageCtx, enhance.Input{
		HTML:       string(content),
		BaseDir:    baseDir,
		WaitImages: params.waitImages,
		PDF:        params.pdf,
	})
	if err != nil {
		return fail(err)
	}
	result.Warnings = res.Warnings
	result.ImagesPending = res.ImagesPending

	// #nosec G306 -- enhanced pages are meant to be readable
	if err := os.WriteFile(p.OutputPath, res.HTML, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	if params.pdf {
		result.PDFPath = fileutil.WithExtension(p.OutputPath, ".pdf")
		// #nosec G306 -- PDFs are meant to be readable
		if err := os.WriteFile(result.PDFPath, res.PDF, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed pages.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Warned    int
}

// countResults tallies succeeded, warned and failed pages.
func countResults(results []PageResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Warnings != nil:
			summary.Warned++
			summary.Succeeded++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs page results. Failures and pass warnings go
// through the logger, created files to env.Stdout.
func printResults(results []PageResult, quiet, verbose bool, env *Environment, log *zap.Logger) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			log.Error("enhance failed", zap.String("input", r.InputPath), zap.Error(r.Err))
			continue
		}
		for _, w := range multierr.Errors(r.Warnings) {
			log.Warn("pass failed", zap.String("input", r.InputPath), zap.Error(w))
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.PDFPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.PDFPath)
		}
		if r.ImagesPending > 0 {
			fmt.Fprintf(env.Stdout, "  %d deferred images left as placeholders\n", r.ImagesPending)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}

// batchError turns failed results into the error of the run. A single page
// keeps its own error so the exit code reflects the cause.
func batchError(results []PageResult, summary ResultSummary) error {
	if summary.Failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Err
	}
	var first error
	for _, r := range results {
		if r.Err != nil {
			first = r.Err
			break
		}
	}
	return fmt.Errorf("%w: %d of %d: first: %w", ErrPagesFailed, summary.Failed, len(results), first)
}

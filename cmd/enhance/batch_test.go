package main

// Notes:
// - enhanceBatch/enhancePage: exercised with a fake enhancer; real
//   enhancement is covered by the root package tests.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	enhance "github.com/alnah/go-enhance"
)

// ---------------------------------------------------------------------------
// TestEnhanceBatch - Concurrent processing and output files
// ---------------------------------------------------------------------------

func TestEnhanceBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.html", "<p>a</p>")
	writeFile(t, dir, "posts/b.htm", "<p>b</p>")
	out := filepath.Join(t.TempDir(), "out")

	pages, err := discoverPages(dir, out)
	if err != nil {
		t.Fatalf("discoverPages() error = %v", err)
	}

	enh := &fakeEnhancer{}
	pool := &fakePool{enh: enh, size: 2}
	results := enhanceBatch(context.Background(), pool, pages, &batchParams{pdf: true, waitImages: true}, zaptest.NewLogger(t))

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: Err = %v", r.InputPath, r.Err)
		}
		got, err := os.ReadFile(r.OutputPath)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.HasPrefix(string(got), "<!-- enhanced -->") {
			t.Errorf("%s: output = %q", r.OutputPath, got)
		}
		if r.PDFPath != strings.TrimSuffix(r.OutputPath, filepath.Ext(r.OutputPath))+".pdf" {
			t.Errorf("PDFPath = %q for output %q", r.PDFPath, r.OutputPath)
		}
		if _, err := os.Stat(r.PDFPath); err != nil {
			t.Errorf("PDF not written: %v", err)
		}
	}

	for _, in := range enh.calls() {
		if !in.PDF || !in.WaitImages {
			t.Errorf("input flags = pdf %v wait %v, want both", in.PDF, in.WaitImages)
		}
		if in.BaseDir != dir && in.BaseDir != filepath.Join(dir, "posts") {
			t.Errorf("BaseDir = %q, want the page directory", in.BaseDir)
		}
	}
}

func TestEnhanceBatch_Empty(t *testing.T) {
	t.Parallel()

	pool := &fakePool{enh: &fakeEnhancer{}, size: 1}
	if got := enhanceBatch(context.Background(), pool, nil, &batchParams{}, zaptest.NewLogger(t)); got != nil {
		t.Errorf("enhanceBatch(nil) = %v, want nil", got)
	}
}

func TestEnhanceBatch_AcquireError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pages := []PageToEnhance{
		{InputPath: writeFile(t, dir, "a.html", "<p>a</p>"), OutputPath: filepath.Join(dir, "a.enhanced.html")},
		{InputPath: writeFile(t, dir, "b.html", "<p>b</p>"), OutputPath: filepath.Join(dir, "b.enhanced.html")},
	}
	pool := &fakePool{size: 1, acquireErr: enhance.ErrInvalidOption}

	for _, r := range enhanceBatch(context.Background(), pool, pages, &batchParams{}, zaptest.NewLogger(t)) {
		if !errors.Is(r.Err, ErrEnhancerInit) || !errors.Is(r.Err, enhance.ErrInvalidOption) {
			t.Errorf("%s: Err = %v, want ErrEnhancerInit wrapping ErrInvalidOption", r.InputPath, r.Err)
		}
	}
}

func TestEnhanceBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pages := []PageToEnhance{
		{InputPath: writeFile(t, dir, "a.html", "<p>a</p>"), OutputPath: filepath.Join(dir, "a.enhanced.html")},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := enhanceBatch(ctx, &fakePool{enh: &fakeEnhancer{}, size: 1}, pages, &batchParams{}, zaptest.NewLogger(t))
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", results[0].Err)
	}
}

// ---------------------------------------------------------------------------
// TestEnhancePage - Single page failures
// ---------------------------------------------------------------------------

func TestEnhancePage_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "a.html", "<p>a</p>")
	blocker := writeFile(t, dir, "blocker", "file, not a directory")

	tests := []struct {
		name    string
		page    PageToEnhance
		enhErr  error
		wantErr error
	}{
		{
			name:    "missing input",
			page:    PageToEnhance{InputPath: filepath.Join(dir, "missing.html"), OutputPath: filepath.Join(dir, "x.html")},
			wantErr: ErrReadPage,
		},
		{
			name:    "output directory blocked",
			page:    PageToEnhance{InputPath: input, OutputPath: filepath.Join(blocker, "a.enhanced.html")},
			wantErr: ErrOutputDir,
		},
		{
			name:    "enhancer error is kept",
			page:    PageToEnhance{InputPath: input, OutputPath: filepath.Join(dir, "a.enhanced.html")},
			enhErr:  enhance.ErrPDFGeneration,
			wantErr: enhance.ErrPDFGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := enhancePage(context.Background(), &fakeEnhancer{err: tt.enhErr}, tt.page, &batchParams{})
			if !errors.Is(r.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", r.Err, tt.wantErr)
			}
		})
	}
}

func TestEnhancePage_TimeoutApplies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "a.html", "<p>a</p>")
	enh := &deadlineEnhancer{}

	enhancePage(context.Background(), enh, PageToEnhance{InputPath: input, OutputPath: filepath.Join(dir, "a.enhanced.html")},
		&batchParams{timeout: time.Minute})
	if !enh.hadDeadline {
		t.Error("page context has no deadline")
	}
}

type deadlineEnhancer struct {
	hadDeadline bool
}

func (d *deadlineEnhancer) Enhance(ctx context.Context, in enhance.Input) (*enhance.Result, error) {
	_, d.hadDeadline = ctx.Deadline()
	return &enhance.Result{HTML: []byte(in.HTML)}, nil
}

// ---------------------------------------------------------------------------
// TestCountResults / TestBatchError / TestPrintResults - Reporting
// ---------------------------------------------------------------------------

func TestCountResults(t *testing.T) {
	t.Parallel()

	results := []PageResult{
		{InputPath: "a"},
		{InputPath: "b", Warnings: errors.New("pass failed")},
		{InputPath: "c", Err: errors.New("boom")},
	}
	got := countResults(results)
	want := ResultSummary{Succeeded: 2, Failed: 1, Warned: 1}
	if got != want {
		t.Errorf("countResults() = %+v, want %+v", got, want)
	}
}

func TestBatchError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []PageResult
		wantNil bool
		wantErr []error
	}{
		{name: "all succeeded", results: []PageResult{{}, {}}, wantNil: true},
		{
			name:    "single page keeps its error",
			results: []PageResult{{Err: enhance.ErrBrowserConnect}},
			wantErr: []error{enhance.ErrBrowserConnect},
		},
		{
			name:    "batch wraps the first error",
			results: []PageResult{{}, {Err: ErrReadPage}, {Err: ErrWriteOutput}},
			wantErr: []error{ErrPagesFailed, ErrReadPage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := batchError(tt.results, countResults(tt.results))
			if tt.wantNil {
				if err != nil {
					t.Errorf("batchError() = %v, want nil", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("batchError() = %v, want %v in chain", err, want)
				}
			}
		})
	}
}

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []PageResult{
		{InputPath: "a.html", OutputPath: "a.enhanced.html", PDFPath: "a.enhanced.pdf"},
		{InputPath: "b.html", OutputPath: "b.enhanced.html", ImagesPending: 2},
		{InputPath: "c.html", Err: ErrReadPage},
	}

	tests := []struct {
		name      string
		quiet     bool
		verbose   bool
		contains  []string
		wantEmpty bool
	}{
		{
			name:     "normal",
			contains: []string{"Created a.enhanced.html", "Created a.enhanced.pdf", "2 deferred images", "2 succeeded, 1 failed"},
		},
		{name: "verbose", verbose: true, contains: []string{"a.html -> a.enhanced.html ("}},
		{name: "quiet", quiet: true, wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := newTestEnv(nil)
			summary := printResults(results, tt.quiet, tt.verbose, env, zaptest.NewLogger(t))
			if summary.Failed != 1 {
				t.Errorf("Failed = %d, want 1", summary.Failed)
			}
			out := stdout.String()
			if tt.wantEmpty && out != "" {
				t.Errorf("stdout = %q, want empty", out)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("stdout missing %q:\n%s", want, out)
				}
			}
		})
	}
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	enhance "github.com/alnah/go-enhance"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake enhancer, pool and environment
// ---------------------------------------------------------------------------

// fakeEnhancer records inputs and returns the page prefixed with a marker.
type fakeEnhancer struct {
	mu     sync.Mutex
	inputs []enhance.Input
	err    error
	warn   error
}

func (f *fakeEnhancer) Enhance(ctx context.Context, in enhance.Input) (*enhance.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	res := &enhance.Result{HTML: []byte("<!-- enhanced -->" + in.HTML), Warnings: f.warn}
	if in.PDF {
		res.PDF = []byte("%PDF-1.4 fake")
	}
	return res, nil
}

func (f *fakeEnhancer) calls() []enhance.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]enhance.Input(nil), f.inputs...)
}

// fakePool hands out a single shared enhancer.
type fakePool struct {
	enh        PageEnhancer
	size       int
	acquireErr error

	mu     sync.Mutex
	closed bool
}

func (p *fakePool) Acquire() (PageEnhancer, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.enh, nil
}

func (p *fakePool) Release(PageEnhancer) {}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// newTestEnv returns an environment with captured output, an empty
// process environment and pool as the enhancer pool.
func newTestEnv(pool Pool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:     func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		Stdout:  stdout,
		Stderr:  stderr,
		Getenv:  func(string) string { return "" },
		Environ: func() []string { return nil },
		NewPool: func(int, ...enhance.Option) Pool { return pool },
	}
	return env, stdout, stderr
}

// mapGetenv looks variables up in m.
func mapGetenv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// writeFile creates dir/name with content, creating parents.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

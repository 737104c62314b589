package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/config"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains []string
		noHint   bool
	}{
		{name: "timeout", err: fmt.Errorf("enhancing: %w", context.DeadlineExceeded), contains: []string{"--timeout"}},
		{name: "config not found", err: config.ErrConfigNotFound, contains: []string{"--config"}},
		{name: "style not found", err: enhance.ErrStyleNotFound, contains: []string{"available: enhance"}},
		{name: "output dir", err: ErrOutputDir, contains: []string{"writable"}},
		{name: "no pages", err: ErrNoPages, contains: []string{".html"}},
		{name: "no hint", err: ErrInvalidTimeout, noHint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatError(tt.err, "")
			if !strings.HasPrefix(got, "error: ") {
				t.Errorf("formatError() = %q, want error prefix", got)
			}
			if tt.noHint && strings.Contains(got, "hint:") {
				t.Errorf("formatError() = %q, want no hint", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatError() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

func TestUserConfigPaths(t *testing.T) {
	t.Parallel()

	if got := userConfigPaths(""); got != nil {
		t.Errorf("userConfigPaths(\"\") = %v, want nil", got)
	}
	if got := userConfigPaths("./blog.yaml"); got != nil {
		t.Errorf("userConfigPaths(path) = %v, want nil", got)
	}
	for _, p := range userConfigPaths("blog") {
		if !strings.Contains(p, "go-enhance") {
			t.Errorf("path %q outside the go-enhance directory", p)
		}
	}
}

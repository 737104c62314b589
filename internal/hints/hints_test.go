package hints

// Notes:
// - ForBrowserConnect cases cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable

import (
	"strings"
	"testing"
)

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		noSandbox   string
		browserBin  string
		wantSandbox bool
		wantBin     bool
	}{
		{name: "in CI", ci: "true", wantSandbox: true, wantBin: true},
		{name: "in Docker", container: true, wantSandbox: true, wantBin: true},
		{name: "sandbox already set", container: true, noSandbox: "1", wantBin: true},
		{name: "browser bin already set", browserBin: "/usr/bin/chrome"},
		{name: "all configured", container: true, ci: "true", noSandbox: "1", browserBin: "/usr/bin/chrome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("JENKINS_URL", "")
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v (hint %q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v (hint %q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("expected empty hint, got %q", hint)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{name: "no paths", paths: nil, contains: "--config"},
		{
			name:     "user config path suggested",
			paths:    []string{"./blog.yaml", "/home/me/.config/go-enhance/blog.yaml"},
			contains: "create /home/me/.config/go-enhance/blog.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("ForConfigNotFound() = %q, want it to contain %q", hint, tt.contains)
			}
		})
	}
}

func TestForStyleNotFound(t *testing.T) {
	t.Parallel()

	if hint := ForStyleNotFound(nil); hint != "" {
		t.Errorf("ForStyleNotFound(nil) = %q, want empty", hint)
	}
	hint := ForStyleNotFound([]string{"enhance", "print"})
	if !strings.Contains(hint, "enhance, print") {
		t.Errorf("ForStyleNotFound() = %q, want style list", hint)
	}
	if !strings.Contains(hint, "--asset-path") {
		t.Errorf("ForStyleNotFound() = %q, want --asset-path mention", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForNoInput(),
		ForConfigNotFound(nil),
		ForStyleNotFound([]string{"enhance"}),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Passes.MathJax.Enabled {
		t.Error("Passes.MathJax.Enabled = true, want false")
	}
	if !cfg.Passes.CodeBlocks.Enabled || !cfg.Images.Enabled || !cfg.Clock.Enabled {
		t.Error("core passes disabled by default")
	}
	want := []time.Duration{20 * time.Millisecond, 15 * time.Millisecond, 10 * time.Millisecond, 5 * time.Millisecond}
	got := cfg.Images.Delays()
	if len(got) != len(want) {
		t.Fatalf("Delays() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Delays()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty input keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Scope != "main article" {
					t.Errorf("Scope = %q", cfg.Scope)
				}
			},
		},
		{
			name: "values override defaults",
			yaml: "scope: article\n" +
				"theme: monokai\n" +
				"passes:\n" +
				"  readingTime:\n" +
				"    wordsPerMinute: 250\n" +
				"  mathjax:\n" +
				"    enabled: true\n" +
				"images:\n" +
				"  delaysMs: [1, 2]\n" +
				"clock:\n" +
				"  timezone: UTC\n" +
				"pdf:\n" +
				"  timeout: 45s\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Scope != "article" || cfg.Theme != "monokai" {
					t.Errorf("Scope, Theme = %q, %q", cfg.Scope, cfg.Theme)
				}
				if cfg.Passes.ReadingTime.WordsPerMinute != 250 {
					t.Errorf("WordsPerMinute = %d, want 250", cfg.Passes.ReadingTime.WordsPerMinute)
				}
				if !cfg.Passes.ReadingTime.Enabled {
					t.Error("ReadingTime.Enabled lost its default")
				}
				if cfg.Passes.ReadingTime.Target != "#reading-time" {
					t.Errorf("Target = %q, want default", cfg.Passes.ReadingTime.Target)
				}
				if !cfg.Passes.MathJax.Enabled {
					t.Error("MathJax.Enabled = false, want true")
				}
				if len(cfg.Images.DelaysMs) != 2 {
					t.Errorf("DelaysMs = %v, want [1 2]", cfg.Images.DelaysMs)
				}
				if time.Duration(cfg.PDF.Timeout) != 45*time.Second {
					t.Errorf("PDF.Timeout = %v, want 45s", time.Duration(cfg.PDF.Timeout))
				}
				loc, err := cfg.Clock.Location()
				if err != nil || loc != time.UTC {
					t.Errorf("Location() = %v, %v", loc, err)
				}
			},
		},
		{name: "unknown field", yaml: "scope: article\nbogus: 1\n", wantErr: ErrConfigParse},
		{name: "unknown nested field", yaml: "passes:\n  headings:\n    depth: 3\n", wantErr: ErrConfigParse},
		{name: "bad duration", yaml: "timeout: soon\n", wantErr: ErrConfigParse},
		{name: "invalid selector", yaml: "scope: \"main[\"\n", wantErr: ErrInvalidConfig},
		{name: "empty scene", yaml: "clock:\n  scene: \"\"\n", wantErr: ErrInvalidConfig},
		{name: "zero reading rate", yaml: "passes:\n  readingTime:\n    wordsPerMinute: 0\n", wantErr: ErrInvalidConfig},
		{name: "rank out of range", yaml: "passes:\n  headings:\n    ranks: [2, 7]\n", wantErr: ErrInvalidConfig},
		{name: "negative delay", yaml: "images:\n  delaysMs: [5, -1]\n", wantErr: ErrInvalidConfig},
		{name: "no delays", yaml: "images:\n  delaysMs: []\n", wantErr: ErrInvalidConfig},
		{name: "unknown timezone", yaml: "clock:\n  timezone: Mars/Olympus\n", wantErr: ErrInvalidConfig},
		{name: "style with path", yaml: "style: ../evil\n", wantErr: ErrInvalidConfig},
		{name: "blank slot", yaml: "audio:\n  slots: [intro, \" \"]\n", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParse_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("scope: article\n" + strings.Repeat("#", MaxInputSize))
	if _, err := Parse(data); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Parse() error = %v, want ErrInputTooLarge", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(path, []byte("workers: 3\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "explicit path", input: path},
		{name: "empty name", input: "", wantErr: ErrEmptyConfigName},
		{name: "missing path", input: filepath.Join(dir, "none.yaml"), wantErr: ErrConfigNotFound},
		{name: "missing name", input: "no-such-config-name-xyz", wantErr: ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadConfig(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig(%q) unexpected error: %v", tt.input, err)
			}
			if cfg.Workers != 3 {
				t.Errorf("Workers = %d, want 3", cfg.Workers)
			}
		})
	}
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "delaysMs") {
		t.Errorf("Marshal() output lacks yaml field names:\n%s", data)
	}
	if _, err := Parse(data); err != nil {
		t.Errorf("Parse(Marshal(default)) error = %v", err)
	}
}

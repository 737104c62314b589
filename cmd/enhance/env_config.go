package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-enhance/internal/config"
)

// envPrefix starts every environment variable read by the CLI.
const envPrefix = "ENHANCE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // ENHANCE_CONFIG: config file name or path
	Style      string        // ENHANCE_STYLE: stylesheet name
	Theme      string        // ENHANCE_THEME: Chroma theme
	Timeout    time.Duration // ENHANCE_TIMEOUT: per-page timeout
	OutputDir  string        // ENHANCE_OUTPUT_DIR: default output directory
	Workers    int           // ENHANCE_WORKERS: parallel workers
	Timezone   string        // ENHANCE_TZ: clock scene time zone
	Addr       string        // ENHANCE_ADDR: serve listen address
}

// knownEnvVars lists valid ENHANCE_* environment variables.
var knownEnvVars = map[string]bool{
	"ENHANCE_CONFIG":     true,
	"ENHANCE_STYLE":      true,
	"ENHANCE_THEME":      true,
	"ENHANCE_TIMEOUT":    true,
	"ENHANCE_OUTPUT_DIR": true,
	"ENHANCE_WORKERS":    true,
	"ENHANCE_TZ":         true,
	"ENHANCE_ADDR":       true,
	"ENHANCE_CONTAINER":  true,
}

// dotEnvFiles are looked up in the working directory; the first one
// that parses is used.
var dotEnvFiles = []string{".env", ".env.local"}

// withDotEnv returns a lookup that falls back to the first readable file
// in paths. Process variables win over file values.
func withDotEnv(getenv func(string) string, paths ...string) func(string) string {
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		return func(key string) string {
			if v := getenv(key); v != "" {
				return v
			}
			return vars[key]
		}
	}
	return getenv
}

// loadEnvConfig reads configuration through getenv. Malformed numbers
// and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("ENHANCE_CONFIG"),
		Style:      getenv("ENHANCE_STYLE"),
		Theme:      getenv("ENHANCE_THEME"),
		OutputDir:  getenv("ENHANCE_OUTPUT_DIR"),
		Timezone:   getenv("ENHANCE_TZ"),
		Addr:       getenv("ENHANCE_ADDR"),
	}

	if timeout := getenv("ENHANCE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("ENHANCE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars warns about ENHANCE_* variables that are not read,
// which are usually typos.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig lays environment values over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by the merge of each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.Style = env.Style
	}
	if env.Theme != "" {
		cfg.Theme = env.Theme
	}
	if env.Timeout > 0 {
		cfg.Timeout = config.Duration(env.Timeout)
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Timezone != "" {
		cfg.Clock.Timezone = env.Timezone
	}
	if env.Addr != "" {
		cfg.Serve.Addr = env.Addr
	}
}

package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	enhance "github.com/alnah/go-enhance"
	"github.com/alnah/go-enhance/internal/config"
)

// Sentinel errors for flag and config resolution.
var (
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrUnknownPass        = errors.New("unknown pass")
)

// loadConfig resolves the config name (flag, then ENHANCE_CONFIG), loads
// it over the defaults and applies the environment overrides.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// passToggles maps each pass name to its switch in cfg.
func passToggles(cfg *config.Config) map[string]*bool {
	return map[string]*bool{
		enhance.PassClock:       &cfg.Clock.Enabled,
		enhance.PassReadingTime: &cfg.Passes.ReadingTime.Enabled,
		enhance.PassHeadings:    &cfg.Passes.Headings.Enabled,
		enhance.PassCodeBlocks:  &cfg.Passes.CodeBlocks.Enabled,
		enhance.PassFigures:     &cfg.Passes.Figures.Enabled,
		enhance.PassCitations:   &cfg.Passes.Citations.Enabled,
		enhance.PassMathJax:     &cfg.Passes.MathJax.Enabled,
		enhance.PassStylesheet:  &cfg.Passes.Stylesheet.Enabled,
		enhance.PassAudio:       &cfg.Audio.Enabled,
		enhance.PassImages:      &cfg.Images.Enabled,
	}
}

// enabledPasses lists the passes switched on in cfg, in page order.
func enabledPasses(cfg *config.Config) []string {
	toggles := passToggles(cfg)
	var out []string
	for _, name := range enhance.AllPasses() {
		if *toggles[name] {
			out = append(out, name)
		}
	}
	return out
}

// applyPassList enables exactly the named passes.
func applyPassList(cfg *config.Config, names []string) error {
	toggles := passToggles(cfg)
	for _, name := range names {
		if _, ok := toggles[name]; !ok {
			return fmt.Errorf("%w: %q (known: %v)", ErrUnknownPass, name, enhance.AllPasses())
		}
	}
	for name, on := range toggles {
		*on = slices.Contains(names, name)
	}
	return nil
}

// mergePageFlags applies page flags over cfg. CLI wins.
func mergePageFlags(f *pageFlags, cfg *config.Config) error {
	if f.scope != "" {
		cfg.Scope = f.scope
	}
	if f.timezone != "" {
		cfg.Clock.Timezone = f.timezone
	}
	if f.style != "" {
		cfg.Style = f.style
	}
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if len(f.passes) > 0 {
		if err := applyPassList(cfg, f.passes); err != nil {
			return err
		}
	}
	if f.noStyle {
		cfg.Passes.Stylesheet.Enabled = false
	}
	return nil
}

// mergeRunFlags applies run flags over cfg and validates the result.
func mergeRunFlags(f *runFlags, cfg *config.Config) error {
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if err := mergePageFlags(&f.page, cfg); err != nil {
		return err
	}
	if f.output != "" {
		cfg.Output.DefaultDir = f.output
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.timeout != "" {
		d, err := parseTimeout(f.timeout)
		if err != nil {
			return err
		}
		cfg.Timeout = config.Duration(d)
	}
	if f.pdf {
		cfg.PDF.Enabled = true
	}
	if f.waitImages {
		cfg.Output.WaitImages = true
	}
	return cfg.Validate()
}

// parseTimeout parses a positive Go duration.
func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q: must be positive", ErrInvalidTimeout, s)
	}
	return d, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > enhance.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, enhance.MaxPoolSize)
	}
	return nil
}

// buildOptions maps a validated config to enhancer options.
func buildOptions(cfg *config.Config, log *zap.Logger) ([]enhance.Option, error) {
	loc, err := cfg.Clock.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: clock.timezone: %v", config.ErrInvalidConfig, err)
	}

	opts := []enhance.Option{
		enhance.WithLogger(log),
		enhance.WithPasses(enabledPasses(cfg)...),
		enhance.WithScope(cfg.Scope),
		enhance.WithTheme(cfg.Theme),
		enhance.WithStyle(cfg.Style),
		enhance.WithAssetPath(cfg.Assets.BasePath),
		enhance.WithHeadings(enhance.Headings{
			Ranks:        cfg.Passes.Headings.Ranks,
			ExcludeClass: cfg.Passes.Headings.ExcludeClass,
		}),
		enhance.WithReadingTime(enhance.ReadingTime{
			Target:         cfg.Passes.ReadingTime.Target,
			WordsPerMinute: cfg.Passes.ReadingTime.WordsPerMinute,
		}),
		enhance.WithFigurePrefix(cfg.Passes.Figures.IDPrefix),
		enhance.WithCitationScope(cfg.Passes.Citations.Scope),
		enhance.WithImages(enhance.Images{
			Delays:   cfg.Images.Delays(),
			BaseDir:  cfg.Images.BaseDir,
			MaxBytes: cfg.Images.MaxBytes,
		}),
		enhance.WithClockScene(cfg.Clock.Scene, loc),
		enhance.WithAudioSlots(cfg.Audio.Slots...),
	}
	if cfg.PDF.Timeout > 0 {
		opts = append(opts, enhance.WithTimeout(time.Duration(cfg.PDF.Timeout)))
	}
	return opts, nil
}

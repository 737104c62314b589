// Package config loads the YAML settings of the enhance command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/goccy/go-yaml"

	"github.com/alnah/go-enhance/internal/assets"
	"github.com/alnah/go-enhance/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInputTooLarge   = errors.New("config exceeds maximum size")
	ErrInvalidConfig   = errors.New("invalid config")
)

// MaxInputSize limits the size of a config file.
const MaxInputSize = 1 << 20

// appDir is the directory searched under the user config directory.
const appDir = "go-enhance"

// Config holds every setting of an enhancement run.
type Config struct {
	Scope   string       `yaml:"scope"`
	Style   string       `yaml:"style"`
	Theme   string       `yaml:"theme"`
	Assets  AssetsConfig `yaml:"assets"`
	Output  OutputConfig `yaml:"output"`
	Passes  PassesConfig `yaml:"passes"`
	Audio   AudioConfig  `yaml:"audio"`
	Images  ImagesConfig `yaml:"images"`
	Clock   ClockConfig  `yaml:"clock"`
	PDF     PDFConfig    `yaml:"pdf"`
	Workers int          `yaml:"workers"`
	Timeout Duration     `yaml:"timeout"`
	Serve   ServeConfig  `yaml:"serve"`
}

// AssetsConfig locates custom stylesheets.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded styles only
}

// OutputConfig defines where results are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source
	WaitImages bool   `yaml:"waitImages"`
}

// PassesConfig toggles and tunes the document passes.
type PassesConfig struct {
	ReadingTime ReadingTimeConfig `yaml:"readingTime"`
	Headings    HeadingsConfig    `yaml:"headings"`
	CodeBlocks  Toggle            `yaml:"codeBlocks"`
	Figures     FiguresConfig     `yaml:"figures"`
	Citations   CitationsConfig   `yaml:"citations"`
	MathJax     Toggle            `yaml:"mathjax"`
	Stylesheet  Toggle            `yaml:"stylesheet"`
}

// Toggle switches a pass without settings.
type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

// ReadingTimeConfig tunes the reading time estimate.
type ReadingTimeConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Target         string `yaml:"target"`
	WordsPerMinute int    `yaml:"wordsPerMinute"`
}

// HeadingsConfig tunes heading anchors.
type HeadingsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Ranks        []int  `yaml:"ranks"`
	ExcludeClass string `yaml:"excludeClass"`
}

// FiguresConfig tunes figure numbering.
type FiguresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	IDPrefix string `yaml:"idPrefix"`
}

// CitationsConfig tunes blockquote citations.
type CitationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Scope   string `yaml:"scope"`
}

// AudioConfig defines the audio slots.
type AudioConfig struct {
	Enabled bool     `yaml:"enabled"`
	Slots   []string `yaml:"slots"`
}

// ImagesConfig tunes deferred image loading.
type ImagesConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DelaysMs []int  `yaml:"delaysMs"`
	BaseDir  string `yaml:"baseDir"`  // Empty = directory of the page
	MaxBytes int64  `yaml:"maxBytes"` // 0 = loader default
}

// ClockConfig defines the clock scene.
type ClockConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Scene    string `yaml:"scene"`
	Timezone string `yaml:"timezone"` // IANA name, empty = local time
}

// PDFConfig defines the optional PDF snapshot.
type PDFConfig struct {
	Enabled bool     `yaml:"enabled"`
	Timeout Duration `yaml:"timeout"`
}

// ServeConfig defines the preview server.
type ServeConfig struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"` // reload the page when its file changes
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"'`)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.BytesMarshaler.
func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Delays converts the configured chain delays.
func (c ImagesConfig) Delays() []time.Duration {
	out := make([]time.Duration, len(c.DelaysMs))
	for i, ms := range c.DelaysMs {
		out[i] = time.Duration(ms) * time.Millisecond
	}
	return out
}

// Location resolves the clock timezone.
func (c ClockConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DefaultConfig returns the settings of an article page: every pass on
// except the MathJax unwrap.
func DefaultConfig() *Config {
	return &Config{
		Scope: "main article",
		Style: assets.DefaultStyle,
		Theme: "github",
		Passes: PassesConfig{
			ReadingTime: ReadingTimeConfig{Enabled: true, Target: "#reading-time", WordsPerMinute: 200},
			Headings:    HeadingsConfig{Enabled: true, Ranks: []int{2, 3, 4, 5, 6}, ExcludeClass: "subtitle"},
			CodeBlocks:  Toggle{Enabled: true},
			Figures:     FiguresConfig{Enabled: true, IDPrefix: "figure-"},
			Citations:   CitationsConfig{Enabled: true, Scope: "article"},
			MathJax:     Toggle{Enabled: false},
			Stylesheet:  Toggle{Enabled: true},
		},
		Audio:   AudioConfig{Enabled: true, Slots: []string{"intro", "outro"}},
		Images:  ImagesConfig{Enabled: true, DelaysMs: []int{20, 15, 10, 5}},
		Clock:   ClockConfig{Enabled: true, Scene: "svg#gravatar"},
		PDF:     PDFConfig{Timeout: Duration(30 * time.Second)},
		Timeout: Duration(2 * time.Minute),
		Serve:   ServeConfig{Addr: ":8080"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	selectors := []struct{ field, value string }{
		{"scope", c.Scope},
		{"passes.readingTime.target", c.Passes.ReadingTime.Target},
		{"passes.citations.scope", c.Passes.Citations.Scope},
		{"clock.scene", c.Clock.Scene},
	}
	for _, s := range selectors {
		if err := validateSelector(s.field, s.value); err != nil {
			return err
		}
	}

	if c.Passes.Stylesheet.Enabled {
		if err := assets.ValidateAssetName(c.Style); err != nil {
			return fmt.Errorf("%w: style: %v", ErrInvalidConfig, err)
		}
	}
	if c.Passes.ReadingTime.Enabled && c.Passes.ReadingTime.WordsPerMinute <= 0 {
		return fmt.Errorf("%w: passes.readingTime.wordsPerMinute: must be positive, got %d",
			ErrInvalidConfig, c.Passes.ReadingTime.WordsPerMinute)
	}
	for _, r := range c.Passes.Headings.Ranks {
		if r < 1 || r > 6 {
			return fmt.Errorf("%w: passes.headings.ranks: must be between 1 and 6, got %d", ErrInvalidConfig, r)
		}
	}
	if strings.ContainsAny(c.Passes.Headings.ExcludeClass, " .#") {
		return fmt.Errorf("%w: passes.headings.excludeClass: %q is not a class name",
			ErrInvalidConfig, c.Passes.Headings.ExcludeClass)
	}
	for i, slot := range c.Audio.Slots {
		if strings.TrimSpace(slot) == "" {
			return fmt.Errorf("%w: audio.slots[%d]: empty slot name", ErrInvalidConfig, i)
		}
	}
	if c.Images.Enabled && len(c.Images.DelaysMs) == 0 {
		return fmt.Errorf("%w: images.delaysMs: at least one delay required", ErrInvalidConfig)
	}
	for i, ms := range c.Images.DelaysMs {
		if ms < 0 {
			return fmt.Errorf("%w: images.delaysMs[%d]: must not be negative, got %d", ErrInvalidConfig, i, ms)
		}
	}
	if c.Images.MaxBytes < 0 {
		return fmt.Errorf("%w: images.maxBytes: must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Clock.Location(); err != nil {
		return fmt.Errorf("%w: clock.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Timeout < 0 || c.PDF.Timeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}

func validateSelector(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s: empty selector", ErrInvalidConfig, field)
	}
	if _, err := cascadia.Compile(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// Values from the file are laid over DefaultConfig. A name without path
// separators is searched in standard locations.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig, rejecting unknown fields, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// resolveConfigPath searches name.yaml then name.yml in the current
// directory, then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		local := name + ext
		if fileutil.FileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			p := filepath.Join(dir, appDir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

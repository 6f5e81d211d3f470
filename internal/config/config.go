// Package config handles configuration loading, validation and hot reload
// for digitpad.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"digitpad/internal/logging"
	"digitpad/internal/pipeline"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete client configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	Classifier ClassifierConfig `toml:"classifier" json:"classifier" yaml:"classifier"`
	Canvas     CanvasConfig     `toml:"canvas" json:"canvas" yaml:"canvas"`
	Debounce   DebounceConfig   `toml:"debounce" json:"debounce" yaml:"debounce"`
	Pipeline   PipelineConfig   `toml:"pipeline" json:"pipeline" yaml:"pipeline"`
	Logging    LoggingConfig    `toml:"logging" json:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// ClassifierConfig locates the remote classifier.
type ClassifierConfig struct {
	// BaseURL is the classifier origin. Empty selects the local default.
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each request. Zero disables the timeout.
	TimeoutSec int `toml:"timeout_sec" json:"timeout_sec" yaml:"timeout_sec"`
}

// CanvasConfig holds drawing surface settings.
type CanvasConfig struct {
	Width         int     `toml:"width" json:"width" yaml:"width"`
	Height        int     `toml:"height" json:"height" yaml:"height"`
	BrushWidth    float64 `toml:"brush_width" json:"brush_width" yaml:"brush_width"`
	TemplateGuide bool    `toml:"template_guide" json:"template_guide" yaml:"template_guide"`
}

// DebounceConfig holds the quiescence window after a stroke ends.
type DebounceConfig struct {
	QuiescenceMs int `toml:"quiescence_ms" json:"quiescence_ms" yaml:"quiescence_ms"`
}

// PipelineConfig lists the image stages in application order.
type PipelineConfig struct {
	Stages []StageConfig `toml:"stages" json:"stages" yaml:"stages"`
}

// StageConfig is one pipeline stage.
type StageConfig struct {
	Name     string  `toml:"name" json:"name" yaml:"name"`
	Strength float64 `toml:"strength,omitempty" json:"strength,omitempty" yaml:"strength,omitempty"`
	Disabled bool    `toml:"disabled,omitempty" json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	FilePath   string `toml:"file_path" json:"file_path" yaml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress" yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" json:"addr" yaml:"addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	specs := pipeline.DefaultSpecs()
	stages := make([]StageConfig, len(specs))
	for i, s := range specs {
		stages[i] = StageConfig{Name: s.Name, Strength: s.Strength, Disabled: s.Disabled}
	}

	return &Config{
		Version: Version,
		Classifier: ClassifierConfig{
			BaseURL:    "",
			TimeoutSec: 10,
		},
		Canvas: CanvasConfig{
			Width:      280,
			Height:     280,
			BrushWidth: 15,
		},
		Debounce: DebounceConfig{QuiescenceMs: 500},
		Pipeline: PipelineConfig{Stages: stages},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   logging.DefaultLogPath(),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// Quiescence returns the debounce window.
func (c *Config) Quiescence() time.Duration {
	return time.Duration(c.Debounce.QuiescenceMs) * time.Millisecond
}

// Timeout returns the classifier request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSec) * time.Second
}

// StageSpecs converts the pipeline section for pipeline.Build.
func (c *Config) StageSpecs() []pipeline.StageSpec {
	specs := make([]pipeline.StageSpec, len(c.Pipeline.Stages))
	for i, s := range c.Pipeline.Stages {
		specs[i] = pipeline.StageSpec{Name: s.Name, Strength: s.Strength, Disabled: s.Disabled}
	}
	return specs
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = c.Logging.Output
	if c.Logging.FilePath != "" {
		lc.FilePath = c.Logging.FilePath
	}
	lc.MaxSize = int64(c.Logging.MaxSizeMB)
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAge = c.Logging.MaxAgeDays
	lc.Compress = c.Logging.Compress
	return lc, nil
}

// ApplyEnvOverrides applies DIGITPAD_* environment variables. Unparseable
// numeric values are ignored and left for validation to report.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DIGITPAD_CLASSIFIER_URL"); v != "" {
		c.Classifier.BaseURL = v
	}
	if v, ok := envInt("DIGITPAD_CLASSIFIER_TIMEOUT_SEC"); ok {
		c.Classifier.TimeoutSec = v
	}
	if v, ok := envInt("DIGITPAD_DEBOUNCE_MS"); ok {
		c.Debounce.QuiescenceMs = v
	}
	if v := os.Getenv("DIGITPAD_TEMPLATE_GUIDE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Canvas.TemplateGuide = b
		}
	}
	if v := os.Getenv("DIGITPAD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DIGITPAD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DIGITPAD_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("DIGITPAD_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
		c.Metrics.Enabled = true
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Pipeline.Stages = append([]StageConfig(nil), c.Pipeline.Stages...)
	return &clone
}

func (c *Config) String() string {
	return fmt.Sprintf("digitpad config v%d (classifier=%q, debounce=%dms, stages=%d)",
		c.Version, c.Classifier.BaseURL, c.Debounce.QuiescenceMs, len(c.Pipeline.Stages))
}

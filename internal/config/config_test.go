package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"digitpad/internal/logging"
	"digitpad/internal/pipeline"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}

	if cfg.Quiescence() != 500*time.Millisecond {
		t.Errorf("expected 500ms quiescence, got %v", cfg.Quiescence())
	}
	if cfg.Canvas.Width != 280 || cfg.Canvas.Height != 280 || cfg.Canvas.BrushWidth != 15 {
		t.Errorf("unexpected canvas defaults %+v", cfg.Canvas)
	}
	if cfg.Classifier.BaseURL != "" {
		t.Errorf("expected empty base url, got %q", cfg.Classifier.BaseURL)
	}

	p, err := pipeline.Build(cfg.StageSpecs())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"flatten", "invert", "contrast"}
	if got := p.Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("default stages %v, want %v", got, want)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("DIGITPAD_CONFIG_DIR", "/etc/digitpad")
	if got := ConfigPath(); got != filepath.Join("/etc/digitpad", "config.toml") {
		t.Errorf("ConfigPath = %s", got)
	}
}

func TestLoadNonexistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Debounce.QuiescenceMs != 500 {
		t.Errorf("expected defaults, got %+v", cfg.Debounce)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "config.toml", `
version = 1
[classifier]
base_url = "http://classifier:9000"
[debounce]
quiescence_ms = 250
[[pipeline.stages]]
name = "flatten"
[[pipeline.stages]]
name = "invert"
[[pipeline.stages]]
name = "contrast"
strength = 40.0
`},
		{"json", "config.json", `{
  "version": 1,
  "classifier": {"base_url": "http://classifier:9000"},
  "debounce": {"quiescence_ms": 250},
  "pipeline": {"stages": [{"name": "flatten"}, {"name": "invert"}, {"name": "contrast", "strength": 40}]}
}`},
		{"yaml", "config.yaml", `
version: 1
classifier:
  base_url: http://classifier:9000
debounce:
  quiescence_ms: 250
pipeline:
  stages:
    - name: flatten
    - name: invert
    - name: contrast
      strength: 40
`},
		{"autodetect", "digitpad.conf", `
version: 1
classifier:
  base_url: http://classifier:9000
debounce:
  quiescence_ms: 250
pipeline:
  stages: [{name: flatten}, {name: invert}, {name: contrast, strength: 40}]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Classifier.BaseURL != "http://classifier:9000" {
				t.Errorf("base url %q", cfg.Classifier.BaseURL)
			}
			if cfg.Debounce.QuiescenceMs != 250 {
				t.Errorf("quiescence %d", cfg.Debounce.QuiescenceMs)
			}
			// untouched sections keep their defaults
			if cfg.Canvas.BrushWidth != 15 {
				t.Errorf("brush width %v", cfg.Canvas.BrushWidth)
			}
			want := []StageConfig{{Name: "flatten"}, {Name: "invert"}, {Name: "contrast", Strength: 40}}
			if !reflect.DeepEqual(cfg.Pipeline.Stages, want) {
				t.Errorf("stages %+v, want %+v", cfg.Pipeline.Stages, want)
			}
		})
	}
}

func TestLoadKeepsDefaultStagesWhenUnset(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.toml", "version = 1\n[canvas]\ntemplate_guide = true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Canvas.TemplateGuide {
		t.Error("template guide not loaded")
	}
	if !reflect.DeepEqual(cfg.Pipeline.Stages, DefaultConfig().Pipeline.Stages) {
		t.Errorf("stages %+v", cfg.Pipeline.Stages)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"version", func(c *Config) { c.Version = 9 }, "version"},
		{"url", func(c *Config) { c.Classifier.BaseURL = "localhost:8080" }, "classifier.base_url"},
		{"timeout", func(c *Config) { c.Classifier.TimeoutSec = -1 }, "classifier.timeout_sec"},
		{"canvas", func(c *Config) { c.Canvas.Width = 10 }, "canvas.width"},
		{"brush", func(c *Config) { c.Canvas.BrushWidth = 0 }, "canvas.brush_width"},
		{"debounce", func(c *Config) { c.Debounce.QuiescenceMs = 60000 }, "debounce.quiescence_ms"},
		{"unknown stage", func(c *Config) { c.Pipeline.Stages = []StageConfig{{Name: "sharpen"}} }, "pipeline.stages[0].name"},
		{"contrast range", func(c *Config) { c.Pipeline.Stages = []StageConfig{{Name: "contrast", Strength: 300}} }, "pipeline.stages[0]"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log file", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, "logging.file_path"},
		{"metrics", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "metrics.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not match ErrInvalidConfig", err)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if fields := verrs.Fields(); len(fields) != 1 || fields[0] != tt.field {
				t.Errorf("fields %v, want [%s]", fields, tt.field)
			}
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "version = 1\n[debounce]\nquiescence_ms = -5\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}

	_, err = Load(writeFile(t, "config.json", "{not json"))
	if err == nil || !strings.Contains(err.Error(), "decode JSON") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DIGITPAD_CLASSIFIER_URL", "https://digits.example.com")
	t.Setenv("DIGITPAD_DEBOUNCE_MS", "120")
	t.Setenv("DIGITPAD_TEMPLATE_GUIDE", "true")
	t.Setenv("DIGITPAD_LOG_LEVEL", "debug")
	t.Setenv("DIGITPAD_METRICS_ADDR", ":9100")
	t.Setenv("DIGITPAD_CLASSIFIER_TIMEOUT_SEC", "soon")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Classifier.BaseURL != "https://digits.example.com" {
		t.Errorf("base url %q", cfg.Classifier.BaseURL)
	}
	if cfg.Debounce.QuiescenceMs != 120 || !cfg.Canvas.TemplateGuide || cfg.Logging.Level != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9100" {
		t.Errorf("metrics %+v", cfg.Metrics)
	}
	if cfg.Classifier.TimeoutSec != 10 {
		t.Errorf("unparseable timeout should be ignored, got %d", cfg.Classifier.TimeoutSec)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Classifier.BaseURL = "http://10.0.0.2:8080"
			cfg.Canvas.TemplateGuide = true

			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, cfg) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
			}
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, created, err := LoadOrCreate(path)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}
	_, created, err = LoadOrCreate(path)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Pipeline.Stages[0].Name = "changed"
	if cfg.Pipeline.Stages[0].Name == "changed" {
		t.Error("Clone shares the stage slice")
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"

	lc, err := cfg.LoggerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if lc.Level != logging.LevelWarn || lc.Format != logging.FormatJSON || lc.MaxSize != 10 {
		t.Errorf("unexpected logger config %+v", lc)
	}
}

func TestLoaderWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	if _, err := loader.Load(); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 4)
	loader.OnChange(func(c *Config) { changed <- c })
	if err := loader.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer loader.Close()

	cfg := DefaultConfig()
	cfg.Debounce.QuiescenceMs = 900
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got.Debounce.QuiescenceMs != 900 {
			t.Errorf("reloaded quiescence %d", got.Debounce.QuiescenceMs)
		}
		if loader.Config().Debounce.QuiescenceMs != 900 {
			t.Error("loader did not keep the reloaded config")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestLoaderWatchReportsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(DefaultConfig(), path); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	if _, err := loader.Load(); err != nil {
		t.Fatal(err)
	}
	if err := loader.Watch(); err != nil {
		t.Fatal(err)
	}
	defer loader.Close()

	if err := os.WriteFile(path, []byte("version = 1\n[canvas]\nwidth = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-loader.Errors():
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("unexpected error %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported")
	}
	if loader.Config().Canvas.Width != 280 {
		t.Error("invalid reload replaced the config")
	}
}

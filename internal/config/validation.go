package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"digitpad/internal/pipeline"
)

// ErrInvalidConfig is matched by every ValidationErrors value.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields lists the offending field names in order.
func (e ValidationErrors) Fields() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Field
	}
	return out
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}

// ValidateConfig performs validation of every section.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateClassifier(&c.Classifier)...)
	errs = append(errs, validateCanvas(&c.Canvas)...)
	errs = append(errs, validateDebounce(&c.Debounce)...)
	errs = append(errs, validatePipeline(&c.Pipeline)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateMetrics(&c.Metrics)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateClassifier(cl *ClassifierConfig) ValidationErrors {
	var errs ValidationErrors

	if cl.BaseURL != "" && !isValidURL(cl.BaseURL) {
		errs = append(errs, ValidationError{
			Field:   "classifier.base_url",
			Message: fmt.Sprintf("invalid URL: %s", cl.BaseURL),
		})
	}
	if cl.TimeoutSec < 0 || cl.TimeoutSec > 300 {
		errs = append(errs, RangeError("classifier.timeout_sec", 0, 300))
	}
	return errs
}

func validateCanvas(c *CanvasConfig) ValidationErrors {
	var errs ValidationErrors

	if c.Width < pipeline.TargetSize || c.Width > 4096 {
		errs = append(errs, RangeError("canvas.width", pipeline.TargetSize, 4096))
	}
	if c.Height < pipeline.TargetSize || c.Height > 4096 {
		errs = append(errs, RangeError("canvas.height", pipeline.TargetSize, 4096))
	}
	if c.BrushWidth <= 0 || c.BrushWidth > 200 {
		errs = append(errs, ValidationError{
			Field:   "canvas.brush_width",
			Message: "brush width must be in (0, 200]",
		})
	}
	return errs
}

func validateDebounce(d *DebounceConfig) ValidationErrors {
	if d.QuiescenceMs < 0 || d.QuiescenceMs > 10000 {
		return ValidationErrors{RangeError("debounce.quiescence_ms", 0, 10000)}
	}
	return nil
}

func validatePipeline(p *PipelineConfig) ValidationErrors {
	var errs ValidationErrors

	for i, s := range p.Stages {
		field := fmt.Sprintf("pipeline.stages[%d]", i)
		if !pipeline.Known(s.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("unknown stage %q", s.Name),
			})
			continue
		}
		if _, err := pipeline.Build([]pipeline.StageSpec{{Name: s.Name, Strength: s.Strength}}); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: fmt.Sprintf("file path is required when output is '%s'", l.Output),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}
	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}
	if l.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_age_days",
			Message: "max age cannot be negative",
		})
	}
	return errs
}

func validateMetrics(m *MetricsConfig) ValidationErrors {
	if m.Enabled && m.Addr == "" {
		return ValidationErrors{{Field: "metrics.addr", Message: "address is required when metrics are enabled"}}
	}
	return nil
}

func isValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

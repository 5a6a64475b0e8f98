// Package config loads the lokitd.yaml service configuration.
//
// A missing file is not an error: every field has a default, so lokitd can
// start without one. Unknown keys are rejected so typos do not go unnoticed.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/lokitd/translate"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level lokitd.yaml structure.
type File struct {
	// Listen is the HTTP listen address (default ":8080").
	Listen string `yaml:"listen,omitempty"`
	// ServiceName is the OpenTelemetry service name (default "lokitd").
	ServiceName string `yaml:"service_name,omitempty"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR (default INFO).
	LogLevel string `yaml:"log_level,omitempty"`
	// OTLPGRPC is the OTLP/gRPC collector address. Tracing export is
	// disabled when empty.
	OTLPGRPC string `yaml:"otlp_grpc,omitempty"`
	// Locale is the language of error details when a client sends no
	// Accept-Language header. Detected from the environment when empty.
	Locale string `yaml:"locale,omitempty"`

	Translation Translation `yaml:"translation,omitempty"`
	Merge       Merge       `yaml:"merge,omitempty"`

	// Providers adds or overrides provider base URLs, keyed by identifier.
	Providers map[string]string `yaml:"providers,omitempty"`
	// Examples adds or overrides few-shot exemplars, keyed by language.
	Examples map[string]translate.Exemplar `yaml:"examples,omitempty"`
}

// Translation configures the translation endpoint.
type Translation struct {
	// Temperature is the sampling temperature (default 0.3).
	Temperature *float64 `yaml:"temperature,omitempty"`
	// RequestTimeout bounds a single provider call (default 120s).
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// Merge configures the catalog merge endpoint.
type Merge struct {
	// MaxUploadBytes limits the multipart body (default 10 MiB).
	MaxUploadBytes int64 `yaml:"max_upload_bytes,omitempty"`
	// Filename is the attachment name of the merged catalog
	// (default "translations.po").
	Filename string `yaml:"filename,omitempty"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = "lokitd.yaml"

const (
	DefaultListen         = ":8080"
	DefaultServiceName    = "lokitd"
	DefaultLogLevel       = "INFO"
	DefaultMaxUploadBytes = 10 << 20
	DefaultFilename       = "translations.po"
)

// Default returns a configuration with every default applied.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Listen == "" {
		f.Listen = DefaultListen
	}
	if f.ServiceName == "" {
		f.ServiceName = DefaultServiceName
	}
	if f.LogLevel == "" {
		f.LogLevel = DefaultLogLevel
	}
	if f.Translation.Temperature == nil {
		t := translate.DefaultTemperature
		f.Translation.Temperature = &t
	}
	if f.Translation.RequestTimeout == 0 {
		f.Translation.RequestTimeout = translate.DefaultTimeout
	}
	if f.Merge.MaxUploadBytes == 0 {
		f.Merge.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if f.Merge.Filename == "" {
		f.Merge.Filename = DefaultFilename
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads, defaults and validates the file at path. A missing file
// yields Default().
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes, defaults and validates YAML data.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks value ranges. It expects defaults to be applied.
func (f *File) Validate() error {
	if _, err := f.SlogLevel(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if t := *f.Translation.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("translation.temperature must be between 0 and 2, got %v", t)
	}
	if f.Translation.RequestTimeout < 0 {
		return fmt.Errorf("translation.request_timeout must be positive, got %s", f.Translation.RequestTimeout)
	}
	if f.Merge.MaxUploadBytes < 0 {
		return fmt.Errorf("merge.max_upload_bytes must be positive, got %d", f.Merge.MaxUploadBytes)
	}
	if strings.ContainsAny(f.Merge.Filename, "/\\\"\r\n") {
		return fmt.Errorf("merge.filename %q must be a plain file name", f.Merge.Filename)
	}

	for id, raw := range f.Providers {
		if strings.TrimSpace(id) == "" {
			return errors.New("providers: empty provider identifier")
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("providers.%s: %w", id, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("providers.%s: %q is not an absolute http(s) URL", id, raw)
		}
	}

	for lang, ex := range f.Examples {
		if strings.TrimSpace(lang) == "" {
			return errors.New("examples: empty language name")
		}
		if ex.Source == "" || ex.Translated == "" {
			return fmt.Errorf("examples.%s: source and translated are required", lang)
		}
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level.
func (f *File) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(f.LogLevel))
	return level, err
}

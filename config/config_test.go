package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/lokitd/translate"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if diff := cmp.Diff(Default(), f); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if f.Listen != ":8080" || *f.Translation.Temperature != 0.3 || f.Translation.RequestTimeout != 120*time.Second {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if f.Merge.MaxUploadBytes != 10<<20 || f.Merge.Filename != "translations.po" {
		t.Fatalf("unexpected merge defaults: %+v", f.Merge)
	}
}

func TestLoadAppliesFileValues(t *testing.T) {
	dir := t.TempDir()
	yaml := "listen: 127.0.0.1:9000\n" +
		"log_level: debug\n" +
		"translation:\n" +
		"  temperature: 0\n" +
		"  request_timeout: 45s\n" +
		"merge:\n" +
		"  max_upload_bytes: 2048\n" +
		"providers:\n" +
		"  Local: http://127.0.0.1:8000/v1\n" +
		"examples:\n" +
		"  Swahili:\n" +
		"    source: Hello\n" +
		"    translated: Habari\n"
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if f.Listen != "127.0.0.1:9000" || f.ServiceName != "lokitd" {
		t.Fatalf("top level = %+v", f)
	}
	if level, _ := f.SlogLevel(); level != slog.LevelDebug {
		t.Fatalf("SlogLevel = %v", level)
	}
	if *f.Translation.Temperature != 0 {
		t.Fatalf("explicit zero temperature replaced by %v", *f.Translation.Temperature)
	}
	if f.Translation.RequestTimeout != 45*time.Second {
		t.Fatalf("RequestTimeout = %v", f.Translation.RequestTimeout)
	}
	if f.Merge.MaxUploadBytes != 2048 || f.Merge.Filename != DefaultFilename {
		t.Fatalf("Merge = %+v", f.Merge)
	}
	if f.Providers["Local"] != "http://127.0.0.1:8000/v1" {
		t.Fatalf("Providers = %v", f.Providers)
	}
	if diff := cmp.Diff(translate.Exemplar{Source: "Hello", Translated: "Habari"}, f.Examples["Swahili"]); diff != "" {
		t.Fatalf("Examples mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "listne: x\n", "field listne not found"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"temperature too high", "translation:\n  temperature: 2.5\n", "between 0 and 2"},
		{"negative temperature", "translation:\n  temperature: -1\n", "between 0 and 2"},
		{"negative timeout", "translation:\n  request_timeout: -5s\n", "request_timeout must be positive"},
		{"bad duration", "translation:\n  request_timeout: soon\n", "parsing"},
		{"negative upload limit", "merge:\n  max_upload_bytes: -1\n", "max_upload_bytes must be positive"},
		{"filename with path", "merge:\n  filename: ../x.po\n", "plain file name"},
		{"relative provider url", "providers:\n  Local: /v1\n", "not an absolute http(s) URL"},
		{"ftp provider url", "providers:\n  Local: ftp://example.com\n", "not an absolute http(s) URL"},
		{"empty exemplar", "examples:\n  Swahili:\n    source: Hello\n", "source and translated are required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error: %v", err)
	}
	if diff := cmp.Diff(Default(), f); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

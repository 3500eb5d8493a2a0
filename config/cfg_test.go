package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"pgstyle/pagestyle"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// template must describe the same style as pagestyle.New
	if !cfg.Style.NewPageStyle().Equivalent(pagestyle.New()) {
		t.Errorf("Default style differs from pagestyle defaults: %q", cfg.Style.NewPageStyle().CSSText())
	}
	if cfg.Preview.Size != 512 {
		t.Errorf("Preview size = %d, want 512", cfg.Preview.Size)
	}
	if cfg.Preview.FallbackPreset.Name != "A4" {
		t.Errorf("Fallback preset = %q, want A4", cfg.Preview.FallbackPreset.Name)
	}
	if cfg.Preview.OutputNameTemplate != "{{ .Name }}-{{ .Mode }}.png" {
		t.Errorf("Output name template was expanded: %q", cfg.Preview.OutputNameTemplate)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := writeConfig(t, `version: 1
style:
  mode: preset
  preset: letter
  landscape: true
  page_margin: 1in 0.5in
  widows_orphans: "9999"
  all_important: true
preview:
  size: 256
  fallback_preset: legal
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	s := cfg.Style.NewPageStyle()
	if s.Mode != pagestyle.ModePreset || s.Preset.Name != "letter" || !s.Landscape {
		t.Errorf("Unexpected page size: %s %s landscape=%v", s.Mode, s.Preset.Name, s.Landscape)
	}
	if s.PageMargin != "1in 0.5in" {
		t.Errorf("PageMargin = %q", s.PageMargin)
	}
	if !s.AllImportant() || !s.WidowsOrphansImp || !s.SizeImp {
		t.Error("Expected all importance flags to be set")
	}
	// values not in file keep template defaults
	if s.BaseLineHeight != "normal" {
		t.Errorf("BaseLineHeight = %q, want normal", s.BaseLineHeight)
	}
	if cfg.Preview.Size != 256 || cfg.Preview.FallbackPreset.Name != "legal" {
		t.Errorf("Unexpected preview config %+v", cfg.Preview)
	}
	if !cfg.Preview.Label {
		t.Error("Expected preview label default to survive")
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `version: 1
style:
  mode: auto
  invalid indent
`)

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	configPath := writeConfig(t, `version: 1
style:
  page_size: A4
`)

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"version", "version: 2\n", "Version"},
		{"preview size", "version: 1\npreview:\n  size: 10\n", "Size"},
		{"widows", "version: 1\nstyle:\n  widows_orphans: \"3\"\n", "widows"},
		{"margin", "version: 1\nstyle:\n  page_margin: 1cm!important\n", "page margin"},
		{"root other", "version: 1\nstyle:\n  root_other: \"a{b}\"\n", "root other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfiguration_UnknownPreset(t *testing.T) {
	// rejected by decoder already
	configPath := writeConfig(t, "version: 1\npreview:\n  fallback_preset: A0\n")
	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for unknown preset")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Style.Mode = pagestyle.ModeCustom
	cfg.Style.CustomWidth = "5in"
	cfg.Style.AllImportant = true

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	for _, want := range []string{"mode: custom", "custom_width: 5in", "all_important: true", "fallback_preset: A4"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Dump() output does not contain %q:\n%s", want, data)
		}
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}

	if !cfg2.Style.NewPageStyle().Equivalent(cfg.Style.NewPageStyle()) {
		t.Error("Style mismatch after dump/load")
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("zero config fails checks", func(t *testing.T) {
		_, err := unmarshalConfig([]byte(`version: 1`), &Config{}, true)
		if err == nil {
			t.Error("Expected validation error for empty sections")
		}
	})
}

func TestStyleConfig_NewPageStyle(t *testing.T) {
	sc := StyleConfig{PageStyle: *pagestyle.New()}
	sc.PageMargin = "2cm"

	s := sc.NewPageStyle()
	if s.PageMargin != "2cm" || s.AllImportant() {
		t.Errorf("Unexpected style %q", s.CSSText())
	}

	// result is independent of configuration
	s.PageMargin = "3cm"
	if sc.PageMargin != "2cm" {
		t.Error("Expected configuration to stay unchanged")
	}
}

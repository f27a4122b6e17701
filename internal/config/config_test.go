package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig_ValidYml(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
enabled_rules:
  - RP001
  - RP002
extra_exempt_decorators:
  - app.route
extra_noqa_marker: "type: ignore"
treat_star_import_as_opaque: false
__all__authority: advisory
python_version: "3.9"
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".reaperrc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if len(cfg.EnabledRules) != 2 {
		t.Errorf("EnabledRules = %v, want 2 entries", cfg.EnabledRules)
	}
	if cfg.ExtraNoqaMarker != "type: ignore" {
		t.Errorf("ExtraNoqaMarker = %q, want %q", cfg.ExtraNoqaMarker, "type: ignore")
	}
	if cfg.TreatStarImportAsOpaque == nil || *cfg.TreatStarImportAsOpaque != false {
		t.Errorf("TreatStarImportAsOpaque = %v, want false", cfg.TreatStarImportAsOpaque)
	}
	if cfg.AllAuthority != "advisory" {
		t.Errorf("AllAuthority = %q, want %q", cfg.AllAuthority, "advisory")
	}

	rc := cfg.ToRulesConfig()
	if !rc.EnabledRules["RP001"] || !rc.EnabledRules["RP002"] || rc.EnabledRules["RP003"] {
		t.Errorf("ToRulesConfig EnabledRules = %v, want only RP001/RP002", rc.EnabledRules)
	}
	if rc.TreatStarImportAsOpaque {
		t.Error("ToRulesConfig TreatStarImportAsOpaque = true, want false (overridden)")
	}
	if rc.AllAuthority != "advisory" {
		t.Errorf("ToRulesConfig AllAuthority = %q, want advisory", rc.AllAuthority)
	}
	if rc.PythonVersionMajor != 3 || rc.PythonVersionMinor != 9 {
		t.Errorf("ToRulesConfig python version = %d.%d, want 3.9", rc.PythonVersionMajor, rc.PythonVersionMinor)
	}
}

func TestLoadProjectConfig_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config for missing file, got %+v", cfg)
	}

	// Defaults still flow through ToRulesConfig on a nil receiver.
	rc := cfg.ToRulesConfig()
	if !rc.TreatStarImportAsOpaque {
		t.Error("nil ProjectConfig should fall back to rules.DefaultConfig()")
	}
}

func TestLoadProjectConfig_InvalidRuleName(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
enabled_rules:
  - RP099
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".reaperrc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for unknown rule id")
	}
}

func TestLoadProjectConfig_InvalidVersion(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 99
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".reaperrc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestLoadProjectConfig_InvalidAllAuthority(t *testing.T) {
	tmpDir := t.TempDir()

	content := `__all__authority: whatever
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".reaperrc.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for invalid __all__authority")
	}
}

func TestLoadProjectConfig_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
extra_noqa_marker: "pragma: no cover"
`
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	if err := os.WriteFile(customPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, customPath)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}

	if cfg.ExtraNoqaMarker != "pragma: no cover" {
		t.Errorf("ExtraNoqaMarker = %q, want %q", cfg.ExtraNoqaMarker, "pragma: no cover")
	}
}

func TestLoadProjectConfig_YamlExtension(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
extra_noqa_marker: "noqa-custom"
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".reaperrc.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config for .reaperrc.yaml")
	}
	if cfg.ExtraNoqaMarker != "noqa-custom" {
		t.Errorf("ExtraNoqaMarker = %q, want %q", cfg.ExtraNoqaMarker, "noqa-custom")
	}
}

func TestValidate_InvalidPythonVersion(t *testing.T) {
	cfg := &ProjectConfig{PythonVersion: "not-a-version"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed python_version")
	}
}

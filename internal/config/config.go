// Package config handles .reaperrc.yml project-level configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taradepan/reaper/internal/rules"
)

// ProjectConfig represents the .reaperrc.yml configuration file, the §6
// option table expressed as YAML.
type ProjectConfig struct {
	Version                 int      `yaml:"version"`
	EnabledRules            []string `yaml:"enabled_rules"`
	ExtraExemptDecorators   []string `yaml:"extra_exempt_decorators"`
	ExtraNoqaMarker         string   `yaml:"extra_noqa_marker"`
	TreatStarImportAsOpaque *bool    `yaml:"treat_star_import_as_opaque"`
	AllAuthority            string   `yaml:"__all__authority"`
	PythonVersion           string   `yaml:"python_version"`
}

// LoadProjectConfig loads project configuration from .reaperrc.yml or
// .reaperrc.yaml. If explicitPath is provided (from --config flag), that
// file is loaded. Otherwise, looks for .reaperrc.yml then .reaperrc.yaml in
// dir. Returns nil (no error) if no config file is found.
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".reaperrc.yml")
		yamlPath := filepath.Join(dir, ".reaperrc.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil // No config found, use defaults
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are valid.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}

	for _, id := range c.EnabledRules {
		if !isKnownRule(id) {
			return fmt.Errorf("unknown rule %q in enabled_rules", id)
		}
	}

	switch c.AllAuthority {
	case "", "strict", "advisory":
	default:
		return fmt.Errorf("__all__authority must be %q or %q, got %q", "strict", "advisory", c.AllAuthority)
	}

	if c.PythonVersion != "" {
		if _, _, err := parsePythonVersion(c.PythonVersion); err != nil {
			return fmt.Errorf("python_version: %w", err)
		}
	}

	return nil
}

func isKnownRule(id string) bool {
	switch id {
	case "RP001", "RP002", "RP003", "RP004", "RP005", "RP006", "RP007", "RP008", "RP009":
		return true
	default:
		return false
	}
}

func parsePythonVersion(v string) (major, minor int, err error) {
	if _, err = fmt.Sscanf(v, "%d.%d", &major, &minor); err != nil {
		return 0, 0, fmt.Errorf("expected MAJOR.MINOR, got %q", v)
	}
	return major, minor, nil
}

// ToRulesConfig maps a loaded ProjectConfig onto rules.Config, starting from
// rules.DefaultConfig() and overriding only the fields the file set. A nil
// ProjectConfig (no config file found) yields plain defaults.
func (c *ProjectConfig) ToRulesConfig() rules.Config {
	cfg := rules.DefaultConfig()
	if c == nil {
		return cfg
	}

	if len(c.EnabledRules) > 0 {
		enabled := make(map[string]bool, len(c.EnabledRules))
		for _, id := range c.EnabledRules {
			enabled[id] = true
		}
		cfg.EnabledRules = enabled
	}
	if len(c.ExtraExemptDecorators) > 0 {
		cfg.ExtraExemptDecorators = c.ExtraExemptDecorators
	}
	if c.ExtraNoqaMarker != "" {
		cfg.ExtraNoqaMarker = c.ExtraNoqaMarker
	}
	if c.TreatStarImportAsOpaque != nil {
		cfg.TreatStarImportAsOpaque = *c.TreatStarImportAsOpaque
	}
	if c.AllAuthority != "" {
		cfg.AllAuthority = c.AllAuthority
	}
	if c.PythonVersion != "" {
		major, minor, _ := parsePythonVersion(c.PythonVersion) // already validated
		cfg.PythonVersionMajor = major
		cfg.PythonVersionMinor = minor
	}

	return cfg
}

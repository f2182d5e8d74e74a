/*
PURPOSE:
  Defines the configuration structure and loading logic for eda-runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the tool binary, timeouts and the seed directive.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variable overrides (EDA_...).
  - Config files are looked up relative to the project directory, not the CWD.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default config file is not an error (falls back to defaults).
  - Environment overrides are validated like file values.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (30m run timeout, 10s probe timeout).

USAGE:
  cfg, err := config.Load("", projectDir)

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for eda-runner.
type Config struct {
	Tool ToolConfig `yaml:"tool"`
	// Extractor names the metric rule set (see internal/extract).
	Extractor string `yaml:"extractor"`
	// RunTimeout is the hard wall-clock limit for one synthesis run.
	RunTimeout time.Duration `yaml:"run_timeout"`
	// ProbeTimeout bounds the version probe and the git lookup.
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	DefaultRecipe string        `yaml:"default_recipe"`
	RecipeExt     string        `yaml:"recipe_ext"`
	// Top is the module name written into generated recipes.
	Top string `yaml:"top"`
}

// ToolConfig describes how to invoke the external synthesis tool.
type ToolConfig struct {
	Binary      string   `yaml:"binary"`
	VersionArgs []string `yaml:"version_args"`
	// SeedDirective is a fmt template with one %d, passed through -p when a seed is given.
	SeedDirective string `yaml:"seed_directive"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tool: ToolConfig{
			Binary:        "yosys",
			VersionArgs:   []string{"-V"},
			SeedDirective: "scratchpad -set abc9.seed %d",
		},
		Extractor:     "yosys",
		RunTimeout:    30 * time.Minute,
		ProbeTimeout:  10 * time.Second,
		DefaultRecipe: "synth.ys",
		RecipeExt:     ".ys",
		Top:           "top",
	}
}

// DefaultFiles are searched, relative to the project directory, when no path is given.
var DefaultFiles = []string{"eda.yaml", filepath.Join(".eda", "config.yaml")}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles under projectDir in order.
// If no file found, returns default config.
// Environment overrides are applied last.
func Load(path, projectDir string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			candidate := filepath.Join(projectDir, name)
			data, err = os.ReadFile(candidate)
			if err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			if err := applyEnv(cfg); err != nil {
				return nil, err
			}
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid configuration: %w", err)
			}
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the runner cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tool.Binary) == "" {
		return errors.New("tool.binary is required")
	}
	if c.RunTimeout <= 0 {
		return errors.New("run_timeout must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("probe_timeout must be positive")
	}
	if strings.Count(c.Tool.SeedDirective, "%d") != 1 {
		return errors.New("tool.seed_directive must contain exactly one %d")
	}
	if !strings.HasPrefix(c.RecipeExt, ".") {
		return errors.New("recipe_ext must start with '.'")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("EDA_TOOL"); v != "" {
		cfg.Tool.Binary = v
	}
	if v := os.Getenv("EDA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid EDA_TIMEOUT %q: %w", v, err)
		}
		cfg.RunTimeout = d
	}
	return nil
}

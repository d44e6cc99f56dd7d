// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration from YAML and
// applies defaults for everything a config file leaves out.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pii-redact/internal/detector"
	"pii-redact/internal/filter"
	"pii-redact/internal/llm"
	"pii-redact/internal/pipeline"
	"pii-redact/internal/redact"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Default settings applied when a request or flag does not override
	// them.
	Defaults struct {
		Categories  []string `yaml:"categories"`
		Style       string   `yaml:"style"`
		CustomLabel string   `yaml:"custom_label"`
		Format      string   `yaml:"format"`
		Verbose     bool     `yaml:"verbose"`
		NoColor     bool     `yaml:"no_color"`
	} `yaml:"defaults"`

	// Limits bound per-request work.
	Limits struct {
		MaxChars     int `yaml:"max_chars"`
		WindowRadius int `yaml:"window_radius"`
	} `yaml:"limits"`

	// LLM configures the validation service. The API key is never read
	// from the file; it comes from the GEMINI_API_KEY environment
	// variable so it cannot end up committed alongside the config.
	LLM struct {
		Endpoint       string `yaml:"endpoint"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxRetries     int    `yaml:"max_retries"`
	} `yaml:"llm"`

	// Filter optionally replaces the built-in false-positive rule table.
	Filter struct {
		RulesFile string        `yaml:"rules_file"`
		Rules     []filter.Rule `yaml:"rules"`
	} `yaml:"filter"`

	// Server settings for web mode.
	Server struct {
		Port           int `yaml:"port"`
		MaxConcurrent  int `yaml:"max_concurrent"`
		MaxUploadBytes int `yaml:"max_upload_bytes"`
	} `yaml:"server"`
}

// APIKeyEnvVar names the environment variable holding the model API key.
const APIKeyEnvVar = "GEMINI_API_KEY"

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}

	for _, c := range detector.AllCategories() {
		cfg.Defaults.Categories = append(cfg.Defaults.Categories, string(c))
	}
	cfg.Defaults.Style = string(redact.StyleLabels)
	cfg.Defaults.Format = "text"

	cfg.Limits.MaxChars = pipeline.DefaultMaxChars
	cfg.Limits.WindowRadius = detector.DefaultWindowRadius

	llmDefaults := llm.DefaultConfig()
	cfg.LLM.Endpoint = llmDefaults.Endpoint
	cfg.LLM.Model = llmDefaults.Model
	cfg.LLM.TimeoutSeconds = int(llmDefaults.Timeout / time.Second)
	cfg.LLM.MaxRetries = int(llmDefaults.MaxRetries)

	cfg.Server.Port = 8080
	cfg.Server.MaxConcurrent = 8
	cfg.Server.MaxUploadBytes = 10 << 20

	return cfg
}

// Load reads configuration from path. An empty path returns defaults.
// File values override defaults field by field.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from configFile, searching standard
// locations when it is empty. Load failures fall back to defaults so
// callers do not crash on a missing or bad config file.
func LoadOrDefault(configFile string) *Config {
	path := configFile
	if path == "" {
		path = FindConfigFile()
	}

	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := c.Categories(); err != nil {
		return err
	}
	if !redact.Style(c.Defaults.Style).Valid() {
		return fmt.Errorf("unknown redaction style %q", c.Defaults.Style)
	}
	if redact.Style(c.Defaults.Style) == redact.StyleCustom && c.Defaults.CustomLabel == "" {
		return fmt.Errorf("custom redaction style requires custom_label")
	}
	if c.Limits.MaxChars <= 0 {
		return fmt.Errorf("limits.max_chars must be positive, got %d", c.Limits.MaxChars)
	}
	if c.Limits.WindowRadius <= 0 {
		return fmt.Errorf("limits.window_radius must be positive, got %d", c.Limits.WindowRadius)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Categories parses the configured default category names.
func (c *Config) Categories() (map[detector.Category]bool, error) {
	return detector.ParseCategories(c.Defaults.Categories)
}

// Settings builds redaction settings from the configured defaults.
func (c *Config) Settings() (redact.Settings, error) {
	enabled, err := c.Categories()
	if err != nil {
		return redact.Settings{}, err
	}
	return redact.Settings{
		Categories:  enabled,
		Style:       redact.Style(c.Defaults.Style),
		CustomLabel: c.Defaults.CustomLabel,
	}, nil
}

// Rules resolves the effective false-positive rule table: an explicit
// rules file wins, then inline rules, then the built-in table.
func (c *Config) Rules() (*filter.RuleSet, error) {
	if c.Filter.RulesFile != "" {
		return filter.Load(c.Filter.RulesFile)
	}
	if len(c.Filter.Rules) > 0 {
		rs := &filter.RuleSet{
			Radius: c.Limits.WindowRadius,
			Rules:  c.Filter.Rules,
		}
		if err := rs.Compile(); err != nil {
			return nil, err
		}
		return rs, nil
	}
	return filter.Default(), nil
}

// LLMConfig builds the model client configuration, pulling the API key
// from the environment.
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Endpoint:   c.LLM.Endpoint,
		Model:      c.LLM.Model,
		APIKey:     os.Getenv(APIKeyEnvVar),
		Timeout:    time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		MaxRetries: uint64(c.LLM.MaxRetries),
	}
}

// FindConfigFile looks for a configuration file in standard locations.
func FindConfigFile() string {
	for _, name := range []string{"config.yaml", "pii-redact.yaml", "pii-redact.yml", ".pii-redact.yaml", ".pii-redact.yml"} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdgConfig, "pii-redact", name)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

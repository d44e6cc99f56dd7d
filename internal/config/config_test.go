// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pii-redact/internal/detector"
	"pii-redact/internal/redact"
)

func TestLoadNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Defaults.Style != string(redact.StyleLabels) {
		t.Errorf("default style = %q, want labels", cfg.Defaults.Style)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("default format = %q, want text", cfg.Defaults.Format)
	}
	if len(cfg.Defaults.Categories) != len(detector.AllCategories()) {
		t.Errorf("defaults should enable all categories, got %v", cfg.Defaults.Categories)
	}
	if cfg.Limits.MaxChars <= 0 {
		t.Error("default max_chars must be positive")
	}
	if cfg.LLM.Model == "" || cfg.LLM.Endpoint == "" {
		t.Error("LLM defaults must be populated")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  categories: [email, ssn]
  style: black_boxes
  format: json
limits:
  max_chars: 5000
llm:
  model: gemini-2.0-flash
  timeout_seconds: 10
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Defaults.Style != "black_boxes" {
		t.Errorf("style = %q", cfg.Defaults.Style)
	}
	if cfg.Limits.MaxChars != 5000 {
		t.Errorf("max_chars = %d", cfg.Limits.MaxChars)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Unset fields keep their defaults.
	if cfg.LLM.Endpoint == "" {
		t.Error("unset endpoint should keep its default")
	}
	if cfg.Server.MaxConcurrent <= 0 {
		t.Error("unset max_concurrent should keep its default")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown style", "defaults:\n  style: strikethrough\n"},
		{"unknown category", "defaults:\n  categories: [passport]\n"},
		{"custom without label", "defaults:\n  style: custom\n"},
		{"zero max chars", "limits:\n  max_chars: -5\n"},
		{"bad port", "server:\n  port: 99999\n"},
		{"bad yaml", "defaults: [not a map\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted an invalid config")
			}
		})
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault("/nonexistent/config.yaml")
	if cfg == nil {
		t.Fatal("expected fallback to defaults")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("fallback config invalid: %v", err)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Defaults.Categories = []string{"email", "phone"}
	cfg.Defaults.Style = string(redact.StyleCustom)
	cfg.Defaults.CustomLabel = "[GONE]"

	settings, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	if !settings.Enabled(detector.CategoryEmail) || !settings.Enabled(detector.CategoryPhone) {
		t.Error("configured categories not enabled")
	}
	if settings.Enabled(detector.CategorySSN) {
		t.Error("unlisted category enabled")
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("settings invalid: %v", err)
	}
}

func TestRulesInlineDefinition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
filter:
  rules:
    - id: badge-prefix
      kind: prefix
      pattern: 'Badge:'
      scope: global
      reason: badge numbers are internal identifiers
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules() error: %v", err)
	}
	if len(rules.Rules) != 1 || rules.Rules[0].ID != "badge-prefix" {
		t.Fatalf("unexpected rules: %+v", rules.Rules)
	}
	if rules.Radius <= 0 {
		t.Error("inline rules must inherit a usable window radius")
	}
}

func TestRulesDefaultWhenUnconfigured(t *testing.T) {
	rules, err := Default().Rules()
	if err != nil {
		t.Fatalf("Rules() error: %v", err)
	}
	if len(rules.Rules) == 0 {
		t.Error("expected the built-in rule table")
	}
}

func TestLLMConfigReadsKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnvVar, "env-key")

	cfg := Default()
	llmCfg := cfg.LLMConfig()
	if llmCfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", llmCfg.APIKey)
	}
	if llmCfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", llmCfg.Timeout)
	}
}

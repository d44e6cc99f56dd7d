// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package filter suppresses candidate spans that match configured
// false-positive contexts. Rules are data, not code: the rule table is
// loaded once at process start, compiled, and shared read-only across
// concurrent requests. Filtering is a pure function of (span, text,
// rules); it never adds spans, only removes them.
package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pii-redact/internal/detector"

	"gopkg.in/yaml.v3"
)

// RuleKind selects what part of a candidate a rule inspects.
type RuleKind string

const (
	// KindPrefix matches against the text window immediately preceding
	// the span, anchored at its end. Field labels ("Email:", "Library
	// Card ID:") live here.
	KindPrefix RuleKind = "prefix"

	// KindValue matches against the span value itself. Known non-entity
	// words the NER model over-triggers on live here.
	KindValue RuleKind = "value"

	// KindContext matches anywhere in the surrounding window. Marker
	// phrases for quoted or title-like contexts live here.
	KindContext RuleKind = "context"
)

// ScopeGlobal applies a rule to every category.
const ScopeGlobal = "global"

// Rule is one configured suppression pattern.
type Rule struct {
	ID      string   `yaml:"id"`
	Kind    RuleKind `yaml:"kind"`
	Pattern string   `yaml:"pattern"`
	Scope   string   `yaml:"scope"` // "global" or a category name
	Reason  string   `yaml:"reason,omitempty"`

	re *regexp.Regexp
}

// RuleSet is the compiled, immutable rule table plus the window radius
// used when cutting context around each candidate.
type RuleSet struct {
	Radius int    `yaml:"window_radius"`
	Rules  []Rule `yaml:"rules"`
}

// Suppressed records a candidate removed by a rule, kept for explanations.
type Suppressed struct {
	Span   detector.Span `json:"span"`
	RuleID string        `json:"rule_id"`
	Reason string        `json:"reason"`
}

// Load reads a rule table from a YAML file and compiles it. An empty path
// returns the default rules.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read filter rules: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse filter rules: %w", err)
	}

	if err := rs.Compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Compile validates and compiles every rule pattern. Must be called once
// before Apply; Load and Default do it for you.
func (rs *RuleSet) Compile() error {
	if rs.Radius <= 0 {
		rs.Radius = detector.DefaultWindowRadius
	}
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.Pattern == "" {
			return fmt.Errorf("filter rule %q has no pattern", rule.ID)
		}
		if rule.Scope == "" {
			rule.Scope = ScopeGlobal
		}
		if rule.Scope != ScopeGlobal && !detector.Category(rule.Scope).Valid() {
			return fmt.Errorf("filter rule %q has unknown scope %q", rule.ID, rule.Scope)
		}

		expr := rule.Pattern
		switch rule.Kind {
		case KindPrefix:
			// Anchor at the end of the preceding window, tolerating
			// trailing whitespace between label and value.
			expr = `(?:` + expr + `)\s*$`
		case KindValue:
			expr = `^(?:` + expr + `)$`
		case KindContext:
			// Pattern is searched as-is within the window.
		default:
			return fmt.Errorf("filter rule %q has unknown kind %q", rule.ID, rule.Kind)
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("filter rule %q: %w", rule.ID, err)
		}
		rule.re = re
	}
	return nil
}

// Apply partitions candidates into kept and suppressed. It is
// deterministic: identical (spans, text) input yields identical output.
func (rs *RuleSet) Apply(text string, spans []detector.Span) ([]detector.Span, []Suppressed) {
	var kept []detector.Span
	var suppressed []Suppressed

	for _, s := range spans {
		if rule := rs.match(text, s); rule != nil {
			suppressed = append(suppressed, Suppressed{
				Span:   s,
				RuleID: rule.ID,
				Reason: rule.Reason,
			})
			continue
		}
		kept = append(kept, s)
	}
	return kept, suppressed
}

// match returns the first rule suppressing the span, or nil.
func (rs *RuleSet) match(text string, s detector.Span) *Rule {
	window := detector.ExtractWindow(text, s.Start, s.End, rs.Radius)

	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if rule.Scope != ScopeGlobal && detector.Category(rule.Scope) != s.Category {
			continue
		}

		switch rule.Kind {
		case KindPrefix:
			if rule.re.MatchString(window.Before) {
				return rule
			}
		case KindValue:
			if rule.re.MatchString(s.Value) {
				return rule
			}
		case KindContext:
			if rule.re.MatchString(window.Before) || rule.re.MatchString(window.After) {
				return rule
			}
		}
	}
	return nil
}

// Default returns the built-in rule table. It mirrors the patterns the
// detectors are known to over-trigger on; deployments override it with a
// YAML file when they need more.
func Default() *RuleSet {
	rs := &RuleSet{
		Radius: detector.DefaultWindowRadius,
		Rules: []Rule{
			{
				ID:     "field-label",
				Kind:   KindPrefix,
				Scope:  ScopeGlobal,
				Reason: "preceded by an identifier field label, not actual PII",
				// Labels naming an internal identifier: "Library Card
				// ID:", "Ref Code:", "Ticket #:". The label must end in
				// an identifier word; generic lead-ins like "Contact:" or
				// "Phone No:" precede real PII and must not fire.
				Pattern: `\b(?i:id|code|ref|reference|serial|ticket|badge)\s*[.#]?\s*:`,
			},
			{
				ID:      "quoted-literal",
				Kind:    KindContext,
				Scope:   ScopeGlobal,
				Reason:  "appears inside a quoted literal",
				Pattern: `"\s*$|^\s*"`,
			},
			{
				ID:      "title-context",
				Kind:    KindContext,
				Scope:   ScopeGlobal,
				Reason:  "title-like context marker nearby",
				Pattern: `(?i)\b(?:titled|entitled|is just the name|named after|so-called)\b`,
			},
			{
				ID:      "example-context",
				Kind:    KindContext,
				Scope:   ScopeGlobal,
				Reason:  "example or placeholder context marker nearby",
				Pattern: `(?i)\b(?:for example|e\.g\.|sample|placeholder|dummy)\b`,
			},
			{
				ID:     "non-entity-word",
				Kind:   KindValue,
				Scope:  string(detector.CategoryName),
				Reason: "common word the entity model over-triggers on",
				Pattern: `(?i)(?:will|mark|bill|grant|art|sue|joy|hope|dawn|` +
					`jan|june|april|may|august|page|lane|hall|banks)`,
			},
		},
	}

	if err := rs.Compile(); err != nil {
		// The built-in table is static; a compile failure is a programming
		// error, not a runtime condition.
		panic(fmt.Sprintf("default filter rules failed to compile: %v", err))
	}
	return rs
}

// Names returns the rule IDs in order, useful for logging which table is
// active.
func (rs *RuleSet) Names() string {
	ids := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		ids[i] = r.ID
	}
	return strings.Join(ids, ",")
}

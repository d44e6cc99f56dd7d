// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package redact rewrites text using a finalized span set and aggregates
// per-category statistics.
package redact

import (
	"fmt"

	"pii-redact/internal/detector"
)

// Style selects the textual form substituted for each span.
type Style string

const (
	// StyleLabels substitutes numbered placeholders such as [EMAIL_1].
	StyleLabels Style = "labels"

	// StyleBlackBoxes substitutes a block of filler glyphs the same
	// length as the original span. Length is already observable in the
	// source document, so matching it leaks nothing new; an accepted
	// limitation, not a hidden one.
	StyleBlackBoxes Style = "black_boxes"

	// StyleCustom substitutes a caller-provided label verbatim,
	// unnumbered.
	StyleCustom Style = "custom"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleLabels, StyleBlackBoxes, StyleCustom:
		return true
	}
	return false
}

// Settings is the per-request redaction configuration. Categories must be
// supplied explicitly; nothing is assumed enabled.
type Settings struct {
	Categories  map[detector.Category]bool `json:"categories"`
	Style       Style                      `json:"style"`
	CustomLabel string                     `json:"custom_label,omitempty"`
}

// Validate rejects settings the renderer cannot act on.
func (s Settings) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("redaction settings must enable at least one category")
	}
	for c := range s.Categories {
		if !c.Valid() {
			return fmt.Errorf("redaction settings reference unknown category %q", c)
		}
	}
	if !s.Style.Valid() {
		return fmt.Errorf("unknown redaction style %q", s.Style)
	}
	if s.Style == StyleCustom && s.CustomLabel == "" {
		return fmt.Errorf("custom redaction style requires a custom label")
	}
	return nil
}

// Enabled reports whether spans of category c should be redacted.
func (s Settings) Enabled(c detector.Category) bool {
	return s.Categories[c]
}

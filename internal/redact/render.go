// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pii-redact/internal/detector"
)

// blackBoxGlyph is the filler character for the black-box style.
const blackBoxGlyph = "█"

// Render rewrites text, replacing each confirmed span of an enabled
// category with its redaction form. Disabled categories pass through
// untouched.
//
// Labels are numbered by left-to-right appearance order in the original
// text, so numbering is assigned in a forward pass first. The rewrite
// itself then runs right to left: replacing a span never shifts the
// offsets of spans not yet processed, because every remaining offset
// points left of the splice. Adjacent spans need no special casing for
// the same reason.
//
// Any span that fails its offset check here indicates an invariant
// violation in an earlier stage; Render fails rather than produce
// corrupted output.
func Render(text string, spans []detector.Span, settings Settings) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", err
	}

	var enabled []detector.Span
	for _, s := range spans {
		if !s.Confirmed {
			return "", fmt.Errorf("unconfirmed %s span reached the renderer", s.Category)
		}
		if settings.Enabled(s.Category) {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return text, nil
	}

	if err := detector.CheckDisjoint(text, enabled); err != nil {
		return "", fmt.Errorf("refusing to render inconsistent span set: %w", err)
	}

	// Forward pass: assign labels in reading order.
	detector.SortSpans(enabled)
	counters := make(map[detector.Category]int)
	labels := make([]string, len(enabled))
	for i, s := range enabled {
		counters[s.Category]++
		labels[i] = replacement(s, counters[s.Category], settings)
	}

	// Backward pass: splice replacements right to left.
	out := text
	for i := len(enabled) - 1; i >= 0; i-- {
		s := enabled[i]
		out = out[:s.Start] + labels[i] + out[s.End:]
	}
	return out, nil
}

// replacement renders a single span's substitute text.
func replacement(s detector.Span, n int, settings Settings) string {
	switch settings.Style {
	case StyleBlackBoxes:
		return strings.Repeat(blackBoxGlyph, utf8.RuneCountInString(s.Value))
	case StyleCustom:
		return settings.CustomLabel
	default:
		return fmt.Sprintf("[%s_%d]", s.Category.Label(), n)
	}
}

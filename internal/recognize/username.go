// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"
	"strings"

	"pii-redact/internal/detector"
)

// UsernameRecognizer detects account identifiers introduced by a labeling
// phrase ("username is jdoe42", "login: jdoe42"). Matches surface as name
// spans covering only the identifier, not the label.
type UsernameRecognizer struct {
	regex *regexp.Regexp
}

// NewUsernameRecognizer creates a username recognizer.
func NewUsernameRecognizer() *UsernameRecognizer {
	return &UsernameRecognizer{
		regex: regexp.MustCompile(`(?i)\b(?:username|user|login|account)\s*(?:is|:)\s+([a-z0-9_]{3,20})\b`),
	}
}

func (r *UsernameRecognizer) Category() detector.Category {
	return detector.CategoryName
}

func (r *UsernameRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, loc := range r.regex.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if start < 0 {
			continue
		}
		// The local part of a nearby email address is not a separate
		// username.
		window := detector.ExtractWindow(text, loc[0], loc[1], 10)
		if strings.Contains(window.Before, "@") || strings.Contains(window.After, "@") {
			continue
		}
		spans = append(spans, span(detector.CategoryName, text, start, end))
	}
	return dedupe(spans)
}

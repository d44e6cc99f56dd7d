// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"

	"pii-redact/internal/detector"
)

// PhoneRecognizer detects phone numbers across common delimiter and
// country-code variants. A candidate must carry at least ten digits; the
// patterns alone are too loose to stand on their own.
type PhoneRecognizer struct {
	patterns []*regexp.Regexp
}

// NewPhoneRecognizer creates a phone recognizer covering US and
// international formats.
func NewPhoneRecognizer() *PhoneRecognizer {
	return &PhoneRecognizer{
		patterns: []*regexp.Regexp{
			// US with parentheses: (555) 123-4567
			regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
			// US delimited: 555-123-4567, 555.123.4567, 555 123 4567
			regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
			// International with country code: +1-555-123-4567, +44 20 7946 0958
			regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
			// Bare ten digits
			regexp.MustCompile(`\b\d{10}\b`),
		},
	}
}

func (r *PhoneRecognizer) Category() detector.Category {
	return detector.CategoryPhone
}

func (r *PhoneRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, pattern := range r.patterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			if digitCount(text[loc[0]:loc[1]]) < 10 {
				continue
			}
			spans = append(spans, span(detector.CategoryPhone, text, loc[0], loc[1]))
		}
	}
	return dedupe(spans)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"

	"pii-redact/internal/detector"
)

// EmailRecognizer detects email addresses anchored on local@domain.tld
// syntax.
type EmailRecognizer struct {
	regex *regexp.Regexp
}

// NewEmailRecognizer creates an email recognizer with the standard
// address pattern compiled once.
func NewEmailRecognizer() *EmailRecognizer {
	return &EmailRecognizer{
		regex: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	}
}

func (r *EmailRecognizer) Category() detector.Category {
	return detector.CategoryEmail
}

func (r *EmailRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, loc := range r.regex.FindAllStringIndex(text, -1) {
		spans = append(spans, span(detector.CategoryEmail, text, loc[0], loc[1]))
	}
	return spans
}

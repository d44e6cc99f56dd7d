// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"

	"pii-redact/internal/detector"
)

// SSNRecognizer detects US Social Security Numbers: three digit groups in
// 3-2-4 form, hyphen or space separated.
type SSNRecognizer struct {
	regex *regexp.Regexp
}

// NewSSNRecognizer creates an SSN recognizer.
func NewSSNRecognizer() *SSNRecognizer {
	return &SSNRecognizer{
		regex: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b|\b\d{3}\s\d{2}\s\d{4}\b`),
	}
}

func (r *SSNRecognizer) Category() detector.Category {
	return detector.CategorySSN
}

func (r *SSNRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, loc := range r.regex.FindAllStringIndex(text, -1) {
		spans = append(spans, span(detector.CategorySSN, text, loc[0], loc[1]))
	}
	return spans
}

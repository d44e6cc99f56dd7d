// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"

	"pii-redact/internal/detector"
)

// AddressRecognizer detects US postal addresses: street number, street
// name, a recognized street suffix, city, state, and optionally a ZIP.
// The full form (with ZIP) is tried first so the longer match wins when
// both patterns hit the same street.
type AddressRecognizer struct {
	patterns []*regexp.Regexp
}

// NewAddressRecognizer creates an address recognizer.
func NewAddressRecognizer() *AddressRecognizer {
	const street = `\d+\s+[A-Za-z0-9\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Place|Pl)`
	return &AddressRecognizer{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)` + street + `[\s,]+[A-Za-z\s]+,\s*[A-Z]{2}\s+\d{5}(?:-\d{4})?`),
			regexp.MustCompile(`(?i)` + street + `[\s,]+[A-Za-z\s]+,\s*[A-Z]{2}`),
		},
	}
}

func (r *AddressRecognizer) Category() detector.Category {
	return detector.CategoryAddress
}

func (r *AddressRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, pattern := range r.patterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			spans = append(spans, span(detector.CategoryAddress, text, loc[0], loc[1]))
		}
	}
	return dedupe(spans)
}

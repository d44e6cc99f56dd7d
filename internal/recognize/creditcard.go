// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognize

import (
	"regexp"

	"pii-redact/internal/detector"
)

// CreditCardRecognizer detects contiguous or grouped 16-digit card
// numbers. The digit-count check weeds out partial matches; anything
// subtler (issuer ranges, checksums) is left to the review stage.
type CreditCardRecognizer struct {
	regex *regexp.Regexp
}

// NewCreditCardRecognizer creates a credit card recognizer.
func NewCreditCardRecognizer() *CreditCardRecognizer {
	return &CreditCardRecognizer{
		regex: regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
	}
}

func (r *CreditCardRecognizer) Category() detector.Category {
	return detector.CategoryCreditCard
}

func (r *CreditCardRecognizer) Recognize(text string) []detector.Span {
	var spans []detector.Span
	for _, loc := range r.regex.FindAllStringIndex(text, -1) {
		if digitCount(text[loc[0]:loc[1]]) != 16 {
			continue
		}
		spans = append(spans, span(detector.CategoryCreditCard, text, loc[0], loc[1]))
	}
	return spans
}

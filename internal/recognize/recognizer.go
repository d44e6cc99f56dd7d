// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package recognize holds the structural pattern recognizers: one per PII
// category with a regular shape (email, phone, ssn, credit card, postal
// address, plus labeled usernames which surface as name spans).
//
// Recognizers are intentionally over-inclusive. They are pure functions of
// the input text; false-positive suppression happens downstream in the
// filter stage, and the language-model review has the final word.
package recognize

import (
	"pii-redact/internal/detector"
)

// Recognizer produces candidate spans of a single category from raw text.
type Recognizer interface {
	// Category returns the category this recognizer emits.
	Category() detector.Category

	// Recognize scans text and returns zero or more candidate spans.
	// Implementations must be deterministic and must not retain text.
	Recognize(text string) []detector.Span
}

// All returns the full recognizer set in a fixed order. Order matters for
// determinism of the candidate list, not for correctness.
func All() []Recognizer {
	return []Recognizer{
		NewEmailRecognizer(),
		NewPhoneRecognizer(),
		NewSSNRecognizer(),
		NewCreditCardRecognizer(),
		NewAddressRecognizer(),
		NewUsernameRecognizer(),
	}
}

// ForCategories returns the recognizers whose output category is enabled.
// The username recognizer emits name spans, so it rides on the name flag.
func ForCategories(enabled map[detector.Category]bool) []Recognizer {
	var out []Recognizer
	for _, r := range All() {
		if enabled[r.Category()] {
			out = append(out, r)
		}
	}
	return out
}

// span builds an unconfirmed pattern-sourced span.
func span(c detector.Category, text string, start, end int) detector.Span {
	return detector.Span{
		Category: c,
		Value:    text[start:end],
		Start:    start,
		End:      end,
		Source:   detector.SourcePattern,
	}
}

// dedupe removes spans that repeat an already-seen offset range. Several
// patterns per recognizer can hit the same substring.
func dedupe(spans []detector.Span) []detector.Span {
	type pos struct{ start, end int }
	seen := make(map[pos]bool, len(spans))
	out := spans[:0]
	for _, s := range spans {
		p := pos{s.Start, s.End}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, s)
	}
	return out
}

// digitCount returns the number of ASCII digits in s.
func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"fmt"
	"sort"
	"strings"

	"pii-redact/internal/detector"
)

// nameMergeGap is the maximum number of characters allowed between two
// person tokens that still belong to one name ("Emily" + "Johnson").
const nameMergeGap = 5

// Detector converts NER model output into candidate spans. Only name and
// location classes are ever emitted here; locations surface as address
// spans since that is the closest redactable category.
type Detector struct {
	model Model
}

// NewDetector creates an entity detector over the given model.
func NewDetector(model Model) *Detector {
	return &Detector{model: model}
}

// Detect runs the model and returns aligned, merged candidate spans.
// A model failure is returned as-is: silently dropping name detection
// would produce a false sense of completeness.
func (d *Detector) Detect(text string) ([]detector.Span, error) {
	if d.model == nil {
		return nil, fmt.Errorf("entity model not loaded")
	}

	tokens, err := d.model.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("entity model prediction failed: %w", err)
	}

	tokens = alignTokens(text, tokens)
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Start != tokens[j].Start {
			return tokens[i].Start < tokens[j].Start
		}
		return tokens[i].End > tokens[j].End
	})

	var spans []detector.Span
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		start, end := tok.Start, tok.End

		// Sub-word pieces sit flush against or one character apart from
		// their neighbors; whole-name parts may be separated by a little
		// more. Both collapse into one span.
		gap := 1
		if tok.Label == LabelPerson {
			gap = nameMergeGap
		}

		j := i + 1
		for j < len(tokens) && tokens[j].Label == tok.Label && tokens[j].Start-end <= gap {
			if tokens[j].End > end {
				end = tokens[j].End
			}
			j++
		}
		i = j

		value := text[start:end]
		if len(strings.TrimSpace(value)) < 2 {
			continue
		}

		spans = append(spans, detector.Span{
			Category: categoryFor(tok.Label),
			Value:    value,
			Start:    start,
			End:      end,
			Source:   detector.SourceEntityModel,
		})
	}

	return spans, nil
}

// alignTokens snaps token offsets onto the source string: out-of-range
// tokens are dropped, surrounding whitespace is trimmed off, and labels
// outside the name/location classes are discarded.
func alignTokens(text string, tokens []Token) []Token {
	out := tokens[:0]
	for _, tok := range tokens {
		if tok.Label != LabelPerson && tok.Label != LabelLocation {
			continue
		}
		if tok.Start < 0 || tok.End > len(text) || tok.Start >= tok.End {
			continue
		}
		for tok.Start < tok.End && isSpace(text[tok.Start]) {
			tok.Start++
		}
		for tok.End > tok.Start && isSpace(text[tok.End-1]) {
			tok.End--
		}
		if tok.Start >= tok.End {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func categoryFor(label Label) detector.Category {
	if label == LabelLocation {
		return detector.CategoryAddress
	}
	return detector.CategoryName
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

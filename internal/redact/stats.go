// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"pii-redact/internal/detector"
)

// Count aggregates confirmed spans of enabled categories into a
// per-category tally. Every known category is present in the result;
// categories with no matches (or disabled ones) report zero.
func Count(spans []detector.Span, settings Settings) map[detector.Category]int {
	counts := make(map[detector.Category]int, len(detector.AllCategories()))
	for _, c := range detector.AllCategories() {
		counts[c] = 0
	}
	for _, s := range spans {
		if s.Confirmed && settings.Enabled(s.Category) {
			counts[s.Category]++
		}
	}
	return counts
}

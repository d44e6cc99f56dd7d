// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package reconcile merges candidate spans from heterogeneous detectors
// into one ordered, non-overlapping set.
package reconcile

import (
	"pii-redact/internal/detector"
)

// Merge sorts all candidates by start ascending, span length descending,
// with structured categories outranking entity-derived ones on exact
// ties, then sweeps left to right keeping a last-accepted-end cursor.
// A candidate is accepted iff it starts at or after the cursor; anything
// else overlaps an already-accepted, higher-priority span and is dropped.
// Adjacent spans (end == next start) are both kept.
//
// The input is not mutated. Output spans remain unconfirmed.
func Merge(candidates []detector.Span) []detector.Span {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]detector.Span, len(candidates))
	copy(ordered, candidates)
	detector.SortSpans(ordered)

	accepted := make([]detector.Span, 0, len(ordered))
	cursor := 0
	for _, s := range ordered {
		if len(accepted) > 0 && s.Start < cursor {
			continue
		}
		accepted = append(accepted, s)
		cursor = s.End
	}
	return accepted
}

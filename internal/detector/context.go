// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

// ContextWindow holds the text immediately surrounding a span. It is what
// the false-positive filter inspects: a bounded slice on each side, never
// the whole document.
type ContextWindow struct {
	Before string
	After  string
}

// DefaultWindowRadius is the number of characters inspected on each side
// of a span when no radius is configured.
const DefaultWindowRadius = 40

// ExtractWindow returns up to radius characters before and after the
// [start, end) range. Offsets are clamped to the text bounds.
func ExtractWindow(text string, start, end, radius int) ContextWindow {
	if radius <= 0 {
		radius = DefaultWindowRadius
	}

	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	if start < 0 || end > len(text) || start > end {
		return ContextWindow{}
	}

	return ContextWindow{
		Before: text[lo:start],
		After:  text[end:hi],
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"testing"

	"pii-redact/internal/detector"
)

func TestMergeDropsContainedSpan(t *testing.T) {
	// An email's local part doubling as a name candidate: the longer
	// email span wins.
	email := detector.Span{
		Category: detector.CategoryEmail, Value: "emily.johnson@example.com",
		Start: 9, End: 34, Source: detector.SourcePattern,
	}
	name := detector.Span{
		Category: detector.CategoryName, Value: "emily.johnson",
		Start: 9, End: 22, Source: detector.SourceEntityModel,
	}

	merged := Merge([]detector.Span{name, email})
	if len(merged) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(merged), merged)
	}
	if merged[0].Category != detector.CategoryEmail {
		t.Errorf("kept %s, want email", merged[0].Category)
	}
}

func TestMergeStructuredWinsExactTie(t *testing.T) {
	ssn := detector.Span{
		Category: detector.CategorySSN, Value: "123-45-6789",
		Start: 4, End: 15, Source: detector.SourcePattern,
	}
	name := detector.Span{
		Category: detector.CategoryName, Value: "123-45-6789",
		Start: 4, End: 15, Source: detector.SourceEntityModel,
	}

	merged := Merge([]detector.Span{name, ssn})
	if len(merged) != 1 {
		t.Fatalf("got %d spans, want 1", len(merged))
	}
	if merged[0].Category != detector.CategorySSN {
		t.Errorf("kept %s, want structured ssn on exact tie", merged[0].Category)
	}
}

func TestMergeKeepsAdjacentSpans(t *testing.T) {
	a := detector.Span{Category: detector.CategoryName, Value: "abc", Start: 0, End: 3}
	b := detector.Span{Category: detector.CategoryName, Value: "def", Start: 3, End: 6}

	merged := Merge([]detector.Span{b, a})
	if len(merged) != 2 {
		t.Fatalf("adjacent spans must both survive, got %+v", merged)
	}
	if merged[0].Start != 0 || merged[1].Start != 3 {
		t.Errorf("unexpected order: %+v", merged)
	}
}

func TestMergePartialOverlapKeepsEarlierLonger(t *testing.T) {
	phone := detector.Span{
		Category: detector.CategoryPhone, Value: "+1-555-123-4567",
		Start: 5, End: 20, Source: detector.SourcePattern,
	}
	inner := detector.Span{
		Category: detector.CategoryPhone, Value: "555-123-4567",
		Start: 8, End: 20, Source: detector.SourcePattern,
	}

	merged := Merge([]detector.Span{inner, phone})
	if len(merged) != 1 {
		t.Fatalf("got %d spans, want 1", len(merged))
	}
	if merged[0].Value != "+1-555-123-4567" {
		t.Errorf("kept %q, want the longer span", merged[0].Value)
	}
}

func TestMergeDeterministicAcrossInputOrder(t *testing.T) {
	spans := []detector.Span{
		{Category: detector.CategoryEmail, Value: "a@example.com", Start: 0, End: 13, Source: detector.SourcePattern},
		{Category: detector.CategoryName, Value: "a", Start: 0, End: 1, Source: detector.SourceEntityModel},
		{Category: detector.CategoryPhone, Value: "5551234567", Start: 20, End: 30, Source: detector.SourcePattern},
	}
	reversed := []detector.Span{spans[2], spans[1], spans[0]}

	a := Merge(spans)
	b := Merge(reversed)
	if len(a) != len(b) {
		t.Fatalf("different lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("result differs at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	input := []detector.Span{
		{Category: detector.CategoryPhone, Value: "x", Start: 9, End: 10},
		{Category: detector.CategoryEmail, Value: "y", Start: 0, End: 1},
	}
	Merge(input)
	if input[0].Start != 9 || input[1].Start != 0 {
		t.Error("Merge reordered the caller's slice")
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Errorf("Merge(nil) = %v, want nil", got)
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"strings"
	"testing"

	"pii-redact/internal/detector"
)

func allCategories() map[detector.Category]bool {
	enabled := make(map[detector.Category]bool)
	for _, c := range detector.AllCategories() {
		enabled[c] = true
	}
	return enabled
}

func confirmed(c detector.Category, text, value string) detector.Span {
	start := strings.Index(text, value)
	return detector.Span{
		Category:  c,
		Value:     value,
		Start:     start,
		End:       start + len(value),
		Source:    detector.SourcePattern,
		Confirmed: true,
	}
}

func TestRenderLabels(t *testing.T) {
	text := "Contact john@example.com or call (555) 123-4567."
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "john@example.com"),
		confirmed(detector.CategoryPhone, text, "(555) 123-4567"),
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "Contact [EMAIL_1] or call [PHONE_1]."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderNumbersInReadingOrder(t *testing.T) {
	text := "a@x.com then b@y.com then c@z.com"
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "c@z.com"),
		confirmed(detector.CategoryEmail, text, "a@x.com"),
		confirmed(detector.CategoryEmail, text, "b@y.com"),
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "[EMAIL_1] then [EMAIL_2] then [EMAIL_3]"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderNumbersPerCategory(t *testing.T) {
	text := "mail a@x.com, ssn 123-45-6789, mail b@y.com"
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "a@x.com"),
		confirmed(detector.CategorySSN, text, "123-45-6789"),
		confirmed(detector.CategoryEmail, text, "b@y.com"),
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "mail [EMAIL_1], ssn [SSN_1], mail [EMAIL_2]"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderCreditCardLabel(t *testing.T) {
	text := "pay with 4111-1111-1111-1111 now"
	spans := []detector.Span{
		confirmed(detector.CategoryCreditCard, text, "4111-1111-1111-1111"),
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "pay with [CARD_1] now" {
		t.Errorf("Render() = %q, want credit_card rendered as CARD", got)
	}
}

func TestRenderBlackBoxes(t *testing.T) {
	text := "name: José here"
	spans := []detector.Span{
		confirmed(detector.CategoryName, text, "José"),
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleBlackBoxes})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	// Four runes, not five bytes.
	want := "name: " + strings.Repeat("█", 4) + " here"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderCustomLabel(t *testing.T) {
	text := "mail a@x.com and b@y.com"
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "a@x.com"),
		confirmed(detector.CategoryEmail, text, "b@y.com"),
	}

	got, err := Render(text, spans, Settings{
		Categories:  allCategories(),
		Style:       StyleCustom,
		CustomLabel: "[HIDDEN]",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "mail [HIDDEN] and [HIDDEN]" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderDisabledCategoryPassesThrough(t *testing.T) {
	text := "mail a@x.com ssn 123-45-6789"
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "a@x.com"),
		confirmed(detector.CategorySSN, text, "123-45-6789"),
	}

	settings := Settings{
		Categories: map[detector.Category]bool{detector.CategoryEmail: true},
		Style:      StyleLabels,
	}
	got, err := Render(text, spans, settings)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "mail [EMAIL_1] ssn 123-45-6789"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderAdjacentSpans(t *testing.T) {
	text := "ab"
	spans := []detector.Span{
		{Category: detector.CategoryName, Value: "a", Start: 0, End: 1, Confirmed: true},
		{Category: detector.CategoryName, Value: "b", Start: 1, End: 2, Confirmed: true},
	}

	got, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "[NAME_1][NAME_2]" {
		t.Errorf("Render() = %q", got)
	}
}

func TestRenderRejectsUnconfirmedSpan(t *testing.T) {
	text := "mail a@x.com"
	spans := []detector.Span{
		{Category: detector.CategoryEmail, Value: "a@x.com", Start: 5, End: 12},
	}

	if _, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels}); err == nil {
		t.Fatal("unconfirmed span must not be rendered")
	}
}

func TestRenderRejectsStaleOffsets(t *testing.T) {
	text := "mail a@x.com"
	spans := []detector.Span{
		{Category: detector.CategoryEmail, Value: "b@y.com", Start: 5, End: 12, Confirmed: true},
	}

	if _, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels}); err == nil {
		t.Fatal("stale offsets must fail loudly, not corrupt output")
	}
}

func TestRenderRejectsOverlap(t *testing.T) {
	text := "abcdef"
	spans := []detector.Span{
		{Category: detector.CategoryName, Value: "abcd", Start: 0, End: 4, Confirmed: true},
		{Category: detector.CategoryName, Value: "cdef", Start: 2, End: 6, Confirmed: true},
	}

	if _, err := Render(text, spans, Settings{Categories: allCategories(), Style: StyleLabels}); err == nil {
		t.Fatal("overlapping spans must be rejected")
	}
}

func TestRenderNoSpans(t *testing.T) {
	got, err := Render("untouched", nil, Settings{Categories: allCategories(), Style: StyleLabels})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "untouched" {
		t.Errorf("Render() = %q, want input unchanged", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"valid labels", Settings{Categories: allCategories(), Style: StyleLabels}, false},
		{"no categories", Settings{Style: StyleLabels}, true},
		{"unknown category", Settings{Categories: map[detector.Category]bool{"passport": true}, Style: StyleLabels}, true},
		{"unknown style", Settings{Categories: allCategories(), Style: Style("strikethrough")}, true},
		{"custom without label", Settings{Categories: allCategories(), Style: StyleCustom}, true},
		{"custom with label", Settings{Categories: allCategories(), Style: StyleCustom, CustomLabel: "[X]"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCountZeroFillsAllCategories(t *testing.T) {
	text := "mail a@x.com and b@y.com"
	spans := []detector.Span{
		confirmed(detector.CategoryEmail, text, "a@x.com"),
		confirmed(detector.CategoryEmail, text, "b@y.com"),
	}

	counts := Count(spans, Settings{Categories: allCategories(), Style: StyleLabels})
	if counts[detector.CategoryEmail] != 2 {
		t.Errorf("email count = %d, want 2", counts[detector.CategoryEmail])
	}
	for _, c := range detector.AllCategories() {
		if _, ok := counts[c]; !ok {
			t.Errorf("category %s missing from statistics", c)
		}
	}
	if counts[detector.CategorySSN] != 0 {
		t.Errorf("ssn count = %d, want 0", counts[detector.CategorySSN])
	}
}

func TestCountSkipsDisabledCategories(t *testing.T) {
	text := "ssn 123-45-6789"
	spans := []detector.Span{
		confirmed(detector.CategorySSN, text, "123-45-6789"),
	}

	settings := Settings{
		Categories: map[detector.Category]bool{detector.CategoryEmail: true},
		Style:      StyleLabels,
	}
	counts := Count(spans, settings)
	if counts[detector.CategorySSN] != 0 {
		t.Errorf("disabled category counted: %d", counts[detector.CategorySSN])
	}
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"sort"
	"strings"
)

// Category identifies the kind of PII a span covers.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryName       Category = "name"
	CategoryAddress    Category = "address"
	CategorySSN        Category = "ssn"
	CategoryCreditCard Category = "credit_card"
)

// AllCategories returns every known category in a fixed order.
func AllCategories() []Category {
	return []Category{
		CategoryEmail,
		CategoryPhone,
		CategoryName,
		CategoryAddress,
		CategorySSN,
		CategoryCreditCard,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryEmail, CategoryPhone, CategoryName, CategoryAddress, CategorySSN, CategoryCreditCard:
		return true
	}
	return false
}

// Label returns the uppercase label used for redaction placeholders,
// e.g. [EMAIL_1] or [CARD_2].
func (c Category) Label() string {
	switch c {
	case CategoryEmail:
		return "EMAIL"
	case CategoryPhone:
		return "PHONE"
	case CategoryName:
		return "NAME"
	case CategoryAddress:
		return "ADDRESS"
	case CategorySSN:
		return "SSN"
	case CategoryCreditCard:
		return "CARD"
	default:
		return "REDACTED"
	}
}

// Structured reports whether the category is matched by a structural
// pattern rather than an entity model. Structured categories win exact
// ties during reconciliation because structural matches are higher
// precision.
func (c Category) Structured() bool {
	switch c {
	case CategorySSN, CategoryCreditCard, CategoryEmail, CategoryPhone:
		return true
	}
	return false
}

// ParseCategories converts a list of category names into an enabled set.
// Unknown names are an error; the caller must be explicit about what it
// wants redacted.
func ParseCategories(names []string) (map[Category]bool, error) {
	enabled := make(map[Category]bool)
	for _, name := range names {
		c := Category(strings.ToLower(strings.TrimSpace(name)))
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		enabled[c] = true
	}
	return enabled, nil
}

// Source records which detector produced a span.
type Source string

const (
	SourcePattern       Source = "pattern"
	SourceEntityModel   Source = "entity_model"
	SourceLLMDiscovered Source = "llm_discovered"
)

// Span is a typed, positioned substring identified as PII. Start and End
// are half-open character offsets into the original text; Value must equal
// text[Start:End] for as long as the span is alive.
type Span struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Source   Source   `json:"source"`

	// Confirmed is set only after the language-model review stage.
	// Unconfirmed spans never reach the renderer.
	Confirmed bool `json:"confirmed"`

	// Reason carries reviewer reasoning when present. Informational only.
	Reason string `json:"reason,omitempty"`
}

// Len returns the number of characters the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share any offset.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Check verifies the span's offsets against the text it was cut from.
// A mismatch indicates a stale-offset bug and must fail loudly rather
// than let the wrong text be redacted.
func (s Span) Check(text string) error {
	if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
		return fmt.Errorf("span %s [%d:%d) out of bounds for text of length %d",
			s.Category, s.Start, s.End, len(text))
	}
	if got := text[s.Start:s.End]; got != s.Value {
		return fmt.Errorf("span %s [%d:%d) value mismatch: have %q, text reads %q",
			s.Category, s.Start, s.End, s.Value, got)
	}
	return nil
}

// SortSpans orders spans by start ascending, longer span first on equal
// start, structured categories before entity-derived ones on exact ties.
// The final category/source comparison keeps the order total so repeated
// runs over identical input produce identical output.
func SortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Category.Structured() != b.Category.Structured() {
			return a.Category.Structured()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Source < b.Source
	})
}

// CheckDisjoint verifies the invariants of a finalized span set: every
// span reads back from the text exactly, and no two spans overlap.
// Adjacency is permitted.
func CheckDisjoint(text string, spans []Span) error {
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	SortSpans(ordered)

	for i, s := range ordered {
		if err := s.Check(text); err != nil {
			return err
		}
		if i > 0 && ordered[i-1].End > s.Start {
			return fmt.Errorf("spans overlap: %s [%d:%d) and %s [%d:%d)",
				ordered[i-1].Category, ordered[i-1].Start, ordered[i-1].End,
				s.Category, s.Start, s.End)
		}
	}
	return nil
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"pii-redact/internal/detector"
)

// buildPrompt renders the review request: the source text, the candidate
// list with stable indexes, and the reply schema the client parses.
// One batched call reviews everything; per-candidate round trips would
// multiply latency and quota cost.
func buildPrompt(text string, candidates []detector.Span) string {
	type promptCandidate struct {
		Index    int    `json:"index"`
		Category string `json:"category"`
		Value    string `json:"value"`
		Start    int    `json:"start"`
		End      int    `json:"end"`
	}

	list := make([]promptCandidate, len(candidates))
	for i, s := range candidates {
		list[i] = promptCandidate{
			Index:    i,
			Category: string(s.Category),
			Value:    s.Value,
			Start:    s.Start,
			End:      s.End,
		}
	}
	candidateJSON, _ := json.MarshalIndent(list, "", "  ")

	var b strings.Builder
	b.WriteString("You are a PII (Personally Identifiable Information) detection expert.\n\n")
	b.WriteString("Text to analyze:\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n\n")
	b.WriteString("Candidate detections (character offsets into the text above):\n")
	b.Write(candidateJSON)
	b.WriteString("\n\nFor each candidate, decide whether it is real PII that should be redacted ")
	b.WriteString("or a false positive (an example value, a book or module title, a field label, ")
	b.WriteString("a common word mistaken for a name).\n\n")
	b.WriteString("Also find any PII the candidates missed: email addresses, phone numbers, ")
	b.WriteString("names, physical addresses, Social Security Numbers, credit card numbers, ")
	b.WriteString("usernames or account IDs.\n\n")
	b.WriteString("Respond with JSON only, in this exact shape:\n")
	b.WriteString(`{
  "verdicts": [
    {"index": 0, "accept": true, "reason": "brief explanation"}
  ],
  "discovered": [
    {"category": "email|phone|name|address|ssn|credit_card|username|other",
     "value": "the detected text", "start": 0, "end": 0,
     "reason": "why this is PII"}
  ],
  "explanation": "2-3 sentence summary of what was found, why it was redacted, and notable edge cases"
}`)
	b.WriteString("\n")

	return b.String()
}

// stripCodeFence unwraps a ```json ... ``` or ``` ... ``` block if the
// model wrapped its reply in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
	} else {
		return s
	}
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// mapCategory folds the model's free category vocabulary onto the span
// enum. Usernames and unknown kinds land on name, matching how the
// pattern layer classifies labeled account identifiers.
func mapCategory(raw string) detector.Category {
	c := detector.Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return detector.CategoryName
}

// locate re-anchors a discovered span whose offsets do not read back.
// Models frequently return approximate positions; the value itself is the
// ground truth, so the first exact occurrence wins. Returns an error when
// the value does not occur in the text at all.
func locate(text string, value string, start, end int) (int, int, error) {
	if start >= 0 && end <= len(text) && start < end && text[start:end] == value {
		return start, end, nil
	}
	idx := strings.Index(text, value)
	if idx < 0 {
		return 0, 0, fmt.Errorf("discovered value %q not present in text", value)
	}
	return idx, idx + len(value), nil
}
